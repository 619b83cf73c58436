package display

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress while waiting for the completion service.
// It only draws when stderr is a terminal.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a stopped spinner with the given message
func NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	return &Spinner{s: s}
}

// Start starts the spinner
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop stops the spinner and clears its line. Safe to call more than once.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// UpdateMessage changes the text next to the spinner
func (sp *Spinner) UpdateMessage(msg string) {
	sp.s.Lock()
	sp.s.Suffix = " " + msg
	sp.s.Unlock()
}
