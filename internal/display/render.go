package display

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

const renderWidth = 100

var (
	rendererOnce sync.Once
	renderer     *glamour.TermRenderer
	rendererErr  error
)

// InitRenderer prepares the markdown renderer. Calling it early avoids a
// pause before the first rendered answer.
func InitRenderer() error {
	rendererOnce.Do(func() {
		renderer, rendererErr = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(renderWidth),
		)
	})
	return rendererErr
}

// Render converts markdown to styled terminal output.
func Render(content string) (string, error) {
	if err := InitRenderer(); err != nil {
		return "", err
	}
	return renderer.Render(content)
}
