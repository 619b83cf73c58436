// Package history provides the append-only conversation history of a session.
package history

import "github.com/quocvuong92/johnathan-agent/internal/api"

// Conversation is a read-only view of a conversation.
type Conversation interface {
	// ID returns the conversation identifier used for log correlation
	ID() string

	// Messages returns a snapshot of the conversation
	Messages() []api.Message

	// Len returns the number of messages
	Len() int
}

// view hides the mutating methods of History.
type view struct {
	h *History
}

func (v view) ID() string              { return v.h.ID() }
func (v view) Messages() []api.Message { return v.h.Messages() }
func (v view) Len() int                { return v.h.Len() }

// View returns a read-only view of h. It follows later appends to h.
func (h *History) View() Conversation { return view{h: h} }

// Ensure concrete type implements the interface
var _ Conversation = (*History)(nil)
