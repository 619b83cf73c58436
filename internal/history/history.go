package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// History is an ordered sequence of messages that only ever grows.
// It is owned by a single orchestrator and is not safe for concurrent use.
type History struct {
	id        string
	createdAt time.Time
	messages  []api.Message
}

// New creates an empty history with a fresh conversation ID.
func New() *History {
	return &History{
		id:        uuid.New().String(),
		createdAt: time.Now(),
	}
}

// ID returns the conversation identifier.
func (h *History) ID() string { return h.id }

// CreatedAt returns when the conversation started.
func (h *History) CreatedAt() time.Time { return h.createdAt }

// Append adds msgs to the end of the history.
func (h *History) Append(msgs ...api.Message) {
	h.messages = append(h.messages, msgs...)
}

// Messages returns a copy of the messages in order.
func (h *History) Messages() []api.Message {
	out := make([]api.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int { return len(h.messages) }

// Fork returns a copy that can be appended to without affecting h.
func (h *History) Fork() *History {
	return &History{
		id:        h.id,
		createdAt: h.createdAt,
		messages:  h.Messages(),
	}
}
