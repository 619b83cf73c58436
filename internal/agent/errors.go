package agent

import (
	"errors"
	"fmt"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// ErrToolLoopExceeded matches every *ToolLoopExceededError via errors.Is.
var ErrToolLoopExceeded = errors.New("tool loop exceeded")

// ToolLoopExceededError is returned when every round up to the limit asked
// for tools. History holds the conversation as it stood when the turn was
// abandoned, including the last round's tool results.
type ToolLoopExceededError struct {
	Rounds  int
	History []api.Message
}

func (e *ToolLoopExceededError) Error() string {
	return fmt.Sprintf("model still requested tools after %d rounds", e.Rounds)
}

func (e *ToolLoopExceededError) Is(target error) bool {
	return target == ErrToolLoopExceeded
}
