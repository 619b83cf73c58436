package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// GetCurrentTime reports the current time.
type GetCurrentTime struct {
	now func() time.Time
}

// NewGetCurrentTime creates the get_current_time tool backed by the system clock.
func NewGetCurrentTime() *GetCurrentTime {
	return &GetCurrentTime{now: time.Now}
}

func (t *GetCurrentTime) Name() string { return "get_current_time" }

func (t *GetCurrentTime) Definition() api.Tool {
	return api.Tool{
		Name:        t.Name(),
		Description: "Get the current date and time. Use this when the user asks about the current time or date.",
		InputSchema: schema(map[string]interface{}{}),
	}
}

func (t *GetCurrentTime) Execute(_ context.Context, _ json.RawMessage) (string, error) {
	now := t.now().UTC()
	return fmt.Sprintf("Current Unix timestamp: %d seconds since epoch (%s)", now.Unix(), now.Format(time.RFC3339)), nil
}
