// Package tools holds the capabilities the model may invoke and the registry
// that dispatches calls to them by name.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// ErrUnknownTool matches every *UnknownToolError via errors.Is.
var ErrUnknownTool = errors.New("unknown tool")

// UnknownToolError is returned by Registry.Execute when no executor is
// registered under the requested name.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// Executor is a capability the model can call.
// An error from Execute is a tool failure to report back to the model,
// not a failure of the conversation.
type Executor interface {
	// Name is the unique key the model uses to call the tool
	Name() string

	// Definition describes the tool to the completion service
	Definition() api.Tool

	// Execute runs the tool with the JSON object the model supplied
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// Registry maps tool names to executors.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates a registry holding the given executors.
func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{executors: make(map[string]Executor)}
	for _, e := range executors {
		r.Register(e)
	}
	return r
}

// Register adds e under e.Name(), replacing any executor already registered
// under that name.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Name()] = e
}

// Definitions returns a snapshot of every registered tool, sorted by name.
func (r *Registry) Definitions() []api.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]api.Tool, 0, len(r.executors))
	for _, e := range r.executors {
		defs = append(defs, e.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.executors)
}

// Execute runs the executor registered under name and returns its result
// unchanged. It fails with *UnknownToolError when name is not registered.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	r.mu.RLock()
	e, ok := r.executors[name]
	r.mu.RUnlock()
	if !ok {
		return "", &UnknownToolError{Name: name}
	}
	return e.Execute(ctx, input)
}

// Builtin returns a registry with the tools shipped with the agent.
func Builtin() *Registry {
	return NewRegistry(
		NewGetCurrentTime(),
		NewReadFile(),
		NewListDirectory(),
	)
}

// decodeInput unmarshals the tool input into v. An empty input is treated as {}.
func decodeInput(input json.RawMessage, v interface{}) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// schema builds a JSON object schema from properties and required keys.
func schema(properties map[string]interface{}, required ...string) json.RawMessage {
	if required == nil {
		required = []string{}
	}
	data, err := json.Marshal(map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	if err != nil {
		panic(err)
	}
	return data
}
