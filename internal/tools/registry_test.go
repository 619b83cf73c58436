package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// stubExecutor returns a fixed result
type stubExecutor struct {
	name   string
	result string
	err    error
	calls  int
	input  json.RawMessage
}

func (s *stubExecutor) Name() string { return s.name }

func (s *stubExecutor) Definition() api.Tool {
	return api.Tool{Name: s.name, Description: "stub " + s.result, InputSchema: schema(map[string]interface{}{})}
}

func (s *stubExecutor) Execute(_ context.Context, input json.RawMessage) (string, error) {
	s.calls++
	s.input = input
	return s.result, s.err
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()

	_, err := r.Execute(context.Background(), "nonexistent", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("Execute() error = %v, want ErrUnknownTool", err)
	}
	var unknown *UnknownToolError
	if !errors.As(err, &unknown) || unknown.Name != "nonexistent" {
		t.Errorf("Execute() error = %#v", err)
	}
}

func TestRegistry_ExecuteReturnsExecutorResult(t *testing.T) {
	toolErr := errors.New("disk on fire")
	tests := []struct {
		name    string
		exec    *stubExecutor
		want    string
		wantErr error
	}{
		{"success", &stubExecutor{name: "ok", result: "42"}, "42", nil},
		{"failure", &stubExecutor{name: "bad", result: "partial", err: toolErr}, "partial", toolErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.exec)
			input := json.RawMessage(`{"x":1}`)

			got, err := r.Execute(context.Background(), tt.exec.name, input)
			if got != tt.want || !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() = %q, %v, want %q, %v", got, err, tt.want, tt.wantErr)
			}
			if tt.exec.calls != 1 || string(tt.exec.input) != `{"x":1}` {
				t.Errorf("executor called %d times with %s", tt.exec.calls, tt.exec.input)
			}
		})
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	first := &stubExecutor{name: "dup", result: "first"}
	second := &stubExecutor{name: "dup", result: "second"}

	r := NewRegistry(first)
	r.Register(second)

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	got, err := r.Execute(context.Background(), "dup", nil)
	if err != nil || got != "second" {
		t.Errorf("Execute() = %q, %v, want second", got, err)
	}
	if first.calls != 0 {
		t.Error("replaced executor was called")
	}
}

func TestRegistry_DefinitionsSnapshot(t *testing.T) {
	r := NewRegistry(
		&stubExecutor{name: "zeta"},
		&stubExecutor{name: "alpha"},
		&stubExecutor{name: "mid"},
	)

	defs := r.Definitions()
	if len(defs) != 3 {
		t.Fatalf("Definitions() returned %d tools, want 3", len(defs))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if defs[i].Name != want {
			t.Errorf("defs[%d].Name = %q, want %q", i, defs[i].Name, want)
		}
	}

	r.Register(&stubExecutor{name: "beta"})
	if len(defs) != 3 {
		t.Error("Definitions() snapshot changed after Register")
	}
	if names := r.Names(); len(names) != 4 || names[1] != "beta" {
		t.Errorf("Names() = %v", names)
	}
}

func TestBuiltin(t *testing.T) {
	r := Builtin()
	want := []string{"get_current_time", "list_directory", "read_file"}
	names := r.Names()
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	for _, def := range r.Definitions() {
		var s map[string]interface{}
		if err := json.Unmarshal(def.InputSchema, &s); err != nil {
			t.Errorf("%s: invalid schema: %v", def.Name, err)
			continue
		}
		if s["type"] != "object" {
			t.Errorf("%s: schema type = %v, want object", def.Name, s["type"])
		}
		if def.Description == "" {
			t.Errorf("%s: empty description", def.Name)
		}
	}
}
