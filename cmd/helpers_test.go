package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/quocvuong92/johnathan-agent/internal/api"
	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/display"
	"github.com/quocvuong92/johnathan-agent/internal/logging"
	"github.com/quocvuong92/johnathan-agent/internal/metrics"
)

// MockCompleter implements api.Completer for testing
type MockCompleter struct {
	responses []*api.ChatResponse
	requests  []api.Request
	err       error
}

func (m *MockCompleter) AddResponse(resp *api.ChatResponse) {
	m.responses = append(m.responses, resp)
}

func (m *MockCompleter) AddAnswer(text string) {
	m.AddResponse(&api.ChatResponse{Text: text, StopReason: "end_turn"})
}

func (m *MockCompleter) AddToolCall(id, name, input string) {
	m.AddResponse(&api.ChatResponse{
		StopReason: "tool_use",
		ToolCalls:  []api.ToolCall{{ID: id, Name: name, Input: json.RawMessage(input)}},
	})
}

func (m *MockCompleter) next(req api.Request) (*api.ChatResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *MockCompleter) Stream(_ context.Context, req api.Request, onChunk func(string)) (*api.ChatResponse, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}
	if onChunk != nil && resp.Text != "" {
		onChunk(resp.Text)
	}
	return resp, nil
}

func (m *MockCompleter) Send(_ context.Context, req api.Request) (*api.ChatResponse, error) {
	return m.next(req)
}

// Ensure MockCompleter implements api.Completer
var _ api.Completer = (*MockCompleter)(nil)

// newTestApp returns an App with a validated-looking config and the mock client.
func newTestApp(mock *MockCompleter) *App {
	cfg := config.NewConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = "http://127.0.0.1:1"
	cfg.Model = "test-model"
	cfg.MaxTokens = 128
	cfg.MaxToolRounds = 5
	cfg.SystemPrompt = "test"

	return &App{
		cfg:     cfg,
		metrics: metrics.New(),
		newClient: func(*config.Config, ...api.ClientOption) api.Completer {
			return mock
		},
	}
}

// captureOutput redirects display output for the duration of the test.
func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	display.SetOutput(&stdout, &stderr)
	t.Cleanup(func() { display.SetOutput(os.Stdout, os.Stderr) })

	old := logging.DefaultLogger.Level()
	logging.SetLevel(logging.LevelNone)
	t.Cleanup(func() { logging.SetLevel(old) })
	return &stdout, &stderr
}

// isolateEnv gives the test an empty working directory, config directory
// and in-memory keyring.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, env := range []string{
		config.EnvAPIKey, config.EnvBaseURL, config.EnvModel, config.EnvMaxTokens,
		config.EnvMaxToolRounds, config.EnvSystemPrompt, config.EnvLogLevel,
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	keyring.MockInit()
	return dir
}

// createTestFile writes content to name inside dir
func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}
