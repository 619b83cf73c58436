package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/constants"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		APIVersion: constants.DefaultAPIVersion,
	}
	return NewClient(cfg, opts...)
}

func TestClient_Stream(t *testing.T) {
	var gotReq Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != constants.MessagesPath {
			t.Errorf("path = %q, want %q", r.URL.Path, constants.MessagesPath)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != constants.DefaultAPIVersion {
			t.Errorf("anthropic-version = %q", got)
		}
		if got := r.Header.Get("accept"); got != "text/event-stream" {
			t.Errorf("accept = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("request body: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sse(textStart, textDelta("Hi"), blockStop0, stopReason("end_turn")))
	})

	var observed int
	client.observer = func(Event) { observed++ }

	var chunks []string
	resp, err := client.Stream(context.Background(), Request{
		Model:     "m",
		MaxTokens: 16,
		Messages:  []Message{NewTextMessage(RoleUser, "hello")},
	}, func(s string) { chunks = append(chunks, s) })
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if !gotReq.Stream {
		t.Error("request did not ask for streaming")
	}
	if resp.Text != "Hi" || resp.StopReason != "end_turn" {
		t.Errorf("Stream() = %+v", resp)
	}
	if len(chunks) != 1 {
		t.Errorf("chunks = %q", chunks)
	}
	if observed != 4 {
		t.Errorf("observer saw %d events, want 4", observed)
	}
}

func TestClient_Send(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("Send() asked for streaming")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"msg_1","type":"message","role":"assistant",
			"content":[
				{"type":"text","text":"Checking"},
				{"type":"tool_use","id":"t1","name":"get_current_time","input":{}},
				{"type":"tool_use","id":"t2","name":"read_file","input":{"path":"x"}}
			],
			"stop_reason":"tool_use"
		}`)
	})

	resp, err := client.Send(context.Background(), Request{Model: "m", MaxTokens: 16})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.Text != "Checking" || resp.StopReason != "tool_use" {
		t.Errorf("Send() = %+v", resp)
	}
	if len(resp.ToolCalls) != 2 || resp.ToolCalls[1].Name != "read_file" {
		t.Fatalf("ToolCalls = %+v", resp.ToolCalls)
	}
	if string(resp.ToolCalls[0].Input) != "{}" {
		t.Errorf("ToolCalls[0].Input = %s", resp.ToolCalls[0].Input)
	}
}

func TestClient_SendNonObjectInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"content":[
				{"type":"tool_use","id":"t1","name":"read_file","input":[1,2]},
				{"type":"tool_use","id":"t2","name":"get_current_time"}
			],
			"stop_reason":"tool_use"
		}`)
	})

	resp, err := client.Send(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("ToolCalls = %+v", resp.ToolCalls)
	}
	for _, call := range resp.ToolCalls {
		if string(call.Input) != "{}" {
			t.Errorf("%s Input = %s, want {}", call.ID, call.Input)
		}
	}
}

func TestClient_SendWithoutStopReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"ok"}]}`)
	})

	resp, err := client.Send(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.StopReason != DefaultStopReason {
		t.Errorf("StopReason = %q, want %q", resp.StopReason, DefaultStopReason)
	}
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType string
		wantMsg  string
	}{
		{
			name:     "structured",
			status:   http.StatusUnauthorized,
			body:     `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantType: "authentication_error",
			wantMsg:  "invalid x-api-key",
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    "upstream down",
			wantMsg: "upstream down",
		},
		{
			name:    "empty",
			status:  http.StatusServiceUnavailable,
			wantMsg: http.StatusText(http.StatusServiceUnavailable),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Stream(context.Background(), Request{}, nil)

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v, want *TransportError", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Type != tt.wantType || apiErr.Message != tt.wantMsg {
				t.Errorf("APIError = %+v", apiErr)
			}
		})
	}
}

func TestClient_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(&config.Config{APIKey: "k", BaseURL: url, APIVersion: "v"})
	_, err := client.Send(context.Background(), Request{})

	var te *TransportError
	if !errors.As(err, &te) || te.Op != "send request" {
		t.Errorf("error = %v, want send request TransportError", err)
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{&APIError{Type: "overloaded_error", Message: "busy"}, "API error (overloaded_error): busy"},
		{&APIError{StatusCode: 502, Message: "bad"}, "API error (502): bad"},
		{&APIError{StatusCode: 401, Type: "authentication_error", Message: "no"}, "API error (401, authentication_error): no"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	wrapped := &TransportError{Op: "read stream", Err: io.ErrUnexpectedEOF}
	if got := wrapped.Error(); got != "read stream: unexpected EOF" {
		t.Errorf("TransportError.Error() = %q", got)
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("TransportError does not unwrap")
	}
}
