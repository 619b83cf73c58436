package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/constants"
	"github.com/quocvuong92/johnathan-agent/internal/logging"
)

// Completer sends a request and returns the aggregated response of one round.
type Completer interface {
	// Stream sends req in streaming mode, forwarding text fragments to onChunk.
	Stream(ctx context.Context, req Request, onChunk func(content string)) (*ChatResponse, error)

	// Send sends req and waits for the buffered response.
	Send(ctx context.Context, req Request) (*ChatResponse, error)
}

var _ Completer = (*Client)(nil)

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithEventObserver registers fn to see every decoded stream event.
func WithEventObserver(fn func(Event)) ClientOption {
	return func(c *Client) { c.observer = fn }
}

// Client talks to the Messages endpoint over HTTP.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	version    string
	observer   func(Event)
}

// NewClient creates a client from configuration. In verbose mode requests and
// responses are logged through the debug round tripper.
func NewClient(cfg *config.Config, opts ...ClientOption) *Client {
	transport := http.DefaultTransport
	if cfg.Verbose {
		logger := logging.New(logging.Options{
			Level:  logging.LevelDebug,
			Format: logging.FormatJSON,
		})
		transport = logging.NewLoggingRoundTripper(http.DefaultTransport, logging.NewHTTPLogger(logger), true)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAPITimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		url:        cfg.MessagesURL(),
		apiKey:     cfg.APIKey,
		version:    cfg.APIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream sends req with streaming enabled and aggregates the event stream.
// The response body is always closed before Stream returns.
func (c *Client) Stream(ctx context.Context, req Request, onChunk func(content string)) (*ChatResponse, error) {
	req.Stream = true
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return Aggregate(ObserveEvents(DecodeEvents(ctx, resp.Body), c.observer), onChunk)
}

// Send sends req without streaming.
func (c *Client) Send(ctx context.Context, req Request) (*ChatResponse, error) {
	req.Stream = false
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	return parseMessageResponse(body)
}

// Close is a no-op; the client holds no background resources.
func (c *Client) Close() {}

func (c *Client) do(ctx context.Context, req Request) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", c.version)
	httpReq.Header.Set("User-Agent", constants.AppName+"/"+constants.AppVersion)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "send request", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		_ = resp.Body.Close()
		return nil, &TransportError{Op: "send request", Err: parseAPIError(resp.StatusCode, data)}
	}
	return resp, nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	var wire struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error.Message != "" {
		apiErr.Type = wire.Error.Type
		apiErr.Message = wire.Error.Message
	} else if msg := strings.TrimSpace(string(body)); msg != "" {
		apiErr.Message = truncate(msg, 500)
	}
	return apiErr
}

// parseMessageResponse converts a buffered Messages response into a ChatResponse.
func parseMessageResponse(body []byte) (*ChatResponse, error) {
	var wire struct {
		Content []struct {
			Type  string          `json:"type"`
			Text  string          `json:"text"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
		StopReason *string `json:"stop_reason"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	resp := &ChatResponse{StopReason: DefaultStopReason, ToolCalls: []ToolCall{}}
	if wire.StopReason != nil {
		resp.StopReason = *wire.StopReason
	}

	var text strings.Builder
	for _, block := range wire.Content {
		switch block.Type {
		case BlockText:
			text.WriteString(block.Text)
		case BlockToolUse:
			input, ok := normalizeToolInput(block.Input)
			if !ok {
				logging.Warn("Malformed tool input, using empty object", logging.Fields{
					"tool_use_id": block.ID,
					"tool":        block.Name,
					"input":       truncate(string(block.Input), 200),
				})
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: block.ID, Name: block.Name, Input: input})
		}
	}
	resp.Text = text.String()
	return resp, nil
}
