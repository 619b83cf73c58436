// Package agent drives the conversation with the completion service: it sends
// the history, runs any tools the model asks for and feeds the results back
// until the model answers in plain text or the round limit is reached.
package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quocvuong92/johnathan-agent/internal/api"
	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/constants"
	"github.com/quocvuong92/johnathan-agent/internal/history"
	"github.com/quocvuong92/johnathan-agent/internal/logging"
	"github.com/quocvuong92/johnathan-agent/internal/metrics"
	"github.com/quocvuong92/johnathan-agent/internal/tools"
)

// Option customises an Agent.
type Option func(*Agent)

// WithChunkHandler streams text fragments to fn as they arrive.
func WithChunkHandler(fn func(content string)) Option {
	return func(a *Agent) { a.onChunk = fn }
}

// WithRoundHandler calls fn before each round is sent.
func WithRoundHandler(fn func(round int)) Option {
	return func(a *Agent) { a.onRound = fn }
}

// WithToolCallHandler calls fn before a tool is executed.
func WithToolCallHandler(fn func(call api.ToolCall)) Option {
	return func(a *Agent) { a.onToolCall = fn }
}

// WithToolResultHandler calls fn after a tool has run.
func WithToolResultHandler(fn func(call api.ToolCall, result string, isError bool)) Option {
	return func(a *Agent) { a.onToolResult = fn }
}

// WithMetrics records rounds and tool executions on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *Agent) { a.metrics = rec }
}

// WithLogger replaces the package default logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithToolTimeout bounds each tool execution.
func WithToolTimeout(d time.Duration) Option {
	return func(a *Agent) { a.toolTimeout = d }
}

// EmptyAnswerPlaceholder is stored in the history when the model answers
// with no text.
const EmptyAnswerPlaceholder = "(no answer)"

// Agent owns one conversation. It is not safe for concurrent use: a turn must
// finish before the next one starts.
type Agent struct {
	client   api.Completer
	registry *tools.Registry
	cfg      *config.Config
	history  *history.History

	onChunk      func(string)
	onRound      func(int)
	onToolCall   func(api.ToolCall)
	onToolResult func(api.ToolCall, string, bool)
	metrics      *metrics.Recorder
	logger       *logging.Logger
	toolTimeout  time.Duration
}

// New creates an agent with an empty conversation.
func New(client api.Completer, registry *tools.Registry, cfg *config.Config, opts ...Option) *Agent {
	a := &Agent{
		client:      client,
		registry:    registry,
		cfg:         cfg,
		history:     history.New(),
		logger:      logging.DefaultLogger,
		toolTimeout: constants.DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = tools.NewRegistry()
	}
	return a
}

// History returns the committed conversation.
func (a *Agent) History() history.Conversation { return a.history.View() }

// Registry returns the tools offered to the model.
func (a *Agent) Registry() *tools.Registry { return a.registry }

// Model returns the model the next round will use.
func (a *Agent) Model() string { return a.cfg.Model }

// SetModel switches the model for subsequent rounds.
func (a *Agent) SetModel(model string) { a.cfg.Model = model }

// Reset starts a new conversation.
func (a *Agent) Reset() { a.history = history.New() }

// Run sends input as a user message and returns the model's final answer.
// The turn works on a fork of the history; it is committed only when the
// model answers, so a failed turn leaves the conversation unchanged.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	turn := a.history.Fork()
	turn.Append(api.NewTextMessage(api.RoleUser, input))

	log := a.logger.WithFields(logging.Fields{"conversation_id": turn.ID()})
	limit := a.cfg.MaxToolRounds
	if limit <= 0 {
		limit = constants.DefaultMaxToolRounds
	}

	for round := 1; round <= limit; round++ {
		a.metrics.ObserveRound()
		if a.onRound != nil {
			a.onRound(round)
		}
		log.Debug("Sending round", logging.Fields{"round": round, "messages": turn.Len()})

		resp, err := a.complete(ctx, turn.Messages())
		if err != nil {
			log.Error("Round failed", err, logging.Fields{"round": round})
			return "", err
		}
		log.Debug("Round complete", logging.Fields{
			"round":       round,
			"stop_reason": resp.StopReason,
			"tool_calls":  len(resp.ToolCalls),
		})

		if !resp.HasToolCalls() {
			// The service rejects empty assistant content on later rounds.
			stored := resp.Text
			if strings.TrimSpace(stored) == "" {
				stored = EmptyAnswerPlaceholder
			}
			turn.Append(api.NewTextMessage(api.RoleAssistant, stored))
			a.history = turn
			return resp.Text, nil
		}

		turn.Append(assistantToolUse(resp))
		turn.Append(a.runTools(ctx, log, resp.ToolCalls))
	}

	a.metrics.ObserveToolLoopExceeded()
	log.Warn("Tool loop limit reached", logging.Fields{"rounds": limit})
	return "", &ToolLoopExceededError{Rounds: limit, History: turn.Messages()}
}

func (a *Agent) complete(ctx context.Context, msgs []api.Message) (*api.ChatResponse, error) {
	req := api.Request{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		Messages:  msgs,
		System:    a.cfg.SystemPrompt,
		Tools:     a.registry.Definitions(),
	}
	if a.cfg.Stream {
		return a.client.Stream(ctx, req, a.onChunk)
	}
	return a.client.Send(ctx, req)
}

// assistantToolUse rebuilds the assistant turn that requested the tools.
// Text emitted before the calls is kept as a leading text block.
func assistantToolUse(resp *api.ChatResponse) api.Message {
	blocks := make([]api.ContentBlock, 0, len(resp.ToolCalls)+1)
	if resp.Text != "" {
		blocks = append(blocks, api.TextBlock{Text: resp.Text})
	}
	for _, tc := range resp.ToolCalls {
		blocks = append(blocks, api.ToolUseBlock{ID: tc.ID, Name: tc.Name, Input: tc.Input})
	}
	return api.NewBlocksMessage(api.RoleAssistant, blocks...)
}

// runTools executes calls in order and returns the user message carrying one
// result per call. A failing tool never stops the others.
func (a *Agent) runTools(ctx context.Context, log *logging.FieldLogger, calls []api.ToolCall) api.Message {
	results := make([]api.ContentBlock, 0, len(calls))
	for _, tc := range calls {
		if a.onToolCall != nil {
			a.onToolCall(tc)
		}

		start := time.Now()
		result, err := a.execute(ctx, tc)
		elapsed := time.Since(start)

		outcome := metrics.OutcomeSuccess
		isError := err != nil
		if isError {
			outcome = metrics.OutcomeError
			if errors.Is(err, tools.ErrUnknownTool) {
				outcome = metrics.OutcomeUnknown
			}
			result = "Error: " + err.Error()
			log.Warn("Tool failed", logging.Fields{"tool": tc.Name, "tool_use_id": tc.ID, "error": err.Error()})
		} else {
			log.Debug("Tool executed", logging.Fields{"tool": tc.Name, "tool_use_id": tc.ID, "duration_ms": elapsed.Milliseconds()})
		}
		a.metrics.ObserveToolCall(tc.Name, outcome, elapsed)

		if a.onToolResult != nil {
			a.onToolResult(tc, result, isError)
		}
		results = append(results, api.ToolResultBlock{ToolUseID: tc.ID, Content: result, IsError: isError})
	}
	return api.NewBlocksMessage(api.RoleUser, results...)
}

func (a *Agent) execute(ctx context.Context, tc api.ToolCall) (string, error) {
	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}
	return a.registry.Execute(ctx, tc.Name, tc.Input)
}
