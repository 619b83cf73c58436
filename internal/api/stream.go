package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"strings"

	"github.com/quocvuong92/johnathan-agent/internal/logging"
)

// partialToolCall accumulates the streamed input of one tool_use block.
type partialToolCall struct {
	id   string
	name string
	buf  strings.Builder
}

// StreamAggregator folds decoded events into a ChatResponse.
// At most one tool_use block is open at a time.
type StreamAggregator struct {
	onChunk    func(content string)
	text       strings.Builder
	stopReason string
	toolCalls  []ToolCall
	open       *partialToolCall
	streamErr  *StreamError
}

// NewStreamAggregator creates an aggregator. onChunk, if not nil, receives
// every text fragment exactly once, in arrival order, before it is accumulated.
func NewStreamAggregator(onChunk func(content string)) *StreamAggregator {
	return &StreamAggregator{
		onChunk:    onChunk,
		stopReason: DefaultStopReason,
	}
}

// Apply processes a single event.
func (a *StreamAggregator) Apply(ev Event) {
	switch e := ev.(type) {
	case ContentBlockStart:
		if e.Block.Type == BlockToolUse {
			if a.open != nil {
				logging.Warn("Discarding unterminated tool call", logging.Fields{
					"tool_use_id": a.open.id,
					"tool":        a.open.name,
				})
			}
			a.open = &partialToolCall{id: e.Block.ID, name: e.Block.Name}
		}

	case ContentBlockDelta:
		switch e.Delta.Type {
		case DeltaText:
			if a.onChunk != nil {
				a.onChunk(e.Delta.Text)
			}
			a.text.WriteString(e.Delta.Text)
		case DeltaInputJSON:
			if a.open != nil {
				a.open.buf.WriteString(e.Delta.PartialJSON)
			}
		}

	case ContentBlockStop:
		if a.open == nil {
			return
		}
		a.toolCalls = append(a.toolCalls, ToolCall{
			ID:    a.open.id,
			Name:  a.open.name,
			Input: finalizeInput(a.open),
		})
		a.open = nil

	case MessageDelta:
		if e.StopReason != nil {
			a.stopReason = *e.StopReason
		}

	case StreamError:
		if a.streamErr == nil {
			a.streamErr = &e
		}
	}
}

// Response returns the accumulated result.
func (a *StreamAggregator) Response() *ChatResponse {
	calls := make([]ToolCall, len(a.toolCalls))
	copy(calls, a.toolCalls)
	return &ChatResponse{
		Text:       a.text.String(),
		StopReason: a.stopReason,
		ToolCalls:  calls,
	}
}

// Text returns the text accumulated so far.
func (a *StreamAggregator) Text() string {
	return a.text.String()
}

// finalizeInput parses the buffered input. A tool without arguments streams
// no input at all, which is read as {}.
func finalizeInput(p *partialToolCall) json.RawMessage {
	raw := p.buf.String()
	input, ok := normalizeToolInput([]byte(raw))
	if !ok {
		logging.Warn("Malformed tool input, using empty object", logging.Fields{
			"tool_use_id": p.id,
			"tool":        p.name,
			"input":       truncate(raw, 200),
		})
	}
	return input
}

// normalizeToolInput compacts raw tool input. Empty input becomes {} and is
// accepted; anything else that is not a JSON object becomes {} and reports false.
func normalizeToolInput(raw []byte) (json.RawMessage, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage(`{}`), true
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil || !bytes.HasPrefix(compact.Bytes(), []byte("{")) {
		return json.RawMessage(`{}`), false
	}
	return json.RawMessage(compact.Bytes()), true
}

// Aggregate drains events into a ChatResponse. A transport error, or an error
// event sent by the service, is returned instead of a partial response.
func Aggregate(events iter.Seq2[Event, error], onChunk func(content string)) (*ChatResponse, error) {
	agg := NewStreamAggregator(onChunk)
	for ev, err := range events {
		if err != nil {
			return nil, err
		}
		agg.Apply(ev)
		if agg.streamErr != nil {
			return nil, &TransportError{
				Op:  "read stream",
				Err: &APIError{Type: agg.streamErr.ErrorType, Message: agg.streamErr.Message},
			}
		}
	}
	return agg.Response(), nil
}

// ReadStream decodes and aggregates an event stream.
func ReadStream(ctx context.Context, r io.Reader, onChunk func(content string)) (*ChatResponse, error) {
	return Aggregate(DecodeEvents(ctx, r), onChunk)
}
