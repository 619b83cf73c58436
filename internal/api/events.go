package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/quocvuong92/johnathan-agent/internal/logging"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

// EventType is the "type" discriminator of a stream payload.
type EventType string

const (
	EventContentBlockStart EventType = "content_block_start"
	EventContentBlockDelta EventType = "content_block_delta"
	EventContentBlockStop  EventType = "content_block_stop"
	EventMessageDelta      EventType = "message_delta"
	EventError             EventType = "error"
)

// Block and delta kinds used by the aggregator.
const (
	BlockText      = "text"
	BlockToolUse   = "tool_use"
	DeltaText      = "text_delta"
	DeltaInputJSON = "input_json_delta"
)

// ErrUnknownEvent is returned by ParseEvent for payloads of a type the decoder does not model.
var ErrUnknownEvent = errors.New("unknown stream event")

// Event is a decoded stream payload.
type Event interface {
	Type() EventType
}

// BlockInfo is the content_block of a content_block_start event.
type BlockInfo struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ContentBlockStart opens a content block.
type ContentBlockStart struct {
	Index int       `json:"index"`
	Block BlockInfo `json:"content_block"`
}

func (ContentBlockStart) Type() EventType { return EventContentBlockStart }

// Delta is the payload of a content_block_delta event.
type Delta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
}

// ContentBlockDelta carries a fragment of the open block.
type ContentBlockDelta struct {
	Index int   `json:"index"`
	Delta Delta `json:"delta"`
}

func (ContentBlockDelta) Type() EventType { return EventContentBlockDelta }

// ContentBlockStop closes the block at Index.
type ContentBlockStop struct {
	Index int `json:"index"`
}

func (ContentBlockStop) Type() EventType { return EventContentBlockStop }

// MessageDelta carries message-level updates. StopReason is nil when absent.
type MessageDelta struct {
	StopReason *string
}

func (MessageDelta) Type() EventType { return EventMessageDelta }

// StreamError is an error event sent by the service in the middle of a stream.
type StreamError struct {
	ErrorType string
	Message   string
}

func (StreamError) Type() EventType { return EventError }

// ParseEvent decodes one data payload. Payloads of other types yield ErrUnknownEvent.
func ParseEvent(payload []byte) (Event, error) {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Type {
	case EventContentBlockStart:
		var ev ContentBlockStart
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventContentBlockDelta:
		var ev ContentBlockDelta
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventContentBlockStop:
		var ev ContentBlockStop
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventMessageDelta:
		var wire struct {
			Delta struct {
				StopReason *string `json:"stop_reason"`
			} `json:"delta"`
		}
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, err
		}
		return MessageDelta{StopReason: wire.Delta.StopReason}, nil
	case EventError:
		var wire struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, err
		}
		return StreamError{ErrorType: wire.Error.Type, Message: wire.Error.Message}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, envelope.Type)
	}
}

// DecodeEvents reads an event stream line by line and yields typed events.
// Non-data lines and the [DONE] terminator produce nothing; payloads that
// fail to parse are skipped. A read failure ends the sequence with a
// *TransportError. The reader is owned by the sequence while it is iterated.
func DecodeEvents(ctx context.Context, r io.Reader) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		reader := bufio.NewReader(r)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, &TransportError{Op: "read stream", Err: err})
				return
			}

			line, readErr := reader.ReadString('\n')
			if readErr != nil && readErr != io.EOF {
				yield(nil, &TransportError{Op: "read stream", Err: readErr})
				return
			}

			if ev, ok := decodeLine(line); ok {
				if !yield(ev, nil) {
					return
				}
			}

			if readErr == io.EOF {
				return
			}
		}
	}
}

func decodeLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	payload := strings.TrimPrefix(strings.TrimPrefix(line, dataPrefix), " ")
	if payload == doneMarker {
		return nil, false
	}

	ev, err := ParseEvent([]byte(payload))
	if err != nil {
		logging.Debug("Skipping stream payload", logging.Fields{
			"reason":  err.Error(),
			"payload": truncate(payload, 200),
		})
		return nil, false
	}
	return ev, true
}

// ObserveEvents calls fn for every event of seq before passing it on.
func ObserveEvents(seq iter.Seq2[Event, error], fn func(Event)) iter.Seq2[Event, error] {
	if fn == nil {
		return seq
	}
	return func(yield func(Event, error) bool) {
		for ev, err := range seq {
			if err == nil {
				fn(ev)
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...[truncated]"
}
