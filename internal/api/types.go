package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultStopReason is reported when the stream never carried a stop reason.
const DefaultStopReason = "unknown"

var emptyObject = json.RawMessage(`{}`)

// Message is one conversation turn.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// NewTextMessage builds a message whose content is plain text.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Content: TextContent(text)}
}

// NewBlocksMessage builds a message whose content is a sequence of blocks.
func NewBlocksMessage(role Role, blocks ...ContentBlock) Message {
	return Message{Role: role, Content: BlocksContent(blocks...)}
}

// Content is either plain text or an ordered list of content blocks, never both.
// On the wire the text variant is a bare JSON string and the block variant an array.
type Content struct {
	text     string
	blocks   []ContentBlock
	isBlocks bool
}

// TextContent returns the text variant.
func TextContent(text string) Content {
	return Content{text: text}
}

// BlocksContent returns the block variant. The slice is copied.
func BlocksContent(blocks ...ContentBlock) Content {
	cp := make([]ContentBlock, len(blocks))
	copy(cp, blocks)
	return Content{blocks: cp, isBlocks: true}
}

// IsBlocks reports whether c is the block variant.
func (c Content) IsBlocks() bool { return c.isBlocks }

// Text returns the text of the text variant.
func (c Content) Text() (string, bool) {
	if c.isBlocks {
		return "", false
	}
	return c.text, true
}

// Blocks returns a copy of the blocks of the block variant.
func (c Content) Blocks() ([]ContentBlock, bool) {
	if !c.isBlocks {
		return nil, false
	}
	cp := make([]ContentBlock, len(c.blocks))
	copy(cp, c.blocks)
	return cp, true
}

// String renders the content for display: text blocks are concatenated,
// other blocks are summarised.
func (c Content) String() string {
	if !c.isBlocks {
		return c.text
	}
	var buf bytes.Buffer
	for i, b := range c.blocks {
		if i > 0 {
			buf.WriteByte('\n')
		}
		switch v := b.(type) {
		case TextBlock:
			buf.WriteString(v.Text)
		case ToolUseBlock:
			fmt.Fprintf(&buf, "[tool_use %s %s %s]", v.ID, v.Name, v.Input)
		case ToolResultBlock:
			fmt.Fprintf(&buf, "[tool_result %s] %s", v.ToolUseID, v.Content)
		}
	}
	return buf.String()
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	if !c.isBlocks {
		return json.Marshal(c.text)
	}
	raw := make([]json.RawMessage, 0, len(c.blocks))
	for _, b := range c.blocks {
		data, err := marshalBlock(b)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty content")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = TextContent(s)
		return nil
	case '[':
		var raw []wireBlock
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		blocks := make([]ContentBlock, 0, len(raw))
		for _, w := range raw {
			b, err := w.block()
			if err != nil {
				return err
			}
			blocks = append(blocks, b)
		}
		*c = Content{blocks: blocks, isBlocks: true}
		return nil
	default:
		return fmt.Errorf("content must be a string or an array, got %q", trimmed[:1])
	}
}

// ContentBlock is one of TextBlock, ToolUseBlock or ToolResultBlock.
type ContentBlock interface {
	blockType() string
}

// TextBlock carries plain text.
type TextBlock struct {
	Text string
}

func (TextBlock) blockType() string { return "text" }

// ToolUseBlock records a tool invocation requested by the assistant.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
}

func (ToolUseBlock) blockType() string { return "tool_use" }

// ToolResultBlock answers the ToolUseBlock with the same id.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
	IsError   bool
}

func (ToolResultBlock) blockType() string { return "tool_result" }

type wireBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

func (w wireBlock) block() (ContentBlock, error) {
	switch w.Type {
	case "text":
		return TextBlock{Text: w.Text}, nil
	case "tool_use":
		input := w.Input
		if len(input) == 0 {
			input = emptyObject
		}
		return ToolUseBlock{ID: w.ID, Name: w.Name, Input: input}, nil
	case "tool_result":
		var content string
		if len(w.Content) > 0 {
			if err := json.Unmarshal(w.Content, &content); err != nil {
				return nil, fmt.Errorf("tool_result %s: content must be a string: %w", w.ToolUseID, err)
			}
		}
		return ToolResultBlock{ToolUseID: w.ToolUseID, Content: content, IsError: w.IsError}, nil
	default:
		return nil, fmt.Errorf("unsupported content block type %q", w.Type)
	}
}

func marshalBlock(b ContentBlock) ([]byte, error) {
	switch v := b.(type) {
	case TextBlock:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{"text", v.Text})
	case ToolUseBlock:
		input := v.Input
		if len(input) == 0 {
			input = emptyObject
		}
		return json.Marshal(struct {
			Type  string          `json:"type"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}{"tool_use", v.ID, v.Name, input})
	case ToolResultBlock:
		return json.Marshal(struct {
			Type      string `json:"type"`
			ToolUseID string `json:"tool_use_id"`
			Content   string `json:"content"`
			IsError   bool   `json:"is_error,omitempty"`
		}{"tool_result", v.ToolUseID, v.Content, v.IsError})
	default:
		return nil, fmt.Errorf("unsupported content block %T", b)
	}
}

// Tool describes a capability offered to the model.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolCall is a finalized tool invocation decoded from the response.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ChatResponse is the outcome of one round.
type ChatResponse struct {
	Text       string     `json:"text"`
	StopReason string     `json:"stop_reason"`
	ToolCalls  []ToolCall `json:"tool_calls"`
}

// HasToolCalls reports whether the model asked for any tool.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Request is the Messages API request body.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
	Stream    bool      `json:"stream"`
	Tools     []Tool    `json:"tools,omitempty"`
}
