package core

import "github.com/google/uuid"

// Conversation roles used throughout the workflow transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single entry in a multi-agent conversation transcript.
//
// Name carries the source-agent label (the structured attribution
// convention). It is empty on user and system messages and set to the
// producing agent's name on assistant and tool messages, so transcripts that
// interleave several agents stay attributable after control transfers.
type Message struct {
	Role       string            `json:"role"`
	Name       string            `json:"name,omitempty"`
	Content    string            `json:"content,omitempty"`
	ToolCalls  []ToolCall        `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ToolCall describes a tool invocation requested by a model.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (JSON)
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message attributed to the named agent.
func NewAssistantMessage(name, content string) Message {
	return Message{Role: RoleAssistant, Name: name, Content: content}
}

// NewToolMessage records the outcome of a tool call, correlated by call ID.
func NewToolMessage(name, callID, content string) Message {
	return Message{Role: RoleTool, Name: name, ToolCallID: callID, Content: content}
}

// NewID generates a unique identifier for messages, tool calls and runs.
func NewID() string { return uuid.NewString() }

// IsAssistant reports whether the message was produced by an agent.
func (m Message) IsAssistant() bool { return m.Role == RoleAssistant }

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a copy with independent tool call and metadata storage.
func (m Message) Clone() Message {
	c := m
	if len(m.ToolCalls) > 0 {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(c.ToolCalls, m.ToolCalls)
	}
	if len(m.Metadata) > 0 {
		c.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
