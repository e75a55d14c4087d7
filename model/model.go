package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowhive/supervisor/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Messages     []core.Message   `json:"messages"`     // Conversation transcript
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
//
// Two modes are supported and may be combined: canned completions keyed by
// the latest user/tool text, and a FIFO script of full responses consumed one
// per Generate call. Scripted responses take precedence, which makes
// deterministic routing tests (tool call turn, then plain completion turn)
// straightforward.
type MockModel struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	script    []Response
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// EnqueueResponse appends a full response to the FIFO script.
func (m *MockModel) EnqueueResponse(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// EnqueueText scripts a plain assistant completion.
func (m *MockModel) EnqueueText(text string) {
	m.EnqueueResponse(Response{
		Message:      core.Message{Role: core.RoleAssistant, Content: text},
		FinishReason: "stop",
	})
}

// EnqueueToolCall scripts an assistant turn requesting a single tool call.
func (m *MockModel) EnqueueToolCall(name, arguments string) {
	m.EnqueueResponse(Response{
		Message: core.Message{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{{
				ID:        core.NewID(),
				Name:      name,
				Arguments: arguments,
			}},
		},
		FinishReason: "tool_calls",
	})
}

// Generate implements Model; pops the script head if present, else answers
// from the canned map keyed on the latest message text.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if scripted, ok := m.popScript(); ok {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
			case respCh <- scripted:
			}
			return
		}

		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		inputText := req.Messages[len(req.Messages)-1].Content

		m.mu.Lock()
		full := m.responses[inputText]
		m.mu.Unlock()

		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{
			Message:      core.Message{Role: core.RoleAssistant, Content: full},
			FinishReason: "stop",
		}:
		}
	}()

	return respCh, errCh
}

func (m *MockModel) popScript() (Response, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.script) == 0 {
		return Response{}, false
	}
	head := m.script[0]
	m.script = m.script[1:]
	return head, true
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
