package history

import (
	"fmt"
	"sync"

	"github.com/flowhive/supervisor/core"
	"github.com/pkoukk/tiktoken-go"
)

// Policy selects which of an agent's produced messages are folded back into
// the shared transcript.
type Policy string

const (
	// PolicyFullHistory keeps every message the agent produced, including
	// intermediate tool calls and results.
	PolicyFullHistory Policy = "full_history"
	// PolicyLastMessage keeps only the agent's final message.
	PolicyLastMessage Policy = "last_message"
)

// Valid reports whether p is a recognized policy.
func (p Policy) Valid() bool {
	return p == PolicyFullHistory || p == PolicyLastMessage
}

// Apply filters an agent's produced messages per the policy. The input slice
// is never mutated.
func Apply(p Policy, msgs []core.Message) []core.Message {
	if p != PolicyLastMessage || len(msgs) <= 1 {
		return msgs
	}
	return msgs[len(msgs)-1:]
}

// Counter estimates the token cost of a text fragment.
type Counter interface {
	Count(text string) (int, error)
}

// encodingFor maps common model names onto tiktoken encodings; unknown models
// fall back to cl100k_base.
var encodingFor = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4o-mini":   "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-4-turbo":   "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

// TiktokenCounter counts tokens with a lazily loaded tiktoken encoding.
type TiktokenCounter struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewTiktokenCounter builds a counter for the given model name.
func NewTiktokenCounter(modelName string) *TiktokenCounter {
	encoding, ok := encodingFor[modelName]
	if !ok {
		encoding = "cl100k_base"
	}
	return &TiktokenCounter{encoding: encoding}
}

// Count implements Counter.
func (c *TiktokenCounter) Count(text string) (int, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(c.encoding)
	})
	if c.err != nil {
		return 0, fmt.Errorf("load encoding %q: %w", c.encoding, c.err)
	}
	return len(c.enc.Encode(text, nil, nil)), nil
}

// Trim drops the oldest non-system messages until the transcript fits the
// token budget. Leading system messages are always kept; the newest suffix
// survives. A budget of zero or less disables trimming.
func Trim(msgs []core.Message, budget int, counter Counter) ([]core.Message, error) {
	if budget <= 0 || len(msgs) == 0 {
		return msgs, nil
	}

	systemEnd := 0
	for systemEnd < len(msgs) && msgs[systemEnd].Role == core.RoleSystem {
		systemEnd++
	}

	costs := make([]int, len(msgs))
	total := 0
	for i, m := range msgs {
		n, err := counter.Count(m.Content)
		if err != nil {
			return nil, err
		}
		costs[i] = n
		total += n
	}
	if total <= budget {
		return msgs, nil
	}

	// Drop from the oldest non-system message forward.
	start := systemEnd
	for start < len(msgs)-1 && total > budget {
		total -= costs[start]
		start++
	}

	trimmed := make([]core.Message, 0, systemEnd+len(msgs)-start)
	trimmed = append(trimmed, msgs[:systemEnd]...)
	trimmed = append(trimmed, msgs[start:]...)
	return trimmed, nil
}
