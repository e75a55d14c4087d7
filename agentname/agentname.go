package agentname

import (
	"context"
	"fmt"
	"regexp"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/model"
)

// Mode selects how agent names are attached to assistant messages sent to
// the model.
type Mode string

const (
	// ModeNone leaves messages untouched.
	ModeNone Mode = ""
	// ModeInline embeds the name in tagged content:
	// <name>agent</name><content>text</content>.
	ModeInline Mode = "inline"
	// ModeStructured keeps the name in the message Name field, for providers
	// that support named participants natively.
	ModeStructured Mode = "structured"
)

// Valid reports whether m is a recognized mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModeInline, ModeStructured:
		return true
	}
	return false
}

var inlineRe = regexp.MustCompile(`(?s)^<name>(.*?)</name><content>(.*?)</content>$`)

// FormatInline renders a named message body in the inline tag format.
func FormatInline(name, content string) string {
	return fmt.Sprintf("<name>%s</name><content>%s</content>", name, content)
}

// ParseInline splits inline-tagged content into name and body. Untagged
// content is returned as-is with an empty name.
func ParseInline(content string) (name, body string) {
	m := inlineRe.FindStringSubmatch(content)
	if m == nil {
		return "", content
	}
	return m[1], m[2]
}

// Strip removes inline name tags from content, returning just the body.
func Strip(content string) string {
	_, body := ParseInline(content)
	return body
}

// WithAgentName wraps a model so that agent attribution survives the provider
// round trip in the chosen mode. ModeNone and ModeStructured return the model
// unchanged.
func WithAgentName(m model.Model, mode Mode) model.Model {
	if mode != ModeInline {
		return m
	}
	return &inlineModel{inner: m}
}

// inlineModel rewrites named assistant messages into the inline tag format on
// the way out and parses tags out of completions on the way back.
type inlineModel struct {
	inner model.Model
}

func (m *inlineModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	rewritten := make([]core.Message, len(req.Messages))
	for i, msg := range req.Messages {
		if msg.Role == core.RoleAssistant && msg.Name != "" && msg.Content != "" {
			msg.Content = FormatInline(msg.Name, msg.Content)
		}
		rewritten[i] = msg
	}
	req.Messages = rewritten

	inner, innerErr := m.inner.Generate(ctx, req)

	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for resp := range inner {
			if !resp.Partial {
				if name, body := ParseInline(resp.Message.Content); name != "" {
					resp.Message.Name = name
					resp.Message.Content = body
				}
			}
			out <- resp
		}
		if err := <-innerErr; err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

func (m *inlineModel) Info() model.Info { return m.inner.Info() }
