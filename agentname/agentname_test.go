package agentname

import (
	"context"
	"testing"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeValid(t *testing.T) {
	assert.True(t, ModeNone.Valid())
	assert.True(t, ModeInline.Valid())
	assert.True(t, ModeStructured.Valid())
	assert.False(t, Mode("bogus").Valid())
}

func TestFormatAndParseInline(t *testing.T) {
	tagged := FormatInline("researcher", "the answer")
	assert.Equal(t, "<name>researcher</name><content>the answer</content>", tagged)

	name, body := ParseInline(tagged)
	assert.Equal(t, "researcher", name)
	assert.Equal(t, "the answer", body)
}

func TestParseInlineUntagged(t *testing.T) {
	name, body := ParseInline("plain text")
	assert.Empty(t, name)
	assert.Equal(t, "plain text", body)
}

func TestParseInlineMultiline(t *testing.T) {
	tagged := FormatInline("a", "line one\nline two")
	name, body := ParseInline(tagged)
	assert.Equal(t, "a", name)
	assert.Equal(t, "line one\nline two", body)
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "x", Strip(FormatInline("n", "x")))
	assert.Equal(t, "x", Strip("x"))
}

// captureModel records the request it receives and replies with a fixed response.
type captureModel struct {
	req   model.Request
	reply model.Response
}

func (m *captureModel) Generate(_ context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.req = req
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	out <- m.reply
	close(out)
	close(errCh)
	return out, errCh
}

func (m *captureModel) Info() model.Info { return model.Info{Name: "capture"} }

func TestWithAgentNamePassthroughModes(t *testing.T) {
	inner := &captureModel{}
	assert.Same(t, model.Model(inner), WithAgentName(inner, ModeNone))
	assert.Same(t, model.Model(inner), WithAgentName(inner, ModeStructured))
}

func TestWithAgentNameInlineRoundTrip(t *testing.T) {
	inner := &captureModel{
		reply: model.Response{
			Message: core.Message{
				Role:    core.RoleAssistant,
				Content: FormatInline("worker", "result"),
			},
			FinishReason: "stop",
		},
	}

	wrapped := WithAgentName(inner, ModeInline)

	respCh, errCh := wrapped.Generate(context.Background(), model.Request{
		Messages: []core.Message{
			core.NewUserMessage("q"),
			core.NewAssistantMessage("worker", "earlier reply"),
		},
	})

	var final model.Response
	for resp := range respCh {
		final = resp
	}
	require.NoError(t, <-errCh)

	// Outbound: named assistant content was tagged.
	require.Len(t, inner.req.Messages, 2)
	assert.Equal(t, "q", inner.req.Messages[0].Content)
	assert.Equal(t, FormatInline("worker", "earlier reply"), inner.req.Messages[1].Content)

	// Inbound: tags parsed back into name + body.
	assert.Equal(t, "worker", final.Message.Name)
	assert.Equal(t, "result", final.Message.Content)
}
