package openai

import (
	"testing"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ model.Model = (*Model)(nil)

func TestBuildMessagesCarriesAgentNames(t *testing.T) {
	req := model.Request{
		Instructions: "you are a supervisor",
		Messages: []core.Message{
			core.NewUserMessage("how?"),
			core.NewAssistantMessage("researcher", "found it"),
		},
	}

	msgs := buildMessages(req)
	require.Len(t, msgs, 3)

	assert.NotNil(t, msgs[0].OfSystem)

	require.NotNil(t, msgs[1].OfUser)
	assert.Empty(t, msgs[1].OfUser.Name.Value, "plain user messages carry no participant name")

	require.NotNil(t, msgs[2].OfAssistant)
	assert.Equal(t, "researcher", msgs[2].OfAssistant.Name.Value)
	assert.Equal(t, "found it", msgs[2].OfAssistant.Content.OfString.Value)
}

func TestBuildMessagesNamedUser(t *testing.T) {
	named := core.NewUserMessage("ping")
	named.Name = "operator"

	msgs := buildMessages(model.Request{Messages: []core.Message{named}})
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].OfUser)
	assert.Equal(t, "operator", msgs[0].OfUser.Name.Value)
	assert.Equal(t, "ping", msgs[0].OfUser.Content.OfString.Value)
}

func TestBuildMessagesToolCallTurnKeepsName(t *testing.T) {
	call := core.Message{
		Role: core.RoleAssistant,
		Name: "supervisor",
		ToolCalls: []core.ToolCall{
			{ID: "fc-1", Name: "transfer_to_alpha", Arguments: "{}"},
		},
	}
	result := core.NewToolMessage("supervisor", "fc-1", "transferred")

	msgs := buildMessages(model.Request{Messages: []core.Message{call, result}})
	require.Len(t, msgs, 2)

	assistant := msgs[0].OfAssistant
	require.NotNil(t, assistant)
	assert.Equal(t, "supervisor", assistant.Name.Value)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "transfer_to_alpha", assistant.ToolCalls[0].Function.Name)

	require.NotNil(t, msgs[1].OfTool)
	assert.Equal(t, "fc-1", msgs[1].OfTool.ToolCallID)
}

func TestBuildMessagesUnnamedAssistantUsesHelper(t *testing.T) {
	msgs := buildMessages(model.Request{Messages: []core.Message{
		{Role: core.RoleAssistant, Content: "plain"},
	}})
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].OfAssistant)
	assert.Empty(t, msgs[0].OfAssistant.Name.Value)
}
