package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("rules")
	assert.Equal(t, RoleSystem, sys.Role)

	user := NewUserMessage("hi")
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "hi", user.Content)

	as := NewAssistantMessage("researcher", "done")
	assert.Equal(t, RoleAssistant, as.Role)
	assert.Equal(t, "researcher", as.Name)
	assert.True(t, as.IsAssistant())
	assert.False(t, as.HasToolCalls())

	tm := NewToolMessage("researcher", "call-1", "result")
	assert.Equal(t, RoleTool, tm.Role)
	assert.Equal(t, "call-1", tm.ToolCallID)
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := NewState(NewUserMessage("a"))
	s.Set("k", 1)

	c := s.Clone()
	c.AddMessages(NewUserMessage("b"))
	c.Set("k", 2)

	assert.Len(t, s.Messages, 1)
	v, _ := s.Get("k")
	assert.Equal(t, 1, v)
	assert.Len(t, c.Messages, 2)
}

func TestStateLastMessageFrom(t *testing.T) {
	s := NewState(
		NewUserMessage("q"),
		NewAssistantMessage("alpha", "first"),
		NewAssistantMessage("beta", "other"),
		NewAssistantMessage("alpha", "second"),
	)

	m, ok := s.LastMessageFrom("alpha")
	assert.True(t, ok)
	assert.Equal(t, "second", m.Content)

	_, ok = s.LastMessageFrom("gamma")
	assert.False(t, ok)
}

func TestToolContextActions(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	state := NewState(NewAssistantMessage("alpha", "answer"))

	tc := NewToolContext(ctx, "fc-1", "supervisor", state, nil)
	assert.Equal(t, "run-1", tc.RunID())
	assert.Equal(t, "supervisor", tc.AgentName())
	assert.NoError(t, tc.Validate())

	tc.Handoff("alpha")
	tc.SetState("visits", 3)

	actions := tc.Actions()
	if assert.NotNil(t, actions.HandoffTo) {
		assert.Equal(t, "alpha", *actions.HandoffTo)
	}
	v, ok := tc.GetState("visits")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestToolContextForwardClones(t *testing.T) {
	state := NewState(NewAssistantMessage("alpha", "answer"))
	tc := NewToolContext(context.Background(), "fc-1", "supervisor", state, nil)

	msg, _ := state.LastMessage()
	tc.Forward(msg)

	fwd := tc.Actions().Forward
	if assert.NotNil(t, fwd) {
		assert.Equal(t, "answer", fwd.Content)
		assert.Equal(t, "alpha", fwd.Name)
	}
}

func TestActionsMergeLaterWins(t *testing.T) {
	first := "alpha"
	second := "beta"

	a := &Actions{HandoffTo: &first, StateDelta: map[string]any{"x": 1}}
	a.Merge(&Actions{HandoffTo: &second, StateDelta: map[string]any{"y": 2}})

	assert.Equal(t, "beta", *a.HandoffTo)
	assert.Equal(t, 1, a.StateDelta["x"])
	assert.Equal(t, 2, a.StateDelta["y"])
}
