package supervisor

import (
	"context"
	"testing"

	"github.com/flowhive/supervisor/agent"
	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/model"
	"github.com/flowhive/supervisor/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorker(t *testing.T, name string, m model.Model, tools ...tool.Tool) *agent.Agent {
	t.Helper()
	w, err := agent.New(name, m, func(o *agent.Options) { o.Tools = tools })
	require.NoError(t, err)
	return w
}

func TestNewValidation(t *testing.T) {
	m := model.NewMockModel("sup")
	worker := newWorker(t, "alpha", model.NewMockModel("w"))

	_, err := New(nil, m)
	assert.Error(t, err, "workers required")

	_, err = New([]*agent.Agent{worker}, nil)
	assert.Error(t, err, "model required")

	_, err = New([]*agent.Agent{worker, worker}, m)
	assert.Error(t, err, "duplicate worker names")

	_, err = New([]*agent.Agent{newWorker(t, "supervisor", model.NewMockModel("w"))}, m)
	assert.Error(t, err, "worker must not collide with supervisor name")

	_, err = New([]*agent.Agent{worker}, m, func(o *Options) { o.OutputMode = "everything" })
	assert.Error(t, err, "invalid output mode")

	_, err = New([]*agent.Agent{worker}, m, func(o *Options) { o.IncludeAgentName = "bogus" })
	assert.Error(t, err, "invalid agent name mode")
}

func TestDelegationRoundTrip(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueToolCall("transfer_to_math_expert", `{}`)
	supModel.EnqueueText("The answer is 4.")

	workerModel := model.NewMockModel("worker")
	workerModel.EnqueueText("4")

	mathExpert := newWorker(t, "math_expert", workerModel)

	wf, err := New([]*agent.Agent{mathExpert}, supModel)
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("what is 2+2?")})
	require.NoError(t, err)

	// user, handoff call, handoff result, worker reply, supervisor answer
	require.Len(t, state.Messages, 5)

	assert.True(t, state.Messages[1].HasToolCalls())
	assert.Equal(t, "transfer_to_math_expert", state.Messages[1].ToolCalls[0].Name)
	assert.Equal(t, core.RoleTool, state.Messages[2].Role)
	assert.Equal(t, "4", state.Messages[3].Content)
	assert.Equal(t, "math_expert", state.Messages[3].Name)
	assert.Equal(t, "The answer is 4.", state.Messages[4].Content)
	assert.Equal(t, "supervisor", state.Messages[4].Name)
}

func TestSupervisorAnswersDirectly(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueText("I can answer that myself.")

	wf, err := New([]*agent.Agent{newWorker(t, "alpha", model.NewMockModel("w"))}, supModel)
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("hello")})
	require.NoError(t, err)

	require.Len(t, state.Messages, 2)
	assert.Equal(t, "I can answer that myself.", state.Messages[1].Content)
}

func TestOutputModeControlsWorkerTrace(t *testing.T) {
	echo := tool.NewFunctionTool("echo", "Echo input",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"text": map[string]any{"type": "string"}},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["text"], nil
		})

	run := func(mode OutputMode) *core.State {
		supModel := model.NewMockModel("sup")
		supModel.EnqueueToolCall("transfer_to_alpha", `{}`)
		supModel.EnqueueText("done")

		workerModel := model.NewMockModel("worker")
		workerModel.EnqueueToolCall("echo", `{"text": "hi"}`)
		workerModel.EnqueueText("final worker reply")

		wf, err := New([]*agent.Agent{newWorker(t, "alpha", workerModel, echo)}, supModel,
			func(o *Options) { o.OutputMode = mode })
		require.NoError(t, err)

		state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("go")})
		require.NoError(t, err)
		return state
	}

	full := run(OutputModeFullHistory)
	last := run(OutputModeLastMessage)

	// Full history keeps the worker's tool call and result; last message drops them.
	assert.Len(t, full.Messages, 7)
	assert.Len(t, last.Messages, 5)

	lastWorkerMsg, ok := last.LastMessageFrom("alpha")
	require.True(t, ok)
	assert.Equal(t, "final worker reply", lastWorkerMsg.Content)
}

func TestAddHandoffBackMessages(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueToolCall("transfer_to_alpha", `{}`)
	supModel.EnqueueText("done")

	workerModel := model.NewMockModel("worker")
	workerModel.EnqueueText("worker reply")

	wf, err := New([]*agent.Agent{newWorker(t, "alpha", workerModel)}, supModel,
		func(o *Options) { o.AddHandoffBackMessages = true })
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("go")})
	require.NoError(t, err)

	// user, handoff call, handoff result, worker reply, transfer-back call,
	// transfer-back result, supervisor answer
	require.Len(t, state.Messages, 7)

	back := state.Messages[4]
	assert.Equal(t, "alpha", back.Name)
	require.True(t, back.HasToolCalls())
	assert.Equal(t, "transfer_back_to_supervisor", back.ToolCalls[0].Name)

	result := state.Messages[5]
	assert.Equal(t, core.RoleTool, result.Role)
	assert.Equal(t, back.ToolCalls[0].ID, result.ToolCallID)
}

func TestHandoffMessagesCanBeStripped(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueToolCall("transfer_to_alpha", `{}`)
	supModel.EnqueueText("done")

	workerModel := model.NewMockModel("worker")
	workerModel.EnqueueText("worker reply")

	wf, err := New([]*agent.Agent{newWorker(t, "alpha", workerModel)}, supModel,
		func(o *Options) { o.AddHandoffMessages = false })
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("go")})
	require.NoError(t, err)

	// user, worker reply, supervisor answer
	require.Len(t, state.Messages, 3)
	assert.Equal(t, "worker reply", state.Messages[1].Content)
}

func TestForwardMessageEndsRunVerbatim(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueToolCall("transfer_to_expert", `{}`)
	supModel.EnqueueToolCall("forward_message", `{"from_agent": "expert"}`)

	workerModel := model.NewMockModel("worker")
	workerModel.EnqueueText("Flat white, one sugar.")

	wf, err := New([]*agent.Agent{newWorker(t, "expert", workerModel)}, supModel,
		func(o *Options) { o.EnableForwardMessage = true })
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("coffee?")})
	require.NoError(t, err)

	last, ok := state.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "Flat white, one sugar.", last.Content)
	assert.Equal(t, "expert", last.Name, "forwarded message keeps the worker's attribution")
}

func TestHandoffToolPrefix(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueToolCall("delegate_to_alpha", `{}`)
	supModel.EnqueueText("done")

	workerModel := model.NewMockModel("worker")
	workerModel.EnqueueText("worker reply")

	wf, err := New([]*agent.Agent{newWorker(t, "alpha", workerModel)}, supModel,
		func(o *Options) { o.HandoffToolPrefix = "delegate_to_" })
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("go")})
	require.NoError(t, err)

	assert.Equal(t, "delegate_to_alpha", state.Messages[1].ToolCalls[0].Name)
}

func TestParallelHandoffsFirstTargetWins(t *testing.T) {
	supModel := model.NewMockModel("sup")
	// One assistant turn requesting two transfers at once.
	supModel.EnqueueResponse(model.Response{
		Message: core.Message{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: core.NewID(), Name: "transfer_to_alpha", Arguments: "{}"},
				{ID: core.NewID(), Name: "transfer_to_beta", Arguments: "{}"},
			},
		},
		FinishReason: "tool_calls",
	})
	supModel.EnqueueText("done")

	alphaModel := model.NewMockModel("alpha-model")
	alphaModel.EnqueueText("alpha reply")

	// No script: if beta ever ran it would still answer and show up below.
	betaModel := model.NewMockModel("beta-model")

	wf, err := New([]*agent.Agent{
		newWorker(t, "alpha", alphaModel),
		newWorker(t, "beta", betaModel),
	}, supModel)
	require.NoError(t, err)

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("go")})
	require.NoError(t, err)

	alphaMsg, ok := state.LastMessageFrom("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha reply", alphaMsg.Content)

	_, ok = state.LastMessageFrom("beta")
	assert.False(t, ok, "only the first transfer target runs")

	// user, two-call turn, two tool results, alpha reply, supervisor answer
	assert.Len(t, state.Messages, 6)
}

func TestStreamEmitsDelegationEvents(t *testing.T) {
	supModel := model.NewMockModel("sup")
	supModel.EnqueueToolCall("transfer_to_alpha", `{}`)
	supModel.EnqueueText("done")

	workerModel := model.NewMockModel("worker")
	workerModel.EnqueueText("worker reply")

	wf, err := New([]*agent.Agent{newWorker(t, "alpha", workerModel)}, supModel)
	require.NoError(t, err)

	events, errCh := wf.Stream(context.Background(), []core.Message{core.NewUserMessage("go")})

	var nodes []string
	for ev := range events {
		nodes = append(nodes, ev.Node)
	}
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"supervisor", "supervisor", "alpha", "supervisor"}, nodes)
}
