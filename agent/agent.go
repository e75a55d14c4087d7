package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/logging"
	"github.com/flowhive/supervisor/model"
	"github.com/flowhive/supervisor/tool"
)

// Options configure an Agent.
type Options struct {
	// Description is a short summary of the agent's capabilities, surfaced in
	// handoff tool descriptions.
	Description string
	// Instruction is the system prompt sent with every model request.
	Instruction string
	// Tools the agent may call.
	Tools []tool.Tool
	// MaxIterations bounds tool-call round trips per Respond. Defaults to 10.
	MaxIterations int
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Agent pairs a model with a tool set under a stable name. It is immutable
// after construction and safe for concurrent use.
type Agent struct {
	name          string
	description   string
	instruction   string
	model         model.Model
	tools         map[string]tool.Tool
	toolDefs      []model.ToolDefinition
	maxIterations int
	logger        logging.Logger
}

// New creates an agent with the given name and model.
func New(name string, m model.Model, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		MaxIterations: 10,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, fmt.Errorf("agent name must not be empty")
	}
	if m == nil {
		return nil, fmt.Errorf("agent %q: model must not be nil", name)
	}

	tools := make(map[string]tool.Tool, len(opts.Tools))
	toolDefs := make([]model.ToolDefinition, 0, len(opts.Tools))
	for _, t := range opts.Tools {
		if _, exists := tools[t.Name()]; exists {
			return nil, fmt.Errorf("agent %q: duplicate tool %q", name, t.Name())
		}
		tools[t.Name()] = t
		toolDefs = append(toolDefs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return &Agent{
		name:          name,
		description:   opts.Description,
		instruction:   opts.Instruction,
		model:         m,
		tools:         tools,
		toolDefs:      toolDefs,
		maxIterations: opts.MaxIterations,
		logger:        opts.Logger,
	}, nil
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's capability summary.
func (a *Agent) Description() string { return a.description }

// Respond runs the agent against the current state and returns the messages
// it produced (assistant turns and tool results, all attributed to the agent)
// together with any orchestration actions its tools requested.
//
// The loop ends when the model replies without tool calls, a tool requests a
// handoff or forward, or MaxIterations is reached.
func (a *Agent) Respond(ctx context.Context, state *core.State) ([]core.Message, *core.Actions, error) {
	var produced []core.Message
	actions := &core.Actions{}

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		msg, err := a.generate(ctx, state, produced)
		if err != nil {
			return nil, nil, err
		}
		msg.Name = a.name
		produced = append(produced, msg)

		if !msg.HasToolCalls() {
			return produced, actions, nil
		}

		view := &core.State{
			Messages: append(append([]core.Message{}, state.Messages...), produced...),
			Values:   state.Values,
		}

		for _, call := range msg.ToolCalls {
			result, callActions := a.executeCall(ctx, view, call, actions.StateDelta)
			produced = append(produced, core.NewToolMessage(a.name, call.ID, result))

			// The first handoff of a turn wins; parallel delegation is not
			// supported.
			if callActions.HandoffTo != nil && actions.HandoffTo != nil {
				a.logger.Warn("agent.handoff.ignored",
					"agent", a.name, "kept", *actions.HandoffTo, "ignored", *callActions.HandoffTo)
				callActions.HandoffTo = nil
			}
			actions.Merge(callActions)
		}

		if actions.HandoffTo != nil || actions.Forward != nil {
			return produced, actions, nil
		}
	}

	a.logger.Warn("agent.max_iterations", "agent", a.name, "max_iterations", a.maxIterations)

	return produced, actions, nil
}

// generate performs one model round trip, returning the final (non-partial)
// assistant message.
func (a *Agent) generate(ctx context.Context, state *core.State, produced []core.Message) (core.Message, error) {
	req := model.Request{
		Instructions: a.instruction,
		Messages:     append(append([]core.Message{}, state.Messages...), produced...),
		Tools:        a.toolDefs,
	}

	respCh, errCh := a.model.Generate(ctx, req)

	var final *model.Response
	for resp := range respCh {
		if resp.Partial {
			continue
		}
		r := resp
		final = &r
	}
	if err := <-errCh; err != nil {
		return core.Message{}, fmt.Errorf("agent %q: %w", a.name, err)
	}
	if final == nil {
		return core.Message{}, fmt.Errorf("agent %q: model produced no response", a.name)
	}

	msg := final.Message
	if msg.Role == "" {
		msg.Role = core.RoleAssistant
	}
	return msg, nil
}

// executeCall runs a single tool call and renders its result (or failure)
// into the tool message content the model will see next turn. Deltas staged
// by earlier calls in the same turn are seeded into the context so GetState
// observes them before the node folds them into the shared state.
func (a *Agent) executeCall(ctx context.Context, view *core.State, call core.ToolCall, staged map[string]any) (string, *core.Actions) {
	toolCtx := core.NewToolContext(ctx, call.ID, a.name, view, a.logger)
	for k, v := range staged {
		toolCtx.SetState(k, v)
	}

	t, ok := a.tools[call.Name]
	if !ok {
		a.logger.Warn("agent.tool.unknown", "agent", a.name, "tool", call.Name)
		return fmt.Sprintf("Error: unknown tool %q", call.Name), toolCtx.Actions()
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid tool arguments: %v", err), toolCtx.Actions()
		}
	}

	result, err := t.Call(toolCtx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), toolCtx.Actions()
	}

	return renderResult(result), toolCtx.Actions()
}

func renderResult(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
