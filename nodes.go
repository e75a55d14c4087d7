package supervisor

import (
	"context"

	"github.com/flowhive/supervisor/agent"
	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/graph"
	"github.com/flowhive/supervisor/handoff"
	"github.com/flowhive/supervisor/history"
	"github.com/flowhive/supervisor/logging"
)

// supervisorNode runs the supervisor agent and routes on the orchestration
// actions its tools requested: handoff to a worker, forward a worker's reply,
// or end the run with the supervisor's own answer.
type supervisorNode struct {
	agent              *agent.Agent
	addHandoffMessages bool
	handoffToolNames   map[string]struct{}
	maxHistoryTokens   int
	counter            history.Counter
	logger             logging.Logger
}

func (n *supervisorNode) Name() string { return n.agent.Name() }

func (n *supervisorNode) Run(ctx context.Context, state *core.State) (*core.Command, error) {
	if n.maxHistoryTokens > 0 {
		trimmed, err := history.Trim(state.Messages, n.maxHistoryTokens, n.counter)
		if err != nil {
			return nil, err
		}
		state.Messages = trimmed
	}

	produced, actions, err := n.agent.Respond(ctx, state)
	if err != nil {
		return nil, err
	}
	applyStateDelta(state, actions)

	if actions.Forward != nil {
		n.logger.Info("supervisor.forward", "source_agent", actions.Forward.Name)
		// The forwarded reply becomes the run's final message, re-attributed
		// verbatim rather than re-synthesized.
		return &core.Command{
			Goto:   graph.End,
			Update: append(produced, actions.Forward.Clone()),
		}, nil
	}

	if actions.HandoffTo != nil {
		target := *actions.HandoffTo
		n.logger.Info("supervisor.handoff", "to_agent", target)
		update := produced
		if !n.addHandoffMessages {
			update = n.stripHandoffMessages(produced)
		}
		return &core.Command{Goto: target, Update: update}, nil
	}

	return &core.Command{Goto: graph.End, Update: produced}, nil
}

// stripHandoffMessages removes transfer tool calls and their results from the
// supervisor's output so the transcript reads as if control moved silently.
func (n *supervisorNode) stripHandoffMessages(msgs []core.Message) []core.Message {
	handoffCallIDs := map[string]struct{}{}
	kept := make([]core.Message, 0, len(msgs))

	for _, m := range msgs {
		if m.Role == core.RoleAssistant && m.HasToolCalls() {
			var remaining []core.ToolCall
			for _, tc := range m.ToolCalls {
				if _, isHandoff := n.handoffToolNames[tc.Name]; isHandoff {
					handoffCallIDs[tc.ID] = struct{}{}
					continue
				}
				remaining = append(remaining, tc)
			}
			if len(remaining) == 0 && m.Content == "" {
				continue
			}
			m.ToolCalls = remaining
			kept = append(kept, m)
			continue
		}
		if m.Role == core.RoleTool {
			if _, isHandoff := handoffCallIDs[m.ToolCallID]; isHandoff {
				continue
			}
		}
		kept = append(kept, m)
	}

	return kept
}

// workerNode runs one worker agent, filters its output per the configured
// policy, and lets the static edge return control to the supervisor.
type workerNode struct {
	agent          *agent.Agent
	outputMode     history.Policy
	addHandoffBack bool
	supervisorName string
	logger         logging.Logger
}

func (n *workerNode) Name() string { return n.agent.Name() }

func (n *workerNode) Run(ctx context.Context, state *core.State) (*core.Command, error) {
	produced, actions, err := n.agent.Respond(ctx, state)
	if err != nil {
		return nil, err
	}
	applyStateDelta(state, actions)

	out := history.Apply(n.outputMode, produced)

	if n.addHandoffBack {
		out = append(out, n.handoffBackMessages()...)
	}

	n.logger.Debug("worker.done", "agent", n.agent.Name(), "messages", len(out))

	return &core.Command{Update: out}, nil
}

// handoffBackMessages synthesizes the tool exchange that makes the return of
// control to the supervisor explicit in the transcript.
func (n *workerNode) handoffBackMessages() []core.Message {
	callID := core.NewID()
	toolName := "transfer_back_to_" + handoff.NormalizeToolName(n.supervisorName)

	back := core.NewAssistantMessage(n.agent.Name(), "Transferring back to "+n.supervisorName)
	back.ToolCalls = []core.ToolCall{{ID: callID, Name: toolName, Arguments: "{}"}}

	result := core.NewToolMessage(n.agent.Name(), callID, "Successfully transferred back to "+n.supervisorName)

	return []core.Message{back, result}
}

func applyStateDelta(state *core.State, actions *core.Actions) {
	for k, v := range actions.StateDelta {
		state.Set(k, v)
	}
}
