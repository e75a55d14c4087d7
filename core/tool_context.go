package core

import (
	"context"
	"fmt"

	"github.com/flowhive/supervisor/logging"
)

// Actions encodes orchestration side-effects a tool requests while running.
// Fields are pointers so absence can be distinguished from zero values; the
// node executing the tool interprets them after the call returns.
type Actions struct {
	// HandoffTo names the agent node that should receive control next.
	HandoffTo *string
	// Forward carries a prior message to be returned to the caller verbatim,
	// ending the run without re-synthesis.
	Forward *Message
	// StateDelta holds scratch-state mutations to merge into the run state.
	StateDelta map[string]any
}

// Merge folds other into a, later handoff/forward requests winning.
func (a *Actions) Merge(other *Actions) {
	if other == nil {
		return
	}
	if other.HandoffTo != nil {
		a.HandoffTo = other.HandoffTo
	}
	if other.Forward != nil {
		a.Forward = other.Forward
	}
	if len(other.StateDelta) > 0 {
		if a.StateDelta == nil {
			a.StateDelta = map[string]any{}
		}
		for k, v := range other.StateDelta {
			a.StateDelta[k] = v
		}
	}
}

// ToolContext is the constrained, auditable surface handed to tool
// implementations. Tools read the transcript through it and accumulate
// Actions (handoffs, forwards, state deltas) instead of mutating the run
// state directly.
type ToolContext struct {
	ctx      context.Context
	runID    string
	callID   string
	agent    string
	state    *State
	actions  Actions
	logger   logging.Logger
}

// NewToolContext binds a tool invocation to its run, calling agent and a
// read-only view of the current state.
func NewToolContext(ctx context.Context, callID, agent string, state *State, logger logging.Logger) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{
		ctx:    ctx,
		runID:  RunIDFromContext(ctx),
		callID: callID,
		agent:  agent,
		state:  state,
		logger: logger,
	}
}

// Context returns the ambient cancellation context.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// RunID returns the enclosing workflow run identifier.
func (tc *ToolContext) RunID() string { return tc.runID }

// FunctionCallID correlates the tool execution with the model's request.
func (tc *ToolContext) FunctionCallID() string { return tc.callID }

// AgentName returns the agent on whose behalf the tool runs.
func (tc *ToolContext) AgentName() string { return tc.agent }

// Logger returns the run logger.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// Messages returns the transcript visible at call time.
func (tc *ToolContext) Messages() []Message {
	if tc.state == nil {
		return nil
	}
	return tc.state.Messages
}

// GetState reads a scratch value, staged deltas taking precedence.
func (tc *ToolContext) GetState(key string) (any, bool) {
	if v, ok := tc.actions.StateDelta[key]; ok {
		return v, true
	}
	if tc.state == nil {
		return nil, false
	}
	return tc.state.Get(key)
}

// SetState stages a scratch-state mutation. Staged values are visible to
// GetState on this context immediately but reach the shared run state only
// once the enclosing node applies the accumulated actions.
func (tc *ToolContext) SetState(key string, value any) {
	if tc.actions.StateDelta == nil {
		tc.actions.StateDelta = map[string]any{}
	}
	tc.actions.StateDelta[key] = value
}

// Handoff requests transfer of control to the named agent node.
func (tc *ToolContext) Handoff(target string) {
	tc.actions.HandoffTo = &target
	tc.logger.Info("handoff.requested", "from_agent", tc.agent, "to_agent", target, "function_call_id", tc.callID)
}

// Forward requests that msg be returned to the caller verbatim, ending the run.
func (tc *ToolContext) Forward(msg Message) {
	m := msg.Clone()
	tc.actions.Forward = &m
	tc.logger.Info("forward.requested", "agent", tc.agent, "source_agent", msg.Name, "function_call_id", tc.callID)
}

// Actions returns the side-effects accumulated so far.
func (tc *ToolContext) Actions() *Actions { return &tc.actions }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.ctx == nil || tc.callID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
