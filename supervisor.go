// Package supervisor builds hierarchical multi-agent workflows: a supervisor
// agent that owns the conversation and delegates to worker agents through
// generated handoff tools. Workers always return control to the supervisor,
// which decides the next step or answers the user.
//
// Basic usage:
//
//	research, _ := agent.New("researcher", m, func(o *agent.Options) {
//		o.Instruction = "You are a world class researcher."
//		o.Tools = []tool.Tool{searchTool}
//	})
//
//	wf, err := supervisor.New([]*agent.Agent{research}, m, func(o *supervisor.Options) {
//		o.Prompt = "You manage a research assistant. Delegate research to it."
//	})
package supervisor

import (
	"fmt"

	"github.com/flowhive/supervisor/agent"
	"github.com/flowhive/supervisor/agentname"
	"github.com/flowhive/supervisor/graph"
	"github.com/flowhive/supervisor/handoff"
	"github.com/flowhive/supervisor/history"
	"github.com/flowhive/supervisor/logging"
	"github.com/flowhive/supervisor/model"
	"github.com/flowhive/supervisor/tool"
)

// OutputMode controls how much of a worker's output is folded back into the
// supervisor's transcript.
type OutputMode = history.Policy

const (
	// OutputModeFullHistory keeps the worker's entire trace, tool calls included.
	OutputModeFullHistory = history.PolicyFullHistory
	// OutputModeLastMessage keeps only the worker's final reply.
	OutputModeLastMessage = history.PolicyLastMessage
)

// Options configure a supervisor workflow.
type Options struct {
	// SupervisorName is the supervisor's agent and node name. Defaults to
	// "supervisor".
	SupervisorName string
	// Prompt is the supervisor's system prompt.
	Prompt string
	// OutputMode selects how much worker output reaches the shared transcript.
	// Defaults to OutputModeLastMessage.
	OutputMode OutputMode
	// AddHandoffMessages keeps the supervisor's handoff tool call and result in
	// the transcript. Defaults to true.
	AddHandoffMessages bool
	// AddHandoffBackMessages appends an explicit transfer-back exchange after
	// each worker turn, making the return of control visible to the model.
	AddHandoffBackMessages bool
	// HandoffToolPrefix overrides the default "transfer_to_" tool name prefix.
	HandoffToolPrefix string
	// IncludeAgentName selects how agent attribution survives the model round
	// trip. Defaults to ModeNone.
	IncludeAgentName agentname.Mode
	// Tools are additional tools available to the supervisor itself.
	Tools []tool.Tool
	// EnableForwardMessage adds the forward_message tool, letting the
	// supervisor return a worker's reply verbatim.
	EnableForwardMessage bool
	// MaxHistoryTokens trims the transcript to a token budget before each
	// supervisor turn. Zero disables trimming.
	MaxHistoryTokens int
	// TokenCounter overrides the tiktoken-based counter used for trimming.
	TokenCounter history.Counter
	// WorkflowName labels the compiled workflow. Defaults to SupervisorName.
	WorkflowName string
	// Checkpointer persists state between runs keyed by thread ID.
	Checkpointer graph.Checkpointer
	// Observer receives run/node lifecycle hooks.
	Observer graph.Observer
	// Logger defaults to NoOp.
	Logger logging.Logger
	// MaxSteps bounds node executions per run. Defaults to 25.
	MaxSteps int
	// MaxIterations bounds the supervisor's tool-call round trips per turn.
	// Defaults to 10.
	MaxIterations int
}

// New assembles and compiles a supervisor workflow over the given workers.
// The supervisor uses m for its own reasoning; workers keep the models they
// were built with.
func New(workers []*agent.Agent, m model.Model, optFns ...func(o *Options)) (*graph.Workflow, error) {
	opts := Options{
		SupervisorName:     "supervisor",
		OutputMode:         OutputModeLastMessage,
		AddHandoffMessages: true,
		Logger:             logging.NoOpLogger{},
		MaxIterations:      10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.WorkflowName == "" {
		opts.WorkflowName = opts.SupervisorName
	}

	if err := validate(workers, m, &opts); err != nil {
		return nil, err
	}

	handoffTools, handoffNames := buildHandoffTools(workers, &opts)

	tools := make([]tool.Tool, 0, len(handoffTools)+len(opts.Tools)+1)
	tools = append(tools, handoffTools...)
	tools = append(tools, opts.Tools...)
	if opts.EnableForwardMessage {
		tools = append(tools, handoff.NewForwardMessageTool(opts.SupervisorName))
	}

	supAgent, err := agent.New(opts.SupervisorName, agentname.WithAgentName(m, opts.IncludeAgentName),
		func(o *agent.Options) {
			o.Instruction = opts.Prompt
			o.Tools = tools
			o.MaxIterations = opts.MaxIterations
			o.Logger = opts.Logger
		})
	if err != nil {
		return nil, err
	}

	var counter history.Counter
	if opts.MaxHistoryTokens > 0 {
		counter = opts.TokenCounter
		if counter == nil {
			counter = history.NewTiktokenCounter(m.Info().Name)
		}
	}

	g := graph.New()

	if err := g.AddNode(&supervisorNode{
		agent:              supAgent,
		addHandoffMessages: opts.AddHandoffMessages,
		handoffToolNames:   handoffNames,
		maxHistoryTokens:   opts.MaxHistoryTokens,
		counter:            counter,
		logger:             opts.Logger,
	}); err != nil {
		return nil, err
	}

	for _, w := range workers {
		node := &workerNode{
			agent:          w,
			outputMode:     opts.OutputMode,
			addHandoffBack: opts.AddHandoffBackMessages,
			supervisorName: opts.SupervisorName,
			logger:         opts.Logger,
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
		if err := g.AddEdge(w.Name(), opts.SupervisorName); err != nil {
			return nil, err
		}
	}

	g.SetEntryPoint(opts.SupervisorName)

	return g.Compile(func(o *graph.CompileOptions) {
		o.Name = opts.WorkflowName
		o.Checkpointer = opts.Checkpointer
		o.Observer = opts.Observer
		o.Logger = opts.Logger
		if opts.MaxSteps > 0 {
			o.MaxSteps = opts.MaxSteps
		}
	})
}

func validate(workers []*agent.Agent, m model.Model, opts *Options) error {
	if len(workers) == 0 {
		return fmt.Errorf("at least one worker agent is required")
	}
	if m == nil {
		return fmt.Errorf("supervisor model must not be nil")
	}
	if !opts.OutputMode.Valid() {
		return fmt.Errorf("invalid output mode %q", opts.OutputMode)
	}
	if !opts.IncludeAgentName.Valid() {
		return fmt.Errorf("invalid agent name mode %q", opts.IncludeAgentName)
	}

	seen := map[string]struct{}{}
	for _, w := range workers {
		name := w.Name()
		if name == "" {
			return fmt.Errorf("worker agent name must not be empty")
		}
		if name == opts.SupervisorName {
			return fmt.Errorf("worker agent %q collides with the supervisor name", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate worker agent name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// buildHandoffTools creates one transfer tool per worker and returns the set
// of generated tool names for transcript filtering.
func buildHandoffTools(workers []*agent.Agent, opts *Options) ([]tool.Tool, map[string]struct{}) {
	tools := make([]tool.Tool, 0, len(workers))
	names := make(map[string]struct{}, len(workers))

	for _, w := range workers {
		worker := w
		t := handoff.NewHandoffTool(worker.Name(), func(o *handoff.Options) {
			if opts.HandoffToolPrefix != "" {
				o.ToolName = opts.HandoffToolPrefix + handoff.NormalizeToolName(worker.Name())
			}
			if worker.Description() != "" {
				o.Description = fmt.Sprintf("Ask agent '%s' for help. %s", worker.Name(), worker.Description())
			}
		})
		tools = append(tools, t)
		names[t.Name()] = struct{}{}
	}

	return tools, names
}
