package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/logging"
)

// End is the sentinel node name that terminates a run.
const End = "__end__"

// ErrMaxSteps is returned (wrapped) when a run exceeds its step budget,
// usually indicating a routing loop between nodes.
var ErrMaxSteps = errors.New("maximum workflow steps exceeded")

// Node is a unit of execution within a workflow. Run receives the shared
// state and returns a Command describing the messages to fold in and,
// optionally, a dynamic routing target overriding the node's static edge.
type Node interface {
	Name() string
	Run(ctx context.Context, state *core.State) (*core.Command, error)
}

// Checkpointer persists run state between steps and across runs, keyed by a
// caller-chosen thread ID. Durable implementations live outside this module;
// package checkpoint ships an in-memory one.
type Checkpointer interface {
	Get(threadID string) (*core.State, bool, error)
	Put(threadID string, state *core.State) error
}

// Observer receives node lifecycle notifications during a run. The contexts
// returned by the start hooks are threaded into the corresponding work and
// end hooks, which lets implementations attach spans or deadlines.
type Observer interface {
	OnRunStart(ctx context.Context, runID, workflow string) context.Context
	OnRunEnd(ctx context.Context, runID string, err error)
	OnNodeStart(ctx context.Context, runID, node string) context.Context
	OnNodeEnd(ctx context.Context, runID, node string, err error)
}

// Graph is a mutable workflow topology under construction. It is not safe
// for concurrent mutation; build it fully, then Compile.
type Graph struct {
	nodes map[string]Node
	edges map[string]string
	entry string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[string]string),
	}
}

// AddNode registers a node under its own name.
func (g *Graph) AddNode(n Node) error {
	name := n.Name()
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if name == End {
		return fmt.Errorf("node name %q is reserved", End)
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("node %q already registered", name)
	}
	g.nodes[name] = n
	return nil
}

// AddEdge declares the static successor followed when a node's Command does
// not name a dynamic target. A node has at most one static edge.
func (g *Graph) AddEdge(from, to string) error {
	if _, exists := g.edges[from]; exists {
		return fmt.Errorf("node %q already has an outgoing edge", from)
	}
	g.edges[from] = to
	return nil
}

// SetEntryPoint names the node that receives the initial input.
func (g *Graph) SetEntryPoint(name string) { g.entry = name }

// CompileOptions configures workflow compilation.
type CompileOptions struct {
	// Name labels the workflow in events, logs and traces.
	Name string
	// Checkpointer persists state snapshots between steps. Nil disables
	// persistence; runs are then purely in-memory.
	Checkpointer Checkpointer
	// Observer receives run/node lifecycle hooks.
	Observer Observer
	// Logger defaults to NoOp.
	Logger logging.Logger
	// MaxSteps bounds node executions per run. Defaults to 25.
	MaxSteps int
	// EventBufferSize sets channel buffering for streamed events.
	EventBufferSize int
}

// Compile validates the topology and freezes it into an executable Workflow.
func (g *Graph) Compile(optFns ...func(o *CompileOptions)) (*Workflow, error) {
	opts := CompileOptions{
		Name:            "workflow",
		Logger:          logging.NoOpLogger{},
		MaxSteps:        25,
		EventBufferSize: 100,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(g.nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	if g.entry == "" {
		return nil, fmt.Errorf("entry point not set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("entry point %q is not a registered node", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("edge source %q is not a registered node", from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("edge target %q is not a registered node", to)
			}
		}
	}

	nodes := make(map[string]Node, len(g.nodes))
	for name, n := range g.nodes {
		nodes[name] = n
	}
	edges := make(map[string]string, len(g.edges))
	for from, to := range g.edges {
		edges[from] = to
	}

	return &Workflow{
		name:            opts.Name,
		nodes:           nodes,
		edges:           edges,
		entry:           g.entry,
		checkpointer:    opts.Checkpointer,
		observer:        opts.Observer,
		logger:          opts.Logger,
		maxSteps:        opts.MaxSteps,
		eventBufferSize: opts.EventBufferSize,
	}, nil
}
