package graph

import (
	"context"
	"fmt"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/logging"
)

// RunOptions configure a single workflow invocation.
type RunOptions struct {
	// ThreadID selects the checkpointed conversation to resume. Empty means a
	// fresh, non-persisted run even when a checkpointer is configured.
	ThreadID string
}

// Workflow is a compiled, immutable graph ready for execution. It is safe for
// concurrent use; each run owns its own state.
type Workflow struct {
	name            string
	nodes           map[string]Node
	edges           map[string]string
	entry           string
	checkpointer    Checkpointer
	observer        Observer
	logger          logging.Logger
	maxSteps        int
	eventBufferSize int
}

// Name returns the workflow label used in events, logs and traces.
func (w *Workflow) Name() string { return w.name }

// Invoke runs the workflow to completion with the given input messages and
// returns the final state.
func (w *Workflow) Invoke(ctx context.Context, msgs []core.Message, optFns ...func(o *RunOptions)) (*core.State, error) {
	var opts RunOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return w.run(ctx, msgs, opts, nil)
}

// Stream runs the workflow asynchronously, emitting one event per message a
// node folds into the state. The error channel delivers at most one error and
// both channels are closed when the run ends.
func (w *Workflow) Stream(ctx context.Context, msgs []core.Message, optFns ...func(o *RunOptions)) (<-chan core.Event, <-chan error) {
	var opts RunOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	events := make(chan core.Event, w.eventBufferSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errCh)

		if _, err := w.run(ctx, msgs, opts, events); err != nil {
			errCh <- err
		}
	}()

	return events, errCh
}

// run is the shared stepping loop behind Invoke and Stream.
func (w *Workflow) run(ctx context.Context, msgs []core.Message, opts RunOptions, events chan<- core.Event) (*core.State, error) {
	runID := core.NewID()
	ctx = core.WithRunID(ctx, runID)

	state, err := w.loadState(opts.ThreadID)
	if err != nil {
		return nil, err
	}
	state.AddMessages(msgs...)

	if w.observer != nil {
		ctx = w.observer.OnRunStart(ctx, runID, w.name)
	}

	w.logger.Info("workflow.run.start", "workflow", w.name, "run_id", runID, "entry", w.entry)

	final, runErr := w.step(ctx, runID, state, opts, events)

	if w.observer != nil {
		w.observer.OnRunEnd(ctx, runID, runErr)
	}
	if runErr != nil {
		w.logger.Error("workflow.run.error", "workflow", w.name, "run_id", runID, "error", runErr.Error())
		return nil, runErr
	}

	w.logger.Info("workflow.run.end", "workflow", w.name, "run_id", runID, "messages", len(final.Messages))

	return final, nil
}

func (w *Workflow) step(ctx context.Context, runID string, state *core.State, opts RunOptions, events chan<- core.Event) (*core.State, error) {
	current := w.entry

	for steps := 0; current != End; steps++ {
		if steps >= w.maxSteps {
			return nil, fmt.Errorf("workflow %q run %s after %d steps: %w", w.name, runID, steps, ErrMaxSteps)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node, ok := w.nodes[current]
		if !ok {
			return nil, fmt.Errorf("route to unknown node %q", current)
		}

		nodeCtx := ctx
		if w.observer != nil {
			nodeCtx = w.observer.OnNodeStart(ctx, runID, current)
		}
		w.logger.Debug("workflow.node.start", "workflow", w.name, "run_id", runID, "node", current)

		cmd, err := node.Run(nodeCtx, state)

		if w.observer != nil {
			w.observer.OnNodeEnd(nodeCtx, runID, current, err)
		}
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", current, err)
		}
		if cmd == nil {
			cmd = &core.Command{}
		}

		for _, msg := range cmd.Update {
			state.AddMessages(msg)
			if events != nil {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case events <- core.NewEvent(runID, current, msg):
				}
			}
		}

		if err := w.saveState(opts.ThreadID, state); err != nil {
			return nil, err
		}

		next := cmd.Goto
		if next == "" {
			next = w.edges[current]
		}
		if next == "" {
			next = End
		}
		if next != End {
			if _, ok := w.nodes[next]; !ok {
				return nil, fmt.Errorf("node %q routed to unknown node %q", current, next)
			}
		}

		w.logger.Debug("workflow.node.end", "workflow", w.name, "run_id", runID, "node", current, "next", next)

		current = next
	}

	return state, nil
}

func (w *Workflow) loadState(threadID string) (*core.State, error) {
	if w.checkpointer == nil || threadID == "" {
		return core.NewState(), nil
	}
	saved, ok, err := w.checkpointer.Get(threadID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %q: %w", threadID, err)
	}
	if !ok {
		return core.NewState(), nil
	}
	return saved.Clone(), nil
}

func (w *Workflow) saveState(threadID string, state *core.State) error {
	if w.checkpointer == nil || threadID == "" {
		return nil
	}
	if err := w.checkpointer.Put(threadID, state.Clone()); err != nil {
		return fmt.Errorf("save checkpoint %q: %w", threadID, err)
	}
	return nil
}
