// Package graph provides the directed-graph surface the supervisor layer
// assembles against: node registration, static edges, compile-time topology
// validation and a stepping loop with pluggable state persistence.
//
// Core pieces:
//
//   - Graph (mutable topology builder) and Compile, which freezes it into an
//     immutable Workflow
//   - Node, the unit of execution; its Command output selects the next node
//     dynamically or defers to the static edge
//   - Workflow.Invoke / Workflow.Stream for synchronous and event-channel runs
//   - Checkpointer for thread-keyed state persistence between runs
//   - Observer for run/node lifecycle hooks (tracing, metrics)
//
// The supervisor layer treats this package as its execution collaborator and
// only performs declarative assembly on top of it.
package graph
