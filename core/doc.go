// Package core provides the foundational domain types shared by every layer
// of the module. It defines:
//
//   - Message / ToolCall (the flat conversation transcript, with agent
//     attribution via the Name field)
//   - State (transcript + scratch values threaded through a workflow run)
//   - Command (a node's routing directive: messages to fold in, next node)
//   - Event (the streaming unit emitted while a workflow runs)
//   - ToolContext / Actions (the constrained surface handed to tools, which
//     accumulate handoffs, forwards and state deltas instead of mutating the
//     run state directly)
//
// The package intentionally keeps orchestration concerns (graph stepping,
// agents, model adapters) out of scope so higher layers can depend on small,
// stable types.
package core
