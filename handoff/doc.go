// Package handoff provides the tools a supervisor uses to delegate:
//
//   - NewHandoffTool builds the per-worker transfer tool
//     ("transfer_to_<agent>") that routes control to a named worker
//   - NewForwardMessageTool builds "forward_message", which returns a
//     worker's latest reply to the caller verbatim
//   - NormalizeToolName rewrites agent names into provider-safe tool names
//
// The tools act through core.ToolContext actions; the supervisor node
// interprets those actions into routing after the call returns.
package handoff
