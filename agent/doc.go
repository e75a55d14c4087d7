// Package agent implements a tool-calling agent: one named participant that
// turns the shared transcript into a model request, executes any tool calls
// the model asks for, and loops until the model produces a plain reply or a
// tool requests an orchestration action (handoff, forward).
//
// Agents are immutable after construction and safe for concurrent use; every
// message an agent produces is attributed to it via the Message Name field.
package agent
