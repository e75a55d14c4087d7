// Package model defines the normalized language-model boundary used by
// agents and everything above them.
//
// Core goals:
//
//   - Unify streaming + non-streaming generation behind a single channel
//     based interface
//   - Normalize tool/function declarations (ToolDefinition) and responses
//     (Response with partial chunks, finish reason, token usage)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate deterministic testing via MockModel's scripted turns
//
// Providers (model/openai, model/anthropic) implement the Model interface so
// higher layers remain decoupled from vendor SDKs.
package model
