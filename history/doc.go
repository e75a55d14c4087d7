// Package history controls how much conversation reaches a model:
//
//   - Policy (full_history / last_message) selects how much of a worker's
//     output is folded back into the supervisor transcript
//   - Trim drops the oldest non-system messages until a transcript fits a
//     token budget, with token costs supplied by a pluggable Counter
//   - TiktokenCounter implements Counter on tiktoken encodings with a
//     model-name to encoding mapping
package history
