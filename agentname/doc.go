// Package agentname attributes assistant messages to their authoring agent
// across the model round trip. Two conventions are supported:
//
//   - Inline: the name is embedded in tagged content
//     (<name>agent</name><content>text</content>) for providers without a
//     native participant-name field; WithAgentName wraps a model to rewrite
//     outbound messages and parse inbound completions
//   - Structured: the Message Name field passes through to providers that
//     support named participants natively
//
// ModeNone leaves messages untouched.
package agentname
