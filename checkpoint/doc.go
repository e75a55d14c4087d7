// Package checkpoint provides state persistence backends for workflow runs,
// keyed by a caller-chosen thread ID. The in-memory implementation suits
// tests and single-process deployments; durable backends implement
// graph.Checkpointer against external stores.
package checkpoint
