// Package observability exports workflow runs as OpenTelemetry traces: one
// span per run, one child span per node execution, delivered over OTLP gRPC.
//
// Tracer.Observer plugs into graph compilation for per-node spans;
// Tracer.Trace wraps a compiled workflow so each Invoke/Stream runs inside
// its own span. Exporter failures degrade to a no-op tracer with a logged
// warning, so orchestration never depends on the collector being up.
package observability
