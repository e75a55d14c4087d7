package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/graph"
	"github.com/flowhive/supervisor/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/flowhive/supervisor/observability"

// Options configure the tracer.
type Options struct {
	// ServiceName identifies this process in traces. Defaults to "supervisor".
	ServiceName string
	// Endpoint is the OTLP gRPC collector address, e.g. "localhost:4317".
	// Empty disables the exporter unless a TracerProvider is injected.
	Endpoint string
	// Insecure disables TLS on the exporter connection.
	Insecure bool
	// SampleRate in [0,1]. Defaults to 1 (always sample).
	SampleRate float64
	// TracerProvider bypasses exporter setup entirely, mostly for tests.
	TracerProvider trace.TracerProvider
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Tracer bridges workflow lifecycle hooks into OpenTelemetry spans.
type Tracer struct {
	tracer trace.Tracer
	sdk    *sdktrace.TracerProvider
	logger logging.Logger
}

// NewTracer builds a tracer. If the OTLP exporter cannot be created the
// tracer falls back to a no-op provider and logs a warning; callers keep a
// working (if silent) Tracer either way.
func NewTracer(ctx context.Context, optFns ...func(o *Options)) *Tracer {
	opts := Options{
		ServiceName: "supervisor",
		SampleRate:  1,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.TracerProvider != nil {
		return &Tracer{
			tracer: opts.TracerProvider.Tracer(tracerName),
			logger: opts.Logger,
		}
	}

	provider, sdk, err := newProvider(ctx, &opts)
	if err != nil {
		opts.Logger.Warn("tracing.disabled", "error", err.Error())
		provider = noop.NewTracerProvider()
		sdk = nil
	}

	return &Tracer{
		tracer: provider.Tracer(tracerName),
		sdk:    sdk,
		logger: opts.Logger,
	}
}

func newProvider(ctx context.Context, opts *Options) (trace.TracerProvider, *sdktrace.TracerProvider, error) {
	if opts.Endpoint == "" {
		return nil, nil, fmt.Errorf("no collector endpoint configured")
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("build resource: %w", err)
	}

	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRate))),
	)

	return sdk, sdk, nil
}

// Shutdown flushes and stops the owned provider, if any.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return t.sdk.Shutdown(ctx)
}

// Observer returns a graph.Observer emitting spans for run and node lifecycle.
func (t *Tracer) Observer() graph.Observer {
	return &spanObserver{tracer: t.tracer}
}

type spanObserver struct {
	tracer trace.Tracer
}

func (o *spanObserver) OnRunStart(ctx context.Context, runID, workflow string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "workflow.run",
		trace.WithAttributes(
			attribute.String("workflow.name", workflow),
			attribute.String("workflow.run_id", runID),
		))
	return ctx
}

func (o *spanObserver) OnRunEnd(ctx context.Context, runID string, err error) {
	span := trace.SpanFromContext(ctx)
	endSpan(span, err)
}

func (o *spanObserver) OnNodeStart(ctx context.Context, runID, node string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "workflow.node",
		trace.WithAttributes(
			attribute.String("workflow.node", node),
			attribute.String("workflow.run_id", runID),
		))
	return ctx
}

func (o *spanObserver) OnNodeEnd(ctx context.Context, runID, node string, err error) {
	span := trace.SpanFromContext(ctx)
	endSpan(span, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TracedWorkflow wraps a workflow so each invocation runs inside its own
// span, independent of whether the workflow was compiled with an Observer.
type TracedWorkflow struct {
	wf     *graph.Workflow
	tracer trace.Tracer
}

// Trace wraps a compiled workflow.
func (t *Tracer) Trace(wf *graph.Workflow) *TracedWorkflow {
	return &TracedWorkflow{wf: wf, tracer: t.tracer}
}

// Invoke runs the workflow inside a span.
func (tw *TracedWorkflow) Invoke(ctx context.Context, msgs []core.Message, optFns ...func(o *graph.RunOptions)) (*core.State, error) {
	ctx, span := tw.tracer.Start(ctx, "workflow.invoke",
		trace.WithAttributes(attribute.String("workflow.name", tw.wf.Name())))

	state, err := tw.wf.Invoke(ctx, msgs, optFns...)
	endSpan(span, err)

	return state, err
}

// Stream runs the workflow inside a span, ending it when the run completes.
func (tw *TracedWorkflow) Stream(ctx context.Context, msgs []core.Message, optFns ...func(o *graph.RunOptions)) (<-chan core.Event, <-chan error) {
	ctx, span := tw.tracer.Start(ctx, "workflow.stream",
		trace.WithAttributes(attribute.String("workflow.name", tw.wf.Name())))

	events, errs := tw.wf.Stream(ctx, msgs, optFns...)

	out := make(chan core.Event, 1)
	errOut := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errOut)
		for ev := range events {
			out <- ev
		}
		err := <-errs
		endSpan(span, err)
		if err != nil {
			errOut <- err
		}
	}()

	return out, errOut
}
