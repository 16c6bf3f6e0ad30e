// Package observability wires OpenTelemetry tracing and the Prometheus
// collectors that describe the download-request workflow.
package observability

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/resume-gate/internal/config"
)

// instrumentationName identifies spans created by this module.
const instrumentationName = "github.com/tbourn/resume-gate"

// Resource keys describing how this instance runs the workflow.
const (
	AttrStoreDriver = attribute.Key("resumegate.store.driver")
	AttrMailEnabled = attribute.Key("resumegate.mail.enabled")
	AttrSignedLinks = attribute.Key("resumegate.links.signed")
	AttrAdminAuth   = attribute.Key("resumegate.admin.auth")
)

// Swapped in tests.
var (
	newExporter = func(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	}
	newInstanceID = uuid.NewString
)

// ResourceAttributes describes this deployment. Every exported span carries
// them, so traces can be split by store driver or by whether mail and
// signed links were on.
func ResourceAttributes(cfg config.Config, version string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.OTEL.ServiceName),
		semconv.ServiceVersion(version),
		semconv.ServiceInstanceID(newInstanceID()),
		AttrStoreDriver.String(cfg.Store.Driver),
		AttrMailEnabled.Bool(cfg.Mail.Enabled()),
		AttrSignedLinks.Bool(cfg.Links.Signed()),
		AttrAdminAuth.Bool(cfg.Admin.Enabled()),
	}
	if cfg.OTEL.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.OTEL.Environment))
	}
	return attrs
}

// sampler honors the caller's decision and otherwise samples ratio of new
// traces. The bounds map to the always/never samplers.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// SetupOTel installs a batching OTLP tracer provider for cfg and returns its
// shutdown. With tracing disabled nothing is installed and shutdown is a
// no-op. Globals are only replaced once every piece has been built.
func SetupOTel(ctx context.Context, cfg config.Config, version string) (func(context.Context) error, error) {
	if !cfg.OTEL.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(ResourceAttributes(cfg, version)...))
	if err != nil {
		return nil, err
	}
	exp, err := newExporter(ctx, cfg.OTEL)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sampler(cfg.OTEL.SampleRatio)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// StartSpan starts an internal span from the global tracer provider. It is a
// no-op span when tracing is disabled.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err (if any) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
