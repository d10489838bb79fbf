package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/exporters/jaeger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewJaegerExporter ships spans to a Jaeger collector, e.g.
// http://jaeger:14268/api/traces.
func NewJaegerExporter(endpoint string) (sdktrace.SpanExporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}
	return exp, nil
}
