package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Layer string
type SubLayer string

const (
	LayerApplication    Layer = "application"
	LayerInfrastructure Layer = "infrastructure"
)

const (
	SubLayerUseCase  SubLayer = "usecase"
	SubLayerDatabase SubLayer = "database"
	SubLayerBroker   SubLayer = "broker"
	SubLayerCache    SubLayer = "cache"
)

const tracerName = "temporal-ecommerce-agent"

// StartApplication opens a business-layer span.
func StartApplication(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return start(ctx, operation, LayerApplication, SubLayerUseCase, opts...)
}

// StartInfrastructure opens an infrastructure-layer span with the given
// sublayer (database, broker, cache).
func StartInfrastructure(ctx context.Context, operation string, subLayer SubLayer, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return start(ctx, operation, LayerInfrastructure, subLayer, opts...)
}

func start(ctx context.Context, operation string, layer Layer, subLayer SubLayer, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName(operation, layer, subLayer), opts...)
}

// spanName prefixes the operation with its architectural layer.
func spanName(operation string, layer Layer, subLayer SubLayer) string {
	switch {
	case layer == LayerApplication:
		return fmt.Sprintf("Business %s", operation)
	case layer == LayerInfrastructure && subLayer == SubLayerDatabase:
		return fmt.Sprintf("SQL %s", operation)
	case layer == LayerInfrastructure && subLayer == SubLayerBroker:
		return fmt.Sprintf("Kafka %s", operation)
	case layer == LayerInfrastructure && subLayer == SubLayerCache:
		return fmt.Sprintf("Cache %s", operation)
	}
	return operation
}
