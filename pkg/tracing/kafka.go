package tracing

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InjectTraceContextToKafka adds the traceparent header to a Kafka record.
func InjectTraceContextToKafka(ctx context.Context) []kgo.RecordHeader {
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	traceparent, ok := carrier["traceparent"]
	if !ok {
		return nil
	}
	return []kgo.RecordHeader{{Key: "traceparent", Value: []byte(traceparent)}}
}

// ExtractTraceContextFromKafka reads the traceparent header of a consumed
// record and turns it into a span link for the consumer side.
func ExtractTraceContextFromKafka(ctx context.Context, headers []kgo.RecordHeader) []trace.Link {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		if h.Key == "traceparent" {
			carrier["traceparent"] = string(h.Value)
			break
		}
	}
	if carrier["traceparent"] == "" {
		return nil
	}

	parentCtx := propagation.TraceContext{}.Extract(ctx, carrier)
	parentSpanCtx := trace.SpanContextFromContext(parentCtx)
	if !parentSpanCtx.IsValid() {
		return nil
	}
	return []trace.Link{{
		SpanContext: parentSpanCtx,
		Attributes: []attribute.KeyValue{
			attribute.String("link.type", "async"),
			attribute.String("link.protocol", "kafka"),
			attribute.String("link.role", "consumer"),
		},
	}}
}
