package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating OpenTelemetry spans.
//
// Each event becomes an instant span:
//   - Span name: event.Msg (e.g. "provider_request", "fallback")
//   - Attributes: provider, model, channel, and all Meta fields
//   - Status: error when the event carries a failure
//
// Usage:
//
//	tracer := otel.Tracer("aibot")
//	emitter := emit.NewOTelEmitter(tracer)
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter over the given tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit creates and immediately ends a span for the event. Events represent
// points in time, not durations, so the span is not left open.
func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	if event.Provider != "" {
		span.SetAttributes(attribute.String("provider", event.Provider))
	}
	if event.Model != "" {
		span.SetAttributes(attribute.String("model", event.Model))
	}
	if event.Channel != "" {
		span.SetAttributes(attribute.String("channel", event.Channel))
	}

	for key, value := range event.Meta {
		span.SetAttributes(attributeFromValue(key, value))
	}

	if event.Error() {
		span.SetStatus(codes.Error, event.Err)
	}
}

func attributeFromValue(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
