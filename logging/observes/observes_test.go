package observes

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDisabledInitializers(t *testing.T) {
	flush, err := NewSentry(nil)
	if err != nil || flush == nil {
		t.Fatalf("NewSentry(nil) = %p, %v", flush, err)
	}
	flush()

	shutdown, err := NewTracer(&TracerOption{})
	if err != nil {
		t.Fatalf("NewTracer() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestSpanHelpers(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	defer otel.SetTracerProvider(prev)

	_, span := StartSpan(context.Background(), "test", "op.ok", attribute.String("scope", "all"))
	EndSpan(span, nil)
	_, span = StartSpan(context.Background(), "test", "op.fail")
	EndSpan(span, errors.New("boom"))

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("span[0] status = %v", ended[0].Status())
	}
	if ended[1].Status().Code != codes.Error || ended[1].Status().Description != "boom" {
		t.Errorf("span[1] status = %v", ended[1].Status())
	}
}
