package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Tests in this file replace the global tracer provider and must not run in parallel.
func installRecorder(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		_ = tp.Shutdown(context.Background())
	})
	return exporter, tp
}

func TestProviderSpanIsChildOfRequestSpan(t *testing.T) {
	exporter, tp := installRecorder(t)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(ServiceName))
	r.HandleFunc("/api/places", func(w http.ResponseWriter, r *http.Request) {
		_, span := StartSpan(r.Context(), "places.text_search", attribute.String("provider", "mock"))
		EndSpan(span, nil)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/places?query=coffee", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	child, parent := spans[0], spans[1]
	if child.Name != "places.text_search" {
		t.Errorf("first finished span = %q, want places.text_search", child.Name)
	}
	if child.Parent.SpanID() != parent.SpanContext.SpanID() {
		t.Error("provider span is not a child of the request span")
	}
	if got := parent.SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s, want the incoming traceparent", got)
	}
}

func TestEndSpan_RecordsError(t *testing.T) {
	exporter, _ := installRecorder(t)

	_, span := StartSpan(context.Background(), "reviews.match")
	EndSpan(span, errors.New("timeout"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error || spans[0].Status.Description != "timeout" {
		t.Errorf("status = %+v, want error timeout", spans[0].Status)
	}
	if len(spans[0].Events) == 0 {
		t.Error("error event not recorded")
	}
}
