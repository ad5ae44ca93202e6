package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"roombook/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{Enabled: false}, "roombook", "test")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestWrapTransportPropagatesContext(t *testing.T) {
	if _, err := Setup(context.Background(), config.TracingConfig{}, "roombook", "test"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("Traceparent")
	}))
	defer srv.Close()

	ctx, span := Tracer().Start(context.Background(), "rooms list")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/meeting-rooms", nil)
	resp, err := (&http.Client{Transport: WrapTransport(nil)}).Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	span.End()

	if traceparent == "" {
		t.Fatalf("trace context not propagated")
	}
	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	found := false
	for _, n := range names {
		if n == "GET /api/meeting-rooms" {
			found = true
		}
	}
	if !found {
		t.Fatalf("client span missing, got %v", names)
	}
}
