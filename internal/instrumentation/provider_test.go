package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	config := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	}

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider == nil {
		t.Fatal("expected provider to be non-nil")
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}

	// Shutdown should not error for disabled provider
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil")
	}

	if !provider.HasPrometheusExporter() {
		t.Error("expected a prometheus exporter to be configured")
	}

	tracer := provider.Tracer("test")
	if tracer == nil {
		t.Error("expected tracer to be non-nil")
	}
}

func TestNewProvider_InvalidMetricsExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: "statsd",
		TracingExporter: ExporterNone,
	}

	if _, err := NewProvider(context.Background(), config); err == nil {
		t.Error("expected error for unsupported metrics exporter")
	}
}

func TestNewProvider_OTLPTracingRequiresEndpoint(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterOTLP,
	}

	if _, err := NewProvider(context.Background(), config); err == nil {
		t.Error("expected error for OTLP tracing without endpoint")
	}
}

func TestMetricsRecordersOnZeroValue(t *testing.T) {
	// A zero-value Metrics must be a safe no-op.
	var m Metrics
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "POST", "/send-email", 200, time.Millisecond)
	m.RecordGraphOperation(ctx, "send_mail", ResultSuccess, time.Millisecond)
	m.RecordTokenRequest(ctx, "client_credentials", ResultError)
}

func TestResultFromError(t *testing.T) {
	if got := ResultFromError(nil); got != ResultSuccess {
		t.Errorf("ResultFromError(nil) = %q, want %q", got, ResultSuccess)
	}
	if got := ResultFromError(context.Canceled); got != ResultError {
		t.Errorf("ResultFromError(err) = %q, want %q", got, ResultError)
	}
}
