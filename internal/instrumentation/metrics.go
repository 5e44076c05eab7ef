package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrGrant     = "grant"
)

// Result values for operation metrics.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a safe no-op recorder.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Graph API metrics
	graphOperationsTotal   metric.Int64Counter
	graphOperationDuration metric.Float64Histogram

	// Token acquisition metrics
	tokenRequestsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.graphOperationsTotal, err = meter.Int64Counter(
		"graph_operations_total",
		metric.WithDescription("Total number of Microsoft Graph API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_operations_total counter: %w", err)
	}

	m.graphOperationDuration, err = meter.Float64Histogram(
		"graph_operation_duration_seconds",
		metric.WithDescription("Microsoft Graph API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_operation_duration_seconds histogram: %w", err)
	}

	m.tokenRequestsTotal, err = meter.Int64Counter(
		"token_requests_total",
		metric.WithDescription("Total number of OAuth token acquisition attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_requests_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with its method, path, status
// code and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)

	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGraphOperation records a Microsoft Graph API call.
func (m *Metrics) RecordGraphOperation(ctx context.Context, operation, result string, duration time.Duration) {
	if m.graphOperationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	)

	m.graphOperationsTotal.Add(ctx, 1, attrs)
	m.graphOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRequest records an OAuth token acquisition attempt for a grant
// type ("client_credentials", "refresh_token", "device_code").
func (m *Metrics) RecordTokenRequest(ctx context.Context, grant, result string) {
	if m.tokenRequestsTotal == nil {
		return
	}

	m.tokenRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrGrant, grant),
		attribute.String(attrResult, result),
	))
}

// ResultFromError maps an error to a metric result value.
func ResultFromError(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
