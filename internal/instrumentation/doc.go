// Package instrumentation provides OpenTelemetry metrics and tracing for the
// relay service.
//
// A Provider owns the meter and tracer providers. Metrics are exposed via a
// Prometheus scrape endpoint by default; tracing is off unless an exporter is
// configured. The Metrics recorder is safe to use as a zero value, so code
// paths never need nil checks when instrumentation is disabled.
package instrumentation
