// Package server implements the HTTP endpoint layer of the relay.
//
// The API surface is small: GET / for liveness/info and POST /send-email,
// which validates the request, enforces the optional shared-secret API key,
// then orchestrates token acquisition, payload building and the Graph relay
// call. Provider rejections are forwarded verbatim (status code and raw
// body); everything else maps onto the error taxonomy's HTTP codes.
//
// Health probes (/healthz, /readyz) live on the API listener; Prometheus
// metrics get a dedicated listener via MetricsServer.
package server
