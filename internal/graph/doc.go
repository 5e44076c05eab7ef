// Package graph builds Microsoft Graph sendMail payloads and relays them to
// the Graph REST API.
//
// The builder is a pure mapping from the inbound EmailRequest to the Graph
// wire schema. The client is a thin POST with bearer auth: 202 Accepted is
// success, any other status surfaces as a RelayError carrying the raw
// response for the caller to forward.
package graph
