// Package auth handles OAuth2 token acquisition for Microsoft Graph.
//
// A TokenAcquirer abstracts over the two supported grants: client
// credentials (app-only) and delegated (cached device-code sign-in).
// Tokens are persisted to a file-backed Cache so they survive restarts.
//
// The delegated serve path only ever reads the cache silently; interactive
// device-code sign-in is a separate operator step (DeviceLogin) so a request
// handler can never block on a human.
package auth
