// Package logging provides structured logging helpers built on log/slog.
//
// It defines canonical attribute keys and constructors so log output stays
// consistent across packages, plus sanitizers for values that must never be
// logged raw (bearer tokens, recipient email addresses).
package logging
