package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/pk0202/graphmailer/internal/config"
	"github.com/pk0202/graphmailer/internal/logging"
)

// DeviceLogin runs the interactive device-code flow and seeds the token
// cache. This is an operator-driven setup step: it blocks until sign-in
// completes in a browser or the flow expires, so it must never run inside a
// request handler.
type DeviceLogin struct {
	cache  *Cache
	conf   *oauth2.Config
	out    io.Writer
	logger *slog.Logger
}

// NewDeviceLogin builds a device-code login helper. Instructions for the
// operator (verification URL and user code) are written to out.
func NewDeviceLogin(cfg *config.Config, cache *Cache, out io.Writer, logger *slog.Logger) *DeviceLogin {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceLogin{
		cache: cache,
		conf: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: Endpoint(cfg.TenantID),
			Scopes:   cfg.Scopes,
		},
		out:    out,
		logger: logging.WithComponent(logger, "auth"),
	}
}

// Run initiates the device-code flow, displays the verification URL and user
// code, then polls until the operator completes sign-in or the flow expires.
// The resulting token is persisted to the cache.
func (l *DeviceLogin) Run(ctx context.Context) error {
	da, err := l.conf.DeviceAuth(ctx)
	if err != nil {
		return &TokenError{Op: "device_auth", Err: err}
	}
	if da.UserCode == "" {
		return &TokenError{Op: "device_auth", Err: errors.New("identity provider returned no user code")}
	}

	fmt.Fprintf(l.out, "To sign in, open %s and enter the code %s\n", da.VerificationURI, da.UserCode)
	l.logger.Info("waiting for device-code sign-in",
		logging.Operation("device_login"),
		slog.Time("flow_expiry", da.Expiry))

	tok, err := l.conf.DeviceAccessToken(ctx, da)
	if err != nil {
		return &TokenError{Op: "device_token", Err: err}
	}

	if err := l.cache.Save(tok); err != nil {
		return fmt.Errorf("signed in, but could not persist the token: %w", err)
	}

	fmt.Fprintln(l.out, "Sign-in complete. Token cached at", l.cache.Path())
	l.logger.Info("device-code sign-in complete",
		logging.Operation("device_login"),
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.Time("expiry", tok.Expiry))
	return nil
}
