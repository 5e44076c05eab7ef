package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/pk0202/graphmailer/internal/config"
	"github.com/pk0202/graphmailer/internal/logging"
)

// TokenAcquirer obtains a bearer token for the Microsoft Graph API.
// Implementations differ only in the OAuth2 grant they use.
type TokenAcquirer interface {
	// Token returns a valid access token, using the cache where possible.
	Token(ctx context.Context) (string, error)
}

// TokenError represents a failure to obtain an access token from the
// identity provider.
type TokenError struct {
	// Op is the grant step that failed (e.g., "client_credentials", "refresh")
	Op string

	// Err is the underlying error, typically carrying the provider's response
	Err error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	return fmt.Sprintf("token acquisition (%s): %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *TokenError) Unwrap() error {
	return e.Err
}

// Endpoint returns the Azure AD v2.0 OAuth2 endpoint for a tenant.
func Endpoint(tenantID string) oauth2.Endpoint {
	authority := "https://login.microsoftonline.com/" + tenantID
	return oauth2.Endpoint{
		AuthURL:       authority + "/oauth2/v2.0/authorize",
		TokenURL:      authority + "/oauth2/v2.0/token",
		DeviceAuthURL: authority + "/oauth2/v2.0/devicecode",
	}
}

// ClientCredentialsAcquirer obtains app-only tokens via the client-credentials
// grant. No user interaction; suitable for unattended backend services.
type ClientCredentialsAcquirer struct {
	cache  *Cache
	conf   *clientcredentials.Config
	logger *slog.Logger
}

// NewClientCredentialsAcquirer builds an acquirer for app-only auth from the
// service configuration.
func NewClientCredentialsAcquirer(cfg *config.Config, cache *Cache, logger *slog.Logger) *ClientCredentialsAcquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientCredentialsAcquirer{
		cache: cache,
		conf: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     Endpoint(cfg.TenantID).TokenURL,
			Scopes:       cfg.Scopes,
		},
		logger: logging.WithComponent(logger, "auth"),
	}
}

// Token returns a cached token while it remains valid, otherwise requests a
// fresh one with the client-credentials grant and persists it.
func (a *ClientCredentialsAcquirer) Token(ctx context.Context) (string, error) {
	tok, err := a.cache.Load()
	if err == nil && tok.Valid() {
		a.logger.Debug("using cached app token", logging.Operation("acquire_token"))
		return tok.AccessToken, nil
	}

	fresh, err := a.conf.Token(ctx)
	if err != nil {
		return "", &TokenError{Op: "client_credentials", Err: err}
	}
	if fresh.AccessToken == "" {
		return "", &TokenError{Op: "client_credentials", Err: errors.New("identity provider returned no access token")}
	}

	if err := a.cache.Save(fresh); err != nil {
		// A failed cache write is not fatal; the token is still usable.
		a.logger.Warn("failed to persist token cache", logging.Err(err))
	}

	a.logger.Info("acquired app token",
		logging.Operation("acquire_token"),
		slog.String("grant", "client_credentials"),
		slog.String("access_token", logging.SanitizeToken(fresh.AccessToken)),
		slog.Time("expiry", fresh.Expiry))
	return fresh.AccessToken, nil
}

// DelegatedAcquirer obtains tokens on behalf of a signed-in user. The serve
// path is silent-only: it reads the cache and refreshes via the stored
// refresh token, but never starts an interactive flow. Seed the cache with
// DeviceLogin before serving requests.
type DelegatedAcquirer struct {
	cache  *Cache
	conf   *oauth2.Config
	logger *slog.Logger
}

// NewDelegatedAcquirer builds a silent-only acquirer for delegated auth.
func NewDelegatedAcquirer(cfg *config.Config, cache *Cache, logger *slog.Logger) *DelegatedAcquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DelegatedAcquirer{
		cache: cache,
		conf: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: Endpoint(cfg.TenantID),
			Scopes:   cfg.Scopes,
		},
		logger: logging.WithComponent(logger, "auth"),
	}
}

// Token returns the cached token, refreshing it silently when expired.
// It fails fast when the cache is empty; interactive sign-in belongs in the
// login command, not in a request path.
func (a *DelegatedAcquirer) Token(ctx context.Context) (string, error) {
	tok, err := a.cache.Load()
	if err != nil || tok == nil {
		return "", &TokenError{
			Op:  "silent",
			Err: errors.New("no cached token; run the login command to sign in"),
		}
	}

	fresh, err := a.conf.TokenSource(ctx, tok).Token()
	if err != nil {
		return "", &TokenError{Op: "refresh", Err: err}
	}

	if err := a.cache.Save(fresh); err != nil {
		a.logger.Warn("failed to persist token cache", logging.Err(err))
	}

	if fresh.AccessToken != tok.AccessToken {
		a.logger.Info("refreshed delegated token",
			logging.Operation("acquire_token"),
			slog.String("grant", "refresh_token"),
			slog.Time("expiry", fresh.Expiry))
	}
	return fresh.AccessToken, nil
}
