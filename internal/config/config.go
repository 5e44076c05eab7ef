package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AuthMode selects the OAuth2 grant used to talk to Microsoft Graph.
type AuthMode string

const (
	// AuthModeApp authenticates as the application itself via the
	// client-credentials grant. Requires a client secret and sends mail on
	// behalf of a configured mailbox.
	AuthModeApp AuthMode = "app"

	// AuthModeDelegated acts on behalf of a signed-in user. The token cache
	// must be seeded out-of-band with the login command; the serve path only
	// ever reads it silently.
	AuthModeDelegated AuthMode = "delegated"
)

// Default scopes per auth mode. App-only tokens always use the tenant-wide
// .default scope; delegated tokens need offline_access to receive a refresh
// token the serve path can use silently.
var (
	DefaultAppScopes       = []string{"https://graph.microsoft.com/.default"}
	DefaultDelegatedScopes = []string{"https://graph.microsoft.com/Mail.Send", "offline_access"}
)

// Config holds all settings for the relay service. It is constructed once at
// process start and passed explicitly into the components that need it.
type Config struct {
	// Mode selects the OAuth2 grant strategy.
	Mode AuthMode

	// ClientID is the Azure AD application (client) ID.
	ClientID string

	// ClientSecret is the client secret for app-only auth. Unused in
	// delegated mode (device-code is a public-client flow).
	ClientSecret string

	// TenantID is the Azure AD tenant, or "common" for multi-tenant.
	TenantID string

	// Scopes requested for the Graph token. Defaults depend on Mode.
	Scopes []string

	// TokenCacheFile is the path of the persisted token cache.
	TokenCacheFile string

	// APIKey is the shared secret callers must present in X-Api-Key.
	// Empty means the endpoint is open.
	APIKey string

	// DefaultSender is the fallback sender mailbox for app-only mode when a
	// request carries no from_email.
	DefaultSender string

	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// GraphBaseURL is the Microsoft Graph endpoint. Overridable for tests.
	GraphBaseURL string

	// MetricsEnabled toggles the dedicated metrics server.
	MetricsEnabled bool

	// MetricsAddr is the listen address for the metrics server.
	MetricsAddr string
}

// Load builds a Config from the environment. A .env file in the working
// directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Mode:           AuthMode(getEnvString("AUTH_MODE", string(AuthModeApp))),
		ClientID:       getEnvString("CLIENT_ID", ""),
		ClientSecret:   getEnvString("CLIENT_SECRET", ""),
		TenantID:       getEnvString("TENANT_ID", "common"),
		Scopes:         getEnvList("SCOPES", nil),
		TokenCacheFile: getEnvString("TOKEN_CACHE_FILE", "token_cache.json"),
		APIKey:         getEnvString("EMAIL_API_KEY", ""),
		DefaultSender:  getEnvString("DEFAULT_SENDER", ""),
		ListenAddr:     getEnvString("LISTEN_ADDR", ":8080"),
		GraphBaseURL:   getEnvString("GRAPH_BASE_URL", "https://graph.microsoft.com"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsAddr:    getEnvString("METRICS_ADDR", ":9090"),
	}

	if len(cfg.Scopes) == 0 {
		switch cfg.Mode {
		case AuthModeDelegated:
			cfg.Scopes = DefaultDelegatedScopes
		default:
			cfg.Scopes = DefaultAppScopes
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable before any network I/O.
func (c *Config) Validate() error {
	switch c.Mode {
	case AuthModeApp, AuthModeDelegated:
	default:
		return fmt.Errorf("invalid auth mode %q (must be %q or %q)", c.Mode, AuthModeApp, AuthModeDelegated)
	}

	if c.ClientID == "" {
		return fmt.Errorf("CLIENT_ID is not configured")
	}
	if c.Mode == AuthModeApp && c.ClientSecret == "" {
		return fmt.Errorf("CLIENT_SECRET is not configured (required for app-only auth)")
	}
	if c.TenantID == "" {
		return fmt.Errorf("TENANT_ID is not configured")
	}
	if c.TokenCacheFile == "" {
		return fmt.Errorf("TOKEN_CACHE_FILE is not configured")
	}

	return nil
}

// Authority returns the Azure AD authority URL for the configured tenant.
func (c *Config) Authority() string {
	return "https://login.microsoftonline.com/" + c.TenantID
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

// getEnvList splits a space- or comma-separated env var into fields.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) == 0 {
		return defaultValue
	}
	return fields
}
