package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pk0202/graphmailer/internal/auth"
	"github.com/pk0202/graphmailer/internal/config"
	"github.com/pk0202/graphmailer/internal/logging"
)

func newLoginCmd() *cobra.Command {
	var (
		debugMode      bool
		tokenCacheFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the device-code flow and seed the token cache",
		Long: `Run the OAuth2 device-code flow for delegated mode and persist the
resulting token to the cache file.

The command prints a verification URL and a one-time code; complete the
sign-in in any browser. Once the cache is seeded, 'graphmailer serve' in
delegated mode acquires tokens silently from it and refreshes them as
they expire. Re-run login only when the refresh token itself is revoked
or expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Login always targets delegated mode regardless of AUTH_MODE;
			// drop app-mode default scopes in favor of the delegated set.
			if cfg.Mode != config.AuthModeDelegated {
				cfg.Mode = config.AuthModeDelegated
				if slices.Equal(cfg.Scopes, config.DefaultAppScopes) {
					cfg.Scopes = config.DefaultDelegatedScopes
				}
			}
			if cmd.Flags().Changed("token-cache-file") {
				cfg.TokenCacheFile = tokenCacheFile
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.New(os.Stderr, debugMode)
			slog.SetDefault(logger)

			cache := auth.NewCache(cfg.TokenCacheFile)
			login := auth.NewDeviceLogin(cfg, cache, cmd.OutOrStdout(), logger)
			if err := login.Run(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Login succeeded, token cache written to %s\n", cache.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&tokenCacheFile, "token-cache-file", "token_cache.json", "Path of the persisted token cache. Can also use TOKEN_CACHE_FILE env var.")

	return cmd
}
