package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pk0202/graphmailer/internal/config"
)

func TestRunServeReturnsOnMetricsServerFailure(t *testing.T) {
	cfg := &config.Config{
		Mode:           config.AuthModeApp,
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		TenantID:       "tenant",
		Scopes:         config.DefaultAppScopes,
		TokenCacheFile: filepath.Join(t.TempDir(), "cache.json"),
		ListenAddr:     "127.0.0.1:0",
		GraphBaseURL:   "http://127.0.0.1:1",
		MetricsEnabled: true,
		// Out-of-range port makes the metrics listener fail at startup. The
		// API server is already running by then; runServe must still drain it
		// and return instead of hanging or leaking the listener.
		MetricsAddr: "127.0.0.1:99999",
	}

	done := make(chan error, 1)
	go func() { done <- runServe(cfg, false) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runServe did not return after the metrics server failed to start")
	}
}
