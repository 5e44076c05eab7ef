package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pk0202/graphmailer/internal/auth"
	"github.com/pk0202/graphmailer/internal/config"
	"github.com/pk0202/graphmailer/internal/graph"
	"github.com/pk0202/graphmailer/internal/instrumentation"
	"github.com/pk0202/graphmailer/internal/logging"
)

const (
	// DefaultReadTimeout is the read timeout for the API server.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the write timeout for the API server. It bounds
	// the whole token-acquire/build/relay pipeline for one request.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the idle timeout for keep-alive connections.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the drain timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// MailRelay sends a built payload to the mail provider. Satisfied by
// *graph.Client; stubbed in tests.
type MailRelay interface {
	SendMail(ctx context.Context, accessToken, sender string, payload *graph.SendMailRequest) error
}

// Server is the HTTP endpoint layer. It validates inbound requests, enforces
// the shared-secret API key, and orchestrates token acquisition, payload
// building and relaying.
type Server struct {
	cfg      *config.Config
	acquirer auth.TokenAcquirer
	relay    MailRelay
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	health   *HealthChecker

	httpServer *http.Server
}

// New creates the endpoint layer. metrics may be nil.
func New(cfg *config.Config, acquirer auth.TokenAcquirer, relay MailRelay, logger *slog.Logger, metrics *instrumentation.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	s := &Server{
		cfg:      cfg,
		acquirer: acquirer,
		relay:    relay,
		logger:   logging.WithComponent(logger, "server"),
		metrics:  metrics,
		health:   NewHealthChecker(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/send-email", s.handleSendEmail).Methods(http.MethodPost)
	s.health.RegisterHealthEndpoints(router)

	handler := s.requestIDMiddleware(s.observabilityMiddleware(router))

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	return s
}

// Handler exposes the fully wired HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the API server until it is shut down. Blocking; call Shutdown
// from another goroutine.
func (s *Server) Start() error {
	s.logger.Info("api server listening",
		slog.String("addr", s.cfg.ListenAddr),
		slog.String("auth_mode", string(s.cfg.Mode)))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	return s.httpServer.Shutdown(ctx)
}
