package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pk0202/graphmailer/internal/config"
	"github.com/pk0202/graphmailer/internal/graph"
	"github.com/pk0202/graphmailer/internal/instrumentation"
	"github.com/pk0202/graphmailer/internal/logging"
)

// APIKeyHeader is the shared-secret header callers must present when an API
// key is configured.
const APIKeyHeader = "X-Api-Key"

// infoResponse is the GET / liveness/info payload.
type infoResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// sendResponse is the success payload for POST /send-email.
type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorResponse carries an error detail. Detail is a string for local
// failures, or a graphErrorDetail when forwarding a downstream rejection.
type errorResponse struct {
	Detail any `json:"detail"`
}

// graphErrorDetail wraps the raw downstream error body.
type graphErrorDetail struct {
	GraphError string `json:"graph_error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	message := "Graph mail relay (app-only client credentials)"
	if s.cfg.Mode == config.AuthModeDelegated {
		message = "Graph mail relay (delegated)"
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Status:    "ok",
		Message:   message,
		Endpoints: []string{"/send-email"},
	})
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With(logging.Operation("send_email"), logging.RequestID(requestIDFrom(ctx)))

	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Unauthorized"})
		return
	}

	var req graph.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	if !graph.HasRecipients(req.To) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "At least one TO recipient is required."})
		return
	}

	sender, ok := s.resolveSender(&req)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail: "Sender email is required. Provide from_email in the payload or configure DEFAULT_SENDER.",
		})
		return
	}

	ctx, span := instrumentation.StartSpan(ctx, "send_email")
	defer span.End()
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	token, err := s.acquirer.Token(ctx)
	s.metrics.RecordTokenRequest(ctx, s.grantType(), instrumentation.ResultFromError(err))
	if err != nil {
		logger.Error("token acquisition failed", logging.Err(err))
		instrumentation.SetSpanError(span, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: "Failed to get Graph access token: " + err.Error(),
		})
		return
	}

	payload := graph.BuildSendMailRequest(&req)

	start := time.Now()
	err = s.relay.SendMail(ctx, token, sender, payload)
	s.metrics.RecordGraphOperation(ctx, "send_mail", instrumentation.ResultFromError(err), time.Since(start))

	if err != nil {
		instrumentation.SetSpanError(span, err)

		var relayErr *graph.RelayError
		if errors.As(err, &relayErr) {
			// Forward the provider's status and raw body verbatim.
			logger.Warn("relay rejected",
				slog.Int("graph_status", relayErr.StatusCode),
				logging.Status(logging.StatusError))
			writeJSON(w, relayErr.StatusCode, errorResponse{
				Detail: graphErrorDetail{GraphError: relayErr.Body},
			})
			return
		}

		logger.Error("relay unreachable", logging.Err(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Detail: "Failed to reach the mail provider: " + err.Error(),
		})
		return
	}

	instrumentation.SetSpanSuccess(span)
	logger.Info("email sent",
		logging.UserHash(sender),
		slog.Int("to_count", len(req.To)),
		logging.Status(logging.StatusSuccess))
	writeJSON(w, http.StatusOK, sendResponse{Status: "OK", Message: "Email sent"})
}

// authorized enforces the shared-secret API key. An unset key leaves the
// endpoint open.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.APIKey == "" {
		return true
	}
	provided := r.Header.Get(APIKeyHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.APIKey)) == 1
}

// resolveSender determines the sendMail target mailbox. Delegated mode is
// always the authenticated user; app-only mode takes the request's
// from_email, falling back to the configured default sender.
func (s *Server) resolveSender(req *graph.EmailRequest) (string, bool) {
	if s.cfg.Mode == config.AuthModeDelegated {
		return graph.SenderMe, true
	}
	if req.FromEmail != "" {
		return req.FromEmail, true
	}
	if s.cfg.DefaultSender != "" {
		return s.cfg.DefaultSender, true
	}
	return "", false
}

// grantType names the OAuth grant the configured acquirer uses, for metrics.
func (s *Server) grantType() string {
	if s.cfg.Mode == config.AuthModeDelegated {
		return "refresh_token"
	}
	return "client_credentials"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
