package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pk0202/graphmailer/internal/instrumentation"
	"github.com/pk0202/graphmailer/internal/logging"
)

// DefaultBaseURL is the production Microsoft Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com"

// StatusAccepted is the documented sendMail success status.
const StatusAccepted = http.StatusAccepted

// SenderMe addresses the sendMail call to the authenticated user instead of
// a specific mailbox. Used in delegated mode.
const SenderMe = "me"

// RelayError represents a non-success response from the Graph sendMail
// endpoint. The raw status and body are preserved so the caller can forward
// them verbatim.
type RelayError struct {
	// StatusCode is the HTTP status returned by Graph
	StatusCode int

	// Body is the raw response body, typically a Graph error JSON document
	Body string
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	return fmt.Sprintf("graph sendMail returned status %d: %s", e.StatusCode, e.Body)
}

// Client relays built payloads to the Graph sendMail endpoint. It does no
// interpretation and no retries; a non-202 response surfaces as a RelayError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client used for the sendMail call.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a Graph relay client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.WithComponent(logger, "graph"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMail POSTs the payload to the sendMail endpoint for the given sender.
// sender is a mailbox UPN in app-only mode, or SenderMe in delegated mode.
// A 202 response returns nil; anything else returns a RelayError carrying
// the raw status and body.
func (c *Client) SendMail(ctx context.Context, accessToken, sender string, payload *SendMailRequest) error {
	ctx, span := instrumentation.StartGraphSpan(ctx, "send_mail",
		attribute.Int(instrumentation.SpanAttrRecipients, len(payload.Message.ToRecipients)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize sendMail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendMailURL(sender), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sendMail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("sendMail request failed: %w", err)
		instrumentation.SetSpanError(span, err)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sendMail response: %w", err)
	}

	logger := c.logger.With(
		logging.Operation("send_mail"),
		logging.UserHash(sender),
		logging.Domain(sender),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)),
	)

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, resp.StatusCode))

	if resp.StatusCode != StatusAccepted {
		logger.Warn("graph rejected sendMail", logging.Status(logging.StatusError))
		relayErr := &RelayError{StatusCode: resp.StatusCode, Body: string(respBody)}
		instrumentation.SetSpanError(span, relayErr)
		return relayErr
	}

	instrumentation.SetSpanSuccess(span)
	logger.Info("mail relayed", logging.Status(logging.StatusSuccess))
	return nil
}

// sendMailURL resolves the per-sender sendMail path. Delegated mode uses the
// fixed /me segment; app-only mode parameterizes the target mailbox.
func (c *Client) sendMailURL(sender string) string {
	if sender == SenderMe {
		return c.baseURL + "/v1.0/me/sendMail"
	}
	return c.baseURL + "/v1.0/users/" + url.PathEscape(sender) + "/sendMail"
}
