package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMailSuccess(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(nil, WithBaseURL(srv.URL))
	payload := BuildSendMailRequest(&EmailRequest{
		To:      []string{"to@example.com"},
		Subject: "hello",
	})

	err := client.SendMail(context.Background(), "tok-123", "sender@example.com", payload)
	require.NoError(t, err)

	assert.Equal(t, "/v1.0/users/sender@example.com/sendMail", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)

	var sent SendMailRequest
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	assert.Equal(t, "hello", sent.Message.Subject)
}

func TestSendMailDelegatedUsesMePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(nil, WithBaseURL(srv.URL))
	err := client.SendMail(context.Background(), "tok", SenderMe, &SendMailRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/v1.0/me/sendMail", gotPath)
}

func TestSendMailNonAcceptedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad request"}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(nil, WithBaseURL(srv.URL))
	err := client.SendMail(context.Background(), "tok", "sender@example.com", &SendMailRequest{})
	require.Error(t, err)

	var relayErr *RelayError
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, http.StatusBadRequest, relayErr.StatusCode)
	assert.Equal(t, `{"error":"bad request"}`, relayErr.Body)
}

func TestSendMailOKIsStillAnError(t *testing.T) {
	// Graph documents 202 as the only success status; a 200 is surfaced.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(nil, WithBaseURL(srv.URL))
	err := client.SendMail(context.Background(), "tok", "sender@example.com", &SendMailRequest{})

	var relayErr *RelayError
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, http.StatusOK, relayErr.StatusCode)
}

func TestSendMailContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(nil, WithBaseURL(srv.URL))
	err := client.SendMail(ctx, "tok", "sender@example.com", &SendMailRequest{})
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*RelayError))
}
