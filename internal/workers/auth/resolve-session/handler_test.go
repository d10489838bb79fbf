package resolvesession

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elevate-workers/internal/common/auth"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"id": "b1c2d3e4-0000-4000-8000-000000000001",
			"email": "ana@example.com",
			"user_metadata": {"full_name": "Ana Souza"},
			"app_metadata": {"provider": "google"}
		}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHandler_Execute_ValidToken(t *testing.T) {
	server := newAuthServer(t)
	resolver := auth.NewSessionClient(server.URL, "anon-key", 5*time.Second)

	handler := NewHandler(DefaultConfig(), resolver, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{AccessToken: "Bearer good-token"})

	require.NoError(t, err)
	assert.Equal(t, &Output{
		UserID:   "b1c2d3e4-0000-4000-8000-000000000001",
		Email:    "ana@example.com",
		Name:     "Ana Souza",
		Provider: "google",
	}, output)
}

func TestHandler_Execute_RejectedToken(t *testing.T) {
	server := newAuthServer(t)
	resolver := auth.NewSessionClient(server.URL, "anon-key", 5*time.Second)

	handler := NewHandler(DefaultConfig(), resolver, logger.NewTestLogger(t))

	for _, token := range []string{"expired-token", "", "Bearer "} {
		_, err := handler.Execute(context.Background(), &Input{AccessToken: token})

		var stdErr *errors.StandardError
		require.True(t, stderrors.As(err, &stdErr), "token %q", token)
		assert.Equal(t, errors.ErrCodeAuthentication, stdErr.Code)
		assert.False(t, stdErr.Retryable)
	}
}
