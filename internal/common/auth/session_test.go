package auth

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elevate-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		if r.Header.Get("Authorization") != "Bearer good-token" {
			http.Error(w, `{"msg":"invalid JWT"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "3f1c2a9e-0000-4000-8000-000000000001",
			"email": "ana@example.com",
			"role": "authenticated",
			"user_metadata": {"full_name": "Ana Souza"},
			"app_metadata": {"provider": "google"}
		}`))
	}))
}

func TestGetUser_ValidToken(t *testing.T) {
	server := newAuthServer(t)
	defer server.Close()

	client := NewSessionClient(server.URL+"/", "anon-key", time.Second)
	user, err := client.GetUser(context.Background(), "Bearer good-token")

	require.NoError(t, err)
	assert.Equal(t, "3f1c2a9e-0000-4000-8000-000000000001", user.ID)
	assert.Equal(t, "Ana Souza", user.UserMetadata.FullName)
	assert.Equal(t, "google", user.AppMetadata.Provider)
}

func TestGetUser_Rejected(t *testing.T) {
	server := newAuthServer(t)
	defer server.Close()

	client := NewSessionClient(server.URL, "anon-key", time.Second)

	for _, token := range []string{"bad-token", "", "Bearer "} {
		_, err := client.GetUser(context.Background(), token)

		var stdErr *errors.StandardError
		require.True(t, stderrors.As(err, &stdErr), "token %q", token)
		assert.Equal(t, errors.ErrCodeAuthentication, stdErr.Code)
	}
}

func TestGetUser_Unreachable(t *testing.T) {
	client := NewSessionClient("http://127.0.0.1:1", "anon-key", 200*time.Millisecond)
	_, err := client.GetUser(context.Background(), "good-token")

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.NotEqual(t, errors.ErrCodeAuthentication, stdErr.Code)
}
