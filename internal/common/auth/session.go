// internal/common/auth/session.go
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"elevate-workers/internal/common/errors"
	httpclient "elevate-workers/internal/common/http"
)

// SessionClient resolves bearer tokens against the managed auth service.
type SessionClient struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

// User is the subset of the auth service's user payload the workers need.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	UserMetadata UserMetadata `json:"user_metadata"`
	AppMetadata  AppMetadata  `json:"app_metadata"`
	CreatedAt    time.Time    `json:"created_at"`
}

type UserMetadata struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type AppMetadata struct {
	Provider string `json:"provider"`
}

func NewSessionClient(baseURL, apiKey string, timeout time.Duration) *SessionClient {
	return &SessionClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpclient.NewClient(timeout, httpclient.WithRetries(1, 100*time.Millisecond)),
	}
}

// GetUser returns the user that owns accessToken. A rejected token yields an
// AUTHENTICATION_ERROR; transport failures an EXTERNAL_SERVICE_ERROR.
func (c *SessionClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	token := strings.TrimSpace(strings.TrimPrefix(accessToken, "Bearer "))
	if token == "" {
		return nil, errors.NewAuthenticationError("missing access token")
	}

	var user User
	err := c.http.GetJSON(ctx, c.baseURL+"/auth/v1/user", map[string]string{
		"apikey":        c.apiKey,
		"Authorization": "Bearer " + token,
	}, &user)
	if err != nil {
		var statusErr *httpclient.StatusError
		if stderrors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return nil, errors.NewAuthenticationError("invalid or expired session")
		}
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("auth", err)
		}
		return nil, errors.NewExternalServiceError("auth", fmt.Errorf("get user: %w", err))
	}
	if user.ID == "" {
		return nil, errors.NewAuthenticationError("session has no user")
	}
	return &user, nil
}
