package resolvesession

import (
	"context"

	"elevate-workers/internal/common/auth"
)

type Input struct {
	AccessToken string `json:"accessToken"`
}

type Output struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// UserResolver is satisfied by auth.SessionClient.
type UserResolver interface {
	GetUser(ctx context.Context, accessToken string) (*auth.User, error)
}
