package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RegisterInput carries the sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int // nil = default 0
}

// AuthService verifies credentials and creates accounts.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// SessionService issues, verifies and revokes bearer tokens.
type SessionService interface {
	Issue(ctx context.Context, user *domain.User) (string, error)
	Verify(ctx context.Context, token string) (*domain.User, error)
	Revoke(ctx context.Context, user *domain.User, token string) error
	RevokeAll(ctx context.Context, user *domain.User) error
}
