package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// AccountService manages the caller's own account.
type AccountService interface {
	Update(ctx context.Context, user *domain.User, patch Patch) (*domain.User, error)
	SetAvatar(ctx context.Context, user *domain.User, data []byte) error
	ClearAvatar(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, user *domain.User) (*domain.User, error)
	Avatar(ctx context.Context, userID string) ([]byte, error)
}
