package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user and returns it with its ID and timestamps set.
	// A duplicate email yields domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDAndToken returns the user only while token is still in its token set.
	FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	AddToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error
	SetAvatar(ctx context.Context, id string, avatar []byte) error
	ClearAvatar(ctx context.Context, id string) error
	FindAvatar(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
