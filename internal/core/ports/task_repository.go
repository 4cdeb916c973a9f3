package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
// Every method is scoped to ownerID; a task owned by someone else is
// reported as domain.ErrTaskNotFound, exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	List(ctx context.Context, ownerID string, q domain.TaskQuery) ([]*domain.Task, error)
	FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, changes domain.TaskChanges) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// DeleteByOwner removes every task of ownerID and returns how many were removed.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// Transactor runs fn inside a storage transaction. Repository calls made with
// the context passed to fn take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
