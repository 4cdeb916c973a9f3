package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// Patch is a decoded JSON object used for partial updates. The keys are
// checked against an allow-list before any value is looked at.
type Patch map[string]any

// CreateTaskInput carries the data for a new task. There is no owner field:
// the owner is always the authenticated caller.
type CreateTaskInput struct {
	Description string
	Status      *bool
}

// ListTasksInput carries the raw listing parameters from the query string.
type ListTasksInput struct {
	Completed *bool
	SortBy    string // "field" or "field:asc|desc"
	Limit     int
	Skip      int
}

// TaskService defines the owner-scoped task use cases.
type TaskService interface {
	Create(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string, input ListTasksInput) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch Patch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
}
