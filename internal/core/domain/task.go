package domain

import "time"

// Task is a to-do item that belongs to exactly one user.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      bool      `json:"status"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Sortable task fields as accepted by the sortBy query parameter.
const (
	TaskSortCreatedAt   = "createdAt"
	TaskSortUpdatedAt   = "updatedAt"
	TaskSortDescription = "description"
	TaskSortStatus      = "status"
)

// IsTaskSortField reports whether field can be used to order task listings.
func IsTaskSortField(field string) bool {
	switch field {
	case TaskSortCreatedAt, TaskSortUpdatedAt, TaskSortDescription, TaskSortStatus:
		return true
	}
	return false
}

// TaskQuery describes a listing of one owner's tasks.
// Zero Limit means no cap and zero Skip means no offset.
type TaskQuery struct {
	Completed *bool
	SortField string // empty = insertion order
	SortDesc  bool
	Limit     int
	Skip      int
}

// TaskChanges carries the fields of a partial task update.
type TaskChanges struct {
	Description *string
	Status      *bool
}
