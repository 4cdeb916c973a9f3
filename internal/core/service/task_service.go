package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var taskUpdateKeys = []string{"description", "status"}

// TaskService implements the owner-scoped task use cases. The owner always
// comes from the authenticated caller and is handed to the repository, which
// applies it as the base filter of every query.
type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// Create stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Create")
	defer span.End()

	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		Description: description,
		Owner:       ownerID,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", ownerID).Msg("failed to create task")
		return nil, err
	}

	s.logger.Debug().Str("task_id", created.ID).Str("owner", ownerID).Msg("task created")
	return created, nil
}

// List returns the tasks of ownerID filtered, sorted and paginated per in.
func (s *TaskService) List(ctx context.Context, ownerID string, in ports.ListTasksInput) ([]*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.List")
	defer span.End()

	return s.repo.List(ctx, ownerID, buildTaskQuery(in))
}

// Get returns one task of ownerID.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Get")
	defer span.End()

	return s.repo.FindOne(ctx, ownerID, taskID)
}

// Update merges patch into a task of ownerID. Only description and status may
// be changed; any other key rejects the whole update before the store is touched.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch ports.Patch) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Update")
	defer span.End()

	if err := checkKeys(patch, taskUpdateKeys...); err != nil {
		return nil, err
	}

	var changes domain.TaskChanges
	description, err := patchString(patch, "description")
	if err != nil {
		return nil, err
	}
	if description != nil {
		d, err := validateDescription(*description)
		if err != nil {
			return nil, err
		}
		changes.Description = &d
	}
	if changes.Status, err = patchBool(patch, "status"); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, ownerID, taskID, changes)
}

// Delete removes a task of ownerID and returns it.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Delete")
	defer span.End()

	task, err := s.repo.Delete(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("task_id", task.ID).Str("owner", ownerID).Msg("task deleted")
	return task, nil
}

// buildTaskQuery turns listing input into a repository query. Negative limit
// and skip values mean "no cap" and "no offset"; an unknown sort field keeps
// insertion order.
func buildTaskQuery(in ports.ListTasksInput) domain.TaskQuery {
	q := domain.TaskQuery{Completed: in.Completed}
	if in.Limit > 0 {
		q.Limit = in.Limit
	}
	if in.Skip > 0 {
		q.Skip = in.Skip
	}

	field, direction, _ := strings.Cut(in.SortBy, ":")
	if domain.IsTaskSortField(field) {
		q.SortField = field
		q.SortDesc = strings.EqualFold(direction, "desc")
	}
	return q
}
