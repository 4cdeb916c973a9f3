package service

import (
	"context"
	"errors"
	"testing"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func boolPtr(b bool) *bool { return &b }

func mustCreateTask(t *testing.T, svc *TaskService, owner, description string, status bool) *domain.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), owner, ports.CreateTaskInput{Description: description, Status: &status})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestTaskService_Create(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nopLogger)

	task, err := svc.Create(context.Background(), "userA", ports.CreateTaskInput{Description: " buy milk "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Owner != "userA" {
		t.Errorf("owner must be the caller, got %q", task.Owner)
	}
	if task.Status {
		t.Errorf("status must default to false")
	}
	if task.Description != "buy milk" {
		t.Errorf("description must be trimmed, got %q", task.Description)
	}
}

func TestTaskService_Create_RequiresDescription(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)

	_, err := svc.Create(context.Background(), "userA", ports.CreateTaskInput{Description: "   "})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTaskService_OwnerIsolation(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nopLogger)
	ctx := context.Background()

	aTask := mustCreateTask(t, svc, "userA", "A's task", false)
	mustCreateTask(t, svc, "userB", "B's task", false)

	if _, err := svc.Get(ctx, "userB", aTask.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("B must not read A's task, got %v", err)
	}
	if _, err := svc.Update(ctx, "userB", aTask.ID, ports.Patch{"status": true}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("B must not update A's task, got %v", err)
	}
	if _, err := svc.Delete(ctx, "userB", aTask.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("B must not delete A's task, got %v", err)
	}

	listed, err := svc.List(ctx, "userB", ports.ListTasksInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Owner != "userB" {
		t.Fatalf("B must only see own tasks, got %+v", listed)
	}

	stored, err := svc.Get(ctx, "userA", aTask.ID)
	if err != nil {
		t.Fatalf("A lost access to own task: %v", err)
	}
	if stored.Status {
		t.Fatalf("A's task was modified by B")
	}
}

func TestTaskService_List_CompletedFilter(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	ctx := context.Background()

	mustCreateTask(t, svc, "u", "one", true)
	mustCreateTask(t, svc, "u", "two", false)
	mustCreateTask(t, svc, "u", "three", true)

	done, err := svc.List(ctx, "u", ports.ListTasksInput{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("expected 2 completed tasks, got %d", len(done))
	}
	for _, task := range done {
		if !task.Status {
			t.Fatalf("completed=true returned an open task: %+v", task)
		}
	}

	all, _ := svc.List(ctx, "u", ports.ListTasksInput{})
	if len(all) != 3 {
		t.Fatalf("expected all 3 tasks without filter, got %d", len(all))
	}
}

func TestTaskService_List_SortDesc(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	for _, d := range []string{"first", "second", "third"} {
		mustCreateTask(t, svc, "u", d, false)
	}

	tasks, err := svc.List(context.Background(), "u", ports.ListTasksInput{SortBy: "createdAt:desc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i].CreatedAt.After(tasks[i-1].CreatedAt) {
			t.Fatalf("createdAt:desc is not non-increasing at %d", i)
		}
	}
	if tasks[0].Description != "third" {
		t.Fatalf("expected newest first, got %q", tasks[0].Description)
	}

	asc, _ := svc.List(context.Background(), "u", ports.ListTasksInput{SortBy: "createdAt"})
	if asc[0].Description != "first" {
		t.Fatalf("direction must default to ascending, got %q", asc[0].Description)
	}
}

func TestTaskService_List_Pagination(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	for _, d := range []string{"a", "b", "c", "d"} {
		mustCreateTask(t, svc, "u", d, false)
	}
	ctx := context.Background()

	page, _ := svc.List(ctx, "u", ports.ListTasksInput{Limit: 2, Skip: 1})
	if len(page) != 2 || page[0].Description != "b" || page[1].Description != "c" {
		t.Fatalf("unexpected page: %+v", page)
	}

	all, err := svc.List(ctx, "u", ports.ListTasksInput{Limit: -3, Skip: -1})
	if err != nil {
		t.Fatalf("negative limit/skip must not fail: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("negative limit/skip mean no cap/no offset, got %d tasks", len(all))
	}
}

func TestTaskService_List_UnknownSortFieldKeepsInsertionOrder(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	first := mustCreateTask(t, svc, "u", "b task", false)
	second := mustCreateTask(t, svc, "u", "a task", false)

	for _, sortBy := range []string{"owner:desc", "password", ":desc"} {
		tasks, err := svc.List(context.Background(), "u", ports.ListTasksInput{SortBy: sortBy})
		if err != nil {
			t.Fatalf("sortBy %q: unexpected error %v", sortBy, err)
		}
		if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
			t.Fatalf("sortBy %q: expected insertion order, got %+v", sortBy, tasks)
		}
	}
}

func TestBuildTaskQuery(t *testing.T) {
	q := buildTaskQuery(ports.ListTasksInput{SortBy: "owner:desc", Limit: -1, Skip: -5})
	if q.SortField != "" || q.SortDesc || q.Limit != 0 || q.Skip != 0 {
		t.Fatalf("unexpected query %+v", q)
	}

	q = buildTaskQuery(ports.ListTasksInput{SortBy: "status:DESC", Limit: 3})
	if q.SortField != domain.TaskSortStatus || !q.SortDesc || q.Limit != 3 {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestTaskService_Update(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	ctx := context.Background()
	task := mustCreateTask(t, svc, "u", "write report", false)

	updated, err := svc.Update(ctx, "u", task.ID, ports.Patch{"status": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Status || updated.Description != "write report" {
		t.Fatalf("expected merge of status only, got %+v", updated)
	}
}

func TestTaskService_Update_RejectsUnknownKeys(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	ctx := context.Background()
	task := mustCreateTask(t, svc, "u", "write report", false)

	_, err := svc.Update(ctx, "u", task.ID, ports.Patch{"status": true, "owner": "someone-else"})
	if !errors.Is(err, domain.ErrInvalidUpdates) {
		t.Fatalf("expected ErrInvalidUpdates, got %v", err)
	}

	stored, _ := svc.Get(ctx, "u", task.ID)
	if stored.Status || stored.Owner != "u" {
		t.Fatalf("task must be left unchanged, got %+v", stored)
	}
}

func TestTaskService_Update_InvalidValues(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nopLogger)
	task := mustCreateTask(t, svc, "u", "write report", false)

	for name, patch := range map[string]ports.Patch{
		"status not bool":      {"status": "yes"},
		"description not text": {"description": 12.0},
		"blank description":    {"description": "  "},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Update(context.Background(), "u", task.ID, patch); !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestTaskService_Delete(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nopLogger)
	task := mustCreateTask(t, svc, "u", "temp", false)

	deleted, err := svc.Delete(context.Background(), "u", task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != task.ID {
		t.Fatalf("expected the deleted task back, got %+v", deleted)
	}
	if _, err := svc.Get(context.Background(), "u", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("task still present after delete: %v", err)
	}
}
