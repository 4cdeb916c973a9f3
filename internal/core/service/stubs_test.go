package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
)

var nopLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	seq       int
	deleteErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Tokens = append([]domain.SessionToken(nil), u.Tokens...)
	clone.Avatar = append([]byte(nil), u.Avatar...)
	return &clone
}

func (r *stubUserRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.emailTaken(user.Email, "") {
		return nil, domain.ErrEmailTaken
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("u%d", r.seq)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDAndToken(_ context.Context, id, token string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, c domain.UserChanges) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if c.Email != nil && r.emailTaken(*c.Email, id) {
		return nil, domain.ErrEmailTaken
	}
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.Age != nil {
		u.Age = *c.Age
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) AddToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, domain.SessionToken{Token: token})
	return nil
}

func (r *stubUserRepo) RemoveToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	var kept []domain.SessionToken
	for _, t := range u.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

func (r *stubUserRepo) ClearTokens(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = nil
	return nil
}

func (r *stubUserRepo) SetAvatar(_ context.Context, id string, avatar []byte) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Avatar = append([]byte(nil), avatar...)
	return nil
}

func (r *stubUserRepo) ClearAvatar(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Avatar = nil
	return nil
}

func (r *stubUserRepo) FindAvatar(_ context.Context, id string) ([]byte, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return append([]byte(nil), u.Avatar...), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory task repository, owner-scoped like the Mongo one
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	tasks          []*domain.Task
	seq            int
	clock          time.Time
	deleteOwnerErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *stubTaskRepo) owned(ownerID, taskID string) (int, *domain.Task) {
	for i, t := range r.tasks {
		if t.Owner == ownerID && t.ID == taskID {
			return i, t
		}
	}
	return -1, nil
}

func (r *stubTaskRepo) countFor(ownerID string) int {
	n := 0
	for _, t := range r.tasks {
		if t.Owner == ownerID {
			n++
		}
	}
	return n
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.seq++
	r.clock = r.clock.Add(time.Minute)
	stored := *task
	stored.ID = fmt.Sprintf("t%d", r.seq)
	stored.CreatedAt = r.clock
	stored.UpdatedAt = r.clock
	r.tasks = append(r.tasks, &stored)
	out := stored
	return &out, nil
}

func (r *stubTaskRepo) List(_ context.Context, ownerID string, q domain.TaskQuery) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.Owner != ownerID {
			continue
		}
		if q.Completed != nil && t.Status != *q.Completed {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}

	if q.SortField != "" {
		less := func(a, b *domain.Task) bool {
			switch q.SortField {
			case domain.TaskSortUpdatedAt:
				return a.UpdatedAt.Before(b.UpdatedAt)
			case domain.TaskSortDescription:
				return strings.Compare(a.Description, b.Description) < 0
			case domain.TaskSortStatus:
				return !a.Status && b.Status
			default:
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if q.SortDesc {
				return less(out[j], out[i])
			}
			return less(out[i], out[j])
		})
	}

	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []*domain.Task{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *stubTaskRepo) FindOne(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	_, t := r.owned(ownerID, taskID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) Update(_ context.Context, ownerID, taskID string, c domain.TaskChanges) (*domain.Task, error) {
	_, t := r.owned(ownerID, taskID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	r.clock = r.clock.Add(time.Minute)
	t.UpdatedAt = r.clock
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	i, t := r.owned(ownerID, taskID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return t, nil
}

func (r *stubTaskRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	if r.deleteOwnerErr != nil {
		return 0, r.deleteOwnerErr
	}
	var kept []*domain.Task
	var removed int64
	for _, t := range r.tasks {
		if t.Owner == ownerID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return removed, nil
}

// ---------------------------------------------------------------------------
// Transactor and revocation list
// ---------------------------------------------------------------------------

type stubTransactor struct {
	calls int
}

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type stubRevocations struct {
	tokens   map[string]time.Duration
	checkErr error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{tokens: make(map[string]time.Duration)}
}

func (r *stubRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	if r.checkErr != nil {
		return false, r.checkErr
	}
	_, ok := r.tokens[token]
	return ok, nil
}

func (r *stubRevocations) Revoke(_ context.Context, token string, ttl time.Duration) error {
	r.tokens[token] = ttl
	return nil
}
