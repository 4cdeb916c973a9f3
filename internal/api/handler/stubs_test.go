package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

type stubSessionService struct {
	issued    []string
	revoked   []string
	revokeAll int
}

func (s *stubSessionService) Issue(_ context.Context, user *domain.User) (string, error) {
	tok := "token-" + user.ID
	s.issued = append(s.issued, tok)
	return tok, nil
}

func (s *stubSessionService) Verify(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUnauthenticated
}

func (s *stubSessionService) Revoke(_ context.Context, _ *domain.User, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *stubSessionService) RevokeAll(context.Context, *domain.User) error {
	s.revokeAll++
	return nil
}

type stubAccountService struct {
	updateFn    func(ctx context.Context, user *domain.User, patch ports.Patch) (*domain.User, error)
	setAvatarFn func(ctx context.Context, user *domain.User, data []byte) error
	deleteFn    func(ctx context.Context, user *domain.User) (*domain.User, error)
	avatarFn    func(ctx context.Context, userID string) ([]byte, error)
	cleared     int
}

func (s *stubAccountService) Update(ctx context.Context, user *domain.User, patch ports.Patch) (*domain.User, error) {
	return s.updateFn(ctx, user, patch)
}

func (s *stubAccountService) SetAvatar(ctx context.Context, user *domain.User, data []byte) error {
	return s.setAvatarFn(ctx, user, data)
}

func (s *stubAccountService) ClearAvatar(context.Context, *domain.User) error {
	s.cleared++
	return nil
}

func (s *stubAccountService) Delete(ctx context.Context, user *domain.User) (*domain.User, error) {
	return s.deleteFn(ctx, user)
}

func (s *stubAccountService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	return s.avatarFn(ctx, userID)
}

type stubTaskService struct {
	createFn func(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, ownerID string, in ports.ListTasksInput) ([]*domain.Task, error)
	getFn    func(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	updateFn func(ctx context.Context, ownerID, taskID string, patch ports.Patch) (*domain.Task, error)
	deleteFn func(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, ownerID, in)
}

func (s *stubTaskService) List(ctx context.Context, ownerID string, in ports.ListTasksInput) ([]*domain.Task, error) {
	return s.listFn(ctx, ownerID, in)
}

func (s *stubTaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.getFn(ctx, ownerID, taskID)
}

func (s *stubTaskService) Update(ctx context.Context, ownerID, taskID string, patch ports.Patch) (*domain.Task, error) {
	return s.updateFn(ctx, ownerID, taskID, patch)
}

func (s *stubTaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.deleteFn(ctx, ownerID, taskID)
}

// newContext builds an echo context with the validator installed and, when
// user is non-nil, the values the Auth middleware would have set.
func newContext(req *http.Request, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.TokenKey, "current-token")
	}
	return c, rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
