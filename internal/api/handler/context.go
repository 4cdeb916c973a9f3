package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// currentUser returns the user resolved by the Auth middleware. A missing
// value means the route was registered without Auth, which is reported as an
// authentication failure rather than a panic.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.UserKey).(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(middleware.TokenKey).(string)
	return token
}

// bindPatch decodes the JSON body into a patch. Only the body is read, so
// path and query parameters never leak into the update keys.
func bindPatch(c echo.Context) (ports.Patch, error) {
	patch := ports.Patch{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}
