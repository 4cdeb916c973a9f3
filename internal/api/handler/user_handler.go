package handler

import (
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var avatarFilename = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

type UserHandler struct {
	auth     ports.AuthService
	sessions ports.SessionService
	accounts ports.AccountService
}

func NewUserHandler(auth ports.AuthService, sessions ports.SessionService, accounts ports.AccountService) *UserHandler {
	return &UserHandler{auth: auth, sessions: sessions, accounts: accounts}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Age      *int   `json:"age"      validate:"omitempty,gte=0"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new account and signs the caller in.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.auth.Register(ctx, ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.Inc()

	token, err := h.sessions.Issue(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{User: user, Token: token})
}

// Login authenticates with email and password and returns a new session token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	user, err := h.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	token, err := h.sessions.Issue(ctx, user)
	if err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, sessionResponse{User: user, Token: token})
}

// Logout revokes the token used for this request.
//
// @Summary      Logout
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401   {object}  map[string]string
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Revoke(c.Request().Context(), user, currentToken(c)); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("single").Inc()
	return c.NoContent(http.StatusOK)
}

// LogoutAll revokes every token of the caller.
//
// @Summary      Logout from all sessions
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401   {object}  map[string]string
// @Router       /users/logoutall [post]
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.sessions.RevokeAll(c.Request().Context(), user); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("all").Inc()
	return c.NoContent(http.StatusOK)
}

// Me returns the caller's profile.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.User
// @Failure      401   {object}  map[string]string
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies a partial profile update.
//
// @Summary      Update profile
// @Description  Accepts any subset of name, email, password and age.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /users/me [patch]
func (h *UserHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	patch, err := bindPatch(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.accounts.Update(c.Request().Context(), user, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes the caller's account together with all of their tasks.
//
// @Summary      Delete account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.User
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /users/me [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	deleted, err := h.accounts.Delete(c.Request().Context(), user)
	if err != nil {
		return err
	}
	metrics.AccountsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, deleted)
}

// UploadAvatar stores a new profile picture.
//
// @Summary      Upload avatar
// @Description  JPEG or PNG up to 1MB; stored as a 250x250 PNG.
// @Tags         users
// @Accept       mpfd
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file (.jpg, .jpeg, .png)"
// @Success      200
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	data, err := readAvatar(c)
	if err != nil {
		metrics.AvatarUploadsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if err := h.accounts.SetAvatar(c.Request().Context(), user, data); err != nil {
		if domain.IsValidation(err) {
			metrics.AvatarUploadsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}
	metrics.AvatarUploadsTotal.WithLabelValues("accepted").Inc()
	return c.NoContent(http.StatusOK)
}

// DeleteAvatar removes the caller's profile picture.
//
// @Summary      Delete avatar
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401   {object}  map[string]string
// @Router       /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.accounts.ClearAvatar(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// Avatar serves a user's profile picture.
//
// @Summary      Get avatar
// @Tags         users
// @Produce      png
// @Param        id   path      string  true  "User ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  map[string]string
// @Router       /users/avatar/{id} [get]
func (h *UserHandler) Avatar(c echo.Context) error {
	data, err := h.accounts.Avatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func readAvatar(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return nil, domain.NewValidationError("avatar", "is required")
	}
	if !avatarFilename.MatchString(fh.Filename) {
		return nil, domain.NewValidationError("avatar", "must be a jpg, jpeg or png file")
	}
	if fh.Size > domain.MaxAvatarBytes {
		return nil, domain.NewValidationError("avatar", "must be at most 1MB")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, domain.MaxAvatarBytes+1))
}
