package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// createTaskRequest has no owner field: a client-supplied owner is dropped.
type createTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Status      *bool  `json:"status"`
}

// Create adds a task owned by the caller.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), user.ID, ports.CreateTaskInput{
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, task)
}

// List returns the caller's tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        completed  query     string  false  "true for completed tasks, any other value for open ones"
// @Param        sortBy     query     string  false  "field[:asc|desc] with field one of createdAt, updatedAt, description, status; other fields keep insertion order"
// @Param        limit      query     int     false  "Page size"
// @Param        skip       query     int     false  "Offset"
// @Success      200        {array}   domain.Task
// @Failure      401        {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.List(c.Request().Context(), user.ID, listInput(c))
	if err != nil {
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("list").Inc()
	return c.JSON(http.StatusOK, tasks)
}

// Get returns one of the caller's tasks.
//
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("get").Inc()
	return c.JSON(http.StatusOK, task)
}

// Update applies a partial update to one of the caller's tasks.
//
// @Summary      Update task
// @Description  Accepts any subset of description and status.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Task ID"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	patch, err := bindPatch(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	task, err := h.tasks.Update(c.Request().Context(), user.ID, c.Param("id"), patch)
	if err != nil {
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, task)
}

// Delete removes one of the caller's tasks and returns it.
//
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Delete(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, task)
}

// listInput reads the listing parameters. Unparsable numbers fall back to 0.
func listInput(c echo.Context) ports.ListTasksInput {
	in := ports.ListTasksInput{SortBy: c.QueryParam("sortBy")}

	if v := c.QueryParam("completed"); v != "" {
		completed := v == "true"
		in.Completed = &completed
	}
	in.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	in.Skip, _ = strconv.Atoi(c.QueryParam("skip"))

	return in
}
