package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/taskmanager/task-api/docs"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// bodyLimit leaves room for multipart framing around a 1MB avatar.
const bodyLimit = "2M"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Sessions ports.SessionService
	Accounts ports.AccountService
	Tasks    ports.TaskService

	Mongo *mongo.Database
	Redis *redis.Client // nil when the revocation list is disabled

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.Tracing())
	e.Use(echoprometheus.NewMiddleware("taskapi"))
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// --- Dependencies ---
	users := handler.NewUserHandler(deps.Auth, deps.Sessions, deps.Accounts)
	tasks := handler.NewTaskHandler(deps.Tasks)
	auth := middleware.Auth(deps.Sessions)

	// --- User routes ---
	e.POST("/users", users.Register)
	e.POST("/users/login", users.Login)
	e.GET("/users/avatar/:id", users.Avatar)

	e.POST("/users/logout", users.Logout, auth)
	e.POST("/users/logoutall", users.LogoutAll, auth)
	e.GET("/users/me", users.Me, auth)
	e.PATCH("/users/me", users.Update, auth)
	e.DELETE("/users/me", users.Delete, auth)
	e.POST("/users/me/avatar", users.UploadAvatar, auth)
	e.DELETE("/users/me/avatar", users.DeleteAvatar, auth)

	// --- Task routes ---
	tg := e.Group("/tasks", auth)
	tg.POST("", tasks.Create)
	tg.GET("", tasks.List)
	tg.GET("/:id", tasks.Get)
	tg.PATCH("/:id", tasks.Update)
	tg.DELETE("/:id", tasks.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness
	e.GET("/health/ready", readinessHandler.Readiness) // readiness

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
