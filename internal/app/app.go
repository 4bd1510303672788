package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/handlers"
	"taskdeck/internal/logger"
	"taskdeck/internal/middleware"
	"taskdeck/internal/repository"
	projinmemory "taskdeck/internal/repository/project/inmemory"
	projpostgres "taskdeck/internal/repository/project/postgres"
	taskinmemory "taskdeck/internal/repository/task/inmemory"
	taskpostgres "taskdeck/internal/repository/task/postgres"
	"taskdeck/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	taskRepo, projectRepo, err := a.buildRepositories(ctx)
	if err != nil {
		return err
	}

	taskService := service.NewTaskService(taskRepo, projectRepo)
	projectService := service.NewProjectService(projectRepo)

	taskHandler := handlers.NewTaskHandler(taskService)
	projectHandler := handlers.NewProjectHandler(projectService)

	a.router = a.buildRouter(taskHandler, projectHandler)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) buildRepositories(ctx context.Context) (service.TaskRepository, service.ProjectRepository, error) {
	switch a.config.Repository.Type {
	case "postgres":
		if err := repository.Migrate(a.config.Database.URL); err != nil {
			return nil, nil, err
		}

		pool, err := repository.NewPool(ctx, a.config.Database)
		if err != nil {
			return nil, nil, err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: closing database pool")
			pool.Close()
		})

		return taskpostgres.New(pool), projpostgres.New(pool), nil

	case "inmemory", "":
		taskRepo := taskinmemory.NewTaskStorage()
		projectRepo := projinmemory.NewProjectStorage()
		taskRepo.SetProjectSource(projectRepo)
		projectRepo.SetTaskSource(taskRepo)
		return taskRepo, projectRepo, nil

	default:
		return nil, nil, fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

func (a *App) buildRouter(taskHandler *handlers.TaskHandler, projectHandler *handlers.ProjectHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.Server.RateLimitRPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", taskHandler.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(a.config.Auth.JWTSecret))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetTasks)   // GET /tasks
			r.Post("/", taskHandler.PostTask)  // POST /tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", taskHandler.PatchTaskByID)   // PATCH /tasks/{id}
				r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.GetProjects)  // GET /projects
			r.Post("/", projectHandler.PostProject) // POST /projects

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", projectHandler.PatchProjectByID)   // PATCH /projects/{id}
				r.Delete("/", projectHandler.DeleteProjectByID) // DELETE /projects/{id}
			})
		})
	})

	return r
}

// Run blocks until the context is cancelled or the listener fails, then walks
// the shutdown hooks in reverse order.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started on " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.runShutdowns()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: shutting down")

	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: graceful shutdown failed", err)
	}
	a.runShutdowns()
	return nil
}

func (a *App) runShutdowns() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
