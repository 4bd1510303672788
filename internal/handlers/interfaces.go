package handlers

import (
	"context"

	"taskdeck/internal/models"
	"taskdeck/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, owner string, input service.CreateTaskInput) (*models.Task, error)
	ListTasks(ctx context.Context, owner string) ([]*models.Task, error)
	UpdateTask(ctx context.Context, owner string, id uuid.UUID, patch service.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, owner string, id uuid.UUID) error
}

type ProjectService interface {
	CreateProject(ctx context.Context, owner, name, description string) (*models.Project, error)
	ListProjects(ctx context.Context, owner string) ([]*models.Project, error)
	UpdateProject(ctx context.Context, owner string, id uuid.UUID, patch service.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, owner string, id uuid.UUID) error
}
