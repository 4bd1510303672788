package service

import (
	"context"

	"taskdeck/internal/models"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}

type ProjectRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Project, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}
