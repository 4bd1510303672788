package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskdeck/internal/logger"
	"taskdeck/internal/models"
	rep "taskdeck/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectService struct {
	repo ProjectRepository
}

func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *ProjectService) CreateProject(ctx context.Context, owner, name, description string) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	project := &models.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     owner,
		Tasks:       []*models.Task{},
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, owner string) ([]*models.Project, error) {
	projects, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

type ProjectPatch struct {
	Name        *string
	Description *string
}

func (s *ProjectService) UpdateProject(ctx context.Context, owner string, id uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: project not found", zap.String("target_id", id.String()))
			return nil, NewNotFound("project", id.String())
		}
		return nil, fmt.Errorf("fetching project: %w", err)
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("project", id.String())
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, owner string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: project not found", zap.String("target_id", id.String()))
			return NewNotFound("project", id.String())
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}
