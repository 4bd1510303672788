package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/logger"
	"taskdeck/internal/models"
	rep "taskdeck/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// business rule checks live here, storage details stay in the repository

type TaskService struct {
	repo     TaskRepository
	projects ProjectRepository
}

func NewTaskService(repo TaskRepository, projects ProjectRepository) *TaskService {
	return &TaskService{
		repo:     repo,
		projects: projects,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     *time.Time
	ProjectID   *uuid.UUID
}

// CreateTask forces status to TODO and defaults priority to MEDIUM, the same
// way the API always has.
func (s *TaskService) CreateTask(ctx context.Context, owner string, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, NewValidationError("title", "must not be empty")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("unknown priority %q", priority))
	}

	if input.ProjectID != nil {
		if _, err := s.projects.GetByID(ctx, owner, *input.ProjectID); err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				return nil, NewNotFound("project", input.ProjectID.String())
			}
			return nil, fmt.Errorf("checking project: %w", err)
		}
	}

	task := &models.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		OwnerID:     owner,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]*models.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id.String()))
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("fetching task: %w", err)
	}
	return task, nil
}

type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority

	// DueDate/ProjectID distinguish "leave alone" (Set false) from
	// "set to this value, possibly nil" (Set true).
	DueDate      *time.Time
	SetDueDate   bool
	ProjectID    *uuid.UUID
	SetProjectID bool
}

// UpdateTask fetches the owner's record, merges the present patch fields and
// stores the result. Unknown ids and other owners' ids are the same NOT_FOUND.
func (s *TaskService) UpdateTask(ctx context.Context, owner string, id uuid.UUID, patch TaskPatch) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id.String()))
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("fetching task: %w", err)
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, NewValidationError("title", "must not be empty")
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, NewValidationError("priority", fmt.Sprintf("unknown priority %q", *patch.Priority))
		}
		task.Priority = *patch.Priority
	}
	if patch.SetDueDate {
		task.DueDate = patch.DueDate
	}
	if patch.SetProjectID {
		if patch.ProjectID != nil {
			if _, err := s.projects.GetByID(ctx, owner, *patch.ProjectID); err != nil {
				if errors.Is(err, rep.ErrNotFound) {
					return nil, NewNotFound("project", patch.ProjectID.String())
				}
				return nil, fmt.Errorf("checking project: %w", err)
			}
		}
		task.ProjectID = patch.ProjectID
	}

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id.String()))
			return NewNotFound("task", id.String())
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}
