package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/logger"
	"taskdeck/internal/models"
	repo "taskdeck/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *models.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, title, description, status, priority, due_date, project_id, owner_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
		taskToCreate.ProjectID,
		taskToCreate.OwnerID,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting task: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	start := time.Now()

	query := `SELECT
				id, title, description, status, priority,
				due_date, project_id, owner_id, created_at, updated_at
				FROM tasks
				WHERE id = $1 AND owner_id = $2`

	t := &models.Task{}
	err := s.pool.QueryRow(ctx, query, id, owner).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.ProjectID,
		&t.OwnerID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to fetch task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("fetching task: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// ListByOwner returns the owner's tasks most-recent-first, each joined with
// its project when assigned.
func (s *Storage) ListByOwner(ctx context.Context, owner string) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT
				t.id, t.title, t.description, t.status, t.priority,
				t.due_date, t.project_id, t.owner_id, t.created_at, t.updated_at,
				p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at
				FROM tasks t
				LEFT JOIN projects p ON p.id = t.project_id AND p.owner_id = t.owner_id
				WHERE t.owner_id = $1
				ORDER BY t.created_at DESC`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t := &models.Task{}
		var (
			pID          *uuid.UUID
			pName        *string
			pDescription *string
			pOwner       *string
			pCreatedAt   *time.Time
			pUpdatedAt   *time.Time
		)

		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.DueDate,
			&t.ProjectID,
			&t.OwnerID,
			&t.CreatedAt,
			&t.UpdatedAt,
			&pID, &pName, &pDescription, &pOwner, &pCreatedAt, &pUpdatedAt,
		)
		if err != nil {
			logger.Warn("Repository: failed to scan task row", zap.Error(err))
			continue
		}

		if pID != nil {
			t.Project = &models.Project{
				ID:          *pID,
				Name:        *pName,
				Description: *pDescription,
				OwnerID:     *pOwner,
				CreatedAt:   *pCreatedAt,
				UpdatedAt:   *pUpdatedAt,
			}
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func (s *Storage) ListByProject(ctx context.Context, owner string, projectID uuid.UUID) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT
				id, title, description, status, priority,
				due_date, project_id, owner_id, created_at, updated_at
				FROM tasks
				WHERE owner_id = $1 AND project_id = $2
				ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, owner, projectID)
	if err != nil {
		logger.Error("Repository: failed to list project tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing project tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t := &models.Task{}
		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.DueDate,
			&t.ProjectID,
			&t.OwnerID,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			logger.Warn("Repository: failed to scan task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return tasks, nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *models.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				priority = $4,
				due_date = $5,
				project_id = $6,
				updated_at = NOW()
			WHERE id = $7 AND owner_id = $8
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Priority,
		taskToUpdate.DueDate,
		taskToUpdate.ProjectID,
		taskToUpdate.ID,
		taskToUpdate.OwnerID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: failed to update task", err)
		return fmt.Errorf("updating task: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, owner)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
