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

func (s *Storage) Create(ctx context.Context, projectToCreate *models.Project) error {
	start := time.Now()

	query := `INSERT INTO projects
				(id, name, description, owner_id)
				VALUES ($1, $2, $3, $4)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		projectToCreate.ID,
		projectToCreate.Name,
		projectToCreate.Description,
		projectToCreate.OwnerID,
	).Scan(&projectToCreate.CreatedAt, &projectToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: failed to insert project", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting project: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Project, error) {
	start := time.Now()

	query := `SELECT
				id, name, description, owner_id, created_at, updated_at
				FROM projects
				WHERE id = $1 AND owner_id = $2`

	p := &models.Project{Tasks: []*models.Task{}}
	err := s.pool.QueryRow(ctx, query, id, owner).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to fetch project", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("fetching project: %w", err)
	}
	return p, nil
}

// ListByOwner returns the owner's projects most-recent-first, each with its
// tasks nested. Tasks are fetched in one pass and grouped in memory.
func (s *Storage) ListByOwner(ctx context.Context, owner string) ([]*models.Project, error) {
	start := time.Now()

	query := `SELECT
				id, name, description, owner_id, created_at, updated_at
				FROM projects
				WHERE owner_id = $1
				ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		logger.Error("Repository: failed to list projects", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	byID := map[uuid.UUID]*models.Project{}
	for rows.Next() {
		p := &models.Project{Tasks: []*models.Task{}}
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.OwnerID,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			logger.Warn("Repository: failed to scan project row", zap.Error(err))
			continue
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	taskQuery := `SELECT
				id, title, description, status, priority,
				due_date, project_id, owner_id, created_at, updated_at
				FROM tasks
				WHERE owner_id = $1 AND project_id IS NOT NULL
				ORDER BY created_at DESC`

	taskRows, err := s.pool.Query(ctx, taskQuery, owner)
	if err != nil {
		logger.Error("Repository: failed to list nested tasks", err)
		return nil, fmt.Errorf("listing nested tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		t := &models.Task{}
		err := taskRows.Scan(
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
		if p, ok := byID[*t.ProjectID]; ok {
			p.Tasks = append(p.Tasks, t)
		}
	}
	if err := taskRows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return projects, nil
}

func (s *Storage) Update(ctx context.Context, projectToUpdate *models.Project) error {
	start := time.Now()

	query := `UPDATE projects
			SET name = $1,
				description = $2,
				updated_at = NOW()
			WHERE id = $3 AND owner_id = $4
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		projectToUpdate.Name,
		projectToUpdate.Description,
		projectToUpdate.ID,
		projectToUpdate.OwnerID,
	).Scan(&projectToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: failed to update project", err)
		return fmt.Errorf("updating project: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// Delete removes the project; tasks pointing at it keep existing with their
// project_id nulled by the foreign key.
func (s *Storage) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1 AND owner_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, owner)
	if err != nil {
		logger.Error("Repository: failed to delete project", err)
		return fmt.Errorf("deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
