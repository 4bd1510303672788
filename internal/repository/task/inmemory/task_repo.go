package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskdeck/internal/models"
	repo "taskdeck/internal/repository"

	"github.com/google/uuid"
)

// ProjectSource resolves the owning project for listings. Wired after
// construction because the project storage needs a task source too.
type ProjectSource interface {
	GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Project, error)
}

type TaskStorage struct {
	storage  map[uuid.UUID]*models.Task
	mtx      *sync.RWMutex
	projects ProjectSource
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*models.Task),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TaskStorage) SetProjectSource(projects ProjectSource) {
	s.projects = projects
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	stored := *taskToCreate
	stored.Project = nil
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok || taskToGet.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	copied := *taskToGet
	return &copied, nil
}

// ListByOwner returns the owner's tasks most-recent-first with the owning
// project attached.
func (s *TaskStorage) ListByOwner(ctx context.Context, owner string) ([]*models.Task, error) {
	s.mtx.RLock()
	tasks := []*models.Task{}
	for _, t := range s.storage {
		if t.OwnerID != owner {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}
	s.mtx.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	if s.projects != nil {
		for _, t := range tasks {
			if t.ProjectID == nil {
				continue
			}
			project, err := s.projects.GetByID(ctx, owner, *t.ProjectID)
			if err != nil {
				continue
			}
			project.Tasks = nil
			t.Project = project
		}
	}

	return tasks, nil
}

func (s *TaskStorage) ListByProject(ctx context.Context, owner string, projectID uuid.UUID) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*models.Task{}
	for _, t := range s.storage {
		if t.OwnerID != owner || t.ProjectID == nil || *t.ProjectID != projectID {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.ID]
	if !ok || existing.OwnerID != taskToUpdate.OwnerID {
		return repo.ErrNotFound
	}

	taskToUpdate.UpdatedAt = time.Now()
	stored := *taskToUpdate
	stored.Project = nil
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.OwnerID != owner {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	return nil
}

// UnassignProject clears project_id on every task pointing at a deleted
// project, mirroring the SET NULL foreign key in postgres.
func (s *TaskStorage) UnassignProject(ctx context.Context, owner string, projectID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range s.storage {
		if t.OwnerID == owner && t.ProjectID != nil && *t.ProjectID == projectID {
			t.ProjectID = nil
			t.UpdatedAt = time.Now()
		}
	}
	return nil
}
