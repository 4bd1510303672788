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

// TaskSource supplies nested tasks for listings and the unassign sweep on
// project deletion.
type TaskSource interface {
	ListByProject(ctx context.Context, owner string, projectID uuid.UUID) ([]*models.Task, error)
	UnassignProject(ctx context.Context, owner string, projectID uuid.UUID) error
}

type ProjectStorage struct {
	storage map[uuid.UUID]*models.Project
	mtx     *sync.RWMutex
	tasks   TaskSource
}

func NewProjectStorage() *ProjectStorage {
	return &ProjectStorage{
		storage: make(map[uuid.UUID]*models.Project),
		mtx:     &sync.RWMutex{},
	}
}

func (s *ProjectStorage) SetTaskSource(tasks TaskSource) {
	s.tasks = tasks
}

func (s *ProjectStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *ProjectStorage) Create(ctx context.Context, projectToCreate *models.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	projectToCreate.CreatedAt = now
	projectToCreate.UpdatedAt = now

	stored := *projectToCreate
	stored.Tasks = nil
	s.storage[stored.ID] = &stored
	return nil
}

func (s *ProjectStorage) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	projectToGet, ok := s.storage[id]
	if !ok || projectToGet.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	copied := *projectToGet
	copied.Tasks = []*models.Task{}
	return &copied, nil
}

// ListByOwner returns the owner's projects most-recent-first, each with its
// tasks nested.
func (s *ProjectStorage) ListByOwner(ctx context.Context, owner string) ([]*models.Project, error) {
	s.mtx.RLock()
	projects := []*models.Project{}
	for _, p := range s.storage {
		if p.OwnerID != owner {
			continue
		}
		copied := *p
		copied.Tasks = []*models.Task{}
		projects = append(projects, &copied)
	}
	s.mtx.RUnlock()

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	if s.tasks != nil {
		for _, p := range projects {
			nested, err := s.tasks.ListByProject(ctx, owner, p.ID)
			if err != nil {
				continue
			}
			p.Tasks = nested
		}
	}

	return projects, nil
}

func (s *ProjectStorage) Update(ctx context.Context, projectToUpdate *models.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[projectToUpdate.ID]
	if !ok || existing.OwnerID != projectToUpdate.OwnerID {
		return repo.ErrNotFound
	}

	projectToUpdate.UpdatedAt = time.Now()
	stored := *projectToUpdate
	stored.Tasks = nil
	s.storage[stored.ID] = &stored
	return nil
}

func (s *ProjectStorage) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	s.mtx.Lock()
	existing, ok := s.storage[id]
	if !ok || existing.OwnerID != owner {
		s.mtx.Unlock()
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	s.mtx.Unlock()

	if s.tasks != nil {
		return s.tasks.UnassignProject(ctx, owner, id)
	}
	return nil
}
