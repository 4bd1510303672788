// Package syncstore keeps the client-side mirror of the caller's tasks and
// projects. It is the UI's source of truth: every mutator applies its change
// locally first, then reconciles with the server, rolling the cache back
// verbatim when the round-trip fails.
package syncstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/models"

	"github.com/google/uuid"
)

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     *time.Time
	ProjectID   *uuid.UUID
}

// TaskPatch is a shallow merge: nil pointer fields are left alone. DueDate and
// ProjectID can be cleared explicitly via the Clear flags.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *models.Status
	Priority       *models.Priority
	DueDate        *time.Time
	ClearDueDate   bool
	ProjectID      *uuid.UUID
	ClearProjectID bool
}

type CreateProjectInput struct {
	Name        string
	Description string
}

type ProjectPatch struct {
	Name        *string
	Description *string
}

type TaskAPI interface {
	ListTasks(ctx context.Context) ([]*models.Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, patch ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type API interface {
	TaskAPI
	ProjectAPI
}

// ReminderSink receives due-date lifecycle events from the cache. Nil sink
// means reminders are not wired.
type ReminderSink interface {
	Schedule(task models.Task)
	Cancel(taskID uuid.UUID)
}

type Store struct {
	api       API
	reminders ReminderSink

	mtx            sync.RWMutex
	tasks          []*models.Task // most-recent-first
	projects       []*models.Project
	tasksLoaded    bool
	projectsLoaded bool

	subMtx    sync.Mutex
	subs      map[int]func(Event)
	nextSubID int

	// opLocks serializes mutations per entity id: a stale rollback must never
	// clobber a newer operation's result.
	opMtx   sync.Mutex
	opLocks map[uuid.UUID]*sync.Mutex
}

func New(api API, reminders ReminderSink) *Store {
	return &Store{
		api:       api,
		reminders: reminders,
		tasks:     []*models.Task{},
		projects:  []*models.Project{},
		subs:      map[int]func(Event){},
		opLocks:   map[uuid.UUID]*sync.Mutex{},
	}
}

func (s *Store) lockID(id uuid.UUID) func() {
	s.opMtx.Lock()
	l, ok := s.opLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.opLocks[id] = l
	}
	s.opMtx.Unlock()

	l.Lock()
	return l.Unlock
}

// Tasks returns a stable snapshot of the cached tasks, most-recent-first.
// Snapshots share nothing with the cache; callers can mutate them freely.
func (s *Store) Tasks() []*models.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	snapshot := make([]*models.Task, len(s.tasks))
	for i, t := range s.tasks {
		snapshot[i] = copyTask(t)
	}
	return snapshot
}

func (s *Store) Projects() []*models.Project {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	snapshot := make([]*models.Project, len(s.projects))
	for i, p := range s.projects {
		snapshot[i] = copyProject(p)
	}
	return snapshot
}

func copyTask(t *models.Task) *models.Task {
	copied := *t
	if t.Project != nil {
		project := *t.Project
		copied.Project = &project
	}
	return &copied
}

func copyProject(p *models.Project) *models.Project {
	copied := *p
	if p.Tasks != nil {
		nested := make([]*models.Task, len(p.Tasks))
		for i, t := range p.Tasks {
			nested[i] = copyTask(t)
		}
		copied.Tasks = nested
	}
	return &copied
}

func (s *Store) TasksLoaded() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.tasksLoaded
}

func (s *Store) ProjectsLoaded() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.projectsLoaded
}

// LoadTasks replaces the task cache wholesale with the server's owner-scoped
// set. First call is the cold start, later calls are refreshes.
func (s *Store) LoadTasks(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return &SyncError{Op: "load", Entity: "tasks", Err: err}
	}

	s.mtx.Lock()
	s.tasks = tasks
	s.tasksLoaded = true
	s.mtx.Unlock()

	s.emit(Event{Entity: EntityTask, Kind: EventLoaded})
	return nil
}

func (s *Store) LoadProjects(ctx context.Context) error {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return &SyncError{Op: "load", Entity: "projects", Err: err}
	}

	s.mtx.Lock()
	s.projects = projects
	s.projectsLoaded = true
	s.mtx.Unlock()

	s.emit(Event{Entity: EntityProject, Kind: EventLoaded})
	return nil
}

// CreateTask prepends a provisional record immediately, then reconciles it
// with the server-confirmed one. On failure the provisional record is removed
// again and the cache reads as if nothing happened.
func (s *Store) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now()
	temp := &models.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mtx.Lock()
	s.tasks = append([]*models.Task{temp}, s.tasks...)
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityTask, Kind: EventCreated, ID: temp.ID})

	created, err := s.api.CreateTask(ctx, input)
	if err != nil {
		s.removeTaskByID(temp.ID)
		s.emit(Event{Entity: EntityTask, Kind: EventDeleted, ID: temp.ID})
		return nil, &SyncError{Op: "create", Entity: "task", Err: err}
	}

	s.mtx.Lock()
	for i, t := range s.tasks {
		if t.ID == temp.ID {
			s.tasks[i] = created
			break
		}
	}
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityTask, Kind: EventUpdated, ID: created.ID})

	if s.reminders != nil && created.DueDate != nil {
		s.reminders.Schedule(*created)
	}
	return created, nil
}

// UpdateTask patches the cached record immediately and reconciles with the
// server's canonical record. On failure the pre-update snapshot is restored
// verbatim, timestamps included.
func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*models.Task, error) {
	unlock := s.lockID(id)
	defer unlock()

	s.mtx.Lock()
	idx := s.taskIndex(id)
	if idx < 0 {
		s.mtx.Unlock()
		return nil, ErrNotCached
	}
	snapshot := *s.tasks[idx]

	patched := snapshot
	applyTaskPatch(&patched, patch)
	patched.UpdatedAt = time.Now()
	s.tasks[idx] = &patched
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityTask, Kind: EventUpdated, ID: id})

	updated, err := s.api.UpdateTask(ctx, id, patch)
	if err != nil {
		s.mtx.Lock()
		if idx := s.taskIndex(id); idx >= 0 {
			restored := snapshot
			s.tasks[idx] = &restored
		}
		s.mtx.Unlock()
		s.emit(Event{Entity: EntityTask, Kind: EventUpdated, ID: id})
		return nil, &SyncError{Op: "update", Entity: "task", Err: err}
	}

	s.mtx.Lock()
	if idx := s.taskIndex(id); idx >= 0 {
		s.tasks[idx] = updated
	}
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityTask, Kind: EventUpdated, ID: id})

	if s.reminders != nil {
		if updated.DueDate != nil {
			s.reminders.Schedule(*updated)
		} else {
			s.reminders.Cancel(id)
		}
	}
	return updated, nil
}

// DeleteTask removes the record immediately; a failed round-trip reinserts
// the snapshot at its original position.
func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	unlock := s.lockID(id)
	defer unlock()

	s.mtx.Lock()
	idx := s.taskIndex(id)
	if idx < 0 {
		s.mtx.Unlock()
		return ErrNotCached
	}
	snapshot := *s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityTask, Kind: EventDeleted, ID: id})

	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.mtx.Lock()
		restored := snapshot
		pos := idx
		if pos > len(s.tasks) {
			pos = len(s.tasks)
		}
		s.tasks = append(s.tasks[:pos], append([]*models.Task{&restored}, s.tasks[pos:]...)...)
		s.mtx.Unlock()
		s.emit(Event{Entity: EntityTask, Kind: EventCreated, ID: id})
		return &SyncError{Op: "delete", Entity: "task", Err: err}
	}

	if s.reminders != nil {
		s.reminders.Cancel(id)
	}
	return nil
}

func (s *Store) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	now := time.Now()
	temp := &models.Project{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tasks:       []*models.Task{},
	}

	s.mtx.Lock()
	s.projects = append([]*models.Project{temp}, s.projects...)
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityProject, Kind: EventCreated, ID: temp.ID})

	created, err := s.api.CreateProject(ctx, input)
	if err != nil {
		s.removeProjectByID(temp.ID)
		s.emit(Event{Entity: EntityProject, Kind: EventDeleted, ID: temp.ID})
		return nil, &SyncError{Op: "create", Entity: "project", Err: err}
	}

	s.mtx.Lock()
	for i, p := range s.projects {
		if p.ID == temp.ID {
			s.projects[i] = created
			break
		}
	}
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityProject, Kind: EventUpdated, ID: created.ID})
	return created, nil
}

func (s *Store) UpdateProject(ctx context.Context, id uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	unlock := s.lockID(id)
	defer unlock()

	s.mtx.Lock()
	idx := s.projectIndex(id)
	if idx < 0 {
		s.mtx.Unlock()
		return nil, ErrNotCached
	}
	snapshot := *s.projects[idx]

	patched := snapshot
	if patch.Name != nil {
		patched.Name = *patch.Name
	}
	if patch.Description != nil {
		patched.Description = *patch.Description
	}
	patched.UpdatedAt = time.Now()
	s.projects[idx] = &patched
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityProject, Kind: EventUpdated, ID: id})

	updated, err := s.api.UpdateProject(ctx, id, patch)
	if err != nil {
		s.mtx.Lock()
		if idx := s.projectIndex(id); idx >= 0 {
			restored := snapshot
			s.projects[idx] = &restored
		}
		s.mtx.Unlock()
		s.emit(Event{Entity: EntityProject, Kind: EventUpdated, ID: id})
		return nil, &SyncError{Op: "update", Entity: "project", Err: err}
	}

	s.mtx.Lock()
	if idx := s.projectIndex(id); idx >= 0 {
		s.projects[idx] = updated
	}
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityProject, Kind: EventUpdated, ID: id})
	return updated, nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	unlock := s.lockID(id)
	defer unlock()

	s.mtx.Lock()
	idx := s.projectIndex(id)
	if idx < 0 {
		s.mtx.Unlock()
		return ErrNotCached
	}
	snapshot := *s.projects[idx]
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	s.mtx.Unlock()
	s.emit(Event{Entity: EntityProject, Kind: EventDeleted, ID: id})

	if err := s.api.DeleteProject(ctx, id); err != nil {
		s.mtx.Lock()
		restored := snapshot
		pos := idx
		if pos > len(s.projects) {
			pos = len(s.projects)
		}
		s.projects = append(s.projects[:pos], append([]*models.Project{&restored}, s.projects[pos:]...)...)
		s.mtx.Unlock()
		s.emit(Event{Entity: EntityProject, Kind: EventCreated, ID: id})
		return &SyncError{Op: "delete", Entity: "project", Err: err}
	}
	return nil
}

func (s *Store) taskIndex(id uuid.UUID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) projectIndex(id uuid.UUID) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeTaskByID(id uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if idx := s.taskIndex(id); idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	}
}

func (s *Store) removeProjectByID(id uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if idx := s.projectIndex(id); idx >= 0 {
		s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	}
}

func applyTaskPatch(task *models.Task, patch TaskPatch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	} else if patch.ClearDueDate {
		task.DueDate = nil
	}
	if patch.ProjectID != nil {
		task.ProjectID = patch.ProjectID
	} else if patch.ClearProjectID {
		task.ProjectID = nil
	}
}
