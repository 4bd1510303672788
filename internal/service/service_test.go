package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"taskdeck/internal/logger"
	"taskdeck/internal/models"
	rep "taskdeck/internal/repository"
	"taskdeck/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Task, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepo) Update(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Project, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func assertBusinessCode(t *testing.T, err error, code string) *service.BusinessError {
	t.Helper()
	var bizErr *service.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, code, bizErr.Code)
	return bizErr
}

func TestCreateTask_Defaults(t *testing.T) {
	repo := new(MockTaskRepo)
	svc := service.NewTaskService(repo, new(MockProjectRepo))

	repo.On("Create", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
		return task.Status == models.StatusTodo &&
			task.Priority == models.PriorityMedium &&
			task.OwnerID == "user-a" &&
			task.ID != uuid.Nil
	})).Return(nil).Once()

	task, err := svc.CreateTask(context.Background(), "user-a", service.CreateTaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	repo.AssertExpectations(t)
}

func TestCreateTask_EmptyTitle(t *testing.T) {
	repo := new(MockTaskRepo)
	svc := service.NewTaskService(repo, new(MockProjectRepo))

	_, err := svc.CreateTask(context.Background(), "user-a", service.CreateTaskInput{Title: "  "})
	assertBusinessCode(t, err, "VALIDATION_ERROR")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	svc := service.NewTaskService(new(MockTaskRepo), new(MockProjectRepo))

	_, err := svc.CreateTask(context.Background(), "user-a", service.CreateTaskInput{
		Title:    "x",
		Priority: models.Priority("URGENT"),
	})
	assertBusinessCode(t, err, "VALIDATION_ERROR")
}

func TestCreateTask_ProjectOwnershipChecked(t *testing.T) {
	repo := new(MockTaskRepo)
	projects := new(MockProjectRepo)
	svc := service.NewTaskService(repo, projects)

	other := uuid.New()
	projects.On("GetByID", mock.Anything, "user-a", other).Return(nil, rep.ErrNotFound).Once()

	_, err := svc.CreateTask(context.Background(), "user-a", service.CreateTaskInput{
		Title:     "x",
		ProjectID: &other,
	})
	assertBusinessCode(t, err, "NOT_FOUND")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateTask_MergesPresentFieldsOnly(t *testing.T) {
	repo := new(MockTaskRepo)
	svc := service.NewTaskService(repo, new(MockProjectRepo))

	id := uuid.New()
	due := time.Now().Add(time.Hour)
	existing := &models.Task{
		ID:          id,
		Title:       "original",
		Description: "keep me",
		Status:      models.StatusTodo,
		Priority:    models.PriorityHigh,
		DueDate:     &due,
		OwnerID:     "user-a",
	}
	repo.On("GetByID", mock.Anything, "user-a", id).Return(existing, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	done := models.StatusCompleted
	task, err := svc.UpdateTask(context.Background(), "user-a", id, service.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, "original", task.Title)
	assert.Equal(t, "keep me", task.Description)
	assert.Equal(t, &due, task.DueDate, "due date untouched when Set flag is off")
}

func TestUpdateTask_ClearsDueDate(t *testing.T) {
	repo := new(MockTaskRepo)
	svc := service.NewTaskService(repo, new(MockProjectRepo))

	id := uuid.New()
	due := time.Now().Add(time.Hour)
	existing := &models.Task{ID: id, Title: "x", Status: models.StatusTodo, Priority: models.PriorityMedium, DueDate: &due, OwnerID: "user-a"}
	repo.On("GetByID", mock.Anything, "user-a", id).Return(existing, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	task, err := svc.UpdateTask(context.Background(), "user-a", id, service.TaskPatch{SetDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
}

func TestUpdateTask_NotFound(t *testing.T) {
	repo := new(MockTaskRepo)
	svc := service.NewTaskService(repo, new(MockProjectRepo))

	id := uuid.New()
	repo.On("GetByID", mock.Anything, "user-a", id).Return(nil, rep.ErrNotFound).Once()

	title := "x"
	_, err := svc.UpdateTask(context.Background(), "user-a", id, service.TaskPatch{Title: &title})
	assertBusinessCode(t, err, "NOT_FOUND")
}

func TestDeleteTask_NotFound(t *testing.T) {
	repo := new(MockTaskRepo)
	svc := service.NewTaskService(repo, new(MockProjectRepo))

	id := uuid.New()
	repo.On("Delete", mock.Anything, "user-a", id).Return(rep.ErrNotFound).Once()

	err := svc.DeleteTask(context.Background(), "user-a", id)
	bizErr := assertBusinessCode(t, err, "NOT_FOUND")
	assert.Equal(t, "task", bizErr.Details["resource"])
}

func TestCreateProject_EmptyName(t *testing.T) {
	repo := new(MockProjectRepo)
	svc := service.NewProjectService(repo)

	_, err := svc.CreateProject(context.Background(), "user-a", "", "desc")
	assertBusinessCode(t, err, "VALIDATION_ERROR")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProject_OwnerStamped(t *testing.T) {
	repo := new(MockProjectRepo)
	svc := service.NewProjectService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(project *models.Project) bool {
		return project.OwnerID == "user-a" && project.Name == "Home"
	})).Return(nil).Once()

	project, err := svc.CreateProject(context.Background(), "user-a", "Home", "")
	require.NoError(t, err)
	assert.Equal(t, "user-a", project.OwnerID)
	repo.AssertExpectations(t)
}

func TestUpdateProject_NotFound(t *testing.T) {
	repo := new(MockProjectRepo)
	svc := service.NewProjectService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, "user-a", id).Return(nil, rep.ErrNotFound).Once()

	name := "renamed"
	_, err := svc.UpdateProject(context.Background(), "user-a", id, service.ProjectPatch{Name: &name})
	assertBusinessCode(t, err, "NOT_FOUND")
}
