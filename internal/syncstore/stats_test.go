package syncstore_test

import (
	"context"
	"testing"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/syncstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func statsStore(t *testing.T, tasks []*models.Task) *syncstore.Store {
	t.Helper()
	api := new(MockAPI)
	api.On("ListTasks", mock.Anything).Return(tasks, nil).Once()

	store := syncstore.New(api, nil)
	require.NoError(t, store.LoadTasks(context.Background()))
	return store
}

func statusTask(status models.Status, priority models.Priority) *models.Task {
	return &models.Task{
		ID:       uuid.New(),
		Title:    "t",
		Status:   status,
		Priority: priority,
	}
}

func TestStats_EmptyCache(t *testing.T) {
	store := statsStore(t, []*models.Task{})

	stats := store.Stats()
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.CompletionRate)
}

func TestStats_CountsAreConsistent(t *testing.T) {
	store := statsStore(t, []*models.Task{
		statusTask(models.StatusCompleted, models.PriorityHigh),
		statusTask(models.StatusCompleted, models.PriorityHigh),
		statusTask(models.StatusInProgress, models.PriorityMedium),
		statusTask(models.StatusTodo, models.PriorityLow),
		statusTask(models.StatusTodo, models.PriorityLow),
	})

	stats := store.Stats()
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, stats.Total, stats.Completed+stats.InProgress+stats.Todo)
	assert.Equal(t, stats.Total, stats.ByPriority.High+stats.ByPriority.Medium+stats.ByPriority.Low)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 2, stats.Todo)
	assert.Equal(t, 2, stats.ByPriority.High)
	assert.Equal(t, 40.0, stats.CompletionRate)
}

func TestStats_CompletionRateRounded(t *testing.T) {
	store := statsStore(t, []*models.Task{
		statusTask(models.StatusCompleted, models.PriorityMedium),
		statusTask(models.StatusCompleted, models.PriorityMedium),
		statusTask(models.StatusCompleted, models.PriorityMedium),
		statusTask(models.StatusTodo, models.PriorityMedium),
	})
	assert.Equal(t, 75.0, store.Stats().CompletionRate)

	store = statsStore(t, []*models.Task{
		statusTask(models.StatusCompleted, models.PriorityMedium),
		statusTask(models.StatusTodo, models.PriorityMedium),
		statusTask(models.StatusTodo, models.PriorityMedium),
	})
	assert.Equal(t, 33.3, store.Stats().CompletionRate)
}

func TestTodayAndUpcoming_SplitOnCalendarDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	todayMorning := time.Date(2026, 3, 14, 1, 0, 0, 0, time.Local)
	tomorrow := now.Add(24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	dueToday := statusTask(models.StatusTodo, models.PriorityMedium)
	dueToday.DueDate = &todayMorning
	dueTomorrow := statusTask(models.StatusInProgress, models.PriorityMedium)
	dueTomorrow.DueDate = &tomorrow
	doneNextWeek := statusTask(models.StatusCompleted, models.PriorityMedium)
	doneNextWeek.DueDate = &nextWeek
	noDue := statusTask(models.StatusTodo, models.PriorityMedium)

	store := statsStore(t, []*models.Task{dueToday, dueTomorrow, doneNextWeek, noDue})

	today := store.TodayTasks(now)
	require.Len(t, today, 1)
	assert.Equal(t, dueToday.ID, today[0].ID, "due earlier the same day still counts as today")

	upcoming := store.UpcomingTasks(now)
	require.Len(t, upcoming, 1)
	assert.Equal(t, dueTomorrow.ID, upcoming[0].ID, "completed and undated tasks are excluded")
}
