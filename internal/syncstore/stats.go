package syncstore

import (
	"math"
	"time"

	"taskdeck/internal/models"
)

type PriorityCounts struct {
	High   int `json:"HIGH"`
	Medium int `json:"MEDIUM"`
	Low    int `json:"LOW"`
}

type TaskStats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	InProgress     int            `json:"inProgress"`
	Todo           int            `json:"todo"`
	ByPriority     PriorityCounts `json:"byPriority"`
	CompletionRate float64        `json:"completionRate"`
}

// Stats recomputes the aggregate from the current cache snapshot on every
// call. Task counts are small, correctness beats caching here.
func (s *Store) Stats() TaskStats {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stats := TaskStats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		switch t.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		default:
			stats.Todo++
		}

		switch t.Priority {
		case models.PriorityHigh:
			stats.ByPriority.High++
		case models.PriorityLow:
			stats.ByPriority.Low++
		default:
			stats.ByPriority.Medium++
		}
	}

	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}
	return stats
}

// TodayTasks returns tasks whose due date falls on now's calendar day in the
// local zone.
func (s *Store) TodayTasks(now time.Time) []*models.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	today := []*models.Task{}
	for _, t := range s.tasks {
		if t.DueDate == nil {
			continue
		}
		if sameDay(t.DueDate.Local(), now.Local()) {
			today = append(today, copyTask(t))
		}
	}
	return today
}

// UpcomingTasks returns unfinished tasks due on some other calendar day.
func (s *Store) UpcomingTasks(now time.Time) []*models.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	upcoming := []*models.Task{}
	for _, t := range s.tasks {
		if t.DueDate == nil || t.Status == models.StatusCompleted {
			continue
		}
		if sameDay(t.DueDate.Local(), now.Local()) {
			continue
		}
		upcoming = append(upcoming, copyTask(t))
	}
	return upcoming
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
