// Package reminder turns task due dates into a bounded set of local
// notifications. Timers are armed per task at fixed lead times and are always
// cancelled before rearming, so a task never owns more than one timer set.
package reminder

import (
	"sync"
	"time"

	"taskdeck/internal/logger"
	"taskdeck/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type leadTime struct {
	offset time.Duration
	label  string
}

var leadTimes = []leadTime{
	{24 * time.Hour, "1 day"},
	{2 * time.Hour, "2 hours"},
	{30 * time.Minute, "30 minutes"},
}

type Scheduler struct {
	notifier Notifier
	clock    Clock

	// settingsPath is the local-storage analog holding the enabled flag
	// across sessions.
	settingsPath string

	mtx        sync.Mutex
	timers     map[uuid.UUID]map[Timer]struct{}
	enabled    bool
	permission PermissionState
}

func New(notifier Notifier, clock Clock, settingsPath string) *Scheduler {
	return &Scheduler{
		notifier:     notifier,
		clock:        clock,
		settingsPath: settingsPath,
		timers:       map[uuid.UUID]map[Timer]struct{}{},
		enabled:      loadEnabled(settingsPath),
		permission:   PermissionDefault,
	}
}

func (s *Scheduler) Enabled() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.enabled
}

// Enable turns reminders on, asking the host for permission when it has not
// been decided yet. Unsupported hosts and denied permission are a plain false,
// never an error.
func (s *Scheduler) Enable() bool {
	if !s.notifier.Supported() {
		logger.Warn("Reminder: host has no notification support")
		return false
	}

	s.mtx.Lock()
	permission := s.permission
	s.mtx.Unlock()

	if permission != PermissionGranted {
		permission = s.notifier.RequestPermission()
		s.mtx.Lock()
		s.permission = permission
		s.mtx.Unlock()
	}
	if permission != PermissionGranted {
		logger.Info("Reminder: permission not granted", zap.String("state", string(permission)))
		return false
	}

	s.mtx.Lock()
	s.enabled = true
	s.mtx.Unlock()
	saveEnabled(s.settingsPath, true)
	return true
}

// Disable flushes every armed timer across all tasks; no timer handle may
// survive the flag flipping off.
func (s *Scheduler) Disable() {
	s.mtx.Lock()
	s.enabled = false
	for id := range s.timers {
		s.cancelLocked(id)
	}
	s.mtx.Unlock()
	saveEnabled(s.settingsPath, false)
}

// Schedule arms one timer per lead time still ahead of now. Lead times already
// in the past are skipped silently. Existing timers for the task are cancelled
// first, so calling twice is the same as calling once.
func (s *Scheduler) Schedule(task models.Task) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.enabled || task.DueDate == nil || s.permission != PermissionGranted {
		return
	}

	s.cancelLocked(task.ID)

	now := s.clock.Now()
	due := *task.DueDate
	armed := map[Timer]struct{}{}
	for _, lead := range leadTimes {
		fireAt := due.Add(-lead.offset)
		if !fireAt.After(now) {
			continue
		}

		task, label := task, lead.label
		handle := new(Timer)
		*handle = s.clock.AfterFunc(fireAt.Sub(now), func() {
			s.fire(task, label, handle)
		})
		armed[*handle] = struct{}{}
	}

	if len(armed) > 0 {
		s.timers[task.ID] = armed
	}
}

// Reschedule is cancel-then-schedule: it also clears timers for tasks whose
// due date went away, which Schedule alone would leave armed.
func (s *Scheduler) Reschedule(task models.Task) {
	s.Cancel(task.ID)
	s.Schedule(task)
}

func (s *Scheduler) Cancel(taskID uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.cancelLocked(taskID)
}

func (s *Scheduler) cancelLocked(taskID uuid.UUID) {
	for t := range s.timers[taskID] {
		t.Stop()
	}
	delete(s.timers, taskID)
}

// ArmedTimers reports how many timers a task currently owns.
func (s *Scheduler) ArmedTimers(taskID uuid.UUID) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.timers[taskID])
}

// TotalArmed reports the number of armed timers across all tasks.
func (s *Scheduler) TotalArmed() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	total := 0
	for _, timers := range s.timers {
		total += len(timers)
	}
	return total
}

// fire runs on the timer goroutine. It retires its own handle so the armed
// counts stay honest, then re-checks the enabled flag: arming happens well in
// advance and the user may have toggled off since. A handle missing from the
// set means the task was rescheduled after this timer left the wheel; the
// retire is a no-op then.
func (s *Scheduler) fire(task models.Task, label string, handle *Timer) {
	s.mtx.Lock()
	if set, armed := s.timers[task.ID]; armed {
		delete(set, *handle)
		if len(set) == 0 {
			delete(s.timers, task.ID)
		}
	}
	ok := s.enabled && s.permission == PermissionGranted
	s.mtx.Unlock()
	if !ok {
		return
	}

	title := "Task Due Soon: " + task.Title
	body := "This task is due in " + label
	if err := s.notifier.Show(title, body); err != nil {
		logger.Warn("Reminder: failed to show notification",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
	}
}
