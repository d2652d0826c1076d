// Package notify arms task reminders and delivers them through a domain.Notifier.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/runoshun/taskdeck/internal/domain"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// lookahead bounds the search for the next open occurrence of a recurring task.
const lookahead = 366

// deliverTimeout bounds a single notification delivery.
const deliverTimeout = 30 * time.Second

// once is a cron.Schedule that fires a single time.
type once time.Time

// Next returns the fire time until it has passed, then the zero time,
// which cron treats as "never again".
func (o once) Next(t time.Time) time.Time {
	if t.Before(time.Time(o)) {
		return time.Time(o)
	}
	return time.Time{}
}

// DigestFunc builds the digest message. ok is false when there is nothing to report.
type DigestFunc func() (title, body string, ok bool)

// Scheduler owns every armed reminder. It replaces a process-wide map of
// timer handles: the container constructs one and Stop tears it all down.
// Fields are ordered to minimize memory padding.
type Scheduler struct {
	cron        *cron.Cron
	notifier    domain.Notifier
	logger      domain.Logger
	entries     map[int64]cron.EntryID
	now         func() time.Time
	loc         *time.Location
	title       string
	defaultTime string
	digest      cron.EntryID
	mu          sync.Mutex
}

// Ensure Scheduler implements domain.ReminderScheduler.
var _ domain.ReminderScheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler. defaultTime ("HH:MM") applies to tasks without a time.
func NewScheduler(notifier domain.Notifier, logger domain.Logger, defaultTime string) *Scheduler {
	if _, _, ok := domain.ParseClock(defaultTime); !ok {
		defaultTime = domain.DefaultReminderTime
	}
	return &Scheduler{
		cron:        cron.New(cron.WithParser(cronParser), cron.WithLocation(time.Local)),
		notifier:    notifier,
		logger:      logger,
		entries:     make(map[int64]cron.EntryID),
		now:         time.Now,
		loc:         time.Local,
		title:       domain.DefaultNotifyTitle,
		defaultTime: defaultTime,
	}
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running deliveries.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Count returns the number of armed reminders.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FireTime returns when the reminder for task should fire.
// ok is false for undated, completed or past tasks.
func (s *Scheduler) FireTime(task *domain.Task) (time.Time, bool) {
	hour, minute, ok := task.Clock()
	if !ok {
		hour, minute, _ = domain.ParseClock(s.defaultTime)
	}
	now := s.now()

	if task.Kind() == domain.KindRecurring || task.Kind() == domain.KindCarryRecurring {
		today := domain.DateOf(now)
		m := domain.Materializer{Today: func() domain.Date { return today }}
		for _, occ := range m.InstancesForRange(task, today, today.AddDays(lookahead)) {
			if occ.Task.Completed {
				if occ.CarryRecurring {
					return time.Time{}, false
				}
				continue
			}
			if at := occ.Date.At(hour, minute, s.loc); at.After(now) {
				return at, true
			}
		}
		return time.Time{}, false
	}

	if task.Date.IsZero() || task.Completed {
		return time.Time{}, false
	}
	at := task.Date.At(hour, minute, s.loc)
	if !at.After(now) {
		return time.Time{}, false
	}
	return at, true
}

// Schedule (re)arms the reminder for task and reports whether one is armed.
func (s *Scheduler) Schedule(task *domain.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(task.ID)

	at, ok := s.FireTime(task)
	if !ok {
		return false
	}

	id, name := task.ID, task.Name
	s.entries[id] = s.cron.Schedule(once(at), cron.FuncJob(func() {
		s.fire(id, name)
	}))
	s.logger.Debug(id, "notify", fmt.Sprintf("reminder armed for %s", at.Format("2006-01-02 15:04")))
	return true
}

// Cancel removes the reminder for the task, if any.
func (s *Scheduler) Cancel(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(taskID)
}

func (s *Scheduler) cancelLocked(taskID int64) {
	if entry, ok := s.entries[taskID]; ok {
		s.cron.Remove(entry)
		delete(s.entries, taskID)
	}
}

// RescheduleAll drops every reminder and arms those derived from tasks.
func (s *Scheduler) RescheduleAll(tasks []*domain.Task) {
	s.mu.Lock()
	for id := range s.entries {
		s.cancelLocked(id)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		s.Schedule(t)
	}
}

// SetDigest installs a recurring digest on the cron spec. An empty spec removes it.
func (s *Scheduler) SetDigest(spec string, build DigestFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.digest != 0 {
		s.cron.Remove(s.digest)
		s.digest = 0
	}
	if spec == "" {
		return nil
	}

	sched, err := cronParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse digest schedule: %w", err)
	}
	s.digest = s.cron.Schedule(sched, cron.FuncJob(func() {
		title, body, ok := build()
		if !ok {
			return
		}
		s.deliver(0, title, body)
	}))
	return nil
}

func (s *Scheduler) fire(taskID int64, name string) {
	s.mu.Lock()
	s.cancelLocked(taskID)
	s.mu.Unlock()

	s.deliver(taskID, s.title, name)
}

func (s *Scheduler) deliver(taskID int64, title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, title, body); err != nil {
		s.logger.Warn(taskID, "notify", fmt.Sprintf("delivery failed: %v", err))
		return
	}
	s.logger.Info(taskID, "notify", "delivered: "+body)
}
