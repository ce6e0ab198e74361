// Package scheduler runs periodic background jobs on a cron schedule.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TodoLister lists todos by filter
type TodoLister interface {
	List(filter repository.TodoFilter) []models.Todo
}

// UserFinder looks up todo owners
type UserFinder interface {
	FindByID(id string) (models.User, error)
}

// Notifier delivers a reminder for one overdue todo
type Notifier interface {
	SendOverdueReminder(owner models.PublicUser, todo models.Todo) error
}

// ReminderJob notifies owners of incomplete todos whose due date has passed.
// Each todo is reported once per due date.
type ReminderJob struct {
	todos    TodoLister
	users    UserFinder
	notifier Notifier
	log      *logrus.Logger
	now      func() time.Time

	mu       sync.Mutex
	notified map[string]time.Time
}

// NewReminderJob initializes a new reminder job
func NewReminderJob(todos TodoLister, users UserFinder, notifier Notifier, log *logrus.Logger) *ReminderJob {
	return &ReminderJob{
		todos:    todos,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		notified: make(map[string]time.Time),
	}
}

// Run performs one scan and returns the number of reminders sent
func (j *ReminderJob) Run() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	incomplete := false
	sent := 0
	overdue := make(map[string]struct{})
	for _, todo := range j.todos.List(repository.TodoFilter{Completed: &incomplete}) {
		if todo.DueDate == nil || !todo.DueDate.Before(now) {
			continue
		}
		overdue[todo.ID] = struct{}{}
		if last, ok := j.notified[todo.ID]; ok && last.Equal(*todo.DueDate) {
			continue
		}

		owner, err := j.users.FindByID(todo.OwnerID)
		if err != nil {
			j.log.WithError(err).WithField("todo_id", todo.ID).Warn("Reminder skipped: owner not found")
			continue
		}
		if err := j.notifier.SendOverdueReminder(owner.Public(), todo); err != nil {
			j.log.WithError(err).WithField("todo_id", todo.ID).Error("Reminder delivery failed")
			continue
		}
		j.notified[todo.ID] = *todo.DueDate
		sent++
	}

	// forget todos that are no longer overdue
	for id := range j.notified {
		if _, ok := overdue[id]; !ok {
			delete(j.notified, id)
		}
	}

	if sent > 0 {
		j.log.Infof("Overdue reminders sent: %d", sent)
	}
	return sent
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New creates a scheduler running job on the given cron schedule
func New(schedule string, job *ReminderJob, log *logrus.Logger) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { job.Run() }); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}
