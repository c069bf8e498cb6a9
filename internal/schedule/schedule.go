// Package schedule runs periodic background tasks
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Task is a named unit of periodic work
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs every task immediately and then on its interval until context is done
type Scheduler struct {
	log   *logrus.Logger
	tasks []Task
	group *errgroup.Group
	once  sync.Once
	m     sync.Mutex
}

// New returns scheduler for given tasks
func New(log *logrus.Logger, tasks ...Task) *Scheduler {
	if log == nil {
		log = logrus.New()
	}

	return &Scheduler{
		log:   log,
		tasks: tasks,
	}
}

// Add registers task, must be called before Start
func (s *Scheduler) Add(task Task) {
	s.tasks = append(s.tasks, task)
}

// Tasks returns registered tasks
func (s *Scheduler) Tasks() []Task {
	return s.tasks
}

// Start launches task loops, subsequent calls do nothing
func (s *Scheduler) Start(ctx context.Context) {
	s.once.Do(func() {
		s.m.Lock()
		defer s.m.Unlock()

		s.group, ctx = errgroup.WithContext(ctx)

		for _, t := range s.tasks {
			t := t

			s.group.Go(func() error {
				s.loop(ctx, t)

				return nil
			})
		}

		s.log.WithField("tasks", len(s.tasks)).Info("Background tasks started")
	})
}

// Wait blocks until all task loops exit
func (s *Scheduler) Wait() {
	s.m.Lock()
	group := s.group
	s.m.Unlock()

	if group != nil {
		_ = group.Wait()
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	err := t.Run(ctx)
	if err != nil {
		s.log.WithError(err).WithField("task", t.Name).Error("Running background task")
	}
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	s.runOnce(ctx, t)

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.WithField("task", t.Name).Debug("Background task stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}
