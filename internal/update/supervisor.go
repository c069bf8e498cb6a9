// Package update watches upstream repository and restarts the process when a new revision is published
package update

import (
	"context"
	"sync"
	"time"

	"github.com/divine-development/divine/internal/schedule"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is upstream polling interval used when none configured
const DefaultInterval = time.Minute

// Source provides latest upstream revision, empty revision means upstream has none
type Source interface {
	Latest(ctx context.Context) (string, error)
}

// Restarter replaces running process with a fresh one
type Restarter interface {
	Restart() error
}

// RestarterFunc adapts function to Restarter
type RestarterFunc func() error

// Restart implementation
func (f RestarterFunc) Restart() error {
	return f()
}

// State of supervisor
type State int

// Supervisor states
const (
	Uninitialized State = iota
	Tracking
)

// String implementation
func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}

	return "uninitialized"
}

// Result of single upstream check
type Result int

// Check results
const (
	ResultUnchanged Result = iota
	ResultInitialized
	ResultRestarting
)

// String implementation
func (r Result) String() string {
	switch r {
	case ResultInitialized:
		return "initialized"
	case ResultRestarting:
		return "restarting"
	}

	return "no new revision"
}

// Supervisor tracks last seen upstream revision
type Supervisor struct {
	Source    Source
	Restarter Restarter
	Interval  time.Duration
	log       *logrus.Logger
	m         sync.Mutex
	state     State
	revision  string
}

// New returns uninitialized supervisor
func New(source Source, restarter Restarter, interval time.Duration, log *logrus.Logger) *Supervisor {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if log == nil {
		log = logrus.New()
	}

	return &Supervisor{
		Source:    source,
		Restarter: restarter,
		Interval:  interval,
		log:       log,
	}
}

// State returns current state and tracked revision
func (s *Supervisor) State() (State, string) {
	s.m.Lock()
	defer s.m.Unlock()

	return s.state, s.revision
}

// Check polls upstream once and performs state transition. Failed poll keeps
// current state. ResultRestarting means caller is expected to call Restart.
func (s *Supervisor) Check(ctx context.Context) (Result, string, error) {
	revision, err := s.Source.Latest(ctx)
	if err != nil {
		return ResultUnchanged, "", err
	}

	s.m.Lock()
	defer s.m.Unlock()

	if revision == "" {
		return ResultUnchanged, s.revision, nil
	}

	switch {
	case s.state == Uninitialized:
		s.state = Tracking
		s.revision = revision

		s.log.WithField("revision", revision).Info("Tracking upstream revision")

		return ResultInitialized, revision, nil
	case revision != s.revision:
		s.log.WithField("previous", s.revision).WithField("revision", revision).Info("New upstream revision detected")

		s.revision = revision

		return ResultRestarting, revision, nil
	}

	return ResultUnchanged, revision, nil
}

// Restart invokes restarter
func (s *Supervisor) Restart() error {
	s.log.Warn("Restarting")

	return s.Restarter.Restart()
}

// Tick checks upstream and restarts on new revision
func (s *Supervisor) Tick(ctx context.Context) error {
	result, _, err := s.Check(ctx)
	if err != nil {
		return err
	}

	if result == ResultRestarting {
		return s.Restart()
	}

	return nil
}

// Task returns periodic polling task
func (s *Supervisor) Task() schedule.Task {
	return schedule.Task{
		Name:     "update.check",
		Interval: s.Interval,
		Run:      s.Tick,
	}
}
