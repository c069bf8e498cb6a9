// Package presence periodically updates bot status with number of served guilds
package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/divine-development/divine/internal/schedule"
)

// Defaults used when not configured
const (
	DefaultInterval = 5 * time.Minute
	DefaultTemplate = "over {guilds} servers"
)

// Rotator recomputes status text from guild count on every tick
type Rotator struct {
	Count    func() int
	Apply    func(status string) error
	Template string
	Interval time.Duration
}

// New returns rotator
func New(count func() int, apply func(string) error, template string, interval time.Duration) *Rotator {
	if template == "" {
		template = DefaultTemplate
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Rotator{
		Count:    count,
		Apply:    apply,
		Template: template,
		Interval: interval,
	}
}

// Status renders status text for given guild count
func (r *Rotator) Status(guilds int) string {
	return strings.ReplaceAll(r.Template, "{guilds}", fmt.Sprint(guilds))
}

// Tick applies fresh status
func (r *Rotator) Tick(context.Context) error {
	return r.Apply(r.Status(r.Count()))
}

// Task returns periodic presence task
func (r *Rotator) Task() schedule.Task {
	return schedule.Task{
		Name:     "presence",
		Interval: r.Interval,
		Run:      r.Tick,
	}
}
