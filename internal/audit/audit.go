// Package audit records privileged and moderation events
package audit

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Event kinds
const (
	KindConfigUpdate = "config.update"
	KindGuildVerify  = "guild.verify"
	KindStaffAdd     = "staff.add"
	KindStaffRemove  = "staff.remove"
	KindVIPAdd       = "vip.add"
	KindVIPRemove    = "vip.remove"
	KindTicketOpen   = "ticket.open"
	KindTicketClose  = "ticket.close"
	KindRestart      = "update.restart"
)

// Event describes single recorded action
type Event struct {
	Time    time.Time
	Kind    string
	GuildID string
	ActorID string
	Subject string
	Detail  string
}

// Recorder persists events, implementations must not fail the calling operation
type Recorder interface {
	Record(event Event)
}

// Log writes events to logger
type Log struct {
	Log *logrus.Logger
}

// Record implementation
func (l *Log) Record(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	l.Log.WithFields(logrus.Fields{
		"kind":    event.Kind,
		"guild":   event.GuildID,
		"actor":   event.ActorID,
		"subject": event.Subject,
		"detail":  event.Detail,
		"time":    event.Time.UTC().Format(time.RFC3339),
	}).Info("Audit")
}

// Multi records event to every recorder
type Multi []Recorder

// Record implementation
func (m Multi) Record(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	for _, r := range m {
		r.Record(event)
	}
}

// Nop discards events
type Nop struct{}

// Record implementation
func (Nop) Record(Event) {}
