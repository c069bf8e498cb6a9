// Package ticket implements appeal ticket lifecycle: private channel per
// submission, persisted channel to submitter mapping and owner-only closure.
package ticket

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/store"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotOwner is returned when someone other than the bot owner closes an appeal
	ErrNotOwner = errors.New("only the bot owner can close appeals")
	// ErrNotAppealChannel is returned when closing channel with no open appeal
	ErrNotAppealChannel = errors.New("not an appeal channel")
	// ErrIncomplete is returned when submission lacks type or reason
	ErrIncomplete = errors.New("appeal type and reason are required")
)

var channelNameInvalid = regexp.MustCompile(`[^a-z0-9-]+`)

// Submission holds appeal form fields
type Submission struct {
	Type   string
	Reason string
	Info   string
}

// Gateway is the chat platform surface used by Manager
type Gateway interface {
	CreateChannel(guildID, name, submitterID string) (channelID string, err error)
	PostSummary(channelID, submitterID string, submission Submission) error
	DirectMessage(userID, content string) error
	Send(channelID, content string) error
	DeleteChannel(channelID string) error
	ClearBotMessages(channelID string) error
	PostEntry(channelID string) error
	ChannelExists(channelID string) (bool, error)
}

// CloseReport describes how submitter was notified
type CloseReport struct {
	SubmitterID string
	Notified    bool
	Fallback    bool
}

// Manager drives appeal transitions, mapping is the source of truth
type Manager struct {
	Gateway Gateway
	Mapping *Mapping
	OwnerID string
	Audit   audit.Recorder
	log     *logrus.Logger
	locks   *store.KeyLock
}

// NewManager returns appeal manager
func NewManager(gateway Gateway, mapping *Mapping, ownerID string, recorder audit.Recorder, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}

	if recorder == nil {
		recorder = audit.Nop{}
	}

	return &Manager{
		Gateway: gateway,
		Mapping: mapping,
		OwnerID: ownerID,
		Audit:   recorder,
		log:     log,
		locks:   store.NewKeyLock(),
	}
}

// ChannelName derives appeal channel name from submitter name
func ChannelName(submitterName, submitterID string) string {
	name := channelNameInvalid.ReplaceAllString(strings.ToLower(submitterName), "-")
	if len(name) > 80 {
		name = name[:80]
	}

	name = strings.Trim(name, "-")
	if name == "" {
		name = submitterID
	}

	return "appeal-" + name
}

// CloseMessage renders notification sent to submitter
func CloseMessage(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided."
	}

	return "Your appeal has been closed.\nReason: " + reason
}

// Open creates appeal channel, posts submission summary and persists mapping.
// Nothing is persisted when channel creation fails.
func (m *Manager) Open(guildID, submitterID, submitterName string, submission Submission) (string, error) {
	if strings.TrimSpace(submission.Type) == "" || strings.TrimSpace(submission.Reason) == "" {
		return "", ErrIncomplete
	}

	channelID, err := m.Gateway.CreateChannel(guildID, ChannelName(submitterName, submitterID), submitterID)
	if err != nil {
		return "", fmt.Errorf("creating appeal channel: %w", err)
	}

	log := m.log.WithField("channel", channelID).WithField("submitter", submitterID)

	err = m.Gateway.PostSummary(channelID, submitterID, submission)
	if err != nil {
		log.WithError(err).Error("Posting appeal summary")
	}

	err = m.Mapping.Put(channelID, submitterID)
	if err != nil {
		log.WithError(err).Error("Saving appeal")

		if derr := m.Gateway.DeleteChannel(channelID); derr != nil {
			log.WithError(derr).Error("Removing unsaved appeal channel")
		}

		return "", fmt.Errorf("saving appeal: %w", err)
	}

	m.Audit.Record(audit.Event{
		Kind:    audit.KindTicketOpen,
		GuildID: guildID,
		ActorID: submitterID,
		Subject: channelID,
		Detail:  submission.Type,
	})

	log.Info("Appeal opened")

	return channelID, nil
}

// Close notifies submitter, deletes appeal channel and removes mapping entry.
// Notification falls back to the appeal channel when direct message is rejected,
// closure proceeds either way.
func (m *Manager) Close(channelID, invokerID, reason string) (*CloseReport, error) {
	if m.OwnerID == "" || invokerID != m.OwnerID {
		return nil, ErrNotOwner
	}

	unlock := m.locks.Lock(channelID)
	defer unlock()

	submitterID, ok, err := m.Mapping.Get(channelID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNotAppealChannel
	}

	log := m.log.WithField("channel", channelID).WithField("submitter", submitterID)
	report := &CloseReport{
		SubmitterID: submitterID,
	}
	message := CloseMessage(reason)

	err = m.Gateway.DirectMessage(submitterID, message)
	if err == nil {
		report.Notified = true
	} else {
		log.WithError(err).Warn("Direct message rejected, notifying in appeal channel")

		err = m.Gateway.Send(channelID, fmt.Sprintf("<@%s> %s", submitterID, message))
		if err != nil {
			log.WithError(err).Error("Notifying in appeal channel")
		} else {
			report.Fallback = true
		}
	}

	err = m.Gateway.DeleteChannel(channelID)
	if err != nil && !discordutil.IsNotFound(err) {
		return report, fmt.Errorf("deleting appeal channel: %w", err)
	}

	_, err = m.Mapping.Delete(channelID)
	if err != nil {
		return report, fmt.Errorf("removing appeal: %w", err)
	}

	m.Audit.Record(audit.Event{
		Kind:    audit.KindTicketClose,
		ActorID: invokerID,
		Subject: channelID,
		Detail:  reason,
	})

	log.Info("Appeal closed")

	return report, nil
}

// IsAppeal returns true if channel holds open appeal
func (m *Manager) IsAppeal(channelID string) (bool, error) {
	_, ok, err := m.Mapping.Get(channelID)

	return ok, err
}

// Tickets returns open appeals keyed by channel
func (m *Manager) Tickets() (map[string]string, error) {
	return m.Mapping.All()
}

// PublishEntry replaces bot messages in channel with single open appeal entry point
func (m *Manager) PublishEntry(channelID string) error {
	err := m.Gateway.ClearBotMessages(channelID)
	if err != nil {
		return fmt.Errorf("clearing appeal entry channel: %w", err)
	}

	return m.Gateway.PostEntry(channelID)
}

// Reconcile drops mapping entries whose channel no longer exists
func (m *Manager) Reconcile() (removed []string, err error) {
	channels, err := m.Mapping.Channels()
	if err != nil {
		return nil, err
	}

	for _, channelID := range channels {
		exists, err := m.Gateway.ChannelExists(channelID)
		if err != nil {
			m.log.WithError(err).WithField("channel", channelID).Warn("Checking appeal channel")
			continue
		}

		if exists {
			continue
		}

		unlock := m.locks.Lock(channelID)
		_, err = m.Mapping.Delete(channelID)
		unlock()

		if err != nil {
			return removed, err
		}

		removed = append(removed, channelID)
	}

	if len(removed) > 0 {
		m.log.WithField("channels", removed).Info("Removed orphaned appeals")
	}

	return removed, nil
}
