package ticket

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	owner     = "100"
	submitter = "200"
	guild     = "300"
	channel   = "400"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateChannel(guildID, name, submitterID string) (string, error) {
	args := m.Called(guildID, name, submitterID)

	return args.String(0), args.Error(1)
}

func (m *mockGateway) PostSummary(channelID, submitterID string, submission Submission) error {
	return m.Called(channelID, submitterID, submission).Error(0)
}

func (m *mockGateway) DirectMessage(userID, content string) error {
	return m.Called(userID, content).Error(0)
}

func (m *mockGateway) Send(channelID, content string) error {
	return m.Called(channelID, content).Error(0)
}

func (m *mockGateway) DeleteChannel(channelID string) error {
	return m.Called(channelID).Error(0)
}

func (m *mockGateway) ClearBotMessages(channelID string) error {
	return m.Called(channelID).Error(0)
}

func (m *mockGateway) PostEntry(channelID string) error {
	return m.Called(channelID).Error(0)
}

func (m *mockGateway) ChannelExists(channelID string) (bool, error) {
	args := m.Called(channelID)

	return args.Bool(0), args.Error(1)
}

type recorder struct {
	m      sync.Mutex
	events []audit.Event
}

func (r *recorder) Record(event audit.Event) {
	r.m.Lock()
	defer r.m.Unlock()

	r.events = append(r.events, event)
}

func restError(code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: code},
	}
}

func newManager(t *testing.T) (*Manager, *mockGateway, *recorder) {
	t.Helper()

	s, err := store.NewFile(t.TempDir())
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	gateway := &mockGateway{}
	rec := &recorder{}

	return NewManager(gateway, NewMapping(s), owner, rec, log), gateway, rec
}

func TestOpenPersistsSingleMapping(t *testing.T) {
	m, gateway, rec := newManager(t)
	submission := Submission{Type: "ban", Reason: "x", Info: "y"}

	gateway.On("CreateChannel", guild, "appeal-someone", submitter).Return(channel, nil).Once()
	gateway.On("PostSummary", channel, submitter, submission).Return(nil).Once()

	id, err := m.Open(guild, submitter, "Someone", submission)
	require.NoError(t, err)
	assert.Equal(t, channel, id)

	tickets, err := m.Tickets()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{channel: submitter}, tickets)

	gateway.AssertExpectations(t)
	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.KindTicketOpen, rec.events[0].Kind)
}

func TestOpenCreateFailure(t *testing.T) {
	m, gateway, _ := newManager(t)

	gateway.On("CreateChannel", guild, mock.Anything, submitter).Return("", restError(http.StatusForbidden))

	_, err := m.Open(guild, submitter, "someone", Submission{Type: "ban", Reason: "x"})
	require.Error(t, err)

	tickets, err := m.Tickets()
	require.NoError(t, err)
	assert.Empty(t, tickets)
	gateway.AssertNotCalled(t, "PostSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenSummaryFailureKeepsMapping(t *testing.T) {
	m, gateway, _ := newManager(t)

	gateway.On("CreateChannel", guild, mock.Anything, submitter).Return(channel, nil)
	gateway.On("PostSummary", channel, submitter, mock.Anything).Return(errors.New("boom"))

	_, err := m.Open(guild, submitter, "someone", Submission{Type: "mute", Reason: "x"})
	require.NoError(t, err)

	ok, err := m.IsAppeal(channel)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenIncomplete(t *testing.T) {
	m, gateway, _ := newManager(t)

	_, err := m.Open(guild, submitter, "someone", Submission{Type: "ban"})
	assert.ErrorIs(t, err, ErrIncomplete)
	gateway.AssertNotCalled(t, "CreateChannel", mock.Anything, mock.Anything, mock.Anything)
}

func openTicket(t *testing.T, m *Manager) {
	t.Helper()

	require.NoError(t, m.Mapping.Put(channel, submitter))
}

func TestCloseByOwner(t *testing.T) {
	m, gateway, rec := newManager(t)
	openTicket(t, m)

	gateway.On("DirectMessage", submitter, CloseMessage("denied")).Return(nil).Once()
	gateway.On("DeleteChannel", channel).Return(nil).Once()

	report, err := m.Close(channel, owner, "denied")
	require.NoError(t, err)
	assert.True(t, report.Notified)
	assert.False(t, report.Fallback)
	assert.Equal(t, submitter, report.SubmitterID)

	tickets, err := m.Tickets()
	require.NoError(t, err)
	assert.Empty(t, tickets)

	gateway.AssertExpectations(t)
	gateway.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.KindTicketClose, rec.events[0].Kind)
}

func TestCloseFallsBackToChannel(t *testing.T) {
	m, gateway, _ := newManager(t)
	openTicket(t, m)

	gateway.On("DirectMessage", submitter, mock.Anything).Return(restError(http.StatusForbidden))
	gateway.On("Send", channel, "<@"+submitter+"> "+CloseMessage("accepted")).Return(nil).Once()
	gateway.On("DeleteChannel", channel).Return(nil)

	report, err := m.Close(channel, owner, "accepted")
	require.NoError(t, err)
	assert.False(t, report.Notified)
	assert.True(t, report.Fallback)

	ok, err := m.IsAppeal(channel)
	require.NoError(t, err)
	assert.False(t, ok)
	gateway.AssertExpectations(t)
}

func TestCloseNotOwner(t *testing.T) {
	m, gateway, _ := newManager(t)
	openTicket(t, m)

	_, err := m.Close(channel, submitter, "nope")
	assert.ErrorIs(t, err, ErrNotOwner)

	ok, err := m.IsAppeal(channel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, gateway.Calls)
}

func TestCloseUnmappedChannel(t *testing.T) {
	m, gateway, _ := newManager(t)
	openTicket(t, m)

	_, err := m.Close("999", owner, "nope")
	assert.ErrorIs(t, err, ErrNotAppealChannel)
	assert.Empty(t, gateway.Calls)

	tickets, err := m.Tickets()
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestCloseDeleteFailureKeepsMapping(t *testing.T) {
	m, gateway, _ := newManager(t)
	openTicket(t, m)

	gateway.On("DirectMessage", submitter, mock.Anything).Return(nil)
	gateway.On("DeleteChannel", channel).Return(restError(http.StatusForbidden))

	_, err := m.Close(channel, owner, "done")
	require.Error(t, err)

	ok, err := m.IsAppeal(channel)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCloseAlreadyDeletedChannel(t *testing.T) {
	m, gateway, _ := newManager(t)
	openTicket(t, m)

	gateway.On("DirectMessage", submitter, mock.Anything).Return(nil)
	gateway.On("DeleteChannel", channel).Return(restError(http.StatusNotFound))

	_, err := m.Close(channel, owner, "done")
	require.NoError(t, err)

	ok, err := m.IsAppeal(channel)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentCloseOnce(t *testing.T) {
	m, gateway, _ := newManager(t)
	openTicket(t, m)

	gateway.On("DirectMessage", submitter, mock.Anything).Return(nil)
	gateway.On("DeleteChannel", channel).Return(nil)

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		ok   int
		errs []error
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := m.Close(channel, owner, "done")

			lock.Lock()
			defer lock.Unlock()

			if err == nil {
				ok++
			} else {
				errs = append(errs, err)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, ok)

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrNotAppealChannel)
	}

	gateway.AssertNumberOfCalls(t, "DeleteChannel", 1)
}

func TestPublishEntry(t *testing.T) {
	m, gateway, _ := newManager(t)

	gateway.On("ClearBotMessages", "500").Return(nil).Once()
	gateway.On("PostEntry", "500").Return(nil).Once()

	require.NoError(t, m.PublishEntry("500"))
	gateway.AssertExpectations(t)
}

func TestPublishEntryClearFailure(t *testing.T) {
	m, gateway, _ := newManager(t)

	gateway.On("ClearBotMessages", "500").Return(restError(http.StatusForbidden))

	require.Error(t, m.PublishEntry("500"))
	gateway.AssertNotCalled(t, "PostEntry", mock.Anything)
}

func TestReconcile(t *testing.T) {
	m, gateway, _ := newManager(t)

	require.NoError(t, m.Mapping.Put("1", "11"))
	require.NoError(t, m.Mapping.Put("2", "22"))
	require.NoError(t, m.Mapping.Put("3", "33"))

	gateway.On("ChannelExists", "1").Return(true, nil)
	gateway.On("ChannelExists", "2").Return(false, nil)
	gateway.On("ChannelExists", "3").Return(false, errors.New("timeout"))

	removed, err := m.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, removed)

	tickets, err := m.Tickets()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "11", "3": "33"}, tickets)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "appeal-some-one", ChannelName("Some One!", "1"))
	assert.Equal(t, "appeal-1", ChannelName("???", "1"))
	assert.Equal(t, "appeal-x", ChannelName("  x", "1"))

	long := ChannelName(strings.Repeat("a", 79)+" b", "1")
	assert.Equal(t, "appeal-"+strings.Repeat("a", 79), long)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestCloseMessage(t *testing.T) {
	assert.Contains(t, CloseMessage(""), "No reason provided.")
	assert.Contains(t, CloseMessage(" spam "), "Reason: spam")
}
