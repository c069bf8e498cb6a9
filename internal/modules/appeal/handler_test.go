package appeal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/config"
	"github.com/divine-development/divine/internal/store"
	"github.com/divine-development/divine/internal/ticket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID     = "100"
	submitterID = "200"
	channelID   = "555"
)

type call struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

type restRecorder struct {
	m     sync.Mutex
	calls []call
}

func (r *restRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	c := call{
		Method: req.Method,
		Path:   req.URL.Path,
	}

	if req.Body != nil {
		bs, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}

		if len(bs) > 0 {
			err = json.Unmarshal(bs, &c.Body)
			if err != nil {
				return nil, err
			}
		}
	}

	r.m.Lock()
	r.calls = append(r.calls, c)
	r.m.Unlock()

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader("{}")),
		Request:    req,
	}, nil
}

func (r *restRecorder) recorded() []call {
	r.m.Lock()
	defer r.m.Unlock()

	return append([]call(nil), r.calls...)
}

type stubGateway struct {
	createErr error
	deleted   []string
}

func (g *stubGateway) CreateChannel(string, string, string) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}

	return channelID, nil
}

func (g *stubGateway) PostSummary(string, string, ticket.Submission) error { return nil }

func (g *stubGateway) DirectMessage(string, string) error { return nil }

func (g *stubGateway) Send(string, string) error { return nil }

func (g *stubGateway) DeleteChannel(id string) error {
	g.deleted = append(g.deleted, id)

	return nil
}

func (g *stubGateway) ClearBotMessages(string) error { return nil }

func (g *stubGateway) PostEntry(string) error { return nil }

func (g *stubGateway) ChannelExists(string) (bool, error) { return true, nil }

type fixture struct {
	mod     *module
	session *discordgo.Session
	rest    *restRecorder
	gateway *stubGateway
	mapping *ticket.Mapping
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := store.NewFile(t.TempDir())
	require.NoError(t, err)

	session, err := discordgo.New("Bot token")
	require.NoError(t, err)

	rest := &restRecorder{}
	session.Client = &http.Client{Transport: rest}

	log, _ := test.NewNullLogger()
	gateway := &stubGateway{}
	mapping := ticket.NewMapping(s)

	conf := &bot.Configuration{
		Discord: session,
		Config:  &config.Root{Private: config.Private{Owner: ownerID}},
		Log:     log,
		Tickets: ticket.NewManager(gateway, mapping, ownerID, nil, log),
	}

	return &fixture{
		mod:     &module{config: conf},
		session: session,
		rest:    rest,
		gateway: gateway,
		mapping: mapping,
	}
}

func modalSubmit(customID, userID string, inputs ...discordgo.MessageComponent) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        "1",
			AppID:     "2",
			Token:     "tok",
			Type:      discordgo.InteractionModalSubmit,
			GuildID:   "10",
			ChannelID: channelID,
			Member: &discordgo.Member{
				User: &discordgo.User{ID: userID, Username: "Some One"},
			},
			Data: discordgo.ModalSubmitInteractionData{
				CustomID:   customID,
				Components: inputs,
			},
		},
	}
}

func assertDeferredEphemeral(t *testing.T, c call) {
	t.Helper()

	assert.Equal(t, http.MethodPost, c.Method)
	assert.True(t, strings.HasSuffix(c.Path, "/interactions/1/tok/callback"), c.Path)
	assert.EqualValues(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, c.Body["type"])

	data, ok := c.Body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, discordgo.MessageFlagsEphemeral, data["flags"])
}

func assertEdited(t *testing.T, c call, content string) {
	t.Helper()

	assert.Equal(t, http.MethodPatch, c.Method)
	assert.True(t, strings.HasSuffix(c.Path, "/webhooks/2/tok/messages/@original"), c.Path)
	assert.Equal(t, content, c.Body["content"])
}

func TestSubmitOpensAppeal(t *testing.T) {
	f := newFixture(t)

	err := f.mod.handlerSubmit(f.session, modalSubmit(ticket.SubmitModalID, submitterID,
		row(ticket.InputType, "ban"),
		row(ticket.InputReason, "sorry"),
	))
	require.NoError(t, err)

	calls := f.rest.recorded()
	require.Len(t, calls, 2)
	assertDeferredEphemeral(t, calls[0])
	assertEdited(t, calls[1], "Your appeal has been submitted. Continue in <#555>.")

	submitter, ok, err := f.mapping.Get(channelID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, submitterID, submitter)
}

func TestSubmitFailureReported(t *testing.T) {
	f := newFixture(t)
	f.gateway.createErr = errors.New("missing access")

	err := f.mod.handlerSubmit(f.session, modalSubmit(ticket.SubmitModalID, submitterID,
		row(ticket.InputType, "ban"),
		row(ticket.InputReason, "sorry"),
	))
	require.NoError(t, err)

	calls := f.rest.recorded()
	require.Len(t, calls, 2)
	assertDeferredEphemeral(t, calls[0])
	assertEdited(t, calls[1], "Your appeal could not be submitted: creating appeal channel: missing access")

	tickets, err := f.mapping.All()
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestSubmitIncompleteReported(t *testing.T) {
	f := newFixture(t)

	err := f.mod.handlerSubmit(f.session, modalSubmit(ticket.SubmitModalID, submitterID,
		row(ticket.InputType, " "),
		row(ticket.InputReason, "sorry"),
	))
	require.NoError(t, err)

	calls := f.rest.recorded()
	require.Len(t, calls, 2)
	assertEdited(t, calls[1], "Your appeal could not be submitted: "+ticket.ErrIncomplete.Error())
}

func TestSubmitOutsideGuild(t *testing.T) {
	f := newFixture(t)
	i := modalSubmit(ticket.SubmitModalID, submitterID)
	i.GuildID = ""

	assert.ErrorIs(t, f.mod.handlerSubmit(f.session, i), ErrGuildOnly)
	assert.Empty(t, f.rest.recorded())
}

func TestCloseModalByOwner(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mapping.Put(channelID, submitterID))

	err := f.mod.handlerCloseModal(f.session, modalSubmit(ticket.CloseModalID, ownerID,
		row(ticket.InputCloseReason, "accepted"),
	))
	require.NoError(t, err)

	calls := f.rest.recorded()
	require.Len(t, calls, 1)
	assertDeferredEphemeral(t, calls[0])
	assert.Equal(t, []string{channelID}, f.gateway.deleted)

	_, ok, err := f.mapping.Get(channelID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCloseModalNotOwnerReported(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mapping.Put(channelID, submitterID))

	err := f.mod.handlerCloseModal(f.session, modalSubmit(ticket.CloseModalID, submitterID,
		row(ticket.InputCloseReason, "accepted"),
	))
	require.NoError(t, err)

	calls := f.rest.recorded()
	require.Len(t, calls, 2)
	assertDeferredEphemeral(t, calls[0])
	assertEdited(t, calls[1], "Could not close appeal: "+ticket.ErrNotOwner.Error())
	assert.Empty(t, f.gateway.deleted)

	_, ok, err := f.mapping.Get(channelID)
	require.NoError(t, err)
	assert.True(t, ok)
}
