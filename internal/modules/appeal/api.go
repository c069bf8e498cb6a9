// Package appeal provides appeal ticket buttons, forms and commands
package appeal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/modules/auth"
	"github.com/divine-development/divine/internal/router"
	"github.com/divine-development/divine/internal/ticket"
)

var (
	// ErrGuildOnly is returned when appeal is opened outside of a server
	ErrGuildOnly = errors.New("appeals can only be opened in a server")
	// ErrNoEntryChannel is returned when appeal entry channel is not configured
	ErrNoEntryChannel = errors.New("appeal entry channel is not configured")
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	config.OnComponent(ticket.EntryButtonID, mod.handlerEntry)
	config.OnModal(ticket.SubmitModalID, mod.handlerSubmit)
	config.OnComponent(ticket.CloseButtonID, mod.handlerCloseButton)
	config.OnModal(ticket.CloseModalID, mod.handlerCloseModal)

	group := config.Router.Group("appeal").SetDescription("appeals")

	group.On("closeappeal", "closes appeal in current channel", mod.commandClose).
		WithUsage("<reason>")
	group.On("appeals", "lists open appeals", mod.commandList).
		Set(auth.RouteConfigKey, auth.Owner)
	group.On("publishappeals", "reposts appeal button in entry channel", mod.commandPublish).
		Set(auth.RouteConfigKey, auth.Owner)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

// Ready drops appeals whose channel was deleted while offline and republishes entry point
func (mod *module) Ready(config *bot.Configuration) {
	_, err := config.Tickets.Reconcile()
	if err != nil {
		config.Log.WithError(err).Error("Reconciling appeals")
	}

	err = mod.publish()
	if err != nil && !errors.Is(err, ErrNoEntryChannel) {
		config.Log.WithError(err).Error("Publishing appeal entry")
	}
}

func (mod *module) publish() error {
	channelID := mod.config.Config.Private.Appeals.EntryChannel
	if channelID == "" {
		return ErrNoEntryChannel
	}

	return mod.config.Tickets.PublishEntry(channelID)
}

func submission(data discordgo.ModalSubmitInteractionData) ticket.Submission {
	return ticket.Submission{
		Type:   strings.TrimSpace(discordutil.ModalValue(data, ticket.InputType)),
		Reason: strings.TrimSpace(discordutil.ModalValue(data, ticket.InputReason)),
		Info:   strings.TrimSpace(discordutil.ModalValue(data, ticket.InputInfo)),
	}
}

func (mod *module) handlerEntry(session *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return ErrGuildOnly
	}

	return discordutil.RespondModal(session, i.Interaction, ticket.SubmitModal())
}

func (mod *module) handlerSubmit(session *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return ErrGuildOnly
	}

	user := discordutil.InteractionUser(i.Interaction)
	if user == nil {
		return ErrGuildOnly
	}

	err := discordutil.AckEphemeral(session, i.Interaction)
	if err != nil {
		return err
	}

	reply := "Your appeal has been submitted."

	channelID, err := mod.config.Tickets.Open(i.GuildID, user.ID, user.Username, submission(i.ModalSubmitData()))
	if err != nil {
		mod.config.Log.WithError(err).WithField("user", user.ID).Error("Opening appeal")

		reply = "Your appeal could not be submitted: " + err.Error()
	} else {
		reply += fmt.Sprintf(" Continue in <#%s>.", channelID)
	}

	err = discordutil.EditResponse(session, i.Interaction, reply)
	if err != nil {
		mod.config.Log.WithError(err).Debug("Acknowledging appeal")
	}

	return nil
}

func (mod *module) handlerCloseButton(session *discordgo.Session, i *discordgo.InteractionCreate) error {
	user := discordutil.InteractionUser(i.Interaction)
	if user == nil || !mod.config.IsOwner(user.ID) {
		return ticket.ErrNotOwner
	}

	ok, err := mod.config.Tickets.IsAppeal(i.ChannelID)
	if err != nil {
		return err
	}

	if !ok {
		return ticket.ErrNotAppealChannel
	}

	return discordutil.RespondModal(session, i.Interaction, ticket.CloseModal())
}

func (mod *module) handlerCloseModal(session *discordgo.Session, i *discordgo.InteractionCreate) error {
	user := discordutil.InteractionUser(i.Interaction)
	if user == nil {
		return ticket.ErrNotOwner
	}

	reason := strings.TrimSpace(discordutil.ModalValue(i.ModalSubmitData(), ticket.InputCloseReason))

	err := discordutil.AckEphemeral(session, i.Interaction)
	if err != nil {
		return err
	}

	_, err = mod.config.Tickets.Close(i.ChannelID, user.ID, reason)
	if err != nil {
		mod.config.Log.WithError(err).WithField("channel", i.ChannelID).Error("Closing appeal")

		if eerr := discordutil.EditResponse(session, i.Interaction, "Could not close appeal: "+err.Error()); eerr != nil {
			mod.config.Log.WithError(eerr).Debug("Reporting appeal close failure")
		}
	}

	return nil
}

func (mod *module) commandClose(ctx *router.Context) error {
	_, err := mod.config.Tickets.Close(ctx.Message.ChannelID, ctx.AuthorID(), ctx.Rest())
	if err != nil {
		return err
	}

	return bot.ErrNoReply
}

func ticketList(tickets map[string]string) string {
	if len(tickets) == 0 {
		return "No open appeals."
	}

	channels := make([]string, 0, len(tickets))

	for channelID := range tickets {
		channels = append(channels, channelID)
	}

	sort.Strings(channels)

	sb := &strings.Builder{}

	for _, channelID := range channels {
		_, _ = fmt.Fprintf(sb, "<#%s> by <@%s>\n", channelID, tickets[channelID])
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func (mod *module) commandList(ctx *router.Context) error {
	tickets, err := mod.config.Tickets.Tickets()
	if err != nil {
		return err
	}

	return ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Open appeals (%d)", len(tickets)),
		Description: ticketList(tickets),
		Color:       mod.config.EmbedColor(),
	})
}

func (mod *module) commandPublish(*router.Context) error {
	return mod.publish()
}
