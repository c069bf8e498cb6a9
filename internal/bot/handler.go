package bot

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/router"
)

func (bot *Bot) handlerReady(_ *discordgo.Session, ready *discordgo.Ready) {
	bot.Log.WithField("user", ready.User.String()).WithField("guilds", len(ready.Guilds)).Info("Gateway ready")

	bot.ready.Do(func() {
		err := bot.Staff.List.Ensure()
		if err != nil {
			bot.Log.WithError(err).Error("Creating staff list")
		}

		err = bot.VIPs.List.Ensure()
		if err != nil {
			bot.Log.WithError(err).Error("Creating vip list")
		}

		bot.Scheduler.Start(bot.ctx)

		for _, m := range bot.Modules {
			if rm, ok := m.(ReadyModule); ok {
				rm.Ready(&bot.Configuration)
			}
		}
	})
}

func (bot *Bot) handlerGuildCreate(_ *discordgo.Session, guildCreate *discordgo.GuildCreate) {
	created, err := bot.Repository.Ensure(guildCreate.ID)
	if err != nil {
		bot.Log.WithError(err).WithField("guild", guildCreate.ID).Error("Creating guild config")
	}

	if created {
		bot.Log.WithField("guild", guildCreate.ID).WithField("name", guildCreate.Name).Info("Joined new guild")
	}

	for _, m := range bot.Modules {
		m.Configure(&bot.Configuration, guildCreate.Guild)
	}
}

func (bot *Bot) handlerMessageCreate(session *discordgo.Session, messageCreate *discordgo.MessageCreate) {
	err := bot.Router.Dispatch(
		session,
		bot.Prefix(messageCreate.GuildID),
		session.State.User.ID,
		messageCreate.Message,
	)
	if err != nil && !errors.Is(err, router.ErrNotMatched) {
		bot.Log.WithError(err).WithField("content", messageCreate.Content).Debug("Dispatching message")
	}
}

func (bot *Bot) handlerInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	id, handler := bot.interactionHandler(interaction.Interaction)
	if handler == nil {
		return
	}

	err := handler(session, interaction)
	if err == nil {
		return
	}

	bot.Log.WithError(err).WithField("interaction", id).Error("Handling interaction")

	err = discordutil.RespondEphemeral(session, interaction.Interaction, err.Error())
	if err != nil {
		bot.Log.WithError(err).WithField("interaction", id).Debug("Reporting interaction error")
	}
}
