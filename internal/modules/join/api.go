// Package join provides handling for new server members
package join

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/modules/auth"
	"github.com/divine-development/divine/internal/router"
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

	config.Discord.AddHandler(mod.handlerGreet)

	group := config.Router.Group("join").SetDescription("welcome messages")
	group.On("jointest", "performs test of welcome message", mod.commandTest).
		Set(auth.RouteConfigKey, auth.Admin)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func welcome(userID string) string {
	return fmt.Sprintf("Welcome to the server, <@%s>!", userID)
}

func (mod *module) commandTest(ctx *router.Context) error {
	return mod.greet(ctx.Session, ctx.GuildID(), ctx.AuthorID())
}

func (mod *module) handlerGreet(session *discordgo.Session, guildMemberAdd *discordgo.GuildMemberAdd) {
	if guildMemberAdd.User == nil || guildMemberAdd.User.Bot {
		return
	}

	_ = mod.greet(session, guildMemberAdd.GuildID, guildMemberAdd.User.ID)
}

func (mod *module) greet(session *discordgo.Session, guildID, userID string) error {
	channelID := mod.config.Repository.Get(guildID).WelcomeChannelID()
	if channelID == "" {
		return nil
	}

	log := mod.config.Log.WithField("guild", guildID).WithField("channel", channelID)

	_, err := session.ChannelMessageSend(channelID, welcome(userID))

	switch {
	case err == nil:
	case discordutil.IsNotFound(err):
		log.WithError(err).Warn("Welcome channel not found")
	case discordutil.IsForbidden(err):
		log.WithError(err).Warn("Missing permission to post welcome message")
	default:
		log.WithError(err).Error("Sending welcome message")
	}

	return err
}
