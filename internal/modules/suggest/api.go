// Package suggest provides suggestion submission command
package suggest

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/router"
)

// Reactions added to every suggestion
const (
	EmojiUp   = "✅"
	EmojiDown = "⛔"
)

var (
	// ErrNotConfigured is returned when guild has no suggestion channel
	ErrNotConfigured = errors.New("suggestion channel is not set, please ask an admin to set it using the `setup suggestions` command")
	// ErrChannelMissing is returned when configured suggestion channel no longer exists
	ErrChannelMissing = errors.New("suggestion channel not found, please ask an admin to reconfigure it")
	// ErrEmpty is returned when suggestion text is missing
	ErrEmpty = errors.New("please write your suggestion after the command")
	// ErrGuildOnly is returned when command is used in direct messages
	ErrGuildOnly = errors.New("suggestions can only be made in a server")
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

	group := config.Router.Group("suggest").SetDescription("suggestions")

	group.On("suggest", "sends suggestion to suggestion channel", mod.commandSuggest).
		WithUsage("<text>")

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func suggestionEmbed(author *discordgo.User, text string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "New Suggestion",
		Description: text,
		Color:       color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    author.Username,
			IconURL: author.AvatarURL(""),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Suggested by " + author.Username,
			IconURL: author.AvatarURL(""),
		},
	}
}

func (mod *module) commandSuggest(ctx *router.Context) error {
	guildID := ctx.GuildID()
	if guildID == "" {
		return ErrGuildOnly
	}

	text := ctx.Rest()
	if text == "" {
		return ErrEmpty
	}

	channelID := mod.config.Repository.Get(guildID).SuggestionChannelID()
	if channelID == "" {
		return ErrNotConfigured
	}

	msg, err := ctx.Session.ChannelMessageSendEmbed(
		channelID,
		suggestionEmbed(ctx.Message.Author, text, mod.config.EmbedColor()),
	)

	switch {
	case discordutil.IsNotFound(err):
		return ErrChannelMissing
	case err != nil:
		return err
	}

	for _, emoji := range []string{EmojiUp, EmojiDown} {
		err = ctx.Session.MessageReactionAdd(channelID, msg.ID, emoji)
		if err != nil {
			mod.config.Log.WithError(err).WithField("channel", channelID).Error("Adding suggestion reaction")
		}
	}

	_, err = ctx.Reply(fmt.Sprintf("Your suggestion has been sent to <#%s>", channelID))

	return err
}
