package bot

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/router"
)

const (
	emojiOk = "✅"
	emojiX  = "❌"
)

func (bot *Bot) middlewareReply() router.MiddlewareFunc {
	return func(handler router.HandlerFunc) router.HandlerFunc {
		return func(ctx *router.Context) error {
			origerr := handler(ctx)

			switch {
			case errors.Is(origerr, ErrNoReply):
				return nil
			case origerr != nil:
				bot.Log.WithError(origerr).
					WithField("route", ctx.Route.Name).
					WithField("guild", ctx.GuildID()).
					Error("Executing command")

				err := ctx.React(emojiX)
				if err != nil {
					bot.Log.WithError(err).Error("Replying with error status")
				}

				err = ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
					Description: origerr.Error(),
					Color:       0xed4245,
				})
				if err != nil {
					bot.Log.WithError(err).Error("Replying with error status")
				}

				return origerr
			}

			err := ctx.React(emojiOk)
			if err != nil {
				bot.Log.WithError(err).Error("Replying with ok status")
			}

			return nil
		}
	}
}
