// Package help provides bot module for command help message
package help

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/bot"
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

	group := config.Router.Group("help").SetDescription("help & status")

	group.OnAlias("help", "prints help", []string{"commands"}, mod.commandHelp)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func renderName(prefix string, r *router.Route) string {
	if r.Usage == "" {
		return prefix + r.Name
	}

	return prefix + r.Name + " " + r.Usage
}

func render(prefix string, r *router.Router) string {
	max := 0

	for _, v := range r.Routes {
		name := renderName(prefix, v)
		if len(name) > max {
			max = len(name)
		}
	}

	buf := &strings.Builder{}

	buf.WriteString("```autohotkey\n")

	for _, g := range r.Groups {
		if len(g.Routes) == 0 {
			continue
		}

		_, _ = buf.WriteString("\n==" + strings.ToUpper(g.Name) + "==")

		if len(g.Description) > 0 {
			_, _ = buf.WriteString(" ")
			_, _ = buf.WriteString(g.Description)
		}

		_, _ = buf.WriteString("\n")

		for _, v := range g.Routes {
			name := renderName(prefix, v)
			_, _ = buf.WriteString(strings.Repeat(" ", max-len(name)))
			_, _ = buf.WriteString(name)
			_, _ = buf.WriteString(": ")
			_, _ = buf.WriteString(v.Description)

			if len(v.Aliases) > 0 {
				_, _ = buf.WriteString(" (also " + prefix + strings.Join(v.Aliases, ", "+prefix) + ")")
			}

			buf.WriteString("\n")
		}
	}

	buf.WriteString("```")

	return buf.String()
}

func (mod *module) commandHelp(ctx *router.Context) error {
	return ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
		Title:       "Commands",
		Description: render(ctx.Prefix, ctx.Route.Router),
		Color:       mod.config.EmbedColor(),
	})
}
