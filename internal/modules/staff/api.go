// Package staff provides commands managing bot-wide staff and vip lists
package staff

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/membership"
	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/modules/auth"
	"github.com/divine-development/divine/internal/router"
)

// ErrInvalidUser is returned when user argument is not a mention or ID
var ErrInvalidUser = errors.New("invalid user, please mention a user or give their ID")

type list struct {
	cache   *membership.Cache
	name    string
	title   string
	member  string
	add     string
	remove  string
	command string
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	group := config.Router.Group("staff").SetDescription("staff & vip lists")

	for _, l := range []*list{
		{
			cache:   config.Staff,
			name:    "staff",
			title:   "Staff",
			member:  "a staff member",
			add:     audit.KindStaffAdd,
			remove:  audit.KindStaffRemove,
			command: "staff",
		},
		{
			cache:   config.VIPs,
			name:    "VIP",
			title:   "VIP",
			member:  "a VIP",
			add:     audit.KindVIPAdd,
			remove:  audit.KindVIPRemove,
			command: "vip",
		},
	} {
		mod.register(group, l)
	}

	return nil
}

func (mod *module) register(group *router.Group, l *list) {
	group.On("add"+l.command, "adds user to "+l.name+" list", mod.commandAdd(l)).
		WithUsage("<user>").
		Set(auth.RouteConfigKey, auth.Owner)
	group.On("remove"+l.command, "removes user from "+l.name+" list", mod.commandRemove(l)).
		WithUsage("<user>").
		Set(auth.RouteConfigKey, auth.Owner)
	group.OnAlias(
		"force"+l.command+"update", "reloads "+l.name+" list now", []string{"refresh" + l.command}, mod.commandForce(l),
	).Set(auth.RouteConfigKey, auth.Owner)
	group.On("is"+l.command, "checks whether user is "+l.member, mod.commandIs(l)).
		WithUsage("[user]")
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func userArg(ctx *router.Context, fallback bool) (model.ID, error) {
	arg := ctx.Args.Get(1)
	if arg == "" && fallback {
		return model.ID(ctx.AuthorID()), nil
	}

	id, ok := discordutil.ParseUser(arg)
	if !ok {
		return "", ErrInvalidUser
	}

	return model.ID(id), nil
}

func outcomeMessage(l *list, id model.ID, outcome membership.Outcome) string {
	switch outcome {
	case membership.Added:
		return fmt.Sprintf("Added <@%s> to the %s list.", id, l.name)
	case membership.AlreadyPresent:
		return fmt.Sprintf("<@%s> is already %s.", id, l.member)
	case membership.Removed:
		return fmt.Sprintf("Removed <@%s> from the %s list.", id, l.name)
	default:
		return fmt.Sprintf("<@%s> is not %s.", id, l.member)
	}
}

func (mod *module) mutate(
	l *list,
	kind string,
	op func(model.ID) (membership.Outcome, error),
) router.HandlerFunc {
	return func(ctx *router.Context) error {
		id, err := userArg(ctx, false)
		if err != nil {
			return err
		}

		outcome, err := op(id)
		if err != nil {
			return err
		}

		if outcome == membership.Added || outcome == membership.Removed {
			mod.config.Audit.Record(audit.Event{
				Kind:    kind,
				GuildID: ctx.GuildID(),
				ActorID: ctx.AuthorID(),
				Subject: id.String(),
			})
		}

		_, err = ctx.Reply(outcomeMessage(l, id, outcome))

		return err
	}
}

func (mod *module) commandAdd(l *list) router.HandlerFunc {
	return mod.mutate(l, l.add, l.cache.Add)
}

func (mod *module) commandRemove(l *list) router.HandlerFunc {
	return mod.mutate(l, l.remove, l.cache.Remove)
}

func (mod *module) commandForce(l *list) router.HandlerFunc {
	return func(ctx *router.Context) error {
		n, err := l.cache.ForceRefresh()
		if err != nil {
			return err
		}

		_, err = ctx.Reply(fmt.Sprintf("%s list has been force-updated. Current %s: %d members.", l.title, l.name, n))

		return err
	}
}

func (mod *module) commandIs(l *list) router.HandlerFunc {
	return func(ctx *router.Context) error {
		id, err := userArg(ctx, true)
		if err != nil {
			return err
		}

		answer := "is not"
		if l.cache.Contains(id) {
			answer = "is"
		}

		_, err = ctx.Reply(fmt.Sprintf("<@%s> %s %s.", id, answer, l.member))

		return err
	}
}
