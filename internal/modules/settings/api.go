// Package settings provides per-guild configuration commands
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/discordutil"
	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/modules/auth"
	"github.com/divine-development/divine/internal/router"
	"github.com/divine-development/divine/internal/store"
	"golang.org/x/time/rate"
)

// ReloadDelay is pause between guild records during reload
const ReloadDelay = 500 * time.Millisecond

var (
	// ErrUnknownSystem is returned for unsupported setup target
	ErrUnknownSystem = errors.New("invalid system, available systems are: `welcomer`, `adminrole`, `suggestions`")
	// ErrInvalidChannel is returned when value is not a text channel of this guild
	ErrInvalidChannel = errors.New("invalid channel, please mention a valid text channel")
	// ErrInvalidRole is returned when value is not a role of this guild
	ErrInvalidRole = errors.New("invalid role, please mention a valid role")
	// ErrInvalidGuild is returned when guild ID argument is malformed
	ErrInvalidGuild = errors.New("invalid guild ID")
	// ErrInvalidToggle is returned when verify state is neither on nor off
	ErrInvalidToggle = errors.New("expected `on` or `off`")
)

type system struct {
	field string
	title string
	role  bool
}

var systems = map[string]system{
	"welcomer":    {field: model.FieldWelcomeChannel, title: "Welcome channel"},
	"adminrole":   {field: model.FieldAdminRole, title: "Admin role", role: true},
	"suggestions": {field: model.FieldSuggestionChannel, title: "Suggestion channel"},
}

// New provides module instance
func New() bot.Module {
	return &module{
		delay: ReloadDelay,
	}
}

type module struct {
	config *bot.Configuration
	delay  time.Duration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	group := config.Router.Group("settings").SetDescription("server settings")

	group.On("setup", "configures a server system", mod.commandSetup).
		WithUsage("<welcomer|adminrole|suggestions> <value|none>").
		Set(auth.RouteConfigKey, auth.Admin)
	group.On("viewsettings", "shows server settings", mod.commandViewSettings).
		Set(auth.RouteConfigKey, auth.Admin)
	group.On("reloadguilds", "reloads every stored server config", mod.commandReloadGuilds).
		Set(auth.RouteConfigKey, auth.Owner)
	group.On("data", "uploads stored server config", mod.commandData).
		WithUsage("<guild id>").
		Set(auth.RouteConfigKey, auth.Owner)
	group.On("verify", "marks server as verified", mod.commandVerify).
		WithUsage("<guild id> <on|off>").
		Set(auth.RouteConfigKey, auth.Owner)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

// parseSetup resolves setup arguments into config field and value, nil value clears the field
func parseSetup(name, value string) (sys system, id *model.ID, err error) {
	sys, ok := systems[strings.ToLower(name)]
	if !ok {
		return sys, nil, ErrUnknownSystem
	}

	if strings.EqualFold(value, "none") {
		return sys, nil, nil
	}

	parse, invalid := discordutil.ParseChannel, ErrInvalidChannel
	if sys.role {
		parse, invalid = discordutil.ParseRole, ErrInvalidRole
	}

	raw, ok := parse(value)
	if !ok {
		return sys, nil, invalid
	}

	parsed := model.ID(raw)

	return sys, &parsed, nil
}

func (mod *module) channelInGuild(session *discordgo.Session, guildID, channelID string) bool {
	channel, err := session.State.Channel(channelID)
	if err != nil {
		channel, err = session.Channel(channelID)
	}

	if err != nil {
		mod.config.Log.WithError(err).WithField("channel", channelID).Debug("Resolving channel")

		return false
	}

	return channel.GuildID == guildID && channel.Type == discordgo.ChannelTypeGuildText
}

func (mod *module) roleInGuild(session *discordgo.Session, guildID, roleID string) bool {
	if _, err := session.State.Role(guildID, roleID); err == nil {
		return true
	}

	roles, err := session.GuildRoles(guildID)
	if err != nil {
		mod.config.Log.WithError(err).WithField("guild", guildID).Debug("Resolving roles")

		return false
	}

	for _, r := range roles {
		if r.ID == roleID {
			return true
		}
	}

	return false
}

func mention(id *model.ID, role bool) string {
	switch {
	case id == nil:
		return "Not set"
	case role:
		return "<@&" + id.String() + ">"
	default:
		return "<#" + id.String() + ">"
	}
}

func (mod *module) commandSetup(ctx *router.Context) error {
	if len(ctx.Args) < 3 {
		return fmt.Errorf("usage: %ssetup %s", ctx.Prefix, ctx.Route.Usage)
	}

	sys, id, err := parseSetup(ctx.Args.Get(1), ctx.Args.Get(2))
	if err != nil {
		return err
	}

	guildID := ctx.GuildID()

	switch {
	case id == nil:
	case sys.role && !mod.roleInGuild(ctx.Session, guildID, id.String()):
		return ErrInvalidRole
	case !sys.role && !mod.channelInGuild(ctx.Session, guildID, id.String()):
		return ErrInvalidChannel
	}

	err = mod.config.Repository.Update(guildID, sys.field, id)
	if err != nil {
		return err
	}

	mod.config.Audit.Record(audit.Event{
		Kind:    audit.KindConfigUpdate,
		GuildID: guildID,
		ActorID: ctx.AuthorID(),
		Subject: sys.field,
		Detail:  mention(id, sys.role),
	})

	if id == nil {
		_, err = ctx.Reply(sys.title + " has been cleared")

		return err
	}

	_, err = ctx.Reply(fmt.Sprintf("%s has been set to %s", sys.title, mention(id, sys.role)))

	return err
}

func settingsEmbed(title string, c *model.GuildConfig, color int) *discordgo.MessageEmbed {
	verified := "No"
	if c.IsVerified() {
		verified = "Yes"
	}

	return &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Welcome Channel", Value: mention(c.WelcomeChannel, false)},
			{Name: "Admin Role", Value: mention(c.AdminRole, true)},
			{Name: "Suggestion Channel", Value: mention(c.SuggestionChannel, false)},
			{Name: "Verified", Value: verified},
		},
	}
}

func (mod *module) commandViewSettings(ctx *router.Context) error {
	guildID := ctx.GuildID()
	title := "Settings"

	if guild, err := ctx.Session.State.Guild(guildID); err == nil {
		title = "Settings for " + guild.Name
	}

	return ctx.ReplyEmbedCustom(settingsEmbed(title, mod.config.Repository.Get(guildID), mod.config.EmbedColor()))
}

func progress(done, total int) string {
	return fmt.Sprintf("Reloading guild settings... %d/%d completed.", done, total)
}

func (mod *module) commandReloadGuilds(ctx *router.Context) error {
	guilds, err := mod.config.Repository.Guilds()
	if err != nil {
		return err
	}

	if len(guilds) == 0 {
		_, err = ctx.Reply("No guild settings found to reload.")

		return err
	}

	msg, err := ctx.Reply(progress(0, len(guilds)))
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Every(mod.delay), 1)
	failed := 0

	for i, guildID := range guilds {
		err = limiter.Wait(context.Background())
		if err != nil {
			return err
		}

		_, err = mod.config.Repository.Load(guildID)
		if err != nil {
			failed++

			mod.config.Log.WithError(err).WithField("guild", guildID).Error("Reloading guild config")
		}

		err = ctx.Edit(msg, progress(i+1, len(guilds)))
		if err != nil {
			mod.config.Log.WithError(err).Debug("Updating reload progress")
		}
	}

	done := fmt.Sprintf("Reloading complete! %d guild settings reloaded.", len(guilds)-failed)
	if failed > 0 {
		done += fmt.Sprintf(" %d could not be read.", failed)
	}

	return ctx.Edit(msg, done)
}

func (mod *module) commandData(ctx *router.Context) error {
	id := model.ID(ctx.Args.Get(1))
	if !id.Valid() {
		return ErrInvalidGuild
	}

	raw, err := mod.config.Repository.Raw(id.String())
	if errors.Is(err, store.ErrNotFound) {
		_, err = ctx.Reply("No settings file found for guild ID " + id.String())

		return err
	}

	if err != nil {
		return err
	}

	return ctx.Upload(id.String()+".json", "", raw)
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}

	return false, ErrInvalidToggle
}

func (mod *module) commandVerify(ctx *router.Context) error {
	id := model.ID(ctx.Args.Get(1))
	if !id.Valid() {
		return ErrInvalidGuild
	}

	verified, err := parseToggle(ctx.Args.Get(2))
	if err != nil {
		return err
	}

	err = mod.config.Repository.Update(id.String(), model.FieldVerified, verified)
	if err != nil {
		return err
	}

	mod.config.Audit.Record(audit.Event{
		Kind:    audit.KindGuildVerify,
		GuildID: id.String(),
		ActorID: ctx.AuthorID(),
		Detail:  fmt.Sprint(verified),
	})

	state := "no longer verified"
	if verified {
		state = "verified"
	}

	_, err = ctx.Reply(fmt.Sprintf("Server %s is now %s", id, state))

	return err
}
