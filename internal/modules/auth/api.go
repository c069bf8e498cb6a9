// Package auth provides bot module middleware for authentication on bot commands
package auth

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/router"
)

// RouteConfigKey is used in route/group data configuration
const RouteConfigKey = "auth"

var (
	// ErrNotAuthorized is returned when user is not authorized to execute this command
	ErrNotAuthorized = errors.New("not authorized")
	// ErrOwnerOnly is returned when command is reserved for bot owner
	ErrOwnerOnly = errors.New("this command is reserved for the bot owner")
	// ErrGuildOnly is returned when command requiring guild permissions is used in direct messages
	ErrGuildOnly = errors.New("this command can only be used in a server")
)

// RouteConfig holds authentication requirements for given route or route group.
// Bot owner passes every check.
type RouteConfig struct {
	Owner       bool
	Permissions int64
}

// Owner is route config restricting command to bot owner
var Owner = &RouteConfig{Owner: true}

// Admin is route config requiring administrator permission or guild admin role
var Admin = &RouteConfig{Permissions: discordgo.PermissionAdministrator}

type checker interface {
	IsOwner(userID string) bool
	HasPermission(msg *discordgo.Message, permissions int64) bool
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
	config.Router.AppendMiddleware(mod.middlewareAuth)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func routeConfig(route *router.Route) *RouteConfig {
	switch v := route.Get(RouteConfigKey).(type) {
	case *RouteConfig:
		return v
	case RouteConfig:
		return &v
	default:
		return nil
	}
}

func authorize(c checker, msg *discordgo.Message, auth *RouteConfig) error {
	if auth == nil {
		return nil
	}

	if msg.Author != nil && c.IsOwner(msg.Author.ID) {
		return nil
	}

	if auth.Owner {
		return ErrOwnerOnly
	}

	if msg.GuildID == "" {
		return ErrGuildOnly
	}

	if c.HasPermission(msg, auth.Permissions) {
		return nil
	}

	return ErrNotAuthorized
}

func (mod *module) middlewareAuth(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		err := authorize(mod.config, ctx.Message, routeConfig(ctx.Route))
		if err != nil {
			return err
		}

		return handler(ctx)
	}
}
