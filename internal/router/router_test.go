package router

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "1",
		ChannelID: "2",
		GuildID:   "3",
		Content:   content,
		Author:    &discordgo.User{ID: "4"},
	}
}

func TestDispatchArgs(t *testing.T) {
	r := NewRouter()

	var got *Context

	r.On("settings", "setup", "Configure", func(ctx *Context) error {
		got = ctx

		return nil
	})

	err := r.Dispatch(nil, "!", "bot", message(`!setup welcomer "<#55>"`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Args{"setup", "welcomer", "<#55>"}, got.Args)
	assert.Equal(t, "welcomer", got.Args.Get(1))
	assert.Equal(t, "", got.Args.Get(5))
	assert.Equal(t, "welcomer <#55>", got.Args.Join(1))
	assert.Equal(t, "", got.Args.Join(9))
	assert.Equal(t, "3", got.GuildID())
	assert.Equal(t, "4", got.AuthorID())
	assert.Equal(t, "!", got.Prefix)
	assert.Equal(t, `welcomer "<#55>"`, got.Rest())
}

func TestDispatchIgnored(t *testing.T) {
	r := NewRouter()
	calls := 0

	r.On("g", "ping", "", func(ctx *Context) error {
		calls++

		return nil
	})

	own := message("!ping")
	own.Author.ID = "bot"

	bot := message("!ping")
	bot.Author.Bot = true

	for _, msg := range []*discordgo.Message{message("ping"), message("?ping"), message("!"), own, bot} {
		require.NoError(t, r.Dispatch(nil, "!", "bot", msg))
	}

	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, r.Dispatch(nil, "!", "bot", message("!pong")), ErrNotMatched)
}

func TestMiddlewareOrder(t *testing.T) {
	r := NewRouter()

	var order []string

	mw := func(name string) MiddlewareFunc {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx *Context) error {
				order = append(order, name)

				return next(ctx)
			}
		}
	}

	r.AppendMiddleware(mw("auth"))
	r.AppendMiddleware(mw("reply"))
	r.On("g", "cmd", "", func(ctx *Context) error {
		order = append(order, "handler")

		return nil
	})
	r.PrependMiddleware(mw("first"))

	require.NoError(t, r.Dispatch(nil, "!", "bot", message("!cmd")))
	assert.Equal(t, []string{"first", "auth", "reply", "handler"}, order)
}

func TestAliasAndData(t *testing.T) {
	r := NewRouter()
	hit := ""

	r.OnAlias("g", "viewsettings", "", []string{"settings"}, func(ctx *Context) error {
		hit = ctx.Route.Name

		return nil
	})
	r.On("g", "hello", "", func(ctx *Context) error {
		hit = ctx.Route.Name

		return nil
	})
	r.Group("g").Set("k", "group")
	r.Routes["hello"].Set("k", "route")

	require.NoError(t, r.Dispatch(nil, "!", "bot", message("!Settings")))
	assert.Equal(t, "viewsettings", hit)
	assert.Equal(t, []string{"settings"}, r.Routes["viewsettings"].Aliases)

	require.NoError(t, r.Dispatch(nil, "!", "bot", message("!hello")))
	assert.Equal(t, "hello", hit)

	assert.Equal(t, "route", r.Routes["hello"].Get("k"))
	assert.Equal(t, "group", r.Routes["viewsettings"].Get("k"))
	assert.Nil(t, r.Routes["viewsettings"].Get("missing"))
}

func TestGroupsSorted(t *testing.T) {
	r := NewRouter()

	r.Group("b")
	r.Group("a")
	r.Group("c")
	r.Group("a")

	names := make([]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		names = append(names, g.Name)
	}

	assert.Equal(t, []string{"a", "b", "c"}, names)
}
