// Package router provides prefix command router
package router

import (
	"bytes"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Args provide abstraction for getting arguments
type Args []string

// Get returns bound-safe argument by index
func (args Args) Get(i int) string {
	if len(args) <= i {
		return ""
	}

	return args[i]
}

// Join joins arguments starting with given index
func (args Args) Join(i int) string {
	if len(args) <= i {
		return ""
	}

	return strings.Join(args[i:], " ")
}

// GroupSorterFunc provides sorting for groups
type GroupSorterFunc func(a, b *Group) bool

// RouteSorterFunc provides sorting for routes
type RouteSorterFunc func(a, b *Route) bool

// MatcherFunc implements matching message
type MatcherFunc func(raw string) bool

// MiddlewareFunc implements command wrapping
type MiddlewareFunc func(handler HandlerFunc) HandlerFunc

// HandlerFunc implements command execution
type HandlerFunc func(ctx *Context) error

// Context simplifies request handling
type Context struct {
	Session *discordgo.Session
	Message *discordgo.Message
	Route   *Route
	Prefix  string
	Raw     string
	Args    Args
}

// Rest returns unparsed text following command name
func (ctx *Context) Rest() string {
	parts := strings.SplitN(strings.TrimSpace(ctx.Raw), " ", 2)
	if len(parts) < 2 {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GuildID returns guild message was sent in, empty for direct messages
func (ctx *Context) GuildID() string {
	return ctx.Message.GuildID
}

// AuthorID returns message author
func (ctx *Context) AuthorID() string {
	if ctx.Message.Author == nil {
		return ""
	}

	return ctx.Message.Author.ID
}

// React reacts to original message with emoji
func (ctx *Context) React(emoji string) (err error) {
	err = ctx.Session.MessageReactionAdd(ctx.Message.ChannelID, ctx.Message.ID, emoji)

	return
}

// ReplyEmbed replies to original message with embed
func (ctx *Context) ReplyEmbed(desc string) (err error) {
	return ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
		Description: desc,
	})
}

// ReplyEmbedCustom replies to original message with custom embed
func (ctx *Context) ReplyEmbedCustom(embed *discordgo.MessageEmbed) (err error) {
	_, err = ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, embed)

	return
}

// Reply replies to original message
func (ctx *Context) Reply(desc string) (msg *discordgo.Message, err error) {
	msg, err = ctx.Session.ChannelMessageSend(ctx.Message.ChannelID, desc)

	return
}

// Edit replaces content of earlier reply
func (ctx *Context) Edit(msg *discordgo.Message, desc string) (err error) {
	_, err = ctx.Session.ChannelMessageEdit(msg.ChannelID, msg.ID, desc)

	return
}

// Upload replies with file attachment
func (ctx *Context) Upload(name, content string, data []byte) (err error) {
	_, err = ctx.Session.ChannelMessageSendComplex(ctx.Message.ChannelID, &discordgo.MessageSend{
		Content: content,
		Files: []*discordgo.File{
			{
				Name:        name,
				ContentType: "application/json",
				Reader:      bytes.NewReader(data),
			},
		},
	})

	return
}

// NewRouter returns new router instance
func NewRouter() *Router {
	return &Router{
		Routes: make(map[string]*Route),
		GroupSorter: func(a, b *Group) bool {
			return a.Name >= b.Name
		},
		DefaultRouteSorter: func(a, b *Route) bool {
			return a.Name >= b.Name
		},
	}
}

// Route describes command route
type Route struct {
	Router      *Router
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Matcher     MatcherFunc
	Handler     HandlerFunc
	Baked       HandlerFunc
	Data        map[string]interface{}
	Groups      []*Group
}

// Set sets route config value
func (route *Route) Set(k string, v interface{}) *Route {
	route.Data[k] = v

	return route
}

// Get returns route (or any of parent groups) config value
func (route *Route) Get(k string) interface{} {
	if v, ok := route.Data[k]; ok {
		return v
	}

	for _, g := range route.Groups {
		if v, ok := g.Data[k]; ok {
			return v
		}
	}

	return nil
}

// WithUsage sets argument synopsis shown in help
func (route *Route) WithUsage(usage string) *Route {
	route.Usage = usage

	return route
}
