// Package bot provides main bot implementation
package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/config"
	"github.com/divine-development/divine/internal/membership"
	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/presence"
	"github.com/divine-development/divine/internal/router"
	"github.com/divine-development/divine/internal/schedule"
	"github.com/divine-development/divine/internal/store"
	"github.com/divine-development/divine/internal/ticket"
	"github.com/divine-development/divine/internal/update"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoReply special error value to avoid auto-reply
	ErrNoReply = errors.New("noreply")
	// ErrNoStore is returned when bot is created without document store
	ErrNoStore = errors.New("document store is not configured")
)

// Options provide configuration options for bot
type Options struct {
	Discord *discordgo.Session
	Store   store.Store
	Config  *config.Root
	Log     *logrus.Logger
	Audit   audit.Recorder
	Updates *update.Supervisor
	Modules []Module
}

// InteractionHandler handles component or modal interaction
type InteractionHandler func(session *discordgo.Session, interaction *discordgo.InteractionCreate) error

// Configuration store configuration for bot
type Configuration struct {
	Discord    *discordgo.Session
	Store      store.Store
	Config     *config.Root
	Log        *logrus.Logger
	Router     *router.Router
	Repository *model.Repository
	Staff      *membership.Cache
	VIPs       *membership.Cache
	Updates    *update.Supervisor
	Tickets    *ticket.Manager
	Presence   *presence.Rotator
	Scheduler  *schedule.Scheduler
	Audit      audit.Recorder
	Modules    []Module
	prefixes   map[string]string
	components map[string]InteractionHandler
	modals     map[string]InteractionHandler
	m          sync.RWMutex
}

// Module interface incapsulates methods for distinct functionality
type Module interface {
	Initialize(bot *Configuration) error
	Configure(bot *Configuration, server *discordgo.Guild)
	Shutdown(bot *Configuration)
}

// ReadyModule interface marks modules performing work once gateway is ready
type ReadyModule interface {
	Ready(bot *Configuration)
}

// NewBot provides new instance of bot
func NewBot(options Options) (*Bot, error) {
	if options.Store == nil {
		return nil, ErrNoStore
	}

	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.Config == nil {
		options.Config = &config.Root{}
	}

	options.Config.Defaults()

	if options.Audit == nil {
		options.Audit = &audit.Log{Log: options.Log}
	}

	private := &options.Config.Private

	bot := &Bot{
		Configuration: Configuration{
			Discord:    options.Discord,
			Store:      options.Store,
			Config:     options.Config,
			Log:        options.Log,
			Router:     router.NewRouter(),
			Repository: model.NewRepository(options.Store, options.Log),
			Staff: membership.NewCache(
				"staff", membership.NewStaffList(options.Store), private.Membership.StaffInterval, options.Log,
			),
			VIPs: membership.NewCache(
				"vips", membership.NewVIPList(options.Store), private.Membership.VIPInterval, options.Log,
			),
			Updates:    options.Updates,
			Scheduler:  schedule.New(options.Log),
			Audit:      options.Audit,
			Modules:    options.Modules,
			prefixes:   options.Config.Prefixes(),
			components: make(map[string]InteractionHandler),
			modals:     make(map[string]InteractionHandler),
		},
		ctx: context.Background(),
	}

	conf := &bot.Configuration

	conf.Tickets = ticket.NewManager(&ticket.DiscordGateway{
		Session:     options.Discord,
		OwnerID:     private.Owner,
		StaffRoleID: private.Appeals.StaffRole,
		CategoryID:  private.Appeals.Category,
		Color:       private.EmbedColor(),
	}, ticket.NewMapping(options.Store), private.Owner, options.Audit, options.Log)

	conf.Presence = presence.New(conf.GuildCount, conf.applyPresence, private.Presence.Template, private.Presence.Interval)

	conf.Router.AppendMiddleware(bot.middlewareReply())

	conf.Scheduler.Add(conf.Staff.Task())
	conf.Scheduler.Add(conf.VIPs.Task())
	conf.Scheduler.Add(conf.Presence.Task())

	if conf.Updates != nil {
		conf.Scheduler.Add(conf.Updates.Task())
	}

	for _, m := range bot.Modules {
		err := m.Initialize(conf)
		if err != nil {
			return nil, err
		}
	}

	bot.Discord.AddHandler(bot.handlerReady)
	bot.Discord.AddHandler(bot.handlerGuildCreate)
	bot.Discord.AddHandler(bot.handlerMessageCreate)
	bot.Discord.AddHandler(bot.handlerInteractionCreate)

	return bot, nil
}

// OnComponent registers handler for message component custom ID
func (conf *Configuration) OnComponent(customID string, handler InteractionHandler) {
	conf.m.Lock()
	defer conf.m.Unlock()

	conf.components[customID] = handler
}

// OnModal registers handler for modal submit custom ID
func (conf *Configuration) OnModal(customID string, handler InteractionHandler) {
	conf.m.Lock()
	defer conf.m.Unlock()

	conf.modals[customID] = handler
}

func (conf *Configuration) interactionHandler(interaction *discordgo.Interaction) (string, InteractionHandler) {
	conf.m.RLock()
	defer conf.m.RUnlock()

	switch interaction.Type {
	case discordgo.InteractionMessageComponent:
		id := interaction.MessageComponentData().CustomID

		return id, conf.components[id]
	case discordgo.InteractionModalSubmit:
		id := interaction.ModalSubmitData().CustomID

		return id, conf.modals[id]
	}

	return "", nil
}

// Prefix returns command prefix for guild
func (conf *Configuration) Prefix(guildID string) string {
	if p, ok := conf.prefixes[guildID]; ok {
		return p
	}

	return conf.Config.Private.Prefix
}

// EmbedColor returns configured embed color
func (conf *Configuration) EmbedColor() int {
	return conf.Config.Private.EmbedColor()
}

// GuildCount returns number of guilds bot is member of
func (conf *Configuration) GuildCount() int {
	if conf.Discord == nil || conf.Discord.State == nil {
		return 0
	}

	conf.Discord.State.RLock()
	defer conf.Discord.State.RUnlock()

	return len(conf.Discord.State.Guilds)
}

func (conf *Configuration) applyPresence(status string) error {
	return conf.Discord.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{
			{
				Name: status,
				Type: discordgo.ActivityTypeWatching,
			},
		},
	})
}
