package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/config"
	"github.com/divine-development/divine/internal/inspect"
	"github.com/divine-development/divine/internal/modules/appeal"
	"github.com/divine-development/divine/internal/modules/auth"
	"github.com/divine-development/divine/internal/modules/help"
	"github.com/divine-development/divine/internal/modules/join"
	"github.com/divine-development/divine/internal/modules/settings"
	"github.com/divine-development/divine/internal/modules/staff"
	"github.com/divine-development/divine/internal/modules/suggest"
	"github.com/divine-development/divine/internal/modules/updates"
	"github.com/divine-development/divine/internal/store"
	"github.com/divine-development/divine/internal/update"
	redis "github.com/go-redis/redis/v7"
	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var opts struct {
	Config string `short:"c" long:"config" default:"config.yml" description:"Configuration file"`
	Env    string `short:"e" long:"env" default:".env" description:"Dotenv file with TOKEN, GITHUB_TOKEN and INSPECT_PASSWORD"`
}

func readConfig(log *logrus.Logger, configPath string) *config.Root {
	configFile, err := os.OpenFile(configPath, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		log.Fatal(err)
	}

	c, err := config.Read(configFile)
	if errors.Is(err, io.EOF) {
		c, err = &config.Root{}, nil

		c.Defaults()
		writeConfig(log, configPath, c)
	}

	if err != nil {
		log.Fatal(err)
	}

	err = configFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	return c
}

func writeConfig(log *logrus.Logger, configPath string, c *config.Root) {
	configFile, err := os.OpenFile(configPath, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.WithError(err).Error("Writing default configuration")

		return
	}

	defer func() {
		_ = configFile.Close()
	}()

	err = config.Write(configFile, c)
	if err != nil {
		log.WithError(err).Error("Writing default configuration")

		return
	}

	log.WithField("path", configPath).Info("Wrote default configuration")
}

func loadEnv(log *logrus.Logger, envPath string) {
	err := godotenv.Load(envPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", envPath).Debug("No dotenv file")

		return
	}

	if err != nil {
		log.WithError(err).WithField("path", envPath).Fatal("Loading dotenv file")
	}
}

func newStore(log *logrus.Logger, private *config.Private) store.Store {
	if private.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     private.Redis.Address,
			Password: private.Redis.Password,
			DB:       private.Redis.DB,
		})

		err := client.Ping().Err()
		if err != nil {
			log.WithError(err).Fatal("Connecting to redis")
		}

		return store.NewRedis(client, private.Redis.Prefix)
	}

	s, err := store.NewFile(private.Settings)
	if err != nil {
		log.WithError(err).Fatal("Opening settings directory")
	}

	return s
}

func newAudit(log *logrus.Logger, private *config.Private) (audit.Recorder, func()) {
	recorders := audit.Multi{&audit.Log{Log: log}}

	if private.LogDB == "" {
		return recorders, func() {}
	}

	pg, err := audit.NewPostgres(private.LogDB, log)
	if err != nil {
		log.WithError(err).Fatal("Connecting to audit database")
	}

	return append(recorders, pg), func() {
		if err := pg.Close(); err != nil {
			log.WithError(err).Error("Closing audit database")
		}
	}
}

func newUpdates(log *logrus.Logger, private *config.Private, dg *discordgo.Session) *update.Supervisor {
	if private.GitHub.Repository == "" {
		log.Info("Upstream repository not configured, update checks disabled")

		return nil
	}

	source := update.NewGitHub(private.GitHub.URL, private.GitHub.Repository, private.GitHub.Branch, private.GitHub.Token)
	restarter := &update.ExecRestarter{
		Before: func() {
			if err := dg.Close(); err != nil {
				log.WithError(err).Error("Closing gateway before restart")
			}
		},
	}

	return update.New(source, restarter, private.GitHub.Interval, log)
}

func serveInspect(log *logrus.Logger, private *config.Private, b *bot.Bot) {
	if private.Inspect.Listen == "" {
		return
	}

	srv, err := inspect.New(b.Repository, log, private.Inspect.Username, private.Inspect.Password)
	if err != nil {
		log.WithError(err).Error("Starting inspect server")

		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer cancel()

		if err := srv.ListenAndServe(ctx, private.Inspect.Listen); err != nil {
			log.WithError(err).Error("Serving inspect server")
		}
	}()
}

func main() {
	log := logrus.New()

	_, err := flags.Parse(&opts)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	loadEnv(log, opts.Env)

	configRoot := readConfig(log, opts.Config)
	configRoot.ApplyEnv(os.LookupEnv)
	configRoot.Defaults()

	private := &configRoot.Private

	level, err := logrus.ParseLevel(private.LogLevel)
	if err != nil {
		log.WithError(err).Warn("Unknown log level, using info")

		level = logrus.InfoLevel
	}

	log.SetLevel(level)

	if private.Token == "" {
		log.Fatal("Missing token in config")
	}

	if private.Owner == "" {
		log.Warn("Owner is not configured, owner commands are unavailable")
	}

	dg, err := discordgo.New("Bot " + private.Token)
	if err != nil {
		log.Fatal(err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	recorder, closeAudit := newAudit(log, private)
	defer closeAudit()

	b, err := bot.NewBot(bot.Options{
		Discord: dg,
		Store:   newStore(log, private),
		Config:  configRoot,
		Log:     log,
		Audit:   recorder,
		Updates: newUpdates(log, private, dg),
		Modules: []bot.Module{
			auth.New(),
			help.New(),
			settings.New(),
			staff.New(),
			updates.New(),
			appeal.New(),
			suggest.New(),
			join.New(),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	serveInspect(log, private, b)

	err = b.Serve()
	if err != nil {
		log.Fatal(err)
	}
}
