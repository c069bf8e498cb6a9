package bot

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
)

// Bot is a main implementation of bot
type Bot struct {
	Configuration
	ctx   context.Context
	ready sync.Once
}

// Serve starts bot serving loop and blocks until exit
func (bot *Bot) Serve() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bot.ctx = ctx

	err := bot.Discord.Open()
	if err != nil {
		return err
	}

	bot.Log.Info("Running")

	<-ctx.Done()

	bot.Log.Info("Shutting down")

	for _, m := range bot.Modules {
		m.Shutdown(&bot.Configuration)
	}

	bot.Scheduler.Wait()

	return bot.Discord.Close()
}
