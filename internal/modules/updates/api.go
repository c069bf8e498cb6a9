// Package updates provides owner commands for upstream update checks
package updates

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/audit"
	"github.com/divine-development/divine/internal/bot"
	"github.com/divine-development/divine/internal/modules/auth"
	"github.com/divine-development/divine/internal/router"
	"github.com/divine-development/divine/internal/update"
)

const checkTimeout = 30 * time.Second

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	group := config.Router.Group("update").SetDescription("self update").Set(auth.RouteConfigKey, auth.Owner)

	group.On("checkupdate", "checks upstream for new revision and restarts", mod.commandCheck)
	group.On("updatestatus", "shows tracked upstream revision", mod.commandStatus)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func short(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}

	return revision
}

func resultMessage(result update.Result, revision string) string {
	switch result {
	case update.ResultInitialized:
		return fmt.Sprintf("Initialized, tracking revision `%s`.", short(revision))
	case update.ResultRestarting:
		return fmt.Sprintf("New revision `%s` found, restarting...", short(revision))
	}

	if revision == "" {
		return "No new revision."
	}

	return fmt.Sprintf("No new revision, still at `%s`.", short(revision))
}

func (mod *module) commandCheck(ctx *router.Context) error {
	if mod.config.Updates == nil {
		_, err := ctx.Reply("Update checks are disabled.")

		return err
	}

	checkctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	result, revision, err := mod.config.Updates.Check(checkctx)
	if err != nil {
		return err
	}

	_, err = ctx.Reply(resultMessage(result, revision))
	if err != nil {
		mod.config.Log.WithError(err).Error("Reporting update check")
	}

	if result != update.ResultRestarting {
		return nil
	}

	mod.config.Audit.Record(audit.Event{
		Kind:    audit.KindRestart,
		ActorID: ctx.AuthorID(),
		Subject: revision,
	})

	return mod.config.Updates.Restart()
}

func (mod *module) commandStatus(ctx *router.Context) error {
	if mod.config.Updates == nil {
		_, err := ctx.Reply("Update checks are disabled.")

		return err
	}

	state, revision := mod.config.Updates.State()
	if state == update.Uninitialized {
		_, err := ctx.Reply("No revision observed yet.")

		return err
	}

	_, err := ctx.Reply(fmt.Sprintf("Tracking revision `%s`.", short(revision)))

	return err
}
