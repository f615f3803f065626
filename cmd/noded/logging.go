package main

import (
	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/urfave/cli"
)

var log = logger.New("noded")

// setupLogging applies the configured level, then lets -v and -vv raise it.
func setupLogging(ctx *cli.Context, settings config.Settings) {
	logger.SetLevel(logger.ParseLevel(settings.LogLevel))

	if ctx.GlobalBool("v") {
		logger.SetLevel(logger.Info)
	}

	if ctx.GlobalBool("vv") {
		logger.SetLevel(logger.Debug)
	}
}

// loadSettings reads the --config file and configures logging from it.
func loadSettings(ctx *cli.Context) (config.Settings, error) {
	settings, err := config.Load(ctx.GlobalString("config"))
	setupLogging(ctx, settings)
	return settings, err
}
