package cmd

import (
	"github.com/achilleasa/nori-export/config"
	"github.com/achilleasa/nori-export/log"
	"github.com/urfave/cli"
)

var logger = log.New("nori-export")

// Load the configuration file selected by the global flags and set up
// logging. Command line flags take precedence over config values.
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if ctx.GlobalBool("v") {
		level = log.Info
	}
	if ctx.GlobalBool("vv") {
		level = log.Debug
	}
	log.SetLevel(level)

	logFile := cfg.Logging.File
	if ctx.GlobalIsSet("log-file") {
		logFile = ctx.GlobalString("log-file")
	}
	if logFile != "" {
		log.AddFileSink(logFile)
	}

	return cfg, nil
}
