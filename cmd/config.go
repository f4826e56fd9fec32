package cmd

import (
	"errors"

	"github.com/achilleasa/nori-export/config"
	"github.com/urfave/cli"
)

// Write the active configuration to a file.
func InitConfig(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	path := ctx.String("out")
	if path == "" {
		if path = config.UserFile(); path == "" {
			return errors.New("could not determine the user config folder; use --out to select a file")
		}
	}

	if err = cfg.SaveTo(path, ctx.Bool("force")); err != nil {
		return err
	}

	logger.Noticef("wrote configuration to %s", path)
	return nil
}
