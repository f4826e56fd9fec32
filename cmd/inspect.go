package cmd

import (
	"errors"

	"github.com/urfave/cli"
)

// Display the decoded scene graph.
func InspectScene(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file")
	}

	sceneFile := ctx.Args().First()
	if err = checkSceneArg(ctx, sceneFile); err != nil {
		return err
	}

	sc, err := readScene(ctx, sceneFile)
	if err != nil {
		return err
	}
	applyRenderConfig(sc, cfg.Render)

	logger.Noticef("scene information:\n%s", sc.Stats())
	return nil
}
