package cmd

import (
	"errors"

	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/asset/scene/writer"
	"github.com/achilleasa/nori-export/config"
	"github.com/achilleasa/nori-export/exporter"
	"github.com/urfave/cli"
)

// Export a scene to the renderer format.
func ExportScene(ctx *cli.Context) error {
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
	if sceneFile == stdinScene && ctx.Bool("watch") {
		return errors.New("scenes read from standard input cannot be watched")
	}

	job := &exportCommand{
		sceneFile:  sceneFile,
		bundleFile: ctx.String("zip"),
		render:     cfg.Render,
		opts:       exportOptions(ctx, cfg),
		read: func() (*scene.Scene, error) {
			return readScene(ctx, sceneFile)
		},
	}
	if err = job.opts.Validate(); err != nil {
		return err
	}

	if !ctx.Bool("watch") {
		return job.run()
	}

	if err = job.run(); err != nil {
		logger.Error(err)
	}
	return watchScene(sceneFile, job.run)
}

// Merge export options from the config file and the command line.
func exportOptions(ctx *cli.Context, cfg *config.Config) exporter.Options {
	opts := exporter.Options{
		ExportLight:      cfg.Export.Light,
		SampleCount:      cfg.Export.Samples,
		OutputPath:       cfg.Export.Output,
		SkipInvalidFaces: cfg.Export.SkipInvalidFaces,
	}

	if ctx.IsSet("light") {
		opts.ExportLight = true
	}
	if ctx.Bool("no-light") {
		opts.ExportLight = false
	}
	if ctx.IsSet("spp") {
		opts.SampleCount = ctx.Int("spp")
	}
	if ctx.IsSet("out") {
		opts.OutputPath = ctx.String("out")
	}
	if ctx.Bool("skip-invalid-faces") {
		opts.SkipInvalidFaces = true
	}

	return opts
}

type exportCommand struct {
	sceneFile  string
	read       func() (*scene.Scene, error)
	bundleFile string
	render     config.RenderConfig
	opts       exporter.Options
}

// Read, export and optionally bundle the scene.
func (c *exportCommand) run() error {
	logger.Noticef("parsing scene: %s", c.sceneFile)
	sc, err := c.read()
	if err != nil {
		return err
	}
	applyRenderConfig(sc, c.render)
	logger.Infof("scene information:\n%s", sc.Stats())

	res, err := exporter.New(c.opts).Export(sc)
	if err != nil {
		var fatal *exporter.FatalError
		if errors.As(err, &fatal) && res != nil {
			logger.Errorf("export aborted after writing %d mesh file(s)", len(res.MeshFiles))
		}
		return err
	}

	logger.Noticef("export summary:\n%s", res.Summary())

	if c.bundleFile != "" {
		return writer.WriteBundle(res, c.bundleFile)
	}
	return nil
}

// Override the scene render settings with any values set in the config.
func applyRenderConfig(sc *scene.Scene, render config.RenderConfig) {
	if render.ResolutionX > 0 {
		sc.Render.ResolutionX = render.ResolutionX
	}
	if render.ResolutionY > 0 {
		sc.Render.ResolutionY = render.ResolutionY
	}
	if render.Percentage > 0 {
		sc.Render.Percentage = render.Percentage
	}
}
