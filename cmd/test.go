package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/achilleasa/nori-export/harness"
	"github.com/muesli/termenv"
	"github.com/urfave/cli"
)

// Run the renderer scene tests and warp tests.
func RunTests(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	suite, err := harness.SuiteFromConfig(cfg.Harness.Scenes, cfg.Harness.Warps)
	if err != nil {
		return err
	}

	buildDir := cfg.Harness.BuildDir
	if ctx.IsSet("build-dir") {
		buildDir = ctx.String("build-dir")
	}
	if buildDir == "" {
		buildDir = harness.FindBuildDir(".", cfg.Harness.Renderer)
	}
	scenesDir := cfg.Harness.ScenesDir
	if ctx.IsSet("scenes-dir") {
		scenesDir = ctx.String("scenes-dir")
	}

	runner := harness.NewRunner(buildDir, scenesDir)
	runner.Renderer = cfg.Harness.Renderer
	runner.WarpTest = cfg.Harness.WarpTest
	logger.Infof("using build folder %q", runner.BuildDir)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := runner.Run(runCtx, suite)
	if report != nil {
		report.Print(termenv.NewOutput(os.Stdout))
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return cli.NewExitError("", 1)
	}
	return nil
}
