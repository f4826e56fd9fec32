package cmd

import (
	"math/rand"
	"time"

	"github.com/achilleasa/nori-export/luminaire"
	"github.com/urfave/cli"
)

// Generate a polygonal luminaire t-test scene.
func GeneratePolyLum(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 2 {
		return cli.NewExitError("Usage: polylum <xml output file> <obj output file>", 1)
	}

	seed := ctx.Int64("seed")
	if !ctx.IsSet("seed") {
		seed = time.Now().UnixNano()
	}
	logger.Infof("using random seed %d", seed)

	tc := luminaire.Generate(rand.New(rand.NewSource(seed)))
	xmlFile, objFile := ctx.Args().Get(0), ctx.Args().Get(1)
	if err := tc.WriteFiles(xmlFile, objFile); err != nil {
		return err
	}

	logger.Noticef("wrote %s and %s (irradiance %g, reference %g)", xmlFile, objFile, tc.Irradiance, tc.Reference())
	return nil
}
