package cmd

import (
	"fmt"
	"os"

	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/asset/scene/reader"
	"github.com/urfave/cli"
)

// Scene argument that selects standard input.
const stdinScene = "-"

// Check that the scene argument can be read.
func checkSceneArg(ctx *cli.Context, sceneFile string) error {
	name := sceneFile
	if sceneFile == stdinScene {
		name = stdinName(ctx)
	}
	if !reader.IsSupported(name) {
		return fmt.Errorf("unsupported scene file %q; expected a .yaml or .obj file", name)
	}
	return nil
}

// Read the scene argument. A "-" reads the scene from standard input using
// the format selected by the --format flag.
func readScene(ctx *cli.Context, sceneFile string) (*scene.Scene, error) {
	if sceneFile == stdinScene {
		return reader.ReadSceneFrom(stdinName(ctx), os.Stdin)
	}
	return reader.ReadScene(sceneFile)
}

func stdinName(ctx *cli.Context) string {
	return "stdin." + ctx.String("format")
}
