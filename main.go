package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/nori-export/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "nori-export"
	app.Usage = "export scenes for the nori renderer and run its test suites"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to a size-rotated file",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "config file; defaults to ./nori-export.yaml or the user config folder",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "export",
			Usage: "export a scene to the nori scene format",
			Description: `
Read a scene description from a YAML or wavefront obj file (or http(s) URL)
and write a nori scene document together with one obj file per mesh and
material slot. Mesh files are written to a "meshes" folder next to the
scene document. A "-" reads the scene from standard input.

Unsupported polygons abort the export unless --skip-invalid-faces is set.`,
			ArgsUsage: "scene.yaml|scene.obj|-",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "format",
					Value: "yaml",
					Usage: "scene format (yaml or obj) when the scene is read from standard input",
				},
				cli.BoolFlag{
					Name:  "light",
					Usage: "export point lights and use the path_mis integrator",
				},
				cli.BoolFlag{
					Name:  "no-light",
					Usage: "skip lights and use the ambient visibility integrator",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 32,
					Usage: "samples per pixel",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "scene.xml",
					Usage: "scene document filename",
				},
				cli.BoolFlag{
					Name:  "skip-invalid-faces",
					Usage: "drop polygons with more than 4 vertices instead of aborting",
				},
				cli.StringFlag{
					Name:  "zip",
					Usage: "also bundle the exported files into a zip archive",
				},
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "re-export whenever the scene files change",
				},
			},
			Action: cmd.ExportScene,
		},
		{
			Name:      "inspect",
			Usage:     "display the decoded scene graph",
			ArgsUsage: "scene.yaml|scene.obj|-",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "format",
					Value: "yaml",
					Usage: "scene format (yaml or obj) when the scene is read from standard input",
				},
			},
			Action: cmd.InspectScene,
		},
		{
			Name:  "test",
			Usage: "run the renderer scene tests and warp tests",
			Description: `
Run each test scene through the renderer and each warp test configuration
through the warptest executable. A test passes if its process exits with
status 0. The command exits with status 1 if any test failed.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "build-dir",
					Usage: "folder containing the renderer executables; detected if not set",
				},
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "folder that test scene paths are relative to",
				},
			},
			Action: cmd.RunTests,
		},
		{
			Name:  "polylum",
			Usage: "generate a polygonal luminaire t-test scene",
			Description: `
Generate a random triangular area light facing the origin and write a t-test
scene whose reference value is the analytic irradiance it produces.`,
			ArgsUsage: "xml_output obj_output",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "seed",
					Usage: "random seed; defaults to the current time",
				},
			},
			Action: cmd.GeneratePolyLum,
		},
		{
			Name:  "config",
			Usage: "manage the configuration file",
			Subcommands: []cli.Command{
				{
					Name:  "init",
					Usage: "write the current configuration to a file",
					Description: `
Write the merged defaults and config file values as YAML. The file is written
to the user config folder unless --out is given; it is picked up by every
command that does not specify --config.`,
					Flags: []cli.Flag{
						cli.StringFlag{
							Name:  "out, o",
							Usage: "destination file; defaults to the user config file",
						},
						cli.BoolFlag{
							Name:  "force, f",
							Usage: "overwrite an existing file",
						},
					},
					Action: cmd.InitConfig,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
