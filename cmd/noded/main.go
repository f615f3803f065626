package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "noded"
	app.Usage = "build raytraced scenes from a node graph"
	app.Version = "0.1.0"
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
			Name:  "config, c",
			Value: "noded.settings.toml",
			Usage: "settings file; a missing file selects the defaults",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open the editor window and render the stored graph",
			Description: `
Open a window, restore the graph from the storage file and render the scene wired
into its Output node progressively. The graph is saved back on exit.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "storage, s",
					Usage: "storage file (overrides storage_path from the settings)",
				},
				cli.StringFlag{
					Name:  "metrics-addr",
					Usage: "serve prometheus metrics on this address, e.g. :9090",
				},
				cli.Float64Flag{
					Name:  "fps",
					Usage: "cap the frame rate (0 = uncapped)",
				},
				cli.BoolFlag{
					Name:  "profile",
					Usage: "log frame timing once per interval",
				},
				cli.BoolFlag{
					Name:  "no-save",
					Usage: "do not save the graph on exit",
				},
			},
			Action: runEditor,
		},
		{
			Name:  "compile",
			Usage: "compile every scene of a stored graph without opening a window",
			Description: `
Restore the graph from the storage file, compile each Scene node and print the
sphere, material, texture and light counts of the result.`,
			ArgsUsage: "[storage_file]",
			Action:    compileGraph,
		},
		{
			Name:      "validate",
			Usage:     "check the camera and sampling params of a stored graph",
			ArgsUsage: "[storage_file]",
			Action:    validateGraph,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
