package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "bsrun"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Run automated Android test suites on the BrowserStack device farm",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:  "config",
					Usage: "Path to a YAML settings file (blacklist, default custom ids)",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "test",
		Usage:  "Submit the test suite against farm devices and wait for results",
		Action: app.test,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "apk",
				Usage: "Local APK to upload and test",
			},
			&cli.StringFlag{
				Name:  "apk-custom-id",
				Usage: "Custom id identifying the uploaded test APK",
				Value: "FakelinkerTestApp",
			},
			&cli.StringFlag{
				Name:  "test-suite",
				Usage: "Local test suite APK to upload",
			},
			&cli.StringFlag{
				Name:  "test-suite-custom-id",
				Usage: "Custom id identifying the uploaded test suite",
				Value: "FakelinkerTestSuite",
			},
			&cli.BoolFlag{
				Name:  "is-32bit",
				Usage: "The test APK is a 32-bit build (appends \"32\" to custom ids and project)",
			},
			&cli.IntSliceFlag{
				Name:  "api",
				Usage: "Android API levels to test, one random device per level",
				Value: cli.NewIntSlice(34),
			},
			&cli.BoolFlag{
				Name:  "all-api",
				Usage: "Execute one test per known API level",
			},
			&cli.StringSliceFlag{
				Name:  "devices",
				Usage: "Explicit device names to test (e.g. \"Google Pixel 8 Pro-14.0\")",
			},
			&cli.IntFlag{
				Name:  "max-parallel",
				Usage: "The farm account's parallel test ceiling",
				Value: 5,
			},
			&cli.DurationFlag{
				Name:  "query-interval",
				Usage: "Interval between build status queries",
				Value: 15 * time.Second,
			},
			&cli.StringFlag{
				Name:  "project",
				Usage: "Project tag for submitted builds",
				Value: "fake-linker",
			},
			&cli.BoolFlag{
				Name:  "device-log",
				Usage: "Capture device logs during the run",
			},
			&cli.BoolFlag{
				Name:  "no-start-failed",
				Usage: "Count devices that never started as failures",
			},
			&cli.BoolFlag{
				Name:  "repeat-last",
				Usage: "Test again with the most recent build's device set",
			},
			&cli.BoolFlag{
				Name:  "get-last-build",
				Usage: "Only report the most recent build's failed devices",
			},
			&cli.BoolFlag{
				Name:  "build-last-failed",
				Usage: "Retest the devices that failed in the most recent build",
			},
			&cli.BoolFlag{
				Name:  "only-last-failed",
				Usage: "With --build-last-failed, add no other devices",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "remove",
		Usage:  "Remove uploaded apps and test suites from the farm",
		Action: app.remove,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "apk",
				Aliases: []string{"a"},
				Usage:   "Remove uploaded test APKs",
			},
			&cli.BoolFlag{
				Name:    "suite",
				Aliases: []string{"s"},
				Usage:   "Remove uploaded test suites",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "devices",
		Usage:  "List available farm devices by API level",
		Action: app.devices,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous test runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
