package cli

// This file contains the test command: device and artifact resolution,
// orchestration of the build batches and mapping of the consolidated
// result to an exit code.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/catalog"
	"github.com/bsrun/bsrun/config"
	"github.com/bsrun/bsrun/history"
	"github.com/bsrun/bsrun/model"
	"github.com/bsrun/bsrun/orchestrate"
)

// Exit codes of the test command.
const (
	ExitNoDevices     = 10
	ExitAppNotFound   = 11
	ExitSuiteNotFound = 12
	ExitTestsFailed   = 13
)

func (a *App) test(ctx *cli.Context) error {
	startTime := time.Now()

	cfg := config.Load()
	if cfg.AccessKey == "" {
		return cli.Exit("Please set BROWSER_STACK_KEY environment variable", 1)
	}
	settings, err := config.LoadSettings(ctx.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	client, err := browserstack.NewClient(a.logger, cfg.AccessKey)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	appCustomID := firstNonEmpty(ctx.String("apk-custom-id"), settings.AppCustomID)
	suiteCustomID := firstNonEmpty(ctx.String("test-suite-custom-id"), settings.SuiteCustomID)
	project := firstNonEmpty(ctx.String("project"), settings.Project)
	if ctx.Bool("is-32bit") {
		if appCustomID != "" {
			appCustomID += "32"
		}
		if suiteCustomID != "" {
			suiteCustomID += "32"
		}
		if project != "" {
			project += "32"
		}
	}

	opts := orchestrate.Options{
		MaxParallel:      ctx.Int("max-parallel"),
		PollInterval:     ctx.Duration("query-interval"),
		MaxWait:          cfg.MaxWait,
		Project:          project,
		DeviceLogs:       ctx.Bool("device-log"),
		NoStartAsFailure: ctx.Bool("no-start-failed"),
	}
	orch := orchestrate.New(a.logger, client.Builds(), client.Sessions(), opts)

	if ctx.Bool("get-last-build") {
		failed, err := orch.FailedFromLastBuild(ctx.Context)
		if err != nil {
			return fmt.Errorf("failed to get recent build info: %w", err)
		}
		for _, device := range failed {
			a.logger.Error().Str("device", device.Name).Msg("Test failed device")
		}
		if len(failed) > 0 {
			return cli.Exit("", ExitTestsFailed)
		}
		return nil
	}

	devices, err := a.selectDevices(ctx, client, orch, settings)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return cli.Exit("There is no device to test", ExitNoDevices)
	}

	appRef, err := a.resolveApp(ctx.Context, client, ctx.String("apk"), appCustomID)
	if err != nil {
		if errors.Is(err, browserstack.ErrArtifactNotFound) {
			return cli.Exit(fmt.Sprintf("The test apk does not exist or the upload path %q does not exist, please upload and try again", ctx.String("apk")), ExitAppNotFound)
		}
		return fmt.Errorf("failed to resolve test apk: %w", err)
	}

	suiteRef, err := a.resolveSuite(ctx.Context, client, ctx.String("test-suite"), suiteCustomID)
	if err != nil {
		if errors.Is(err, browserstack.ErrArtifactNotFound) {
			return cli.Exit(fmt.Sprintf("The test suite does not exist or the upload path %q does not exist, please upload and try again", ctx.String("test-suite")), ExitSuiteNotFound)
		}
		return fmt.Errorf("failed to resolve test suite: %w", err)
	}

	a.logger.Info().Strs("devices", model.DeviceNames(devices)).Msg("The devices that need to be tested")

	result, err := orch.Run(ctx.Context, appRef, suiteRef, devices)
	if err != nil {
		return fmt.Errorf("test run error: %w", err)
	}

	exitCode := 0
	if !result.Success {
		exitCode = ExitTestsFailed
	}

	// Record the run locally (non-fatal if it fails)
	run := &model.Run{
		ID:             result.RunID,
		Timestamp:      startTime,
		Args:           os.Args,
		Project:        project,
		Devices:        model.DeviceNames(devices),
		FailedDevices:  model.DeviceNames(result.Failed),
		NoStartDevices: model.DeviceNames(result.NoStart),
		ExitCode:       exitCode,
		Duration:       time.Since(startTime),
	}
	if runDir, err := history.Record(run); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record run history")
	} else {
		a.logger.Debug().Str("dir", runDir).Str("id", run.ID).Msg("Recorded run")
	}

	if !result.Success {
		for _, device := range result.Failed {
			a.logger.Error().Str("device", device.Name).Msg("Test failed device")
		}
		return cli.Exit("", ExitTestsFailed)
	}
	return nil
}

// selectDevices resolves the device set to test from the retest flags, the
// explicit device names, or the API-level selection, then applies the
// blacklist.
func (a *App) selectDevices(ctx *cli.Context, client *browserstack.Client, orch *orchestrate.Orchestrator, settings *config.Settings) ([]model.Device, error) {
	var devices []model.Device
	var err error

	if ctx.Bool("build-last-failed") {
		devices, err = orch.FailedFromLastBuild(ctx.Context)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent build info: %w", err)
		}
		if !ctx.Bool("only-last-failed") {
			more, err := a.resolveDevices(ctx, client)
			if err != nil {
				return nil, err
			}
			devices = append(devices, more...)
		}
	} else if ctx.Bool("repeat-last") {
		devices, err = orch.DevicesFromLastBuild(ctx.Context)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent build info: %w", err)
		}
	}

	if len(devices) == 0 {
		devices, err = a.resolveDevices(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	devices = model.DedupeDevices(devices)
	kept := devices[:0]
	for _, d := range devices {
		if settings.Blacklisted(d.Name) {
			a.logger.Warn().Str("device", d.Name).Msg("Skipping blacklisted device")
			continue
		}
		kept = append(kept, d)
	}
	return kept, nil
}

// resolveDevices picks devices from the live catalog: explicit names when
// given, otherwise one random device per requested API level.
func (a *App) resolveDevices(ctx *cli.Context, client *browserstack.Client) ([]model.Device, error) {
	cat, err := catalog.New(ctx.Context, a.logger, client)
	if err != nil {
		return nil, fmt.Errorf("failed to load device catalog: %w", err)
	}

	if names := ctx.StringSlice("devices"); len(names) > 0 {
		var devices []model.Device
		for _, name := range names {
			requested, err := model.NewDevice(name, "")
			if err != nil {
				return nil, fmt.Errorf("invalid device name %q: %w", name, err)
			}
			device, ok := cat.Find(requested)
			if !ok {
				a.logger.Error().Str("device", name).Msg("The specified device name was not found")
				continue
			}
			devices = append(devices, device)
		}
		return model.DedupeDevices(devices), nil
	}

	if ctx.Bool("all-api") {
		return cat.RandomForLevels(catalog.AllLevels), nil
	}
	return cat.RandomForLevels(ctx.IntSlice("api")), nil
}

// resolveApp resolves the app reference: upload when a local file is given,
// else the most recent upload matching the custom id, else the most recent
// upload overall.
func (a *App) resolveApp(ctx context.Context, client *browserstack.Client, path, customID string) (string, error) {
	apps := client.Apps()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			app, err := apps.Upload(ctx, path, customID)
			if err != nil {
				return "", err
			}
			a.logger.Info().Str("file", path).Str("ref", app.TestRef()).Msg("Uploaded test apk")
			return app.TestRef(), nil
		}
		a.logger.Warn().Str("file", path).Msg("APK path does not exist, falling back to uploaded artifacts")
	}
	if customID != "" {
		app, err := apps.FindByCustomID(ctx, customID)
		if err != nil {
			return "", err
		}
		return app.TestRef(), nil
	}
	app, err := apps.Last(ctx)
	if err != nil {
		return "", err
	}
	return app.TestRef(), nil
}

// resolveSuite mirrors resolveApp for the test suite package.
func (a *App) resolveSuite(ctx context.Context, client *browserstack.Client, path, customID string) (string, error) {
	suites := client.Suites()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			suite, err := suites.Upload(ctx, path, customID)
			if err != nil {
				return "", err
			}
			a.logger.Info().Str("file", path).Str("ref", suite.TestRef()).Msg("Uploaded test suite")
			return suite.TestRef(), nil
		}
		a.logger.Warn().Str("file", path).Msg("Test suite path does not exist, falling back to uploaded artifacts")
	}
	if customID != "" {
		suite, err := suites.FindByCustomID(ctx, customID)
		if err != nil {
			return "", err
		}
		return suite.TestRef(), nil
	}
	suite, err := suites.Last(ctx)
	if err != nil {
		return "", err
	}
	return suite.TestRef(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
