package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/config"
)

func (a *App) remove(ctx *cli.Context) error {
	cfg := config.Load()
	if cfg.AccessKey == "" {
		return cli.Exit("Please set BROWSER_STACK_KEY environment variable", 1)
	}
	client, err := browserstack.NewClient(a.logger, cfg.AccessKey)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if ctx.Bool("apk") {
		if err := client.Apps().DeleteRecent(ctx.Context); err != nil {
			return err
		}
	}
	if ctx.Bool("suite") {
		if err := client.Suites().DeleteRecent(ctx.Context); err != nil {
			return err
		}
	}
	return nil
}
