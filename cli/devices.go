package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/catalog"
	"github.com/bsrun/bsrun/config"
)

func (a *App) devices(ctx *cli.Context) error {
	cfg := config.Load()
	if cfg.AccessKey == "" {
		return cli.Exit("Please set BROWSER_STACK_KEY environment variable", 1)
	}
	client, err := browserstack.NewClient(a.logger, cfg.AccessKey)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	cat, err := catalog.New(ctx.Context, a.logger, client)
	if err != nil {
		return fmt.Errorf("failed to load device catalog: %w", err)
	}

	for _, level := range cat.Levels() {
		pool := cat.DevicesFor(level)
		fmt.Printf("API %d (%d devices)\n", level, len(pool))
		for _, device := range pool {
			fmt.Printf("   %s\n", device.Name)
		}
	}
	return nil
}
