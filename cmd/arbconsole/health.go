package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/arb-console/internal/version"
	"github.com/urfave/cli/v3"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Probe the backend and check version compatibility",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			health, err := a.client.EngineHealth(ctx)
			if err != nil {
				return err
			}

			compat := profitStyle.Render("compatible")
			if err := version.CheckBackendCompatibility(version.GetVersion(), health.Version); err != nil {
				compat = lossStyle.Render(err.Error())
			}

			printFields(a.out, []kv{
				{label: "Backend", value: a.cfg.APIURL},
				{label: "Status", value: health.Status},
				{label: "Engine", value: health.Engine},
				{label: "Backend version", value: orDash(&health.Version)},
				{label: "Console version", value: version.GetVersion()},
				{label: "Compatibility", value: compat},
			})

			return nil
		}),
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the console version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

			return nil
		},
	}
}
