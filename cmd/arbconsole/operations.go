package main

import (
	"context"

	"github.com/rxtech-lab/arb-console/internal/api"
	"github.com/rxtech-lab/arb-console/internal/history"
	"github.com/urfave/cli/v3"
)

func operationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "operations",
		Usage: "Recent engine operations",
		Commands: []*cli.Command{
			{
				Name:  "latest",
				Usage: "List the most recent operations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of operations (1-500)", Value: api.DefaultOperationsLimit},
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Refresh until interrupted"},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					limit := int(cmd.Int("limit"))

					show := func(ctx context.Context) error {
						ops, err := a.client.LatestOperations(ctx, limit)
						if err != nil {
							return err
						}

						printTable(a.out, operationHeaders, operationRows(ops))
						printFields(a.out, []kv{{label: "Win rate", value: history.WinRate(ops).StringFixed(1) + "%"}})

						return nil
					}

					if !cmd.Bool("watch") {
						return show(ctx)
					}

					return ignoreCancel(a.poller().Run(ctx, "operations", a.cfg.Poll.Operations, show))
				}),
			},
			{
				Name:  "stats",
				Usage: "Show aggregated operation statistics",
				Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
					stats, err := a.client.OperationStats(ctx)
					if err != nil {
						return err
					}

					return printJSON(a.out, stats)
				}),
			},
		},
	}
}
