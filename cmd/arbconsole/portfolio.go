package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rxtech-lab/arb-console/internal/api"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/urfave/cli/v3"
)

func portfolioCommand() *cli.Command {
	return &cli.Command{
		Name:  "portfolio",
		Usage: "Virtual portfolio",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show balance and statistics",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Refresh until interrupted"},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					show := func(ctx context.Context) error {
						stats, err := a.client.PortfolioStats(ctx)
						if err != nil {
							return err
						}

						printPortfolioStats(a.out, stats)

						return nil
					}

					if !cmd.Bool("watch") {
						return show(ctx)
					}

					return ignoreCancel(a.poller().Run(ctx, "portfolio", a.cfg.Poll.Portfolio, show))
				}),
			},
			{
				Name:  "positions",
				Usage: "List open positions",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "futures", Usage: "List futures positions instead of spot"},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					var records []map[string]any

					if cmd.Bool("futures") {
						positions, err := a.client.FuturesPositions(ctx)
						if err != nil {
							return err
						}

						records = positions.FuturesPositions
					} else {
						positions, err := a.client.Positions(ctx)
						if err != nil {
							return err
						}

						records = positions.Positions
					}

					headers, rows := mapRows(records)
					printTable(a.out, headers, rows)

					return nil
				}),
			},
			{
				Name:  "trades",
				Usage: "List executed virtual trades",
				Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
					trades, err := a.client.TradeHistory(ctx)
					if err != nil {
						return err
					}

					headers, rows := mapRows(trades.Transactions)
					printTable(a.out, headers, rows)

					return nil
				}),
			},
			{
				Name:  "reset",
				Usage: "Reset the portfolio to its initial balance",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the reset"},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					if !cmd.Bool("yes") {
						return errors.New(errors.ErrCodeMissingParameter, "resetting discards every trade, pass --yes to confirm")
					}

					return a.client.ResetPortfolio(ctx)
				}),
			},
			{
				Name:  "export",
				Usage: "Download the markdown portfolio report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Destination file", Value: api.PortfolioReportFileName},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					return downloadTo(a, cmd.String("output"), func(w, progress io.Writer) (int64, error) {
						return a.client.ExportPortfolioMarkdown(ctx, w, progress)
					})
				}),
			},
		},
	}
}

func printPortfolioStats(w io.Writer, stats types.PortfolioStats) {
	printTitle(w, "Portfolio")
	printFields(w, []kv{
		{label: "Balance", value: usd(stats.BalanceUSD)},
		{label: "Total PnL", value: fmt.Sprintf("%s (%s%%)", signed(stats.TotalPnL), stats.TotalPnLPercent.StringFixed(2))},
		{label: "Trades", value: fmt.Sprintf("%d (%d won / %d lost)", stats.TotalTrades, stats.WinningTrades, stats.LosingTrades)},
		{label: "Win rate", value: stats.WinRate.StringFixed(1) + "%"},
		{label: "Best trade", value: signed(stats.BestTrade)},
		{label: "Worst trade", value: signed(stats.WorstTrade)},
		{label: "Avg win", value: usd(stats.AvgWin)},
		{label: "Avg loss", value: usd(stats.AvgLoss)},
	})
}
