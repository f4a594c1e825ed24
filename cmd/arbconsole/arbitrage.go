package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rxtech-lab/arb-console/internal/history"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

func arbitrageCommand() *cli.Command {
	return &cli.Command{
		Name:  "arbitrage",
		Usage: "Arbitrage statistics and history",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the arbitrage dashboard statistics",
				Action: withLogin(arbitrageStatsAction),
			},
			{
				Name:  "profit",
				Usage: "Show the cumulative profit history",
				Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
					points, err := a.client.ProfitHistory(ctx)
					if err != nil {
						return err
					}

					rows := make([][]string, 0, len(points))
					for _, p := range points {
						rows = append(rows, []string{
							p.Time().Local().Format("2006-01-02 15:04:05"),
							signed(decimal.NewFromFloat(p.Profit)),
							usdFloat(p.Cumulative),
						})
					}

					printTable(a.out, []string{"Time", "Profit", "Cumulative"}, rows)

					return nil
				}),
			},
			{
				Name:  "history",
				Usage: "List executed operations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Number of operations to fetch (1-500)", Value: 100},
					&cli.StringFlag{Name: "symbol", Usage: "Only this symbol (server side)"},
					&cli.StringFlag{Name: "exchange", Usage: "Only operations on this exchange"},
					&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Text filter over symbol and exchanges"},
					&cli.StringFlag{Name: "status", Usage: "ALL, OPEN or CLOSED", Value: string(history.StatusAll)},
					&cli.StringFlag{Name: "csv", Usage: "Also write the filtered rows to this CSV file (\"auto\" picks a dated name)"},
				},
				Action: withLogin(arbitrageHistoryAction),
			},
			{
				Name:  "export",
				Usage: "Download the server-side CSV export",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Destination file"},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					path := cmd.String("output")
					if path == "" {
						path = history.CSVFileName(time.Now())
					}

					return downloadTo(a, path, func(w, progress io.Writer) (int64, error) {
						return a.client.ExportArbitrageHistory(ctx, w, progress)
					})
				}),
			},
		},
	}
}

func arbitrageStatsAction(ctx context.Context, _ *cli.Command, a *app) error {
	stats, err := a.client.ArbitrageStats(ctx)
	if err != nil {
		return err
	}

	printTitle(a.out, "Arbitrage")
	printFields(a.out, []kv{
		{label: "Engine", value: stats.EngineStatus},
		{label: "Uptime", value: types.FormatUptime(stats.UptimeSeconds)},
		{label: "Exchanges", value: fmt.Sprintf("%d/%d", stats.ConnectedExchanges, stats.TotalExchanges)},
		{label: "Balance", value: usdFloat(stats.BalanceUSD)},
		{label: "Operations", value: fmt.Sprint(stats.TotalOperations)},
		{label: "Total profit", value: signed(decimal.NewFromFloat(stats.TotalProfit))},
		{label: "Avg spread", value: decimal.NewFromFloat(stats.AvgSpreadBps).StringFixed(2) + " bps"},
		{label: "Avg execution", value: decimal.NewFromFloat(stats.AvgExecutionTimeUs).StringFixed(0) + " µs"},
		{label: "Opportunities", value: fmt.Sprintf("%d found / %d executed", stats.OpportunitiesFound, stats.OpportunitiesExecuted)},
		{label: "Win rate", value: decimal.NewFromFloat(stats.WinRatePercent).StringFixed(1) + "%"},
		{label: "Best pair", value: orDash(stats.BestPair)},
		{label: "Worst pair", value: orDash(stats.WorstPair)},
	})

	return nil
}

func arbitrageHistoryAction(ctx context.Context, cmd *cli.Command, a *app) error {
	limit := int(cmd.Int("limit"))
	if limit < 1 || limit > 500 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "limit must be between 1 and 500, got %d", limit)
	}

	page, err := a.client.ArbitrageHistory(ctx, types.HistoryParams{
		Limit:    limit,
		Symbol:   cmd.String("symbol"),
		Exchange: cmd.String("exchange"),
	})
	if err != nil {
		return err
	}

	filter := history.Filter{
		Text:     cmd.String("filter"),
		Status:   history.StatusFilter(cmd.String("status")),
		Exchange: cmd.String("exchange"),
	}
	ops := filter.Apply(page.Operations)

	printTable(a.out, operationHeaders, operationRows(ops))

	summary := history.Summarize(ops)
	printFields(a.out, []kv{
		{label: "Shown", value: fmt.Sprintf("%d of %d", summary.Count, page.Total)},
		{label: "Open/closed", value: fmt.Sprintf("%d/%d", summary.OpenCount, summary.ClosedCount)},
		{label: "Total PnL", value: signed(summary.TotalProfit)},
		{label: "Win rate", value: summary.WinRate.StringFixed(1) + "%"},
	})

	path := cmd.String("csv")
	if path == "" {
		return nil
	}

	if path == "auto" {
		path = history.CSVFileName(time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create csv file", err)
	}
	defer f.Close()

	if err := history.WriteCSV(f, ops, time.Local); err != nil {
		return err
	}

	a.notifier.Success(fmt.Sprintf("Exported %d operations to %s", len(ops), path))

	return nil
}

// downloadTo streams a backend export into path with a byte progress bar.
// A failed download leaves no partial file behind.
func downloadTo(a *app, path string, fetch func(w, progress io.Writer) (int64, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create export file", err)
	}

	bar := progressbar.DefaultBytes(-1, "downloading")

	n, err := fetch(f, bar)
	_ = bar.Finish()

	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(errors.ErrCodeExportFailed, "failed to close export file", closeErr)
	}

	if err != nil {
		_ = os.Remove(path)

		return err
	}

	a.notifier.Success(fmt.Sprintf("Saved %d bytes to %s", n, path))

	return nil
}
