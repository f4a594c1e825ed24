package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/rxtech-lab/arb-console/pkg/utils"
	"github.com/urfave/cli/v3"
)

func engineCommand() *cli.Command {
	return &cli.Command{
		Name:  "engine",
		Usage: "Inspect and control the arbitrage engine",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the engine status",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Refresh until interrupted",
					},
				},
				Action: withLogin(engineStatusAction),
			},
			engineControlCommand("start", "Start the engine", func(ctx context.Context, a *app) (types.EngineCommandResult, error) {
				return a.client.StartEngine(ctx)
			}),
			engineControlCommand("stop", "Stop the engine", func(ctx context.Context, a *app) (types.EngineCommandResult, error) {
				return a.client.StopEngine(ctx)
			}),
			engineControlCommand("restart", "Restart the engine", func(ctx context.Context, a *app) (types.EngineCommandResult, error) {
				return a.client.RestartEngine(ctx)
			}),
			{
				Name:  "config",
				Usage: "Read or change the engine configuration",
				Commands: []*cli.Command{
					{
						Name:  "get",
						Usage: "Print the active configuration",
						Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
							cfg, err := a.client.EngineConfig(ctx)
							if err != nil {
								return err
							}

							return printJSON(a.out, cfg)
						}),
					},
					{
						Name:   "set",
						Usage:  "Update selected configuration fields",
						Flags:  engineConfigFlags(),
						Action: withLogin(engineConfigSetAction),
					},
					{
						Name:  "schema",
						Usage: "Print the JSON schema of the configuration",
						Action: func(_ context.Context, cmd *cli.Command) error {
							schema, err := utils.GetSchemaFromConfig(types.EngineConfig{})
							if err != nil {
								return errors.Wrap(errors.ErrCodeUnknown, "failed to build schema", err)
							}

							fmt.Fprintln(cmd.Root().Writer, schema)

							return nil
						},
					},
				},
			},
		},
	}
}

func engineControlCommand(name, usage string, fn func(context.Context, *app) (types.EngineCommandResult, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
			_, err := fn(ctx, a)

			return err
		}),
	}
}

func engineStatusAction(ctx context.Context, cmd *cli.Command, a *app) error {
	show := func(ctx context.Context) error {
		status, err := a.client.EngineStatus(ctx)
		if err != nil {
			return err
		}

		printEngineStatus(a.out, status)

		return nil
	}

	if !cmd.Bool("watch") {
		return show(ctx)
	}

	return ignoreCancel(a.poller().Run(ctx, "engine-status", a.cfg.Poll.Engine, show))
}

func printEngineStatus(w io.Writer, status types.EngineStatus) {
	state := lossStyle.Render("STOPPED")
	if status.Running {
		state = profitStyle.Render("RUNNING")
	}

	printTitle(w, "Engine")
	printFields(w, []kv{
		{label: "State", value: state},
		{label: "Uptime", value: types.FormatUptime(status.UptimeSeconds)},
		{label: "Exchanges", value: joinOrDash(status.ConnectedExchanges)},
		{label: "Active positions", value: fmt.Sprint(status.ActivePositions)},
		{label: "Pending orders", value: fmt.Sprint(status.PendingOrders)},
	})
}

func engineConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{Name: "capital", Usage: "Capital allocated to the engine (USD)"},
		&cli.FloatFlag{Name: "min-spread", Usage: "Minimum spread in basis points"},
		&cli.FloatFlag{Name: "max-position", Usage: "Maximum position size (USD)"},
		&cli.IntFlag{Name: "max-open", Usage: "Maximum number of open positions"},
		&cli.FloatFlag{Name: "risk", Usage: "Risk percent per trade (0-100)"},
		&cli.BoolFlag{Name: "paper", Usage: "Paper mode (use --paper=false for live)"},
		&cli.StringFlag{Name: "symbols", Usage: "Comma-separated list of enabled symbols"},
	}
}

// engineConfigUpdates collects the flags the user actually set.
func engineConfigUpdates(cmd *cli.Command) types.EngineConfig {
	updates := types.EngineConfig{}

	if cmd.IsSet("capital") {
		updates.CapitalUSD = cmd.Float("capital")
	}

	if cmd.IsSet("min-spread") {
		updates.MinSpreadBps = cmd.Float("min-spread")
	}

	if cmd.IsSet("max-position") {
		updates.MaxPositionSizeUSD = cmd.Float("max-position")
	}

	if cmd.IsSet("max-open") {
		updates.MaxOpenPositions = int(cmd.Int("max-open"))
	}

	if cmd.IsSet("risk") {
		updates.RiskPercent = cmd.Float("risk")
	}

	if cmd.IsSet("paper") {
		paper := cmd.Bool("paper")
		updates.PaperMode = &paper
	}

	if cmd.IsSet("symbols") {
		updates.EnabledSymbols = parseSymbols(cmd.String("symbols"))
	}

	return updates
}

func engineConfigSetAction(ctx context.Context, cmd *cli.Command, a *app) error {
	current, err := a.client.EngineConfig(ctx)
	if err != nil {
		return err
	}

	merged := current.Merge(engineConfigUpdates(cmd))

	if _, err := a.client.SaveEngineConfig(ctx, merged); err != nil {
		return err
	}

	return printJSON(a.out, merged)
}

// parseSymbols splits a comma-separated list, trimming and upper-casing each symbol.
func parseSymbols(input string) []string {
	symbols := []string{}

	for _, s := range strings.Split(input, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// ignoreCancel turns the interrupt that ends a watch loop into a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
