package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/arb-console/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "arbconsole",
		Usage:   "Monitor and control the arbitrage trading engine",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the console YAML configuration",
				Sources: cli.EnvVars("ARB_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Backend base URL (overrides the config file)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Diagnostic log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "Path of the stored session credentials",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			refreshCommand(),
			whoamiCommand(),
			engineCommand(),
			arbitrageCommand(),
			operationsCommand(),
			portfolioCommand(),
			tradeCommand(),
			aiCommand(),
			logsCommand(),
			dashboardCommand(),
			healthCommand(),
			versionCommand(),
		},
	}
}
