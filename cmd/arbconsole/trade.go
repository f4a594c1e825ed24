package main

import (
	"context"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/urfave/cli/v3"
)

func tradeCommand() *cli.Command {
	return &cli.Command{
		Name:  "trade",
		Usage: "Submit a manual virtual trade",
		Commands: []*cli.Command{
			tradeSideCommand("buy", types.TradeActionBuy),
			tradeSideCommand("sell", types.TradeActionSell),
		},
	}
}

func tradeSideCommand(name string, action types.TradeAction) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Submit a " + name + " order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "Trading pair, e.g. BTCUSDT", Required: true},
			&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "Order size in USD", Required: true},
		},
		Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
			amount, err := types.ParseTradeAmount(cmd.String("amount"))
			if err != nil {
				a.notifier.Error("Please enter a valid amount")

				return err
			}

			result, err := a.client.ManualTrade(ctx, types.ManualTradeRequest{
				Action:    action,
				Symbol:    cmd.String("symbol"),
				AmountUSD: amount,
			})
			if err != nil {
				return err
			}

			return printJSON(a.out, result)
		}),
	}
}
