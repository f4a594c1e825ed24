package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rxtech-lab/arb-console/internal/api"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/urfave/cli/v3"
)

// minExecutedConfidence is the confidence the AI service requires before executing.
const minExecutedConfidence = 60

func aiCommand() *cli.Command {
	return &cli.Command{
		Name:  "ai",
		Usage: "AI trading decisions and autonomous sessions",
		Commands: []*cli.Command{
			{
				Name:  "decisions",
				Usage: "List recent AI decisions",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of decisions", Value: api.DefaultOperationsLimit},
				},
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					decisions, err := a.client.AIDecisions(ctx, int(cmd.Int("limit")))
					if err != nil {
						return err
					}

					printTable(a.out, []string{"Time", "Symbol", "Decision", "Confidence", "Executed", "Reasoning"}, decisionRows(decisions))

					return nil
				}),
			},
			{
				Name:  "analyze",
				Usage: "Request a fresh analysis",
				Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
					analysis, err := a.client.RequestAIAnalysis(ctx)
					if err != nil {
						return err
					}

					return printJSON(a.out, analysis)
				}),
			},
			{
				Name:  "analysis",
				Usage: "Show the latest analysis of the autonomous session",
				Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
					analysis, err := a.client.LatestAIAnalysis(ctx)
					if err != nil {
						return err
					}

					return printJSON(a.out, analysis)
				}),
			},
			chatCommand(),
			{
				Name:  "session",
				Usage: "Control the autonomous AI session",
				Commands: []*cli.Command{
					{
						Name:  "status",
						Usage: "Show the session status",
						Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
							status, err := a.client.AISessionStatus(ctx)
							if err != nil {
								return err
							}

							return printJSON(a.out, status)
						}),
					},
					{
						Name:  "start",
						Usage: "Start a session",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "hours", Usage: "Session duration in hours", Value: 1},
						},
						Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
							return a.client.StartAISession(ctx, int(cmd.Int("hours")))
						}),
					},
					{
						Name:  "stop",
						Usage: "Stop the running session",
						Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
							return a.client.StopAISession(ctx)
						}),
					},
				},
			},
		},
	}
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Talk to the AI trading assistant",
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show the conversation so far",
				Action: withLogin(func(ctx context.Context, _ *cli.Command, a *app) error {
					messages, err := a.client.ChatHistory(ctx)
					if err != nil {
						return err
					}

					if len(messages) == 0 {
						fmt.Fprintln(a.out, "No messages yet")

						return nil
					}

					for _, m := range messages {
						printChatMessage(a, m.Role, m.Content)
					}

					return nil
				}),
			},
			{
				Name:      "send",
				Usage:     "Ask the assistant a question",
				ArgsUsage: "MESSAGE",
				Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
					message := strings.Join(cmd.Args().Slice(), " ")

					reply, err := a.client.SendChatMessage(ctx, message)
					if err != nil {
						return err
					}

					printChatMessage(a, "assistant", reply)

					return nil
				}),
			},
		},
	}
}

func printChatMessage(a *app, role, content string) {
	fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render(role+":"), content)
}

func decisionRows(decisions []types.AIDecision) [][]string {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		executed := "no"
		if d.Executed {
			executed = "yes"
		}

		rows = append(rows, []string{
			types.FormatLocalDateTime(d.CreatedAt),
			d.Symbol,
			d.Decision,
			confidenceLabel(d.Confidence),
			executed,
			truncate(d.Reasoning, 60),
		})
	}

	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

// confidenceLabel marks decisions below the execution threshold.
func confidenceLabel(confidence float64) string {
	label := fmt.Sprintf("%.0f%%", confidence)
	if confidence < minExecutedConfidence {
		return lossStyle.Render(label + " low")
	}

	return label
}
