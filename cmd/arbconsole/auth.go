package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/urfave/cli/v3"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate against the backend and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "Account username",
				Sources:  cli.EnvVars("ARB_USERNAME"),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Account password",
				Sources:  cli.EnvVars("ARB_PASSWORD"),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mfa",
				Usage: "One-time MFA code, when the account requires it",
			},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			var mfa *string
			if code := cmd.String("mfa"); code != "" {
				mfa = &code
			}

			_, err := a.client.Login(ctx, types.LoginRequest{
				Username: cmd.String("username"),
				Password: cmd.String("password"),
				MFACode:  mfa,
			})

			return err
		}),
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "End the session and remove the stored tokens",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			if err := a.client.Logout(ctx); err != nil {
				return err
			}

			fmt.Fprintln(a.out, "Logged out.")

			return nil
		}),
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the stored session",
		Action: withApp(func(_ context.Context, _ *cli.Command, a *app) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.out, "Not logged in.")

				return nil
			}

			username := "-"
			if user := a.session.User(); user != nil && user.Username != "" {
				username = user.Username
			}

			printFields(a.out, []kv{
				{label: "User", value: username},
				{label: "Backend", value: a.cfg.APIURL},
				{label: "Credentials", value: a.cfg.CredentialsPath},
			})

			return nil
		}),
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Exchange the stored refresh token for a new token pair",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			if _, err := a.client.Refresh(ctx); err != nil {
				return err
			}

			fmt.Fprintln(a.out, "Session refreshed.")

			return nil
		}),
	}
}
