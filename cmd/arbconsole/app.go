package main

import (
	"context"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/rxtech-lab/arb-console/internal/api"
	"github.com/rxtech-lab/arb-console/internal/config"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/rxtech-lab/arb-console/internal/notify"
	"github.com/rxtech-lab/arb-console/internal/poller"
	"github.com/rxtech-lab/arb-console/internal/session"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app holds the services shared by every command.
type app struct {
	cfg      config.Config
	logger   *logger.Logger
	session  *session.Session
	notifier notify.Notifier
	client   *api.Client
	clock    clockwork.Clock
	out      io.Writer
}

// newApp loads the configuration, applies the global flags and wires the
// session, notifier and transport client.
func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if v := cmd.String("api-url"); v != "" {
		cfg.APIURL = v
	}

	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	if v := cmd.String("credentials"); v != "" {
		cfg.CredentialsPath = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	sess, err := session.New(session.NewFileStore(cfg.CredentialsPath), log)
	if err != nil {
		return nil, err
	}

	sess.OnInvalidate(func(reason string) {
		if reason == api.InvalidateReasonUnauthorized {
			log.Warn("Session expired, run `arbconsole login` again", zap.String("credentials", cfg.CredentialsPath))
		}
	})

	notifier := notify.NewTerminalNotifier(os.Stderr, log)

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		session:  sess,
		notifier: notifier,
		client:   api.NewClient(cfg, sess, notifier, log),
		clock:    clockwork.NewRealClock(),
		out:      out,
	}, nil
}

func (a *app) poller() *poller.Poller {
	return poller.New(a.clock, a.logger)
}

// requireLogin fails early for commands that need a session.
func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errors.New(errors.ErrCodeNotAuthenticated, "not logged in, run `arbconsole login` first")
	}

	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// withApp adapts a command body to a cli action.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		return fn(ctx, cmd, a)
	}
}

// withLogin is withApp for commands that need an authenticated session.
func withLogin(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}

		return fn(ctx, cmd, a)
	})
}
