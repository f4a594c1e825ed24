package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/arb-console/internal/archive"
	"github.com/rxtech-lab/arb-console/internal/logstream"
	"github.com/rxtech-lab/arb-console/internal/logview"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const handshakeTimeout = 10 * time.Second

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Follow the live engine log stream",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Text filter over message, exchange and symbol"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "ALL, INFO, WARN, ERROR, SUCCESS or OPPORTUNITY", Value: logstream.LevelAll},
			&cli.BoolFlag{Name: "no-tui", Usage: "Print entries as plain lines instead of the interactive viewer"},
			&cli.StringFlag{Name: "export", Aliases: []string{"e"}, Usage: "Write the filtered transcript to this file on exit (\"auto\" picks a dated name)"},
			&cli.StringFlag{Name: "export-dir", Usage: "Directory of transcripts exported from the viewer", Value: "."},
			&cli.StringFlag{Name: "archive", Usage: "Archive every entry to this parquet file (overrides archive_path)"},
		},
		Action: withLogin(logsAction),
		Commands: []*cli.Command{
			{
				Name:  "archive",
				Usage: "Query the local log archive",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "Archive parquet file (defaults to archive_path)"},
					&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Only this level"},
					&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Text filter over message, exchange and symbol"},
					&cli.DurationFlag{Name: "since", Usage: "Only entries newer than this, e.g. 1h"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Most recent entries to print (0 for all)", Value: 200},
				},
				Action: withApp(logsArchiveAction),
			},
		},
	}
}

func parseLevel(value string) (string, error) {
	level := strings.ToUpper(strings.TrimSpace(value))
	if level == "" {
		return logstream.LevelAll, nil
	}

	if !slices.Contains(logstream.LevelChoices(), level) {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown level %q, expected one of %s", value, strings.Join(logstream.LevelChoices(), ", "))
	}

	return level, nil
}

func logsAction(ctx context.Context, cmd *cli.Command, a *app) error {
	level, err := parseLevel(cmd.String("level"))
	if err != nil {
		return err
	}

	url, err := a.cfg.LogStreamURL()
	if err != nil {
		return err
	}

	opts := []logstream.Option{
		logstream.WithLogger(a.logger),
		logstream.WithClock(a.clock),
		logstream.WithDialer(logstream.NewWebsocketDialer(handshakeTimeout)),
	}

	archivePath := cmd.String("archive")
	if archivePath == "" {
		archivePath = a.cfg.ArchivePath
	}

	if archivePath != "" {
		writer := archive.NewLogsWriter(archivePath, archive.DefaultFlushEvery, a.logger)
		if err := writer.Initialize(); err != nil {
			return err
		}

		defer func() {
			if err := writer.Close(); err != nil {
				a.logger.Warn("failed to close log archive", zap.Error(err))
			}
		}()

		opts = append(opts, logstream.WithSink(writer))
	}

	consumer := logstream.NewConsumer(logstream.ConsumerConfig{
		URL:            url,
		ReconnectDelay: a.cfg.ReconnectDelay,
		BufferCapacity: a.cfg.BufferCapacity,
		Tokens:         a.session,
	}, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(runCtx)
	}()

	filter := logstream.Filter{Text: cmd.String("filter"), Level: level}

	if cmd.Bool("no-tui") {
		followPlain(runCtx, a.out, consumer, filter)
	} else {
		model := logview.NewModel(consumer, logview.Options{
			Filter:    filter,
			ExportDir: cmd.String("export-dir"),
			Location:  time.Local,
			Now:       a.clock.Now,
			Stop:      cancel,
		})

		final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx)).Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			cancel()
			<-done

			return errors.Wrap(errors.ErrCodeUnknown, "log viewer failed", err)
		}

		if m, ok := final.(logview.Model); ok {
			filter = m.Filter()
		}
	}

	cancel()
	<-done

	path := cmd.String("export")
	if path == "" {
		return nil
	}

	if path == "auto" {
		path = logstream.TranscriptFileName(a.clock.Now())
	}

	return exportTranscript(a, path, consumer.Filtered(filter))
}

// followPlain prints matching entries as they arrive until ctx is cancelled.
func followPlain(ctx context.Context, w io.Writer, consumer *logstream.Consumer, filter logstream.Filter) {
	events, unsubscribe := consumer.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			switch event.Kind {
			case logstream.EventEntry:
				if filter.Match(event.Entry) {
					fmt.Fprintln(w, logstream.TranscriptLine(event.Entry, time.Local))
				}
			case logstream.EventStatus:
				fmt.Fprintln(os.Stderr, logview.RenderStatus(event.Status))
			}
		}
	}
}

func exportTranscript(a *app, path string, entries []types.LogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create transcript file", err)
	}
	defer f.Close()

	if err := logstream.WriteTranscript(f, entries, time.Local); err != nil {
		return err
	}

	a.notifier.Success(fmt.Sprintf("Exported %d log lines to %s", len(entries), path))

	return nil
}

func logsArchiveAction(ctx context.Context, cmd *cli.Command, a *app) error {
	path := cmd.String("path")
	if path == "" {
		path = a.cfg.ArchivePath
	}

	if path == "" {
		return errors.New(errors.ErrCodeMissingParameter, "no archive configured, pass --path or set archive_path")
	}

	level := strings.ToUpper(strings.TrimSpace(cmd.String("level")))
	if level == logstream.LevelAll {
		level = ""
	}

	q := archive.Query{
		Level: level,
		Text:  cmd.String("filter"),
		Since: time.Time{},
		Limit: uint64(max(cmd.Int("limit"), 0)),
	}

	if since := cmd.Duration("since"); since > 0 {
		q.Since = a.clock.Now().Add(-since)
	}

	writer := archive.NewLogsWriter(path, archive.DefaultFlushEvery, a.logger)
	if err := writer.Initialize(); err != nil {
		return err
	}
	defer writer.Close()

	entries, err := writer.Query(ctx, q)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Fprintln(a.out, logstream.TranscriptLine(entry, time.Local))
	}

	return nil
}
