package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/arb-console/internal/history"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Live overview of engine, arbitrage and recent operations",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "operations", Usage: "Recent operations to show", Value: 10},
			&cli.BoolFlag{Name: "once", Usage: "Render a single snapshot and exit"},
		},
		Action: withLogin(func(ctx context.Context, cmd *cli.Command, a *app) error {
			limit := int(cmd.Int("operations"))
			load := func(ctx context.Context) (dashboardSnapshot, error) {
				return loadDashboard(ctx, a, limit)
			}

			if cmd.Bool("once") {
				snapshot, err := load(ctx)
				if err != nil {
					return err
				}

				renderDashboard(a.out, snapshot, a.clock.Now())

				return nil
			}

			model := newDashboardModel(ctx, load, a.cfg.Poll.Dashboard, a.clock.Now)
			defer model.cancel()

			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(a.out)).Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}

			return nil
		}),
	}
}

type dashboardSnapshot struct {
	engine     types.EngineStatus
	stats      types.DashboardStats
	operations []types.Operation
}

func loadDashboard(ctx context.Context, a *app, limit int) (dashboardSnapshot, error) {
	engine, err := a.client.EngineStatus(ctx)
	if err != nil {
		return dashboardSnapshot{}, err
	}

	stats, err := a.client.ArbitrageStats(ctx)
	if err != nil {
		return dashboardSnapshot{}, err
	}

	ops, err := a.client.LatestOperations(ctx, limit)
	if err != nil {
		return dashboardSnapshot{}, err
	}

	return dashboardSnapshot{engine: engine, stats: stats, operations: ops}, nil
}

func renderDashboard(w io.Writer, s dashboardSnapshot, now time.Time) {
	printEngineStatus(w, s.engine)
	fmt.Fprintln(w)

	printTitle(w, "Arbitrage")
	printFields(w, []kv{
		{label: "Balance", value: usdFloat(s.stats.BalanceUSD)},
		{label: "Total profit", value: signed(decimal.NewFromFloat(s.stats.TotalProfit))},
		{label: "Opportunities", value: fmt.Sprintf("%d found / %d executed", s.stats.OpportunitiesFound, s.stats.OpportunitiesExecuted)},
		{label: "Win rate", value: decimal.NewFromFloat(s.stats.WinRatePercent).StringFixed(1) + "%"},
	})
	fmt.Fprintln(w)

	printTitle(w, "Recent operations")
	printTable(w, operationHeaders, operationRows(s.operations))
	printFields(w, []kv{{label: "Window win rate", value: history.WinRate(s.operations).StringFixed(1) + "%"}})

	fmt.Fprintln(w, labelStyle.Render(strings.Repeat("─", 40)))
	fmt.Fprintln(w, labelStyle.Render("updated "+now.Format("15:04:05")))
}

type dashboardLoader func(ctx context.Context) (dashboardSnapshot, error)

type dashboardLoadedMsg struct {
	snapshot dashboardSnapshot
	err      error
}

type dashboardTickMsg time.Time

// dashboardModel refreshes the snapshot every interval. Each refresh is
// scheduled only after the previous one finished, so loads never overlap.
type dashboardModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	load     dashboardLoader
	interval time.Duration
	now      func() time.Time

	snapshot dashboardSnapshot
	loaded   bool
	err      error
	updated  time.Time
}

func newDashboardModel(ctx context.Context, load dashboardLoader, interval time.Duration, now func() time.Time) dashboardModel {
	ctx, cancel := context.WithCancel(ctx)

	return dashboardModel{
		ctx:      ctx,
		cancel:   cancel,
		load:     load,
		interval: interval,
		now:      now,
		snapshot: dashboardSnapshot{},
		loaded:   false,
		err:      nil,
		updated:  time.Time{},
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.fetch()
}

func (m dashboardModel) fetch() tea.Cmd {
	ctx, load := m.ctx, m.load

	return func() tea.Msg {
		snapshot, err := load(ctx)

		return dashboardLoadedMsg{snapshot: snapshot, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancel()

			return m, tea.Quit
		}
	case dashboardLoadedMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}

		m.updated = m.now()
		m.err = msg.err

		if msg.err == nil {
			m.snapshot = msg.snapshot
			m.loaded = true
		}

		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg {
			return dashboardTickMsg(t)
		})
	case dashboardTickMsg:
		return m, m.fetch()
	}

	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	switch {
	case m.loaded:
		renderDashboard(&b, m.snapshot, m.updated)
	case m.err == nil:
		b.WriteString(labelStyle.Render("Loading dashboard...") + "\n")
	}

	// A failed refresh keeps the last good snapshot on screen.
	if m.err != nil {
		b.WriteString(lossStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf("refresh every %s · q to quit", m.interval)))

	return b.String()
}
