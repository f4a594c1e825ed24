// Package logview is the terminal live-log viewer built on the stream consumer.
package logview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/arb-console/internal/logstream"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// DefaultScrollThresholdRows is how many rows away from the bottom count as
// "scrolled away" in a terminal.
const DefaultScrollThresholdRows = 2

// chromeHeight is the number of rows used by title, status, filter and help lines.
const chromeHeight = 6

// Source is the stream the viewer displays. *logstream.Consumer satisfies it.
type Source interface {
	Entries() []types.LogEntry
	Filtered(f logstream.Filter) []types.LogEntry
	Pause()
	Resume()
	Paused() bool
	Clear()
	Status() logstream.Status
	Subscribe() (<-chan logstream.Event, func())
}

// Options configure the viewer.
type Options struct {
	// Filter is the initial filter.
	Filter logstream.Filter
	// ExportDir is where transcripts are written. Empty means the working directory.
	ExportDir string
	// Location renders timestamps. Nil means local time.
	Location *time.Location
	// Now stamps export file names. Nil means time.Now.
	Now func() time.Time
	// Stop is called when the viewer quits, tearing the stream down.
	Stop context.CancelFunc
}

// Model is the Bubble Tea model of the live log viewer.
type Model struct {
	source      Source
	events      <-chan logstream.Event
	unsubscribe func()
	stop        context.CancelFunc

	viewport      viewport.Model
	filterInput   textinput.Model
	editingFilter bool
	filter        logstream.Filter
	scroll        *logstream.ScrollTracker
	visible       int

	exportDir string
	loc       *time.Location
	now       func() time.Time
	notice    string
	err       error
	ready     bool
	width     int
	height    int
}

// NewModel creates a viewer over source and subscribes to its events.
func NewModel(source Source, opts Options) Model {
	events, unsubscribe := source.Subscribe()

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	filter := opts.Filter
	if filter.Level == "" {
		filter.Level = logstream.LevelAll
	}

	input := NewFilterInput()
	input.SetValue(filter.Text)

	return Model{
		source:        source,
		events:        events,
		unsubscribe:   unsubscribe,
		stop:          opts.Stop,
		viewport:      viewport.New(80, 18),
		filterInput:   input,
		editingFilter: false,
		filter:        filter,
		scroll:        logstream.NewScrollTracker(DefaultScrollThresholdRows),
		visible:       0,
		exportDir:     opts.ExportDir,
		loc:           opts.Location,
		now:           now,
		notice:        "",
		err:           nil,
		ready:         false,
		width:         80,
		height:        24,
	}
}

// Filter returns the active filter.
func (m Model) Filter() logstream.Filter {
	return m.filter
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan logstream.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}

		return StreamEventMsg{Event: event}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.ready = true
		m.refresh(m.scroll.OnAppend())

		return m, nil

	case StreamEventMsg:
		m.refresh(m.scroll.OnAppend())

		return m, waitForEvent(m.events)

	case streamClosedMsg:
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.notice = ""
		} else {
			m.err = nil
			m.notice = fmt.Sprintf("Exported %d lines to %s", msg.Lines, msg.Path)
		}

		return m, nil

	case tea.KeyMsg:
		if m.editingFilter {
			return m.updateFilterInput(msg)
		}

		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.observeScroll()

	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "p":
		if m.source.Paused() {
			m.source.Resume()
		} else {
			m.source.Pause()
		}

		return m, nil
	case "a":
		enabled := !m.scroll.AutoScroll()
		m.scroll.SetAutoScroll(enabled)

		if enabled {
			m.jumpToLatest()
		}

		return m, nil
	case "/":
		m.editingFilter = true
		m.filterInput.Focus()

		return m, textinput.Blink
	case "l":
		m.filter.Level = logstream.NextLevel(m.filter.Level)
		m.refresh(m.scroll.OnAppend())

		return m, nil
	case "c":
		m.source.Clear()
		m.refresh(true)

		return m, nil
	case "e":
		return m, m.export()
	case "G", "end":
		m.jumpToLatest()

		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.observeScroll()

	return m, cmd
}

func (m Model) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "enter", "esc":
		m.editingFilter = false
		m.filterInput.Blur()

		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filter.Text = m.filterInput.Value()
	m.refresh(m.scroll.OnAppend())

	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.stop != nil {
		m.stop()
	}

	if m.unsubscribe != nil {
		m.unsubscribe()
	}

	return m, tea.Quit
}

// refresh re-renders the filtered entries, optionally following the newest one.
func (m *Model) refresh(follow bool) {
	entries := m.source.Filtered(m.filter)
	m.visible = len(entries)
	m.viewport.SetContent(RenderEntries(entries, m.loc))

	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) jumpToLatest() {
	m.scroll.JumpToLatest()
	m.viewport.GotoBottom()
}

func (m *Model) observeScroll() {
	distance := m.viewport.TotalLineCount() - (m.viewport.YOffset + m.viewport.Height)
	m.scroll.Observe(max(distance, 0))
}

// export writes the transcript of the visible (filtered) entries.
func (m Model) export() tea.Cmd {
	entries := m.source.Filtered(m.filter)
	path := filepath.Join(m.exportDir, logstream.TranscriptFileName(m.now()))
	loc := m.loc

	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return ExportedMsg{Path: path, Lines: 0, Err: errors.Wrap(errors.ErrCodeExportFailed, "failed to create transcript file", err)}
		}
		defer f.Close()

		if err := logstream.WriteTranscript(f, entries, loc); err != nil {
			return ExportedMsg{Path: path, Lines: 0, Err: err}
		}

		return ExportedMsg{Path: path, Lines: len(entries), Err: nil}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Arbitrage Logs"))
	s.WriteString("  ")
	s.WriteString(RenderStatus(m.source.Status()))

	if m.source.Paused() {
		s.WriteString("  ")
		s.WriteString(PausedStyle.Render("PAUSED"))
	}

	s.WriteString(HelpStyle.Render(fmt.Sprintf("  %d shown / %d buffered", m.visible, len(m.source.Entries()))))
	s.WriteString("\n")

	if m.editingFilter {
		s.WriteString(m.filterInput.View())
	} else {
		text := m.filter.Text
		if text == "" {
			text = "-"
		}

		s.WriteString(HelpStyle.Render(fmt.Sprintf("filter: %s | level: %s | auto-scroll: %s", text, m.filter.Level, onOff(m.scroll.AutoScroll()))))
	}

	s.WriteString("\n\n")

	if m.visible == 0 {
		s.WriteString("Waiting for logs...\n")
	} else {
		s.WriteString(m.viewport.View())
		s.WriteString("\n")
	}

	if m.scroll.ShowJumpToLatest() {
		s.WriteString(JumpStyle.Render("↓ New logs (G to jump to latest)"))
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	} else if m.notice != "" {
		s.WriteString(HelpStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("p: pause | a: auto-scroll | /: filter | l: level | c: clear | e: export | G: latest | q: quit"))

	return s.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}

	return "off"
}
