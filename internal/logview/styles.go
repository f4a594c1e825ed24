package logview

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/arb-console/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// ConnectedStyle renders the connected indicator.
	ConnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// DisconnectedStyle renders the disconnected indicator.
	DisconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// PausedStyle marks the paused state.
	PausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	// JumpStyle renders the "new logs" affordance.
	JumpStyle = lipgloss.NewStyle().Bold(true).Reverse(true)

	// TagStyle renders exchange and symbol tags.
	TagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	// TimeStyle renders timestamps.
	TimeStyle = lipgloss.NewStyle().Faint(true)
)

var levelStyles = map[types.LogLevel]lipgloss.Style{
	types.LogLevelInfo:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	types.LogLevelWarn:        lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	types.LogLevelError:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	types.LogLevelSuccess:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	types.LogLevelOpportunity: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
}

// LevelStyle returns the style of a level; unknown levels render plain.
func LevelStyle(level types.LogLevel) lipgloss.Style {
	if style, ok := levelStyles[level]; ok {
		return style
	}

	return lipgloss.NewStyle()
}
