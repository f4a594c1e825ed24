package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
)

// Notification is one transient user-facing message.
type Notification struct {
	Kind    Kind
	Message string
}

// Notifier surfaces transient messages to the user.
type Notifier interface {
	Error(message string)
	Success(message string)
	Info(message string)
}

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Faint(true)
)

// TerminalNotifier prints notifications to a writer (normally stderr) and
// records them in the structured log.
type TerminalNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	logger *logger.Logger
}

// NewTerminalNotifier creates a TerminalNotifier writing to out.
func NewTerminalNotifier(out io.Writer, log *logger.Logger) *TerminalNotifier {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &TerminalNotifier{
		mu:     sync.Mutex{},
		out:    out,
		logger: log.Named("notify"),
	}
}

func (n *TerminalNotifier) Error(message string) {
	n.logger.Debug("Error notification", zap.String("message", message))
	n.write(errorStyle.Render("✖ " + message))
}

func (n *TerminalNotifier) Success(message string) {
	n.logger.Debug("Success notification", zap.String("message", message))
	n.write(successStyle.Render("✔ " + message))
}

func (n *TerminalNotifier) Info(message string) {
	n.write(infoStyle.Render(message))
}

func (n *TerminalNotifier) write(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintln(n.out, line)
}

// ChannelNotifier forwards notifications to a buffered channel so a TUI can
// render them as toasts. When the channel is full the notification is dropped.
type ChannelNotifier struct {
	ch chan Notification
}

// NewChannelNotifier creates a ChannelNotifier with the given buffer size.
func NewChannelNotifier(size int) *ChannelNotifier {
	return &ChannelNotifier{
		ch: make(chan Notification, size),
	}
}

// C returns the receive side of the channel.
func (n *ChannelNotifier) C() <-chan Notification {
	return n.ch
}

func (n *ChannelNotifier) Error(message string) {
	n.send(Notification{Kind: KindError, Message: message})
}

func (n *ChannelNotifier) Success(message string) {
	n.send(Notification{Kind: KindSuccess, Message: message})
}

func (n *ChannelNotifier) Info(message string) {
	n.send(Notification{Kind: KindInfo, Message: message})
}

func (n *ChannelNotifier) send(notification Notification) {
	select {
	case n.ch <- notification:
	default:
	}
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Error(string)   {}
func (Nop) Success(string) {}
func (Nop) Info(string)    {}
