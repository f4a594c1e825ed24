package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalNotifier(t *testing.T) {
	var out bytes.Buffer
	n := NewTerminalNotifier(&out, nil)

	n.Error("Incorrect username or password")
	n.Success("Login successful!")
	n.Info("engine running")

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "Incorrect username or password")
	assert.Contains(t, string(lines[1]), "Login successful!")
	assert.Contains(t, string(lines[2]), "engine running")
}

func TestChannelNotifier(t *testing.T) {
	n := NewChannelNotifier(2)

	n.Error("boom")
	n.Success("ok")
	// buffer is full, this one is dropped instead of blocking
	n.Info("dropped")

	assert.Equal(t, Notification{Kind: KindError, Message: "boom"}, <-n.C())
	assert.Equal(t, Notification{Kind: KindSuccess, Message: "ok"}, <-n.C())

	select {
	case extra := <-n.C():
		t.Fatalf("unexpected notification %v", extra)
	default:
	}
}

func TestNopSatisfiesNotifier(t *testing.T) {
	var n Notifier = Nop{}
	n.Error("x")
	n.Success("x")
	n.Info("x")
}
