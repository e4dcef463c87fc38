package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_Notify(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, n.Notify(context.Background(), Success("added")))
}

func TestWriterNotifier_Notify(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)

	require.NoError(t, n.Notify(context.Background(), Success("Ciment added to cart")))
	require.NoError(t, n.Notify(context.Background(), Notification{
		Level: LevelError, Title: "Cart", Message: "please sign in",
	}))

	assert.Equal(t, "✓ Ciment added to cart\n✗ Cart: please sign in\n", buf.String())
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, Notification) error {
	return errors.New("boom")
}

func TestMulti_Notify(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	m := Multi{rec, failingNotifier{}, rec}

	err := m.Notify(context.Background(), Error("error loading catalog"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 2, rec.Count(LevelError))
	assert.Equal(t, 0, rec.Count(LevelSuccess))
}

func TestRecorder_AllReturnsCopy(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	require.NoError(t, rec.Notify(context.Background(), Success("a")))

	all := rec.All()
	all[0].Message = "changed"
	assert.Equal(t, "a", rec.All()[0].Message)
}

// compile-time interface checks.
var (
	_ Notifier = (*NoOpNotifier)(nil)
	_ Notifier = (*WriterNotifier)(nil)
	_ Notifier = (*DiscordNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
	_ Notifier = Multi(nil)
)
