package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier only logs notifications. It is used when nothing is listening,
// e.g. in the BFF server where the caller reads the JSON response instead.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards notifications with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Notify logs and discards n.
func (n *NoOpNotifier) Notify(_ context.Context, nt Notification) error {
	n.log.Debug("notification discarded (no backend configured)",
		"level", nt.Level,
		"message", nt.Message,
	)
	return nil
}
