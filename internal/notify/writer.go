package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

var levelPrefix = map[Level]string{
	LevelSuccess: "✓",
	LevelError:   "✗",
	LevelInfo:    "•",
}

// WriterNotifier prints notifications as single lines, for terminal use.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify writes n to the underlying writer.
func (n *WriterNotifier) Notify(_ context.Context, nt Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	prefix, ok := levelPrefix[nt.Level]
	if !ok {
		prefix = levelPrefix[LevelInfo]
	}

	var err error
	if nt.Title != "" {
		_, err = fmt.Fprintf(n.w, "%s %s: %s\n", prefix, nt.Title, nt.Message)
	} else {
		_, err = fmt.Fprintf(n.w, "%s %s\n", prefix, nt.Message)
	}
	if err != nil {
		return fmt.Errorf("writing notification: %w", err)
	}
	return nil
}
