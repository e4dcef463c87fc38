package contact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/donaldgifford/storefront/internal/metrics"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// DefaultPath is the backend endpoint receiving contact requests.
const DefaultPath = "/demandes"

// Notification texts.
const (
	MsgSent   = "your request has been sent"
	MsgFailed = "could not send your request"
)

// Poster delivers a contact request. *client.Client satisfies it.
type Poster interface {
	SubmitContact(ctx context.Context, path string, req *domain.ContactRequest) error
}

// Submitter validates and forwards contact requests.
type Submitter struct {
	poster    Poster
	path      string
	notifier  notify.Notifier
	ops       notify.Notifier
	validator *Validator
	log       *slog.Logger
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithPath overrides the demandes endpoint path.
func WithPath(path string) Option {
	return func(s *Submitter) {
		if path != "" {
			s.path = path
		}
	}
}

// WithOpsNotifier sends a copy of every accepted request to an operator
// channel such as Discord.
func WithOpsNotifier(n notify.Notifier) Option {
	return func(s *Submitter) { s.ops = n }
}

// NewSubmitter creates a Submitter. notifier receives the user-facing
// success or error message.
func NewSubmitter(poster Poster, notifier notify.Notifier, log *slog.Logger, opts ...Option) *Submitter {
	s := &Submitter{
		poster:    poster,
		path:      DefaultPath,
		notifier:  notifier,
		validator: NewValidator(),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks req without sending it.
func (s *Submitter) Validate(req *domain.ContactRequest) error {
	return s.validator.Validate(req)
}

// Submit validates and posts req, then notifies the outcome. It reports
// whether the backend accepted the request and never returns an error.
func (s *Submitter) Submit(ctx context.Context, req *domain.ContactRequest) bool {
	if err := s.validator.Validate(req); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		s.log.Warn("contact request rejected", "error", err)
		s.notify(ctx, s.notifier, notify.Notification{
			Level:   notify.LevelError,
			Title:   MsgFailed,
			Message: err.Error(),
		})
		return false
	}

	if err := s.poster.SubmitContact(ctx, s.path, req); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.log.Error("contact submission failed", "type", req.Type, "error", err)
		s.notify(ctx, s.notifier, notify.Error(MsgFailed))
		return false
	}

	metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.log.Info("contact request sent", "type", req.Type, "service_id", req.ServiceID)
	s.notify(ctx, s.notifier, notify.Success(MsgSent))

	if s.ops != nil {
		s.notify(ctx, s.ops, notify.Notification{
			Level:   notify.LevelInfo,
			Title:   fmt.Sprintf("New %s request", req.Type),
			Message: fmt.Sprintf("%s <%s>: %s", req.Nom, req.Email, req.Message),
		})
	}
	return true
}

func (s *Submitter) notify(ctx context.Context, n notify.Notifier, msg notify.Notification) {
	if err := n.Notify(ctx, msg); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		s.log.Warn("failed to deliver notification", "error", err)
	}
}
