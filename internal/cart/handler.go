package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/storefront/internal/clock"
	"github.com/donaldgifford/storefront/internal/metrics"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// DefaultIndicatorDelay is how long the "adding" indicator stays on.
const DefaultIndicatorDelay = time.Second

// Notification texts.
const (
	MsgSignInRequired = "please sign in to add items to your cart"
	MsgAddFailed      = "could not add item to cart"
)

// Handler performs the add-to-cart side effect.
type Handler struct {
	session  Session
	service  Service
	notifier notify.Notifier
	log      *slog.Logger
	sched    clock.Scheduler
	delay    time.Duration

	mu     sync.Mutex
	gen    uint64
	adding map[string]uint64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithScheduler sets the scheduler that clears the adding indicator.
func WithScheduler(s clock.Scheduler) HandlerOption {
	return func(h *Handler) { h.sched = s }
}

// WithIndicatorDelay sets how long the adding indicator stays on.
func WithIndicatorDelay(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.delay = d
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(
	session Session,
	service Service,
	notifier notify.Notifier,
	log *slog.Logger,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		session:  session,
		service:  service,
		notifier: notifier,
		log:      log,
		sched:    clock.Real(),
		delay:    DefaultIndicatorDelay,
		adding:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Add puts one unit of it into the current user's cart and reports whether
// it succeeded. Failures are notified, never returned.
func (h *Handler) Add(ctx context.Context, it domain.Item) bool {
	user, ok := h.session.CurrentUser()
	if !ok {
		metrics.CartAddsTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		h.notify(ctx, notify.Error(MsgSignInRequired))
		return false
	}

	gen := h.markAdding(it.ID)
	defer h.sched.AfterFunc(h.delay, func() { h.clearAdding(it.ID, gen) })

	if err := h.service.AddToCart(ctx, user.ID, ToEntry(it)); err != nil {
		metrics.CartAddsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		h.log.Error("add to cart failed", "item", it.ID, "user", user.ID, "error", err)
		h.notify(ctx, notify.Error(MsgAddFailed))
		return false
	}

	metrics.CartAddsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	h.log.Info("item added to cart", "item", it.ID, "user", user.ID)
	h.notify(ctx, notify.Success(fmt.Sprintf("%s added to cart", it.Name)))
	return true
}

// Adding reports whether the adding indicator of an item is on.
func (h *Handler) Adding(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.adding[id]
	return ok
}

func (h *Handler) markAdding(id string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gen++
	h.adding[id] = h.gen
	return h.gen
}

func (h *Handler) clearAdding(id string, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.adding[id] == gen {
		delete(h.adding, id)
	}
}

func (h *Handler) notify(ctx context.Context, n notify.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		h.log.Warn("failed to deliver notification", "error", err)
	}
}
