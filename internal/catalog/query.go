package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/storefront/internal/clock"
	"github.com/donaldgifford/storefront/internal/metrics"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// DefaultPageSize is the page size used when Config leaves it unset.
const DefaultPageSize = 12

// LoadErrorMessage is the notification shown when a catalog fetch fails.
const LoadErrorMessage = "error loading catalog"

// Config holds the collaborators and tunables of a Query.
type Config struct {
	PageSize  int
	Debounce  time.Duration
	Scheduler clock.Scheduler
	Logger    *slog.Logger
	Notifier  notify.Notifier
}

// Snapshot is a consistent view of a Query at one point in time.
type Snapshot[T any] struct {
	State   domain.QueryState
	Draft   string
	Loading bool
	Page    domain.ResultPage[T]
	Err     error
	Seq     uint64
}

// Query holds the query state of one listing view and keeps its result page
// in sync with the backend. Only the response to the most recent dispatch is
// ever applied.
type Query[T any] struct {
	lister    Lister
	src       Source[T]
	log       *slog.Logger
	notifier  notify.Notifier
	debouncer *Debouncer

	mu       sync.Mutex
	state    domain.QueryState
	draft    string
	loading  bool
	page     domain.ResultPage[T]
	err      error
	seq      uint64
	cancel   context.CancelFunc
	base     context.Context
	mounted  bool
	closed   bool
	inflight sync.WaitGroup

	emitMu    sync.Mutex
	listeners []func(Snapshot[T])
}

// NewQuery creates a Query for src. Setters called before Mount update the
// state without fetching.
func NewQuery[T any](lister Lister, src Source[T], cfg Config) *Query[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewNoOpNotifier(cfg.Logger)
	}

	return &Query[T]{
		lister:    lister,
		src:       src,
		log:       cfg.Logger.With("vertical", src.Name),
		notifier:  cfg.Notifier,
		debouncer: NewDebouncer(cfg.Scheduler, cfg.Debounce),
		state:     domain.NewQueryState(cfg.PageSize),
		page:      domain.ResultPage[T]{Items: []T{}},
	}
}

// Name returns the name of the underlying source.
func (q *Query[T]) Name() string {
	return q.src.Name
}

// OnChange registers fn to receive a snapshot after every state transition.
// fn must not call back into q.
func (q *Query[T]) OnChange(fn func(Snapshot[T])) {
	q.emitMu.Lock()
	defer q.emitMu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// State returns a copy of the committed query state.
func (q *Query[T]) State() domain.QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.Clone()
}

// Snapshot returns the current state, page and loading flag.
func (q *Query[T]) Snapshot() Snapshot[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Query[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(q.page.Items))
	copy(items, q.page.Items)
	return Snapshot[T]{
		State:   q.state.Clone(),
		Draft:   q.draft,
		Loading: q.loading,
		Page:    domain.ResultPage[T]{Items: items, Pagination: q.page.Pagination},
		Err:     q.err,
		Seq:     q.seq,
	}
}

// Mount issues the initial fetch. Fetches are bound to ctx.
func (q *Query[T]) Mount(ctx context.Context) {
	q.mu.Lock()
	if q.mounted || q.closed {
		q.mu.Unlock()
		return
	}
	q.mounted = true
	q.base = ctx
	q.dispatchLocked()
	q.mu.Unlock()

	q.emit()
}

// Close cancels the pending debounce and any in-flight fetch. Responses that
// arrive afterwards are dropped.
func (q *Query[T]) Close() {
	q.debouncer.Cancel()

	q.mu.Lock()
	q.closed = true
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.mu.Unlock()
}

// Wait blocks until every dispatched fetch has returned.
func (q *Query[T]) Wait() {
	q.inflight.Wait()
}

// Retry re-issues the current query.
func (q *Query[T]) Retry() {
	q.mu.Lock()
	ok := q.dispatchLocked()
	q.mu.Unlock()
	if ok {
		q.emit()
	}
}

// SetSearchText records a search draft. The draft is committed once no
// further edits arrive within the debounce window.
func (q *Query[T]) SetSearchText(text string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.draft = text
	q.mu.Unlock()

	q.debouncer.Trigger(q.commitSearch)
	q.emit()
}

// FlushSearch commits the pending search draft immediately.
func (q *Query[T]) FlushSearch() {
	if q.debouncer.Cancel() {
		q.commitSearch()
	}
}

func (q *Query[T]) commitSearch() {
	q.changeFilter(func(s *domain.QueryState) bool {
		if s.SearchText == q.draft {
			return false
		}
		s.SearchText = q.draft
		return true
	})
}

// SetCategory filters by category. domain.AllCategories clears the filter.
func (q *Query[T]) SetCategory(category string) {
	if category == "" {
		category = domain.AllCategories
	}
	q.changeFilter(func(s *domain.QueryState) bool {
		if s.Category == category {
			return false
		}
		s.Category = category
		return true
	})
}

// SetPriceMin sets the lower price bound. nil clears it.
func (q *Query[T]) SetPriceMin(v *float64) {
	q.changeFilter(func(s *domain.QueryState) bool {
		if equalPrice(s.PriceMin, v) {
			return false
		}
		s.PriceMin = clonePrice(v)
		return true
	})
}

// SetPriceMax sets the upper price bound. nil clears it.
func (q *Query[T]) SetPriceMax(v *float64) {
	q.changeFilter(func(s *domain.QueryState) bool {
		if equalPrice(s.PriceMax, v) {
			return false
		}
		s.PriceMax = clonePrice(v)
		return true
	})
}

// SetPriceRange sets both bounds with a single fetch. Inverted bounds are
// sent as given.
func (q *Query[T]) SetPriceRange(lo, hi *float64) {
	q.changeFilter(func(s *domain.QueryState) bool {
		if equalPrice(s.PriceMin, lo) && equalPrice(s.PriceMax, hi) {
			return false
		}
		s.PriceMin = clonePrice(lo)
		s.PriceMax = clonePrice(hi)
		return true
	})
}

// SetSort changes the ordering.
func (q *Query[T]) SetSort(k domain.SortKey) {
	q.changeFilter(func(s *domain.QueryState) bool {
		if s.Sort == k {
			return false
		}
		s.Sort = k
		return true
	})
}

// SetFlag toggles a boolean filter such as domain.FlagInStock.
func (q *Query[T]) SetFlag(name string, on bool) {
	q.changeFilter(func(s *domain.QueryState) bool {
		if s.Flag(name) == on {
			return false
		}
		if on {
			if s.Flags == nil {
				s.Flags = make(map[string]bool)
			}
			s.Flags[name] = true
		} else {
			delete(s.Flags, name)
		}
		return true
	})
}

// ClearFilters restores every field to its default, drops any pending search
// draft and fetches page 1.
func (q *Query[T]) ClearFilters() {
	q.debouncer.Cancel()

	q.mu.Lock()
	q.draft = ""
	q.state.Reset()
	ok := q.dispatchLocked()
	q.mu.Unlock()

	if ok {
		q.emit()
	}
}

// SetPage moves to page n, keeping every filter. n below 1 is clamped.
func (q *Query[T]) SetPage(n int) {
	n = max(n, 1)
	q.mu.Lock()
	if q.state.Page == n {
		q.mu.Unlock()
		return
	}
	q.state.Page = n
	q.dispatchLocked()
	q.mu.Unlock()

	q.emit()
}

// NextPage advances one page unless the last page is showing. It doubles as
// the "load more" action; the next page replaces the current items.
func (q *Query[T]) NextPage() bool {
	q.mu.Lock()
	next := q.state.Page + 1
	pages := q.page.Pagination.Pages
	q.mu.Unlock()

	if next > pages {
		return false
	}
	q.SetPage(next)
	return true
}

// PrevPage goes back one page unless page 1 is showing.
func (q *Query[T]) PrevPage() bool {
	q.mu.Lock()
	prev := q.state.Page - 1
	q.mu.Unlock()

	if prev < 1 {
		return false
	}
	q.SetPage(prev)
	return true
}

// changeFilter applies fn and, when it reports a change, resets to page 1
// and fetches.
func (q *Query[T]) changeFilter(fn func(*domain.QueryState) bool) {
	q.mu.Lock()
	if q.closed || !fn(&q.state) {
		q.mu.Unlock()
		return
	}
	q.state.Page = 1
	q.dispatchLocked()
	q.mu.Unlock()

	q.emit()
}

// dispatchLocked supersedes any in-flight fetch and starts a new one for the
// current state. It reports whether a fetch was started.
func (q *Query[T]) dispatchLocked() bool {
	if !q.mounted || q.closed {
		return false
	}

	if q.cancel != nil {
		q.cancel()
	}
	ctx, cancel := context.WithCancel(q.base)
	q.cancel = cancel
	q.seq++
	q.loading = true
	q.err = nil

	seq := q.seq
	state := q.state.Clone()

	q.inflight.Add(1)
	go q.run(ctx, seq, state)
	return true
}

func (q *Query[T]) run(ctx context.Context, seq uint64, state domain.QueryState) {
	defer q.inflight.Done()

	page, err := FetchPage(ctx, q.lister, q.src, state)

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		metrics.CatalogStaleResponsesTotal.WithLabelValues(q.src.Name).Inc()
		q.log.Debug("discarding stale catalog response", "seq", seq, "latest", q.seq)
		return
	}

	q.loading = false
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	if q.closed {
		q.mu.Unlock()
		return
	}

	if err != nil {
		q.err = err
		if q.src.Policy == UseFallback {
			q.page = fallbackPage(q.src.Fallback)
		}
		q.mu.Unlock()

		q.log.Error("catalog fetch failed", "seq", seq, "page", state.Page, "error", err)
		if nerr := q.notifier.Notify(context.WithoutCancel(ctx), notify.Error(LoadErrorMessage)); nerr != nil {
			metrics.NotificationFailuresTotal.Inc()
			q.log.Warn("failed to deliver notification", "error", nerr)
		}
		q.emit()
		return
	}

	q.page = page
	q.mu.Unlock()

	q.log.Debug("catalog page loaded",
		"seq", seq,
		"page", page.Pagination.Page,
		"items", len(page.Items),
		"total", page.Pagination.Total,
	)
	q.emit()
}

func (q *Query[T]) emit() {
	q.emitMu.Lock()
	defer q.emitMu.Unlock()
	if len(q.listeners) == 0 {
		return
	}
	snap := q.Snapshot()
	for _, fn := range q.listeners {
		fn(snap)
	}
}

func equalPrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePrice(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
