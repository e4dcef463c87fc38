package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/storefront/internal/metrics"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// DefaultCategoryTTL is how long a vertical's category list stays fresh.
const DefaultCategoryTTL = 5 * time.Minute

// CategoryFetcher loads the categories served at path. *client.Client
// satisfies it.
type CategoryFetcher interface {
	Categories(ctx context.Context, path string) ([]domain.Category, error)
}

type categoryEntry struct {
	data      []domain.Category
	fetchedAt time.Time
}

// CategoryCache keeps the category list of every vertical with a TTL.
type CategoryCache struct {
	fetcher   CategoryFetcher
	verticals map[string]domain.Vertical
	ttl       time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	entries map[string]categoryEntry
}

// NewCategoryCache creates a cache over the configured verticals. Verticals
// without a categories endpoint are skipped.
func NewCategoryCache(
	fetcher CategoryFetcher,
	verticals map[string]domain.Vertical,
	ttl time.Duration,
) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{
		fetcher:   fetcher,
		verticals: verticals,
		ttl:       ttl,
		now:       time.Now,
		entries:   make(map[string]categoryEntry),
	}
}

// Get returns the categories of a vertical, fetching them when the cached
// copy is missing or expired. The list always starts with the
// domain.AllCategories sentinel.
func (c *CategoryCache) Get(ctx context.Context, vertical string) ([]domain.Category, error) {
	c.mu.RLock()
	e, ok := c.entries[vertical]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return withSentinel(e.data), nil
	}

	data, err := c.load(ctx, vertical)
	if err != nil {
		return nil, err
	}
	return withSentinel(data), nil
}

// Refresh reloads every vertical that has a categories endpoint.
func (c *CategoryCache) Refresh(ctx context.Context) error {
	names := make([]string, 0, len(c.verticals))
	for name, v := range c.verticals {
		if v.Categories != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if _, err := c.load(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Invalidate drops every cached list.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]categoryEntry)
}

func (c *CategoryCache) load(ctx context.Context, vertical string) ([]domain.Category, error) {
	v, ok := c.verticals[vertical]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVertical, vertical)
	}
	if v.Categories == "" {
		return nil, nil
	}

	data, err := c.fetcher.Categories(ctx, v.Categories)
	if err != nil {
		metrics.CategoryRefreshesTotal.WithLabelValues(vertical, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("loading categories for %s: %w", vertical, err)
	}
	metrics.CategoryRefreshesTotal.WithLabelValues(vertical, metrics.OutcomeSuccess).Inc()

	c.mu.Lock()
	c.entries[vertical] = categoryEntry{data: data, fetchedAt: c.now()}
	c.mu.Unlock()
	return data, nil
}

func withSentinel(data []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(data)+1)
	total := 0
	for _, cat := range data {
		total += cat.Count
	}
	out = append(out, domain.Category{Name: domain.AllCategories, Count: total})
	for _, cat := range data {
		if cat.Name == domain.AllCategories {
			continue
		}
		out = append(out, cat)
	}
	return out
}

// Refresher periodically refreshes a CategoryCache.
type Refresher struct {
	cron  *cron.Cron
	cache *CategoryCache
	log   *slog.Logger
}

// NewRefresher schedules cache refreshes every interval.
func NewRefresher(cache *CategoryCache, interval time.Duration, log *slog.Logger) (*Refresher, error) {
	c := cron.New()

	r := &Refresher{
		cron:  c,
		cache: cache,
		log:   log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), r.run); err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins running scheduled refreshes.
func (r *Refresher) Start() {
	r.log.Info("category refresher started")
	r.cron.Start()
}

// Stop stops the refresher, waiting for a running refresh to finish.
func (r *Refresher) Stop() context.Context {
	r.log.Info("category refresher stopping")
	return r.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (r *Refresher) Entries() []cron.Entry {
	return r.cron.Entries()
}

func (r *Refresher) run() {
	ctx := context.Background()
	r.log.Debug("scheduled category refresh starting")
	if err := r.cache.Refresh(ctx); err != nil {
		r.log.Error("scheduled category refresh failed", "error", err)
	}
}
