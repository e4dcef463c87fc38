// Package catalog keeps a listing view's query state in sync with the
// backend: it debounces free-text search, issues one fetch per committed
// change, discards stale responses, and exposes snapshots for rendering.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// ErrUnknownVertical is returned when a vertical name is not configured.
var ErrUnknownVertical = errors.New("unknown vertical")

// Lister fetches one page from a listing endpoint. *client.Client
// satisfies it.
type Lister interface {
	List(
		ctx context.Context,
		path string,
		envelope domain.Envelope,
		params url.Values,
	) (*domain.RawPage, error)
}

// Mapper turns one raw backend record into a view item.
type Mapper[T any] func(json.RawMessage) (T, error)

// FallbackPolicy decides what a failed fetch leaves on screen.
type FallbackPolicy int

// Fallback policies.
const (
	// KeepPrevious leaves the last successful page in place.
	KeepPrevious FallbackPolicy = iota
	// UseFallback replaces the page with the source's static dataset.
	UseFallback
)

// Source describes where a Query fetches from and how it maps records.
type Source[T any] struct {
	Name       string
	Path       string
	Envelope   domain.Envelope
	BaseParams url.Values
	Mapper     Mapper[T]

	Policy   FallbackPolicy
	Fallback []T
}

// ItemSource builds a Source of domain.Item for a configured vertical.
func ItemSource(v domain.Vertical) Source[domain.Item] {
	base := url.Values{}
	for k, val := range v.Params {
		base.Set(k, val)
	}
	return Source[domain.Item]{
		Name:       v.Name,
		Path:       v.Endpoint,
		Envelope:   v.Envelope,
		BaseParams: base,
		Mapper:     domain.DecodeItem,
	}
}

// WithFallback switches src to the UseFallback policy with items.
func WithFallback[T any](src Source[T], items []T) Source[T] {
	src.Policy = UseFallback
	src.Fallback = items
	return src
}

// FallbackPage returns the static dataset as a single page when the source
// uses the UseFallback policy.
func (s Source[T]) FallbackPage() (domain.ResultPage[T], bool) {
	if s.Policy != UseFallback {
		return domain.ResultPage[T]{}, false
	}
	return fallbackPage(s.Fallback), true
}

// LoadFallback reads a static dataset for a vertical from a JSON file holding
// an array of records in the backend's item shape.
func LoadFallback(path string) ([]domain.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fallback dataset: %w", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing fallback dataset: %w", err)
	}

	items := make([]domain.Item, 0, len(raws))
	for i, raw := range raws {
		it, err := domain.DecodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("fallback item %d: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// SourceFor resolves a vertical into an item Source, loading its fallback
// dataset when one is configured.
func SourceFor(verticals map[string]domain.Vertical, name string) (Source[domain.Item], error) {
	v, ok := verticals[name]
	if !ok {
		return Source[domain.Item]{}, fmt.Errorf("%w: %q", ErrUnknownVertical, name)
	}
	v.Name = name

	src := ItemSource(v)
	if v.Fallback != "" {
		items, err := LoadFallback(v.Fallback)
		if err != nil {
			return Source[domain.Item]{}, fmt.Errorf("vertical %s: %w", name, err)
		}
		src = WithFallback(src, items)
	}
	return src, nil
}
