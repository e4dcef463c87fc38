// Package render turns a catalog snapshot into a presentation-neutral view:
// skeleton placeholders while loading, an empty state, or cards with a pager.
package render

import (
	"fmt"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// Defaults for Options.
const (
	DefaultSkeletonCount  = 8
	DefaultMaxPageButtons = 5
)

// Options tunes the renderer.
type Options struct {
	SkeletonCount  int
	MaxPageButtons int
}

func (o Options) withDefaults() Options {
	if o.SkeletonCount <= 0 {
		o.SkeletonCount = DefaultSkeletonCount
	}
	if o.MaxPageButtons <= 0 {
		o.MaxPageButtons = DefaultMaxPageButtons
	}
	return o
}

// Skeleton is a placeholder card shown while a page loads.
type Skeleton struct {
	Index int `json:"index"`
}

// Pager describes the page navigation control.
type Pager struct {
	Current      int   `json:"current"`
	Pages        int   `json:"pages"`
	Buttons      []int `json:"buttons"`
	PrevDisabled bool  `json:"prev_disabled"`
	NextDisabled bool  `json:"next_disabled"`
}

// View is everything a presenter needs to draw one listing.
type View[T any] struct {
	Loading      bool       `json:"loading"`
	Skeletons    []Skeleton `json:"skeletons,omitempty"`
	Empty        bool       `json:"empty"`
	EmptyMessage string     `json:"empty_message,omitempty"`
	Cards        []T        `json:"cards"`
	Pager        *Pager     `json:"pager,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Render builds the view for one listing state. While loading it yields
// exactly SkeletonCount placeholders and no cards.
func Render[T any](loading bool, page domain.ResultPage[T], search string, opts Options) View[T] {
	opts = opts.withDefaults()

	if loading {
		sk := make([]Skeleton, opts.SkeletonCount)
		for i := range sk {
			sk[i] = Skeleton{Index: i}
		}
		return View[T]{Loading: true, Skeletons: sk, Cards: []T{}}
	}

	if len(page.Items) == 0 {
		return View[T]{Empty: true, EmptyMessage: EmptyMessage(search), Cards: []T{}}
	}

	v := View[T]{
		Cards:   page.Items,
		Summary: Summary(len(page.Items), page.Pagination.Total),
	}
	if page.Pagination.Pages > 1 {
		v.Pager = NewPager(page.Pagination.Page, page.Pagination.Pages, opts.MaxPageButtons)
	}
	return v
}

// EmptyMessage returns the empty-state text for the active search term.
func EmptyMessage(search string) string {
	if search != "" {
		return fmt.Sprintf("No results for %q", search)
	}
	return "No items available"
}

// Summary returns the "Showing X of Y" line.
func Summary(shown, total int) string {
	return fmt.Sprintf("Showing %d of %d", shown, max(total, shown))
}

// NewPager builds the pager for current out of pages.
func NewPager(current, pages, maxButtons int) *Pager {
	current = min(max(current, 1), max(pages, 1))
	return &Pager{
		Current:      current,
		Pages:        pages,
		Buttons:      PageWindow(current, pages, maxButtons),
		PrevDisabled: current <= 1,
		NextDisabled: current >= pages,
	}
}

// PageWindow returns up to maxButtons consecutive page numbers centred on
// current and clamped to [1, pages].
func PageWindow(current, pages, maxButtons int) []int {
	if pages <= 0 || maxButtons <= 0 {
		return nil
	}
	n := min(pages, maxButtons)
	start := current - maxButtons/2
	start = min(start, pages-n+1)
	start = max(start, 1)

	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
