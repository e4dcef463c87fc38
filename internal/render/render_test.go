package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

func TestPageWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current int
		pages   int
		want    []int
	}{
		{name: "first of twelve", current: 1, pages: 12, want: []int{1, 2, 3, 4, 5}},
		{name: "second of twelve", current: 2, pages: 12, want: []int{1, 2, 3, 4, 5}},
		{name: "middle of twelve", current: 7, pages: 12, want: []int{5, 6, 7, 8, 9}},
		{name: "last of twelve", current: 12, pages: 12, want: []int{8, 9, 10, 11, 12}},
		{name: "eleventh of twelve", current: 11, pages: 12, want: []int{8, 9, 10, 11, 12}},
		{name: "fewer pages than buttons", current: 2, pages: 3, want: []int{1, 2, 3}},
		{name: "exactly five", current: 5, pages: 5, want: []int{1, 2, 3, 4, 5}},
		{name: "no pages", current: 1, pages: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PageWindow(tt.current, tt.pages, 5))
		})
	}
}

func TestRender_LoadingShowsSkeletonsOnly(t *testing.T) {
	t.Parallel()

	page := domain.ResultPage[Card]{
		Items:      []Card{{ID: "a"}, {ID: "b"}},
		Pagination: domain.Pagination{Page: 1, Pages: 3, Total: 30},
	}
	v := Render(true, page, "", Options{})

	assert.True(t, v.Loading)
	assert.Len(t, v.Skeletons, DefaultSkeletonCount)
	assert.Empty(t, v.Cards)
	assert.Nil(t, v.Pager)
	assert.False(t, v.Empty)

	v = Render(true, page, "", Options{SkeletonCount: 3})
	assert.Len(t, v.Skeletons, 3)
}

func TestRender_EmptyState(t *testing.T) {
	t.Parallel()

	empty := domain.ResultPage[Card]{}

	v := Render(false, empty, "", Options{})
	assert.True(t, v.Empty)
	assert.Equal(t, "No items available", v.EmptyMessage)
	assert.Nil(t, v.Pager)

	v = Render(false, empty, "ciment", Options{})
	assert.True(t, v.Empty)
	assert.Equal(t, `No results for "ciment"`, v.EmptyMessage)
}

func TestRender_CardsAndPager(t *testing.T) {
	t.Parallel()

	page := domain.ResultPage[Card]{
		Items:      []Card{{ID: "a"}, {ID: "b"}},
		Pagination: domain.Pagination{Page: 7, Limit: 2, Total: 24, Pages: 12},
	}
	v := Render(false, page, "", Options{})

	assert.False(t, v.Loading)
	assert.Empty(t, v.Skeletons)
	assert.Len(t, v.Cards, 2)
	assert.Equal(t, "Showing 2 of 24", v.Summary)
	require.NotNil(t, v.Pager)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, v.Pager.Buttons)
	assert.False(t, v.Pager.PrevDisabled)
	assert.False(t, v.Pager.NextDisabled)
}

func TestRender_SinglePageHasNoPager(t *testing.T) {
	t.Parallel()

	page := domain.ResultPage[Card]{
		Items:      []Card{{ID: "a"}},
		Pagination: domain.Pagination{Page: 1, Limit: 12, Total: 1, Pages: 1},
	}
	assert.Nil(t, Render(false, page, "", Options{}).Pager)
}

func TestNewPager_Bounds(t *testing.T) {
	t.Parallel()

	p := NewPager(1, 12, 5)
	assert.True(t, p.PrevDisabled)
	assert.False(t, p.NextDisabled)

	p = NewPager(12, 12, 5)
	assert.False(t, p.PrevDisabled)
	assert.True(t, p.NextDisabled)
	assert.Equal(t, []int{8, 9, 10, 11, 12}, p.Buttons)
}

func TestCardFor(t *testing.T) {
	t.Parallel()

	price := 1250000.5
	stock := 0.0
	c := CardFor(domain.Item{
		ID:       "p1",
		Name:     "Ciment 50kg",
		Price:    &price,
		Unit:     "sac",
		Images:   []string{"/img/a.jpg", "/img/b.jpg"},
		Category: "Liants",
		Stock:    &stock,
	})

	assert.Equal(t, "p1", c.ID)
	assert.Equal(t, "Ciment 50kg", c.Title)
	assert.Equal(t, "1 250 000.5 FCFA / sac", c.Price)
	assert.Equal(t, "/img/a.jpg", c.Image)
	require.NotNil(t, c.InStock)
	assert.False(t, *c.InStock)
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price *float64
		want  string
	}{
		{name: "nil", price: nil, want: "On request"},
		{name: "small", price: ptr(950), want: "950 FCFA"},
		{name: "thousands", price: ptr(45000), want: "45 000 FCFA"},
		{name: "negative", price: ptr(-1500), want: "-1 500 FCFA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatPrice(tt.price, ""))
		})
	}
}

func TestMapPage(t *testing.T) {
	t.Parallel()

	page := domain.ResultPage[domain.Item]{
		Items:      []domain.Item{{ID: "a", Name: "A"}},
		Pagination: domain.Pagination{Page: 2, Pages: 4},
	}
	out := MapPage(page, CardFor)
	assert.Equal(t, page.Pagination, out.Pagination)
	assert.Equal(t, "A", out.Items[0].Title)
}

func ptr(v float64) *float64 { return &v }
