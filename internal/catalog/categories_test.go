package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (f *countingFetcher) Categories(_ context.Context, path string) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[path]++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Category{{Name: "Bois", Count: 3}, {Name: "Métal", Count: 2}}, nil
}

func (f *countingFetcher) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func testVerticals() map[string]domain.Vertical {
	return map[string]domain.Vertical{
		"materials": {Endpoint: "/products/all", Categories: "/products/categories"},
		"tourism":   {Endpoint: "/experiences", Envelope: domain.EnvelopeData},
	}
}

func TestCategoryCache_GetCachesWithinTTL(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{}
	c := NewCategoryCache(f, testVerticals(), time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	cats, err := c.Get(context.Background(), "materials")
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{
		{Name: domain.AllCategories, Count: 5},
		{Name: "Bois", Count: 3},
		{Name: "Métal", Count: 2},
	}, cats)

	_, err = c.Get(context.Background(), "materials")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("/products/categories"))

	now = now.Add(2 * time.Minute)
	_, err = c.Get(context.Background(), "materials")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("/products/categories"))
}

func TestCategoryCache_VerticalWithoutEndpoint(t *testing.T) {
	t.Parallel()

	c := NewCategoryCache(&countingFetcher{}, testVerticals(), 0)
	cats, err := c.Get(context.Background(), "tourism")
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{Name: domain.AllCategories}}, cats)
}

func TestCategoryCache_UnknownVertical(t *testing.T) {
	t.Parallel()

	c := NewCategoryCache(&countingFetcher{}, testVerticals(), 0)
	_, err := c.Get(context.Background(), "spaceships")
	require.ErrorIs(t, err, ErrUnknownVertical)
}

func TestCategoryCache_RefreshAndInvalidate(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{}
	c := NewCategoryCache(f, testVerticals(), time.Hour)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, f.count("/products/categories"))

	_, err := c.Get(context.Background(), "materials")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("/products/categories"))

	c.Invalidate()
	_, err = c.Get(context.Background(), "materials")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("/products/categories"))
}

func TestCategoryCache_RefreshError(t *testing.T) {
	t.Parallel()

	c := NewCategoryCache(&countingFetcher{err: errors.New("down")}, testVerticals(), time.Hour)
	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading categories for materials")
}

func TestNewRefresher_RegistersCronEntry(t *testing.T) {
	t.Parallel()

	c := NewCategoryCache(&countingFetcher{}, testVerticals(), time.Hour)
	r, err := NewRefresher(c, 10*time.Minute, quietLogger())
	require.NoError(t, err)
	assert.Len(t, r.Entries(), 1)

	r.Start()
	ctx := r.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestSourceFor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tourism.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"t1","title":"Safari","prix":"45000"}]`), 0o600))

	verticals := testVerticals()
	v := verticals["tourism"]
	v.Fallback = path
	verticals["tourism"] = v

	src, err := SourceFor(verticals, "tourism")
	require.NoError(t, err)
	assert.Equal(t, "tourism", src.Name)
	assert.Equal(t, UseFallback, src.Policy)
	require.Len(t, src.Fallback, 1)
	assert.Equal(t, "Safari", src.Fallback[0].Name)

	src, err = SourceFor(verticals, "materials")
	require.NoError(t, err)
	assert.Equal(t, KeepPrevious, src.Policy)

	_, err = SourceFor(verticals, "nope")
	require.ErrorIs(t, err, ErrUnknownVertical)
}

func TestLoadFallback_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadFallback(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading fallback dataset")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))
	_, err = LoadFallback(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing fallback dataset")
}
