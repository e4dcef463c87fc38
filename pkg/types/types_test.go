package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

func TestSortKey_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  domain.SortKey
		want string
	}{
		{key: domain.SortNewest, want: ""},
		{key: domain.SortPriceAsc, want: "price:asc"},
		{key: domain.SortPriceDesc, want: "price:desc"},
		{key: domain.SortName, want: "name:asc"},
		{key: domain.SortMostViewed, want: "views:desc"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.key.Token())
		})
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	k, err := domain.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortNewest, k)

	k, err = domain.ParseSortKey(" Price_Desc ")
	require.NoError(t, err)
	assert.Equal(t, domain.SortPriceDesc, k)

	_, err = domain.ParseSortKey("rating")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort")
}

func TestQueryState_DefaultsAndReset(t *testing.T) {
	t.Parallel()

	q := domain.NewQueryState(12)
	assert.Equal(t, domain.AllCategories, q.Category)
	assert.Equal(t, domain.SortNewest, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 12, q.PageSize)

	minPrice := 10.0
	q.SearchText = "brique"
	q.Category = "Bois"
	q.PriceMin = &minPrice
	q.Sort = domain.SortName
	q.Flags = map[string]bool{domain.FlagInStock: true}
	q.Page = 4

	q.Reset()
	assert.Equal(t, domain.NewQueryState(12), q)
}

func TestQueryState_CloneIsDeep(t *testing.T) {
	t.Parallel()

	minPrice := 5.0
	q := domain.NewQueryState(10)
	q.PriceMin = &minPrice
	q.Flags = map[string]bool{domain.FlagFeatured: true}

	c := q.Clone()
	*c.PriceMin = 99
	c.Flags[domain.FlagFeatured] = false

	assert.InDelta(t, 5.0, *q.PriceMin, 0.001)
	assert.True(t, q.Flag(domain.FlagFeatured))
}

func TestDecodeItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, it domain.Item)
	}{
		{
			name:  "product shape",
			input: `{"_id":"p1","name":"Ciment 35kg","price":12.5,"images":["/img/c.png"],"category":"Gros oeuvre","stock":3}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Equal(t, "p1", it.ID)
				assert.Equal(t, "Ciment 35kg", it.Name)
				require.NotNil(t, it.Price)
				assert.InDelta(t, 12.5, *it.Price, 0.001)
				assert.Equal(t, "/img/c.png", it.FirstImage())
				require.NotNil(t, it.Stock)
				assert.InDelta(t, 3.0, *it.Stock, 0.001)
			},
		},
		{
			name:  "numeric id and fractional stock",
			input: `{"id":42,"name":"Brique","price":3,"stock":2.5}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Equal(t, "42", it.ID)
				require.NotNil(t, it.Stock)
				assert.InDelta(t, 2.5, *it.Stock, 0.001)
			},
		},
		{
			name:  "numeric mongo id and string quantity",
			input: `{"_id":1001,"title":"Sable fin","quantity":"12"}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Equal(t, "1001", it.ID)
				require.NotNil(t, it.Stock)
				assert.InDelta(t, 12.0, *it.Stock, 0.001)
			},
		},
		{
			name:  "unparseable stock is dropped",
			input: `{"id":"p9","name":"Gravier","stock":"beaucoup"}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Equal(t, "p9", it.ID)
				assert.Nil(t, it.Stock)
			},
		},
		{
			name:  "first non-empty image",
			input: `{"id":"p10","name":"Tuile","images":["","http://img/tuile.jpg"]}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Equal(t, "http://img/tuile.jpg", it.FirstImage())
			},
		},
		{
			name:  "experience shape",
			input: `{"id":"e1","title":"Randonnée","prix":"45.00","image":"/img/r.jpg","category":{"name":"Nature"},"viewCount":40}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Equal(t, "e1", it.ID)
				assert.Equal(t, "Randonnée", it.Name)
				require.NotNil(t, it.Price)
				assert.InDelta(t, 45.0, *it.Price, 0.001)
				assert.Equal(t, []string{"/img/r.jpg"}, it.Images)
				assert.Equal(t, "Nature", it.Category)
				assert.Equal(t, 40, it.Views)
			},
		},
		{
			name:  "missing price and images",
			input: `{"id":"x","nom":"Panier tressé","images":[{"url":""}]}`,
			check: func(t *testing.T, it domain.Item) {
				t.Helper()
				assert.Nil(t, it.Price)
				assert.Empty(t, it.Images)
				assert.Equal(t, "Panier tressé", it.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			it, err := domain.DecodeItem(json.RawMessage(tt.input))
			require.NoError(t, err)
			tt.check(t, it)
		})
	}
}

func TestDecodeItem_InvalidPrice(t *testing.T) {
	t.Parallel()

	_, err := domain.DecodeItem(json.RawMessage(`{"id":"x","price":"abc"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
}
