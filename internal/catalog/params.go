package catalog

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// reservedParams are the listing parameters owned by QueryState fields. A
// flag with one of these names is never sent.
var reservedParams = map[string]bool{
	"search":   true,
	"category": true,
	"minPrice": true,
	"maxPrice": true,
	"sort":     true,
	"page":     true,
	"limit":    true,
}

// BuildParams serializes a QueryState into listing query parameters. Base
// params are copied first. Empty search, the sentinel category, nil price
// bounds, false flags and the default sort are omitted; page and limit are
// always present. Flags never override a reserved or base parameter.
func BuildParams(state domain.QueryState, base url.Values) url.Values {
	params := url.Values{}
	for k, vs := range base {
		params[k] = slices.Clone(vs)
	}

	if state.SearchText != "" {
		params.Set("search", state.SearchText)
	}
	if state.Category != "" && state.Category != domain.AllCategories {
		params.Set("category", state.Category)
	}
	if state.PriceMin != nil {
		params.Set("minPrice", formatPrice(*state.PriceMin))
	}
	if state.PriceMax != nil {
		params.Set("maxPrice", formatPrice(*state.PriceMax))
	}
	for name, on := range state.Flags {
		if !on || reservedParams[name] || base.Has(name) {
			continue
		}
		params.Set(name, "true")
	}
	if tok := state.Sort.Token(); tok != "" {
		params.Set("sort", tok)
	}

	params.Set("page", strconv.Itoa(max(state.Page, 1)))
	params.Set("limit", strconv.Itoa(state.PageSize))

	return params
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ApplyFilters parses key=value filter arguments onto state.
// Supported formats:
//
//	search=ciment
//	category=Bois
//	min_price=10
//	max_price=250.50
//	sort=price_asc
//	in_stock=true
//	featured=true
//	page=2
func ApplyFilters(state *domain.QueryState, filters []string) error {
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("invalid filter format %q: expected key=value", f)
		}
		if err := applyFilter(state, key, value); err != nil {
			return err
		}
	}
	return nil
}

func applyFilter(state *domain.QueryState, key, value string) error {
	switch key {
	case "search":
		state.SearchText = value
	case "category":
		state.Category = value
		if value == "" {
			state.Category = domain.AllCategories
		}
	case "min_price", "minPrice":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid min_price %q: %w", value, err)
		}
		state.PriceMin = &v
	case "max_price", "maxPrice":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid max_price %q: %w", value, err)
		}
		state.PriceMax = &v
	case "sort":
		k, err := domain.ParseSortKey(value)
		if err != nil {
			return err
		}
		state.Sort = k
	case "in_stock", domain.FlagInStock:
		return setFlag(state, domain.FlagInStock, value)
	case domain.FlagFeatured:
		return setFlag(state, domain.FlagFeatured, value)
	case "page":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid page %q: %w", value, err)
		}
		state.Page = max(v, 1)
	default:
		return fmt.Errorf("unknown filter key %q", key)
	}
	return nil
}

func setFlag(state *domain.QueryState, name, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if state.Flags == nil {
		state.Flags = make(map[string]bool)
	}
	state.Flags[name] = v
	return nil
}
