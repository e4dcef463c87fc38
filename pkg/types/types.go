// Package domain defines the core storefront types shared by the catalog,
// cart, contact, and API layers.
package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// AllCategories is the sentinel category meaning "no category filter".
const AllCategories = "Toutes"

// Well-known boolean filter flags understood by the listing endpoints.
const (
	FlagInStock  = "inStock"
	FlagFeatured = "featured"
)

// SortKey is a user-facing sort choice.
type SortKey string

// Sort key constants.
const (
	SortNewest     SortKey = "newest"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortName       SortKey = "name"
	SortMostViewed SortKey = "most_viewed"
)

// sortTokens maps sort keys to the backend's field:direction token.
// SortNewest is intentionally absent so the backend default ordering applies.
var sortTokens = map[SortKey]string{
	SortPriceAsc:   "price:asc",
	SortPriceDesc:  "price:desc",
	SortName:       "name:asc",
	SortMostViewed: "views:desc",
}

// Token returns the backend sort token, or "" for the default ordering.
func (s SortKey) Token() string {
	return sortTokens[s]
}

// ParseSortKey validates a user supplied sort key. An empty string maps to
// SortNewest.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNewest, nil
	}
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k == SortNewest {
		return k, nil
	}
	if _, ok := sortTokens[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf(
		"unknown sort %q (want newest, price_asc, price_desc, name, most_viewed)", s,
	)
}

// QueryState holds every user-controlled input of one catalog view.
type QueryState struct {
	SearchText string          `json:"search_text"`
	Category   string          `json:"category"`
	PriceMin   *float64        `json:"price_min,omitempty"`
	PriceMax   *float64        `json:"price_max,omitempty"`
	Sort       SortKey         `json:"sort"`
	Flags      map[string]bool `json:"flags,omitempty"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// NewQueryState returns the default query state for a view with the given
// page size.
func NewQueryState(pageSize int) QueryState {
	return QueryState{
		Category: AllCategories,
		Sort:     SortNewest,
		Page:     1,
		PageSize: pageSize,
	}
}

// Reset restores every filter to its default and returns to page 1.
// PageSize is kept.
func (q *QueryState) Reset() {
	*q = NewQueryState(q.PageSize)
}

// Clone returns a deep copy of q.
func (q *QueryState) Clone() QueryState {
	c := *q
	if q.PriceMin != nil {
		v := *q.PriceMin
		c.PriceMin = &v
	}
	if q.PriceMax != nil {
		v := *q.PriceMax
		c.PriceMax = &v
	}
	if q.Flags != nil {
		c.Flags = maps.Clone(q.Flags)
	}
	return c
}

// Flag reports whether the named boolean filter is enabled.
func (q *QueryState) Flag(name string) bool {
	return q.Flags[name]
}

// Pagination is the page metadata returned by listing endpoints.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ResultPage is the slice of items currently displayed plus its metadata.
type ResultPage[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// RawPage is a listing response normalized from either backend envelope.
type RawPage struct {
	Items      []json.RawMessage
	Pagination Pagination
}

// Envelope names a backend response shape.
type Envelope string

// Envelope constants.
const (
	// EnvelopeProducts is {products: [...], pagination: {...}}.
	EnvelopeProducts Envelope = "products"
	// EnvelopeData is {success: bool, data: [...], pagination: {...}}.
	EnvelopeData Envelope = "data"
)

// Category is a catalog category with its item count.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// User is the authenticated storefront user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CartEntry is the fixed shape handed to the cart collaborator.
type CartEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description,omitempty"`
	Vendor      string  `json:"vendor,omitempty"`
	SKU         string  `json:"sku,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

// ContactRequest is a contact or quote ("devis") submission.
type ContactRequest struct {
	Nom       string `json:"nom"                 validate:"required"`
	Email     string `json:"email"               validate:"required,email"`
	Telephone string `json:"telephone"`
	Message   string `json:"message"             validate:"required"`
	Type      string `json:"type"                validate:"required"`
	ServiceID string `json:"serviceId,omitempty"`
}

// Vertical describes one listing view of the marketplace.
type Vertical struct {
	Name       string            `json:"name"                 yaml:"-"`
	Title      string            `json:"title"                yaml:"title"`
	Endpoint   string            `json:"endpoint"             yaml:"endpoint"`
	Envelope   Envelope          `json:"envelope"             yaml:"envelope"`
	Categories string            `json:"categories,omitempty" yaml:"categories"`
	Params     map[string]string `json:"params,omitempty"     yaml:"params"`
	PageSize   int               `json:"page_size"            yaml:"page_size"`
	Fallback   string            `json:"-"                    yaml:"fallback"`
}
