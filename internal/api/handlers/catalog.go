package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/storefront/internal/api/client"
	"github.com/donaldgifford/storefront/internal/catalog"
	"github.com/donaldgifford/storefront/internal/render"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// ItemGetter fetches a single backend record.
type ItemGetter interface {
	GetItem(ctx context.Context, path, id string) (json.RawMessage, error)
}

// CatalogBackend is what the catalog endpoints need from the backend.
// *client.Client satisfies it.
type CatalogBackend interface {
	catalog.Lister
	ItemGetter
}

// CategoryLister returns the categories of a vertical.
// *catalog.CategoryCache satisfies it.
type CategoryLister interface {
	Get(ctx context.Context, vertical string) ([]domain.Category, error)
}

// CatalogHandler serves rendered catalog pages for the configured verticals.
type CatalogHandler struct {
	backend    CatalogBackend
	categories CategoryLister
	verticals  map[string]domain.Vertical
	sources    map[string]catalog.Source[domain.Item]
	render     render.Options
}

// NewCatalogHandler creates a CatalogHandler. Fallback datasets configured
// on the verticals are loaded up front.
func NewCatalogHandler(
	backend CatalogBackend,
	categories CategoryLister,
	verticals map[string]domain.Vertical,
	opts render.Options,
) (*CatalogHandler, error) {
	h := &CatalogHandler{
		backend:    backend,
		categories: categories,
		verticals:  make(map[string]domain.Vertical, len(verticals)),
		sources:    make(map[string]catalog.Source[domain.Item], len(verticals)),
		render:     opts,
	}
	for name, v := range verticals {
		src, err := catalog.SourceFor(verticals, name)
		if err != nil {
			return nil, err
		}
		v.Name = name
		h.verticals[name] = v
		h.sources[name] = src
	}
	return h, nil
}

// --- Input/Output types ---

// ListVerticalsOutput is the response for listing verticals.
type ListVerticalsOutput struct {
	Body struct {
		Verticals []domain.Vertical `json:"verticals"`
	}
}

// GetCatalogInput mirrors the query state of one catalog view.
type GetCatalogInput struct {
	Vertical string `path:"vertical"  doc:"Vertical name"`
	Search   string `query:"search"   doc:"Free-text search"`
	Category string `query:"category" doc:"Category name (Toutes or empty for all)"`
	MinPrice string `query:"minPrice" doc:"Lower price bound"`
	MaxPrice string `query:"maxPrice" doc:"Upper price bound"`
	Sort     string `query:"sort"     doc:"Sort order"                              enum:"newest,price_asc,price_desc,name,most_viewed,"`
	InStock  bool   `query:"inStock"  doc:"Only items in stock"`
	Featured bool   `query:"featured" doc:"Only featured items"`
	Page     int    `query:"page"     doc:"Page number (default 1)"                                                                      minimum:"0"`
	Limit    int    `query:"limit"    doc:"Page size (default per vertical)"                                                             minimum:"0" maximum:"100"`
}

func (in *GetCatalogInput) filters() []string {
	var out []string
	add := func(key, value string) {
		if value != "" {
			out = append(out, key+"="+value)
		}
	}
	add("search", in.Search)
	add("category", in.Category)
	add("minPrice", in.MinPrice)
	add("maxPrice", in.MaxPrice)
	add("sort", in.Sort)
	if in.InStock {
		add(domain.FlagInStock, "true")
	}
	if in.Featured {
		add(domain.FlagFeatured, "true")
	}
	if in.Page > 0 {
		add("page", strconv.Itoa(in.Page))
	}
	return out
}

// GetCatalogOutput is one rendered catalog page.
type GetCatalogOutput struct {
	Body struct {
		Vertical string                   `json:"vertical"`
		Query    domain.QueryState        `json:"query"`
		View     render.View[render.Card] `json:"view"`
	}
}

// GetItemInput is the input for getting a single item.
type GetItemInput struct {
	Vertical string `path:"vertical" doc:"Vertical name"`
	ID       string `path:"id"       doc:"Item ID"`
}

// GetItemOutput is the response for getting a single item.
type GetItemOutput struct {
	Body struct {
		Item domain.Item `json:"item"`
		Card render.Card `json:"card"`
	}
}

// ListCategoriesInput is the input for listing a vertical's categories.
type ListCategoriesInput struct {
	Vertical string `path:"vertical" doc:"Vertical name"`
}

// ListCategoriesOutput is the response for listing categories.
type ListCategoriesOutput struct {
	Body struct {
		Categories []domain.Category `json:"categories"`
	}
}

// --- Handlers ---

// ListVerticals returns the configured verticals sorted by name.
func (h *CatalogHandler) ListVerticals(
	_ context.Context,
	_ *struct{},
) (*ListVerticalsOutput, error) {
	resp := &ListVerticalsOutput{}
	resp.Body.Verticals = make([]domain.Vertical, 0, len(h.verticals))
	for _, v := range h.verticals {
		resp.Body.Verticals = append(resp.Body.Verticals, v)
	}
	sort.Slice(resp.Body.Verticals, func(i, j int) bool {
		return resp.Body.Verticals[i].Name < resp.Body.Verticals[j].Name
	})
	return resp, nil
}

// GetCatalog fetches one page for the given query state and renders it.
// When the backend fails and the vertical has a fallback dataset, the
// fallback is rendered and the view carries the load error.
func (h *CatalogHandler) GetCatalog(
	ctx context.Context,
	input *GetCatalogInput,
) (*GetCatalogOutput, error) {
	src, ok := h.sources[input.Vertical]
	if !ok {
		return nil, huma.Error404NotFound("unknown vertical " + strconv.Quote(input.Vertical))
	}

	state := domain.NewQueryState(h.pageSize(input.Vertical, input.Limit))
	if err := catalog.ApplyFilters(&state, input.filters()); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	page, err := catalog.FetchPage(ctx, h.backend, src, state)
	if err != nil {
		fb, ok := src.FallbackPage()
		if !ok {
			return nil, huma.Error502BadGateway(catalog.LoadErrorMessage, err)
		}
		page = fb
	}

	resp := &GetCatalogOutput{}
	resp.Body.Vertical = input.Vertical
	resp.Body.Query = state
	resp.Body.View = render.Render(false, render.MapPage(page, render.CardFor), state.SearchText, h.render)
	if err != nil {
		resp.Body.View.Error = catalog.LoadErrorMessage
	}
	return resp, nil
}

// GetItem returns a single item of a vertical.
func (h *CatalogHandler) GetItem(
	ctx context.Context,
	input *GetItemInput,
) (*GetItemOutput, error) {
	it, err := h.lookupItem(ctx, input.Vertical, input.ID)
	if err != nil {
		return nil, err
	}

	resp := &GetItemOutput{}
	resp.Body.Item = it
	resp.Body.Card = render.CardFor(it)
	return resp, nil
}

// ListCategories returns a vertical's categories led by the "Toutes" entry.
func (h *CatalogHandler) ListCategories(
	ctx context.Context,
	input *ListCategoriesInput,
) (*ListCategoriesOutput, error) {
	cats, err := h.categories.Get(ctx, input.Vertical)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownVertical) {
			return nil, huma.Error404NotFound("unknown vertical " + strconv.Quote(input.Vertical))
		}
		return nil, huma.Error502BadGateway("loading categories failed", err)
	}

	resp := &ListCategoriesOutput{}
	resp.Body.Categories = cats
	return resp, nil
}

func (h *CatalogHandler) lookupItem(ctx context.Context, vertical, id string) (domain.Item, error) {
	v, ok := h.verticals[vertical]
	if !ok {
		return domain.Item{}, huma.Error404NotFound("unknown vertical " + strconv.Quote(vertical))
	}
	return fetchItem(ctx, h.backend, v, id)
}

func (h *CatalogHandler) pageSize(vertical string, limit int) int {
	if limit > 0 {
		return limit
	}
	if v := h.verticals[vertical]; v.PageSize > 0 {
		return v.PageSize
	}
	return catalog.DefaultPageSize
}

// fetchItem loads and decodes one record of vertical v.
func fetchItem(ctx context.Context, items ItemGetter, v domain.Vertical, id string) (domain.Item, error) {
	raw, err := items.GetItem(ctx, v.Endpoint, id)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return domain.Item{}, huma.Error404NotFound("item not found")
		}
		return domain.Item{}, huma.Error502BadGateway("loading item failed", err)
	}

	it, err := domain.DecodeItem(raw)
	if err != nil {
		return domain.Item{}, huma.Error502BadGateway("decoding item failed", err)
	}
	return it, nil
}

// RegisterCatalogRoutes registers catalog endpoints with the Huma API.
func RegisterCatalogRoutes(api huma.API, h *CatalogHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-verticals",
		Method:      http.MethodGet,
		Path:        "/api/v1/verticals",
		Summary:     "List verticals",
		Description: "Returns the configured marketplace verticals.",
		Tags:        []string{"catalog"},
	}, h.ListVerticals)

	huma.Register(api, huma.Operation{
		OperationID: "get-catalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{vertical}",
		Summary:     "Get a catalog page",
		Description: "Fetches one page of a vertical for the given filters and returns it rendered as cards with a pager.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
	}, h.GetCatalog)

	huma.Register(api, huma.Operation{
		OperationID: "get-catalog-item",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{vertical}/items/{id}",
		Summary:     "Get an item",
		Description: "Returns a single item of a vertical with its card.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
	}, h.GetItem)

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{vertical}/categories",
		Summary:     "List categories",
		Description: "Returns the categories of a vertical, led by the all-categories entry.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
	}, h.ListCategories)
}
