package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// listEnvelope is the union of both listing response shapes:
// {products, pagination} and {success, data, pagination}.
type listEnvelope struct {
	Success    *bool             `json:"success"`
	Message    string            `json:"message"`
	Products   []json.RawMessage `json:"products"`
	Data       []json.RawMessage `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// List fetches one page from a listing endpoint and normalizes the envelope.
func (c *Client) List(
	ctx context.Context,
	path string,
	envelope domain.Envelope,
	params url.Values,
) (*domain.RawPage, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var env listEnvelope
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	if env.Success != nil && !*env.Success {
		return nil, backendFailure(env.Message)
	}

	page := &domain.RawPage{Pagination: env.Pagination}
	switch envelope {
	case domain.EnvelopeData:
		page.Items = env.Data
	default:
		page.Items = env.Products
	}
	if page.Items == nil {
		page.Items = []json.RawMessage{}
	}

	fillPagination(&page.Pagination, len(page.Items), params)
	return page, nil
}

// fillPagination derives missing pagination fields so the renderer always
// has page and pages to work with.
func fillPagination(p *domain.Pagination, count int, params url.Values) {
	if p.Page == 0 {
		p.Page = 1
		if v := params.Get("page"); v != "" {
			_, _ = fmt.Sscan(v, &p.Page)
		}
	}
	if p.Limit == 0 {
		p.Limit = count
		if v := params.Get("limit"); v != "" {
			_, _ = fmt.Sscan(v, &p.Limit)
		}
	}
	if p.Total == 0 && p.Pages == 0 {
		p.Total = count
	}
	if p.Pages == 0 && p.Limit > 0 {
		p.Pages = (p.Total + p.Limit - 1) / p.Limit
	}
}

// GetItem fetches a single record from {path}/{id}. The record may be bare,
// wrapped in {"product": ...}, or wrapped in {"success", "data": ...}.
func (c *Client) GetItem(ctx context.Context, path, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path+"/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}

	var env struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Product json.RawMessage `json:"product"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding item response: %w", err)
	}

	switch {
	case env.Success != nil && !*env.Success:
		return nil, backendFailure(env.Message)
	case len(env.Product) > 0:
		return env.Product, nil
	case len(env.Data) > 0:
		return env.Data, nil
	default:
		return raw, nil
	}
}

// Categories returns the categories of a vertical. The endpoint may answer
// with a bare array or a {success, data} envelope.
func (c *Client) Categories(ctx context.Context, path string) ([]domain.Category, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var cats []domain.Category
		if err := json.Unmarshal(raw, &cats); err != nil {
			return nil, fmt.Errorf("decoding categories: %w", err)
		}
		return cats, nil
	}

	var env struct {
		Success    *bool             `json:"success"`
		Message    string            `json:"message"`
		Data       []domain.Category `json:"data"`
		Categories []domain.Category `json:"categories"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return nil, backendFailure(env.Message)
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return env.Categories, nil
}

// Ping issues a GET against path and reports whether the backend answered.
func (c *Client) Ping(ctx context.Context, path string) error {
	return c.get(ctx, path, nil)
}
