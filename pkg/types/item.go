package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is a marketplace record (product, experience, service offer...).
// The backend owns it; the storefront only keeps the current page in memory.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category,omitempty"`
	Vendor      string   `json:"vendor,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Stock       *float64 `json:"stock,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
	Views       int      `json:"views,omitempty"`
}

// FirstImage returns the first non-empty image URL or "".
func (i *Item) FirstImage() string {
	for _, img := range i.Images {
		if img != "" {
			return img
		}
	}
	return ""
}

// rawItem accepts the field spellings used across the verticals' endpoints.
type rawItem struct {
	ID          json.RawMessage `json:"id"`
	MongoID     json.RawMessage `json:"_id"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Nom         string          `json:"nom"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Prix        json.RawMessage `json:"prix"`
	Images      json.RawMessage `json:"images"`
	Image       string          `json:"image"`
	Category    json.RawMessage `json:"category"`
	Vendor      json.RawMessage `json:"vendor"`
	SKU         string          `json:"sku"`
	Unit        string          `json:"unit"`
	Stock       json.RawMessage `json:"stock"`
	Quantity    json.RawMessage `json:"quantity"`
	Featured    bool            `json:"featured"`
	Views       int             `json:"views"`
	ViewCount   int             `json:"viewCount"`
}

// DecodeItem maps one raw backend record to an Item.
func DecodeItem(data json.RawMessage) (Item, error) {
	var r rawItem
	if err := json.Unmarshal(data, &r); err != nil {
		return Item{}, fmt.Errorf("decoding item: %w", err)
	}

	it := Item{
		ID:          firstNonEmpty(idOf(r.ID), idOf(r.MongoID)),
		Name:        firstNonEmpty(r.Name, r.Title, r.Nom),
		Description: r.Description,
		SKU:         r.SKU,
		Unit:        r.Unit,
		Featured:    r.Featured,
		Views:       max(r.Views, r.ViewCount),
		Category:    nameOf(r.Category),
		Vendor:      nameOf(r.Vendor),
	}

	it.Stock = numberOf(r.Stock)
	if it.Stock == nil {
		it.Stock = numberOf(r.Quantity)
	}

	price, err := parsePrice(r.Price)
	if err != nil {
		return Item{}, err
	}
	if price == nil {
		if price, err = parsePrice(r.Prix); err != nil {
			return Item{}, err
		}
	}
	it.Price = price

	it.Images = parseImages(r.Images)
	if len(it.Images) == 0 && r.Image != "" {
		it.Images = []string{r.Image}
	}

	return it, nil
}

// parsePrice accepts a number, a numeric string, or null.
func parsePrice(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid price %s", string(raw))
	}
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return &f, nil
}

// idOf accepts a string or a numeric identifier.
func idOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// numberOf returns nil for a missing or non-numeric value.
func numberOf(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &f
	}
	return nil
}

// parseImages accepts ["url", ...] or [{"url": "..."}, ...].
func parseImages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err == nil {
		return urls
	}
	var objs []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil
	}
	for _, o := range objs {
		if o.URL != "" {
			urls = append(urls, o.URL)
		}
	}
	return urls
}

// nameOf accepts either a plain string or an object with a name field
// (populated references).
func nameOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
		Nom  string `json:"nom"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return firstNonEmpty(obj.Name, obj.Nom)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
