package render

import (
	"strconv"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// Card is the display form of a domain.Item.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
	Vendor   string `json:"vendor,omitempty"`
	InStock  *bool  `json:"in_stock,omitempty"`
	Featured bool   `json:"featured,omitempty"`
}

// CardFor maps an item to its card.
func CardFor(it domain.Item) Card {
	c := Card{
		ID:       it.ID,
		Title:    it.Name,
		Price:    FormatPrice(it.Price, it.Unit),
		Image:    it.FirstImage(),
		Category: it.Category,
		Vendor:   it.Vendor,
		Featured: it.Featured,
	}
	if it.Stock != nil {
		in := *it.Stock > 0
		c.InStock = &in
	}
	return c
}

// MapPage converts every item of a page with fn, keeping pagination.
func MapPage[T, U any](page domain.ResultPage[T], fn func(T) U) domain.ResultPage[U] {
	items := make([]U, len(page.Items))
	for i, it := range page.Items {
		items[i] = fn(it)
	}
	return domain.ResultPage[U]{Items: items, Pagination: page.Pagination}
}

// FormatPrice renders a price in FCFA with space-grouped thousands, or "On request"
// when the item has no price.
func FormatPrice(p *float64, unit string) string {
	if p == nil {
		return "On request"
	}
	s := groupThousands(strconv.FormatFloat(*p, 'f', -1, 64)) + " FCFA"
	if unit != "" {
		s += " / " + unit
	}
	return s
}

func groupThousands(s string) string {
	intPart, frac := s, ""
	for i, r := range s {
		if r == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	neg := false
	if len(intPart) > 0 && intPart[0] == '-' {
		neg, intPart = true, intPart[1:]
	}

	var out []byte
	for i := range len(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, intPart[i])
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + frac
}
