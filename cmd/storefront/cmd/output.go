package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/storefront/internal/render"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printView draws a rendered catalog view: skeleton rows while loading, the
// empty-state line, or a card table followed by the summary and pager.
func printView(w io.Writer, v render.View[render.Card]) error {
	tw := newTabWriter(w)

	switch {
	case v.Loading:
		for range v.Skeletons {
			tw.writef("░░░░░░░░\t░░░░░░░░░░░░░░░░░░░░\t░░░░░░░░\n")
		}
		return tw.finish()
	case v.Empty:
		tw.writef("%s\n", v.EmptyMessage)
		return tw.finish()
	}

	tw.writef("ID\tTITLE\tPRICE\tCATEGORY\tSTOCK\n")
	for i := range v.Cards {
		c := &v.Cards[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			truncate(featured(c), 40),
			c.Price,
			c.Category,
			stockLabel(c.InStock),
		)
	}
	tw.writef("\n%s\n", v.Summary)
	if v.Pager != nil {
		tw.writef("%s\n", pagerLine(v.Pager))
	}
	if v.Error != "" {
		tw.writef("(%s)\n", v.Error)
	}
	return tw.finish()
}

func featured(c *render.Card) string {
	if c.Featured {
		return "★ " + c.Title
	}
	return c.Title
}

func stockLabel(in *bool) string {
	switch {
	case in == nil:
		return "-"
	case *in:
		return "in stock"
	default:
		return "out of stock"
	}
}

// pagerLine renders the pager as "‹ 1 [2] 3 4 5 ›".
func pagerLine(p *render.Pager) string {
	parts := make([]string, 0, len(p.Buttons)+2)
	if !p.PrevDisabled {
		parts = append(parts, "‹")
	}
	for _, n := range p.Buttons {
		if n == p.Current {
			parts = append(parts, "["+strconv.Itoa(n)+"]")
		} else {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	if !p.NextDisabled {
		parts = append(parts, "›")
	}
	return strings.Join(parts, " ")
}

func printItemDetail(w io.Writer, it *domain.Item) error {
	c := render.CardFor(*it)
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", it.ID)
	tw.writef("Name:\t%s\n", it.Name)
	tw.writef("Price:\t%s\n", c.Price)
	tw.writef("Category:\t%s\n", it.Category)
	tw.writef("Vendor:\t%s\n", it.Vendor)
	tw.writef("SKU:\t%s\n", it.SKU)
	tw.writef("Stock:\t%s\n", stockLabel(c.InStock))
	if it.Description != "" {
		tw.writef("Description:\t%s\n", truncate(it.Description, 80))
	}
	for _, img := range it.Images {
		tw.writef("Image:\t%s\n", img)
	}
	return tw.finish()
}

func printCategoriesTable(w io.Writer, cats []domain.Category) error {
	tw := newTabWriter(w)
	tw.writef("CATEGORY\tCOUNT\n")
	for _, c := range cats {
		tw.writef("%s\t%d\n", c.Name, c.Count)
	}
	return tw.finish()
}

func printVerticalsTable(w io.Writer, verticals []domain.Vertical) error {
	tw := newTabWriter(w)
	tw.writef("NAME\tTITLE\tENDPOINT\tENVELOPE\tPAGE SIZE\n")
	for i := range verticals {
		v := &verticals[i]
		tw.writef("%s\t%s\t%s\t%s\t%d\n", v.Name, v.Title, v.Endpoint, v.Envelope, v.PageSize)
	}
	return tw.finish()
}

func printCartTable(w io.Writer, entries []domain.CartEntry) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tQTY\tPRICE\n")
	for i := range entries {
		e := &entries[i]
		price := e.Price
		tw.writef("%s\t%s\t%d\t%s\n", e.ID, truncate(e.Name, 40), e.Quantity, render.FormatPrice(&price, e.Unit))
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
