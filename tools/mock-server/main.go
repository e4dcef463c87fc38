// Package main implements a mock marketplace API for local development.
// It serves listings, single records, categories and the demandes endpoint
// from a JSON fixture so the storefront can run without the real backend.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type fixtureFile struct {
	Products    []json.RawMessage `json:"products"`
	Experiences []json.RawMessage `json:"experiences"`
}

// record holds the fields the mock filters and sorts on.
type record struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Price       float64         `json:"price"`
	Category    json.RawMessage `json:"category"`
	ProductType string          `json:"productType"`
	Status      string          `json:"status"`
	Stock       *int            `json:"stock"`
	Featured    bool            `json:"featured"`
	Views       int             `json:"views"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type entry struct {
	raw      json.RawMessage
	rec      record
	name     string
	category string
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type categoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type demande struct {
	Nom       string `json:"nom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	ServiceID string `json:"serviceId"`
}

type dataset struct {
	products    []entry
	experiences []entry
}

func main() {
	port := flag.Int("port", 5000, "port to listen on")
	fixturePath := flag.String("fixture", "tools/mock-server/testdata/catalog.json", "path to catalog fixture")
	latency := flag.Duration("latency", 0, "base response latency; up to half of it is added as jitter")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ds, err := loadFixture(*fixturePath)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixturePath, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "products", len(ds.products), "experiences", len(ds.experiences))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock marketplace server", "addr", addr, "latency", *latency)

	srv := &http.Server{
		Addr:         addr,
		Handler:      withLatency(*latency, requestLogger(logger, newMux(logger, ds))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, ds *dataset) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/all", listHandler(logger, ds.products, writeProducts))
	mux.HandleFunc("GET /products/categories", categoriesHandler(ds.products))
	mux.HandleFunc("GET /products/all/{id}", itemHandler(ds.products, "product"))
	mux.HandleFunc("GET /products/{id}", itemHandler(ds.products, "product"))
	mux.HandleFunc("GET /experiences", listHandler(logger, ds.experiences, writeData))
	mux.HandleFunc("GET /experiences/{id}", itemHandler(ds.experiences, "data"))
	mux.HandleFunc("POST /demandes", demandeHandler(logger))
	return mux
}

func loadFixture(path string) (*dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	ds := &dataset{}
	if ds.products, err = index(f.Products); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if ds.experiences, err = index(f.Experiences); err != nil {
		return nil, fmt.Errorf("experiences: %w", err)
	}
	return ds, nil
}

func index(raws []json.RawMessage) ([]entry, error) {
	out := make([]entry, 0, len(raws))
	for i, raw := range raws {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		name := r.Name
		if name == "" {
			name = r.Title
		}
		out = append(out, entry{raw: raw, rec: r, name: name, category: categoryName(r.Category)})
	}
	return out, nil
}

func categoryName(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	//nolint:errcheck,gosec // fixture data is trusted; category is best-effort
	json.Unmarshal(raw, &obj)
	return obj.Name
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// withLatency delays every response by base plus a random jitter so that
// out-of-order responses can be reproduced locally.
func withLatency(base time.Duration, next http.Handler) http.Handler {
	if base <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay := base + rand.N(base/2+1) //nolint:gosec // jitter does not need crypto randomness
		select {
		case <-time.After(delay):
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

type pageWriter func(w http.ResponseWriter, items []json.RawMessage, p pagination)

func writeProducts(w http.ResponseWriter, items []json.RawMessage, p pagination) {
	writeJSON(w, http.StatusOK, map[string]any{"products": items, "pagination": p})
}

func writeData(w http.ResponseWriter, items []json.RawMessage, p pagination) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": items, "pagination": p})
}

func listHandler(logger *slog.Logger, all []entry, write pageWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		matched, err := filter(all, q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
			return
		}
		sortEntries(matched, q.Get("sort"))

		page := positive(q.Get("page"), 1)
		limit := positive(q.Get("limit"), 12)
		total := len(matched)

		start := min((page-1)*limit, total)
		end := min(start+limit, total)

		items := make([]json.RawMessage, 0, end-start)
		for _, e := range matched[start:end] {
			items = append(items, e.raw)
		}

		write(w, items, pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		})
		logger.Info("list", "path", r.URL.Path, "matched", total, "returned", len(items), "page", page, "limit", limit)
	}
}

func filter(all []entry, q map[string][]string) ([]entry, error) {
	get := func(k string) string {
		if vs := q[k]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	search := strings.ToLower(get("search"))
	minPrice, err := optionalFloat(get("minPrice"))
	if err != nil {
		return nil, err
	}
	maxPrice, err := optionalFloat(get("maxPrice"))
	if err != nil {
		return nil, err
	}

	var out []entry
	for _, e := range all {
		switch {
		case search != "" && !strings.Contains(strings.ToLower(e.name), search):
		case get("category") != "" && !strings.EqualFold(e.category, get("category")):
		case get("productType") != "" && e.rec.ProductType != get("productType"):
		case get("status") != "" && e.rec.Status != get("status"):
		case minPrice != nil && e.rec.Price < *minPrice:
		case maxPrice != nil && e.rec.Price > *maxPrice:
		case get("inStock") == "true" && (e.rec.Stock == nil || *e.rec.Stock <= 0):
		case get("featured") == "true" && !e.rec.Featured:
		default:
			out = append(out, e)
		}
	}
	return out, nil
}

// sortEntries orders by a field:direction token. Without a token the newest
// records come first.
func sortEntries(entries []entry, token string) {
	field, dir, _ := strings.Cut(token, ":")
	desc := dir == "desc"

	cmp := func(a, b entry) int {
		return b.rec.CreatedAt.Compare(a.rec.CreatedAt)
	}
	switch field {
	case "price":
		cmp = func(a, b entry) int { return compareFloat(a.rec.Price, b.rec.Price) }
	case "name":
		cmp = func(a, b entry) int { return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name)) }
	case "views":
		cmp = func(a, b entry) int { return a.rec.Views - b.rec.Views }
	default:
		desc = false
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func categoriesHandler(all []entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productType := r.URL.Query().Get("productType")

		counts := map[string]int{}
		for _, e := range all {
			if e.category == "" || (productType != "" && e.rec.ProductType != productType) {
				continue
			}
			counts[e.category]++
		}

		cats := make([]categoryCount, 0, len(counts))
		for name, n := range counts {
			cats = append(cats, categoryCount{Name: name, Count: n})
		}
		slices.SortFunc(cats, func(a, b categoryCount) int { return strings.Compare(a.Name, b.Name) })

		writeJSON(w, http.StatusOK, cats)
	}
}

func itemHandler(all []entry, wrapper string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		for _, e := range all {
			if e.rec.ID == id {
				body := map[string]any{wrapper: e.raw}
				if wrapper == "data" {
					body["success"] = true
				}
				writeJSON(w, http.StatusOK, body)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "not found"})
	}
}

func demandeHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d demande
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid JSON"})
			return
		}

		var missing []string
		for field, v := range map[string]string{"nom": d.Nom, "email": d.Email, "message": d.Message, "type": d.Type} {
			if strings.TrimSpace(v) == "" {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "missing fields: " + strings.Join(missing, ", "),
			})
			return
		}

		logger.Info("demande received", "type", d.Type, "email", d.Email, "service_id", d.ServiceID)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "demande enregistrée"})
	}
}

func positive(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
