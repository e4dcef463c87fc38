package catalog

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/donaldgifford/storefront/internal/metrics"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

const tracerName = "github.com/donaldgifford/storefront/internal/catalog"

var itemsFetched = newItemsFetchedCounter(otel.Meter(tracerName))

// newItemsFetchedCounter reports creation errors to the otel error handler
// and falls back to a no-op counter.
func newItemsFetchedCounter(m metric.Meter) metric.Int64Counter {
	c, err := m.Int64Counter(
		"storefront.catalog.items_fetched",
		metric.WithDescription("Items received from listing endpoints."),
	)
	if err != nil {
		otel.Handle(fmt.Errorf("catalog: create items_fetched counter: %w", err))
		return noop.Int64Counter{}
	}
	return c
}

// FetchPage performs one listing request for state and maps every record.
// A record that fails to map fails the whole page.
func FetchPage[T any](
	ctx context.Context,
	lister Lister,
	src Source[T],
	state domain.QueryState,
) (domain.ResultPage[T], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("catalog.vertical", src.Name),
		attribute.Int("catalog.page", state.Page),
		attribute.String("catalog.search", state.SearchText),
	)

	start := time.Now()
	page, err := fetchPage(ctx, lister, src, state)
	metrics.CatalogFetchDuration.WithLabelValues(src.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues(src.Name, metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ResultPage[T]{}, err
	}

	metrics.CatalogFetchesTotal.WithLabelValues(src.Name, metrics.OutcomeSuccess).Inc()
	itemsFetched.Add(ctx, int64(len(page.Items)),
		metric.WithAttributes(attribute.String("vertical", src.Name)))
	span.SetAttributes(
		attribute.Int("catalog.items", len(page.Items)),
		attribute.Int("catalog.total", page.Pagination.Total),
	)
	return page, nil
}

func fetchPage[T any](
	ctx context.Context,
	lister Lister,
	src Source[T],
	state domain.QueryState,
) (domain.ResultPage[T], error) {
	raw, err := lister.List(ctx, src.Path, src.Envelope, BuildParams(state, src.BaseParams))
	if err != nil {
		return domain.ResultPage[T]{}, fmt.Errorf("listing %s: %w", src.Name, err)
	}

	items := make([]T, 0, len(raw.Items))
	for i, r := range raw.Items {
		it, err := src.Mapper(r)
		if err != nil {
			return domain.ResultPage[T]{}, fmt.Errorf("mapping %s item %d: %w", src.Name, i, err)
		}
		items = append(items, it)
	}

	return domain.ResultPage[T]{Items: items, Pagination: raw.Pagination}, nil
}

// fallbackPage presents a static dataset as a single page.
func fallbackPage[T any](items []T) domain.ResultPage[T] {
	return domain.ResultPage[T]{
		Items: items,
		Pagination: domain.Pagination{
			Page:  1,
			Limit: len(items),
			Total: len(items),
			Pages: 1,
		},
	}
}
