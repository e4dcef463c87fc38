// Package metrics defines Prometheus metrics for the storefront.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// HTTP metrics for the BFF server.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_panics_total",
		Help:      "Handler panics recovered by route.",
	}, []string{"path"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last /healthz probe succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last /readyz probe succeeded.",
	})
)

// Catalog metrics.
var (
	CatalogFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of catalog listing requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"vertical"})

	CatalogFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetches_total",
		Help:      "Total number of catalog listing requests by outcome.",
	}, []string{"vertical", "outcome"})

	CatalogStaleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_stale_responses_total",
		Help:      "Responses discarded because a newer request was dispatched.",
	}, []string{"vertical"})

	CategoryRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_refreshes_total",
		Help:      "Total number of scheduled category refreshes by outcome.",
	}, []string{"vertical", "outcome"})
)

// Side-effect metrics.
var (
	CartAddsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_adds_total",
		Help:      "Total number of add-to-cart actions by outcome.",
	}, []string{"outcome"})

	ContactSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_submissions_total",
		Help:      "Total number of contact and quote submissions by outcome.",
	}, []string{"outcome"})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification delivery failures.",
	})
)

// Outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeError        = "error"
	OutcomeUnauthorized = "unauthenticated"
	OutcomeInvalid      = "invalid"
)
