package main

import "errors"

// KnownMetrics is the set of metric names exported by the storefront BFF
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"storefront_http_request_duration_seconds": true,
	"storefront_http_requests_total":           true,
	"storefront_http_panics_total":             true,

	// Health metrics.
	"storefront_healthz_up": true,
	"storefront_readyz_up":  true,

	// Catalog metrics.
	"storefront_catalog_fetch_duration_seconds": true,
	"storefront_catalog_fetches_total":          true,
	"storefront_catalog_stale_responses_total":  true,
	"storefront_category_refreshes_total":       true,

	// Side-effect metrics.
	"storefront_cart_adds_total":             true,
	"storefront_contact_submissions_total":   true,
	"storefront_notification_failures_total": true,

	// Recording rules.
	"storefront:http_requests:rate5m":           true,
	"storefront:http_errors:rate5m":             true,
	"storefront:catalog_fetches:rate5m":         true,
	"storefront:catalog_fetch_errors:rate5m":    true,
	"storefront:catalog_stale_responses:rate5m": true,
	"storefront:cart_add_errors:rate5m":         true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
