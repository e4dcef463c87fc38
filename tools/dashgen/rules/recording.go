package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return NewPrometheusRule("storefront-recording-rules", RuleGroup{
		Name: "storefront-recording",
		Rules: []Rule{
			{
				Record: "storefront:http_requests:rate5m",
				Expr:   `sum(rate(storefront_http_requests_total[5m]))`,
			},
			{
				Record: "storefront:http_errors:rate5m",
				Expr:   `sum(rate(storefront_http_requests_total{status=~"5.."}[5m]))`,
			},
			{
				Record: "storefront:catalog_fetches:rate5m",
				Expr:   `sum(rate(storefront_catalog_fetches_total[5m]))`,
			},
			{
				Record: "storefront:catalog_fetch_errors:rate5m",
				Expr:   `sum(rate(storefront_catalog_fetches_total{outcome="error"}[5m]))`,
			},
			{
				Record: "storefront:catalog_stale_responses:rate5m",
				Expr:   `sum(rate(storefront_catalog_stale_responses_total[5m]))`,
			},
			{
				Record: "storefront:cart_add_errors:rate5m",
				Expr:   `sum(rate(storefront_cart_adds_total{outcome="error"}[5m]))`,
			},
		},
	})
}
