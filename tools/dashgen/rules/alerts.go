package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// storefront operational monitoring.
func AlertRules() PrometheusRule {
	return NewPrometheusRule("storefront-alerts", RuleGroup{
		Name: "storefront-alerts",
		Rules: []Rule{
			{
				Alert: "StorefrontDown",
				Expr:  `absent(up{job="storefront"})`,
				For:   "2m",
				Labels: map[string]string{
					"severity": "critical",
				},
				Annotations: map[string]string{
					"summary":     "Storefront BFF is down",
					"description": "The storefront job has been absent for more than 2 minutes.",
				},
			},
			{
				Alert: "StorefrontBackendUnreachable",
				Expr:  `storefront_readyz_up == 0`,
				For:   "2m",
				Labels: map[string]string{
					"severity": "critical",
				},
				Annotations: map[string]string{
					"summary":     "Marketplace backend is unreachable",
					"description": "The readiness probe has been unable to reach the marketplace API for more than 2 minutes.",
				},
			},
			{
				Alert: "StorefrontHighErrorRate",
				Expr:  `storefront:http_errors:rate5m / storefront:http_requests:rate5m > 0.05`,
				For:   "5m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "High HTTP error rate on the storefront BFF",
					"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
				},
			},
			{
				Alert: "StorefrontCatalogFetchErrors",
				Expr:  `storefront:catalog_fetch_errors:rate5m / storefront:catalog_fetches:rate5m > 0.1`,
				For:   "5m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Catalog listing requests are failing",
					"description": "More than 10% of listing requests have failed over the last 5 minutes.",
				},
			},
			{
				Alert: "StorefrontCategoryRefreshFailing",
				Expr:  `increase(storefront_category_refreshes_total{outcome="error"}[1h]) > 2`,
				For:   "0m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Category refresh is failing",
					"description": "Scheduled category refreshes failed more than twice in the last hour.",
				},
			},
			{
				Alert: "StorefrontCartAddFailures",
				Expr:  `storefront:cart_add_errors:rate5m > 0`,
				For:   "5m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Add-to-cart failures detected",
					"description": "The cart store has been rejecting add-to-cart actions for more than 5 minutes.",
				},
			},
			{
				Alert: "StorefrontNotificationFailures",
				Expr:  `increase(storefront_notification_failures_total[5m]) > 0`,
				For:   "1m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Notification delivery failures detected",
					"description": "One or more user or operator notifications (Discord webhooks) have failed to send.",
				},
			},
		},
	})
}
