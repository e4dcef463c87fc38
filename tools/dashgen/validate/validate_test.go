package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/storefront/tools/dashgen/rules"
)

var known = map[string]bool{
	"storefront_http_requests_total":           true,
	"storefront_http_request_duration_seconds": true,
	"storefront_readyz_up":                     true,
	"storefront:http_requests:rate5m":          true,
}

func TestExpr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		expr         string
		wantErrors   int
		wantWarnings int
	}{
		{
			name: "rate over counter",
			expr: `sum(rate(storefront_http_requests_total{job="storefront"}[5m])) by (path)`,
		},
		{
			name: "histogram bucket",
			expr: `histogram_quantile(0.95, sum(rate(storefront_http_request_duration_seconds_bucket[5m])) by (le))`,
		},
		{
			name: "recording rule",
			expr: `storefront:http_requests:rate5m * 60`,
		},
		{
			name: "name matcher",
			expr: `{__name__="storefront_readyz_up"} == 0`,
		},
		{
			name:       "unknown metric",
			expr:       `rate(storefront_missing_total[5m])`,
			wantErrors: 1,
		},
		{
			name:       "syntax error",
			expr:       `sum(rate(storefront_http_requests_total[5m])`,
			wantErrors: 1,
		},
		{
			name:         "bare counter",
			expr:         `storefront_http_requests_total > 10`,
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Expr(tt.expr, known)
			assert.Len(t, res.Errors, tt.wantErrors, "errors: %v", res.Errors)
			assert.Len(t, res.Warnings, tt.wantWarnings, "warnings: %v", res.Warnings)
			assert.Equal(t, tt.wantErrors == 0, res.Ok())
		})
	}
}

func TestRules(t *testing.T) {
	t.Parallel()

	cr := rules.NewPrometheusRule("test-rules", rules.RuleGroup{
		Name: "g",
		Rules: []rules.Rule{
			{Record: "storefront:http_requests:rate5m", Expr: `sum(rate(storefront_http_requests_total[5m]))`},
			{Record: "requests_rate", Expr: `sum(rate(storefront_http_requests_total[5m]))`},
			{Alert: "NoSeverity", Expr: `storefront_readyz_up == 0`, Annotations: map[string]string{"summary": "s"}},
			{Alert: "NoSummary", Expr: `storefront_readyz_up == 0`, Labels: map[string]string{"severity": "warning"}},
			{Expr: `storefront_readyz_up`},
			{
				Record: "storefront:x:rate5m", Alert: "Both", Expr: `storefront_readyz_up`,
				Labels: map[string]string{"severity": "warning"}, Annotations: map[string]string{"summary": "s"},
			},
		},
	})

	res := Rules(cr, known)
	assert.Len(t, res.Errors, 4, "errors: %v", res.Errors)
	assert.Len(t, res.Warnings, 1, "warnings: %v", res.Warnings)
	assert.Contains(t, res.Warnings[0], "g/requests_rate")
}
