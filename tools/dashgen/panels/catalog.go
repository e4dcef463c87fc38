package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// FetchRate returns a timeseries panel showing catalog listing requests per
// second by vertical.
func FetchRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Catalog Fetches").
		Description("Listing requests per second by vertical").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(rate(storefront_catalog_fetches_total{%s}[5m])) by (vertical)`, jobSelector()),
			"{{vertical}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchLatency returns a timeseries panel showing the p95 listing latency
// by vertical.
func FetchLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetch Latency (p95)").
		Description("95th percentile listing request duration by vertical").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(
				`histogram_quantile(0.95, sum(rate(storefront_catalog_fetch_duration_seconds_bucket{%s}[5m])) by (le, vertical))`,
				jobSelector(),
			),
			"{{vertical}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchErrorRate returns a timeseries panel showing the share of failed
// listing requests.
func FetchErrorRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetch Error Rate %").
		Description("Failed listing requests as percentage of all listing requests").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`storefront:catalog_fetch_errors:rate5m / storefront:catalog_fetches:rate5m * 100`,
			"error %", "A",
		)).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// StaleByVertical returns a bar gauge showing superseded responses per
// vertical over the last hour.
func StaleByVertical() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Superseded Responses (1h)").
		Description("Responses discarded because a newer query was already dispatched").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(increase(storefront_catalog_stale_responses_total{%s}[1h])) by (vertical)`, jobSelector()),
			"{{vertical}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenYellowRed(50, 200)).
		ColorScheme(ColorSchemeThresholds())
}

// CategoryRefreshes returns a timeseries panel showing scheduled category
// refreshes by outcome.
func CategoryRefreshes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Category Refreshes").
		Description("Scheduled category refreshes per hour by vertical and outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(increase(storefront_category_refreshes_total{%s}[1h])) by (vertical, outcome)`, jobSelector()),
			"{{vertical}} {{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}
