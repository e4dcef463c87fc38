package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CartAdds returns a timeseries panel showing add-to-cart actions per minute
// by outcome.
func CartAdds() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cart Adds / min").
		Description("Add-to-cart actions per minute by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(rate(storefront_cart_adds_total{%s}[5m])) by (outcome) * 60`, jobSelector()),
			"{{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ContactSubmissions returns a timeseries panel showing contact and quote
// submissions per hour by outcome.
func ContactSubmissions() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Contact Requests / h").
		Description("Contact and quote submissions per hour by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(increase(storefront_contact_submissions_total{%s}[1h])) by (outcome)`, jobSelector()),
			"{{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// NotificationFailures returns a stat panel showing notification failures
// in the past 24 hours.
func NotificationFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Notification Failures (24h)").
		Description("Failed user or operator notification deliveries in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`increase(storefront_notification_failures_total{%s}[24h])`, jobSelector()),
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
