// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/storefront/tools/dashgen/panels"
)

// BuildOverview constructs the Storefront Overview dashboard with all metric
// rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Storefront Overview").
		Uid("storefront-overview").
		Tags([]string{"storefront", "bff"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.StaleShareGauge()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()).
		WithPanel(panels.RoutesByRate()))

	b.WithRow(dashboard.NewRowBuilder("Catalog").
		WithPanel(panels.FetchRate()).
		WithPanel(panels.FetchLatency()).
		WithPanel(panels.FetchErrorRate()).
		WithPanel(panels.StaleByVertical()).
		WithPanel(panels.CategoryRefreshes()))

	b.WithRow(dashboard.NewRowBuilder("Cart & Contact").
		WithPanel(panels.CartAdds()).
		WithPanel(panels.ContactSubmissions()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
