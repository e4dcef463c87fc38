package metrics

import (
	"testing"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// promauto registers on package init; a nil here means a bad declaration.
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPPanicsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, CatalogFetchDuration)
	assert.NotNil(t, CatalogFetchesTotal)
	assert.NotNil(t, CatalogStaleResponsesTotal)
	assert.NotNil(t, CategoryRefreshesTotal)
	assert.NotNil(t, CartAddsTotal)
	assert.NotNil(t, ContactSubmissionsTotal)
	assert.NotNil(t, NotificationFailuresTotal)
}

func TestCatalogFetchesTotal_Labels(t *testing.T) {
	t.Parallel()

	c := CatalogFetchesTotal.WithLabelValues("metrics-test", OutcomeSuccess)
	before := ptestutil.ToFloat64(c)
	c.Inc()
	assert.InDelta(t, before+1, ptestutil.ToFloat64(c), 0.001)
}
