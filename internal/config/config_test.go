package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
backend:
  base_url: http://api.local:5000/api
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "http://api.local:5000/api", cfg.Backend.BaseURL)
				assert.Len(t, cfg.Verticals, 7)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `{}`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "http://localhost:5000/api", cfg.Backend.BaseURL)
				assert.Zero(t, cfg.Backend.Timeout)
				assert.Equal(t, "/products/categories", cfg.Backend.HealthPath)
				assert.Equal(t, 12, cfg.Catalog.PageSize)
				assert.Equal(t, 500*time.Millisecond, cfg.Catalog.Debounce)
				assert.Equal(t, 8, cfg.Catalog.SkeletonCount)
				assert.Equal(t, 5, cfg.Catalog.MaxPageButtons)
				assert.Equal(t, time.Second, cfg.Catalog.AddingIndicator)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "memory", cfg.Cart.Backend)
				assert.Equal(t, 7*24*time.Hour, cfg.Cart.TTL)
				assert.Equal(t, 5*time.Minute, cfg.Categories.TTL)
				assert.Equal(t, 15*time.Minute, cfg.Categories.RefreshInterval)
				assert.Equal(t, "/demandes", cfg.Contact.Path)
				assert.Equal(t, "storefront", cfg.Tracing.ServiceName)
				assert.InDelta(t, 1.0, cfg.Tracing.SampleRatio, 0.001)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)

				materials, ok := cfg.Vertical("materials")
				require.True(t, ok)
				assert.Equal(t, "materials", materials.Name)
				assert.Equal(t, "/products/all", materials.Endpoint)
				assert.Equal(t, "materiau", materials.Params["productType"])
				assert.Equal(t, 12, materials.PageSize)

				tourism, ok := cfg.Vertical("tourism")
				require.True(t, ok)
				assert.Equal(t, domain.EnvelopeData, tourism.Envelope)
			},
		},
		{
			name: "env var substitution",
			yaml: `
backend:
  base_url: "${TEST_BACKEND_URL}"
notifications:
  discord:
    enabled: true
    webhook_url: "${TEST_DISCORD_WEBHOOK}"
`,
			envVars: map[string]string{
				"TEST_BACKEND_URL":     "https://market.example.com/api",
				"TEST_DISCORD_WEBHOOK": "https://discord.com/api/webhooks/1/abc",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://market.example.com/api", cfg.Backend.BaseURL)
				assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Notifications.Discord.WebhookURL)
			},
		},
		{
			name: "custom verticals replace the defaults",
			yaml: `
catalog:
  page_size: 24
verticals:
  tourism:
    endpoint: /experiences
    envelope: data
    fallback: ./testdata/tourism.json
  tools:
    endpoint: /products/all
    params:
      productType: outil
    page_size: 6
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, []string{"tools", "tourism"}, cfg.VerticalNames())
				assert.Equal(t, 24, cfg.Verticals["tourism"].PageSize)
				assert.Equal(t, "./testdata/tourism.json", cfg.Verticals["tourism"].Fallback)
				assert.Equal(t, 6, cfg.Verticals["tools"].PageSize)
				assert.Equal(t, domain.EnvelopeProducts, cfg.Verticals["tools"].Envelope)
				assert.Equal(t, "tools", cfg.Verticals["tools"].Title)
			},
		},
		{
			name: "invalid base url",
			yaml: `
backend:
  base_url: not-a-url
`,
			wantErr: `backend.base_url must be an absolute URL (got "not-a-url")`,
		},
		{
			name: "vertical missing endpoint",
			yaml: `
verticals:
  food:
    title: Alimentation
`,
			wantErr: "verticals.food.endpoint is required",
		},
		{
			name: "vertical with unknown envelope",
			yaml: `
verticals:
  food:
    endpoint: /products/all
    envelope: items
`,
			wantErr: `verticals.food.envelope must be one of: products, data (got "items")`,
		},
		{
			name: "invalid cart backend",
			yaml: `
cart:
  backend: postgres
`,
			wantErr: `cart.backend must be one of: memory, redis (got "postgres")`,
		},
		{
			name: "redis cart missing url",
			yaml: `
cart:
  backend: redis
`,
			wantErr: "cart.redis_url is required when backend is redis",
		},
		{
			name: "discord enabled without webhook",
			yaml: `
notifications:
  discord:
    enabled: true
`,
			wantErr: "notifications.discord.webhook_url is required when discord is enabled",
		},
		{
			name: "sample ratio out of range",
			yaml: `
tracing:
  sample_ratio: 2
`,
			wantErr: "tracing.sample_ratio must be between 0 and 1",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
backend:
  base_url: https://api.market.sn
  timeout: 8s
  health_path: /health
  rate_limit:
    per_second: 4
catalog:
  page_size: 9
  debounce: 300ms
  skeleton_count: 6
  max_page_buttons: 7
  adding_indicator: 2s
server:
  host: "127.0.0.1"
  port: 9090
cart:
  backend: redis
  redis_url: redis://localhost:6379/0
  ttl: 48h
categories:
  ttl: 1m
  refresh_interval: 5m
contact:
  path: /devis
tracing:
  endpoint: otel-collector:4317
  insecure: true
  sample_ratio: 0.25
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 8*time.Second, cfg.Backend.Timeout)
				assert.Equal(t, "/health", cfg.Backend.HealthPath)
				assert.InDelta(t, 4.0, cfg.Backend.RateLimit.PerSecond, 0.001)
				assert.Equal(t, 10, cfg.Backend.RateLimit.Burst)
				assert.Equal(t, 9, cfg.Catalog.PageSize)
				assert.Equal(t, 300*time.Millisecond, cfg.Catalog.Debounce)
				assert.Equal(t, 6, cfg.Catalog.SkeletonCount)
				assert.Equal(t, 7, cfg.Catalog.MaxPageButtons)
				assert.Equal(t, 2*time.Second, cfg.Catalog.AddingIndicator)
				assert.Equal(t, 9, cfg.Verticals["food"].PageSize)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "redis", cfg.Cart.Backend)
				assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
				assert.Equal(t, time.Minute, cfg.Categories.TTL)
				assert.Equal(t, "/devis", cfg.Contact.Path)
				assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)
				assert.True(t, cfg.Tracing.Insecure)
				assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 0.001)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, validate(cfg))
	assert.Equal(t, []string{
		"construction", "crafts", "financing", "food", "insurance", "materials", "tourism",
	}, cfg.VerticalNames())

	_, ok := cfg.Vertical("spaceships")
	assert.False(t, ok)
}

func TestDefaultVerticals_AreIndependent(t *testing.T) {
	t.Parallel()

	a := DefaultVerticals()
	a["food"].Params["productType"] = "changed"
	assert.Equal(t, "alimentation", DefaultVerticals()["food"].Params["productType"])
}
