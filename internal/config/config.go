// Package config handles loading and validating the storefront configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Backend       BackendConfig              `yaml:"backend"`
	Catalog       CatalogConfig              `yaml:"catalog"`
	Verticals     map[string]domain.Vertical `yaml:"verticals"`
	Server        ServerConfig               `yaml:"server"`
	Cart          CartConfig                 `yaml:"cart"`
	Categories    CategoriesConfig           `yaml:"categories"`
	Contact       ContactConfig              `yaml:"contact"`
	Notifications NotificationsConfig        `yaml:"notifications"`
	Tracing       TracingConfig              `yaml:"tracing"`
	Logging       LoggingConfig              `yaml:"logging"`
}

// BackendConfig defines the marketplace REST backend.
type BackendConfig struct {
	BaseURL    string          `yaml:"base_url"`
	Timeout    time.Duration   `yaml:"timeout"` // 0 keeps the HTTP client default
	HealthPath string          `yaml:"health_path"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines client-side throttling of backend calls.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"` // 0 disables throttling
	Burst     int     `yaml:"burst"`
}

// CatalogConfig tunes listing views.
type CatalogConfig struct {
	PageSize        int           `yaml:"page_size"`
	Debounce        time.Duration `yaml:"debounce"`
	SkeletonCount   int           `yaml:"skeleton_count"`
	MaxPageButtons  int           `yaml:"max_page_buttons"`
	AddingIndicator time.Duration `yaml:"adding_indicator"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CartConfig selects the cart store.
type CartConfig struct {
	Backend  string        `yaml:"backend"` // memory, redis
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// CategoriesConfig defines the category cache.
type CategoriesConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// ContactConfig defines the contact/quote endpoint.
type ContactConfig struct {
	Path string `yaml:"path"`
}

// NotificationsConfig defines operator notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// TracingConfig defines the OTLP trace exporter. An empty endpoint disables
// export.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// VerticalNames returns the configured vertical names, sorted.
func (c *Config) VerticalNames() []string {
	names := make([]string, 0, len(c.Verticals))
	for name := range c.Verticals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Vertical returns a configured vertical with its Name filled in.
func (c *Config) Vertical(name string) (domain.Vertical, bool) {
	v, ok := c.Verticals[name]
	if !ok {
		return domain.Vertical{}, false
	}
	v.Name = name
	return v, true
}

func applyDefaults(cfg *Config) {
	applyBackendDefaults(&cfg.Backend)
	applyCatalogDefaults(&cfg.Catalog)
	applyVerticalDefaults(cfg)
	applyServerDefaults(&cfg.Server)
	applyCartDefaults(&cfg.Cart)
	applyCategoriesDefaults(&cfg.Categories)
	applyContactDefaults(&cfg.Contact)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyBackendDefaults(b *BackendConfig) {
	if b.BaseURL == "" {
		b.BaseURL = "http://localhost:5000/api"
	}
	if b.HealthPath == "" {
		b.HealthPath = "/products/categories"
	}
	if b.RateLimit.PerSecond > 0 && b.RateLimit.Burst == 0 {
		b.RateLimit.Burst = 10
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.PageSize == 0 {
		c.PageSize = 12
	}
	if c.Debounce == 0 {
		c.Debounce = 500 * time.Millisecond
	}
	if c.SkeletonCount == 0 {
		c.SkeletonCount = 8
	}
	if c.MaxPageButtons == 0 {
		c.MaxPageButtons = 5
	}
	if c.AddingIndicator == 0 {
		c.AddingIndicator = time.Second
	}
}

// DefaultVerticals returns the marketplace's built-in listing views.
func DefaultVerticals() map[string]domain.Vertical {
	product := func(title, productType string) domain.Vertical {
		return domain.Vertical{
			Title:      title,
			Endpoint:   "/products/all",
			Envelope:   domain.EnvelopeProducts,
			Categories: "/products/categories",
			Params:     map[string]string{"productType": productType, "status": "active"},
		}
	}
	return map[string]domain.Vertical{
		"materials":    product("Matériaux & travaux", "materiau"),
		"food":         product("Alimentation", "alimentation"),
		"construction": product("Bâtiment", "batiment"),
		"crafts":       product("Artisanat", "artisanat"),
		"insurance":    product("Assurance", "assurance"),
		"financing":    product("Financement", "financement"),
		"tourism": {
			Title:    "Séjours & expériences",
			Endpoint: "/experiences",
			Envelope: domain.EnvelopeData,
			Params:   map[string]string{"status": "active"},
		},
	}
}

func applyVerticalDefaults(cfg *Config) {
	if len(cfg.Verticals) == 0 {
		cfg.Verticals = DefaultVerticals()
	}
	for name, v := range cfg.Verticals {
		if v.Envelope == "" {
			v.Envelope = domain.EnvelopeProducts
		}
		if v.PageSize == 0 {
			v.PageSize = cfg.Catalog.PageSize
		}
		if v.Title == "" {
			v.Title = name
		}
		v.Name = name
		cfg.Verticals[name] = v
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyCartDefaults(c *CartConfig) {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.TTL == 0 {
		c.TTL = 7 * 24 * time.Hour
	}
}

func applyCategoriesDefaults(c *CategoriesConfig) {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = 15 * time.Minute
	}
}

func applyContactDefaults(c *ContactConfig) {
	if c.Path == "" {
		c.Path = "/demandes"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "storefront"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url must be an absolute URL (got %q)", cfg.Backend.BaseURL))
	}
	if cfg.Backend.Timeout < 0 {
		errs = append(errs, fmt.Errorf("backend.timeout must not be negative"))
	}

	if cfg.Catalog.PageSize < 1 {
		errs = append(errs, fmt.Errorf("catalog.page_size must be positive"))
	}
	if cfg.Catalog.Debounce < 0 {
		errs = append(errs, fmt.Errorf("catalog.debounce must not be negative"))
	}

	for _, name := range cfg.VerticalNames() {
		v := cfg.Verticals[name]
		if v.Endpoint == "" {
			errs = append(errs, fmt.Errorf("verticals.%s.endpoint is required", name))
		}
		switch v.Envelope {
		case domain.EnvelopeProducts, domain.EnvelopeData:
		default:
			errs = append(errs, fmt.Errorf(
				"verticals.%s.envelope must be one of: products, data (got %q)", name, v.Envelope,
			))
		}
	}

	switch cfg.Cart.Backend {
	case "memory":
	case "redis":
		if cfg.Cart.RedisURL == "" {
			errs = append(errs, fmt.Errorf("cart.redis_url is required when backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"cart.backend must be one of: memory, redis (got %q)", cfg.Cart.Backend,
		))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"))
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be between 0 and 1"))
	}

	return errors.Join(errs...)
}
