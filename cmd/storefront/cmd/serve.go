package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/storefront/api/openapi"
	"github.com/donaldgifford/storefront/internal/api/handlers"
	mw "github.com/donaldgifford/storefront/internal/api/middleware"
	"github.com/donaldgifford/storefront/internal/cart"
	"github.com/donaldgifford/storefront/internal/catalog"
	"github.com/donaldgifford/storefront/internal/config"
	"github.com/donaldgifford/storefront/internal/contact"
	"github.com/donaldgifford/storefront/internal/notify"
	"github.com/donaldgifford/storefront/internal/observability"
	"github.com/donaldgifford/storefront/internal/render"
)

// backend is the slice of *client.Client the server depends on.
type backend interface {
	handlers.CatalogBackend
	handlers.Pinger
	catalog.CategoryFetcher
	contact.Poster
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront BFF server",
		Long: "Serve rendered catalog pages, categories, cart and contact endpoints\n" +
			"over HTTP, backed by the marketplace API. Categories are refreshed on\n" +
			"a schedule; metrics are exposed on /metrics and the OpenAPI document\n" +
			"on /openapi.json.",
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	store, closeStore, err := newCartService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := newClient(cfg)
	cache := catalog.NewCategoryCache(client, cfg.Verticals, cfg.Categories.TTL)

	refresher, err := catalog.NewRefresher(cache, cfg.Categories.RefreshInterval, log)
	if err != nil {
		return err
	}
	refresher.Start()
	defer func() { <-refresher.Stop().Done() }()

	var ops notify.Notifier
	if cfg.Notifications.Discord.Enabled {
		ops = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}

	e, err := newServer(cfg, log, client, store, cache, ops)
	if err != nil {
		return err
	}
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"backend", cfg.Backend.BaseURL,
		"verticals", cfg.VerticalNames(),
		"cart", cfg.Cart.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// newServer assembles the Echo instance with middleware, probes, metrics and
// the Huma API. ops may be nil.
func newServer(
	cfg *config.Config,
	log *slog.Logger,
	be backend,
	store cart.Service,
	categories handlers.CategoryLister,
	ops notify.Notifier,
) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		mw.Recovery(log),
		mw.Tracing(),
		mw.RequestLog(log),
		mw.Metrics(),
	)

	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(be, cfg.Backend.HealthPath))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	api := humaecho.New(e, huma.DefaultConfig("Storefront API", Version))

	catalogHandler, err := handlers.NewCatalogHandler(be, categories, cfg.Verticals, render.Options{
		SkeletonCount:  cfg.Catalog.SkeletonCount,
		MaxPageButtons: cfg.Catalog.MaxPageButtons,
	})
	if err != nil {
		return nil, err
	}
	handlers.RegisterCatalogRoutes(api, catalogHandler)

	handlers.RegisterCartRoutes(api, handlers.NewCartHandler(
		be, store, cfg.Verticals, log,
		cart.WithIndicatorDelay(cfg.Catalog.AddingIndicator),
	))

	contactOpts := []contact.Option{contact.WithPath(cfg.Contact.Path)}
	if ops != nil {
		contactOpts = append(contactOpts, contact.WithOpsNotifier(ops))
	}
	submitter := contact.NewSubmitter(be, notify.NewNoOpNotifier(log), log, contactOpts...)
	handlers.RegisterContactRoutes(api, handlers.NewContactHandler(submitter))

	return e, nil
}
