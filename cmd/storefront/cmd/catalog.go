package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/storefront/internal/catalog"
	"github.com/donaldgifford/storefront/internal/render"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

func catalogCmd() *cobra.Command {
	catalogRoot := &cobra.Command{
		Use:   "catalog",
		Short: "Query marketplace listings",
		Long: "Query the listing views (verticals) of the marketplace: one page at a\n" +
			"time, with the same filters the storefront pages offer.",
	}

	catalogRoot.AddCommand(
		catalogListCmd(),
		catalogGetCmd(),
		catalogCategoriesCmd(),
		catalogVerticalsCmd(),
	)

	return catalogRoot
}

func catalogListCmd() *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "list <vertical>",
		Short: "Show one page of a vertical",
		Long: "Fetch one page of a vertical and render it as cards with a pager.\n" +
			"Filters use key=value form: search, category, min_price, max_price,\n" +
			"sort (newest, price_asc, price_desc, name, most_viewed), in_stock,\n" +
			"featured and page.",
		Example: `  # First page of building materials
  storefront catalog list materials

  # Search with a price ceiling, cheapest first
  storefront catalog list materials --filter search=ciment --filter max_price=5000 --filter sort=price_asc

  # Third page of featured tourism experiences
  storefront catalog list tourism --filter featured=true --filter page=3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			src, err := catalog.SourceFor(cfg.Verticals, args[0])
			if err != nil {
				return err
			}

			state := domain.NewQueryState(cfg.Verticals[args[0]].PageSize)
			if err := catalog.ApplyFilters(&state, filters); err != nil {
				return err
			}

			page, fetchErr := catalog.FetchPage(cmd.Context(), newClient(cfg), src, state)
			if fetchErr != nil {
				fb, ok := src.FallbackPage()
				if !ok {
					return fetchErr
				}
				fmt.Fprintln(os.Stderr, "Backend unavailable, showing fallback dataset:", fetchErr)
				page = fb
			}

			view := render.Render(false, render.MapPage(page, render.CardFor), state.SearchText, render.Options{
				SkeletonCount:  cfg.Catalog.SkeletonCount,
				MaxPageButtons: cfg.Catalog.MaxPageButtons,
			})
			if fetchErr != nil {
				view.Error = catalog.LoadErrorMessage
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, view)
			}
			return printView(os.Stdout, view)
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter in key=value form (repeatable)")

	return cmd
}

func catalogGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <vertical> <id>",
		Short:   "Show item details",
		Example: `  storefront catalog get materials 64f1c2`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			v, err := lookupVertical(cfg, args[0])
			if err != nil {
				return err
			}

			raw, err := newClient(cfg).GetItem(cmd.Context(), v.Endpoint, args[1])
			if err != nil {
				return err
			}
			it, err := domain.DecodeItem(raw)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, it)
			}
			return printItemDetail(os.Stdout, &it)
		},
	}
}

func catalogCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "categories <vertical>",
		Short:   "List the categories of a vertical",
		Example: `  storefront catalog categories food`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cache := catalog.NewCategoryCache(newClient(cfg), cfg.Verticals, cfg.Categories.TTL)
			cats, err := cache.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, catalog.ErrUnknownVertical) {
					_, err = lookupVertical(cfg, args[0])
				}
				return err
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, cats)
			}
			return printCategoriesTable(os.Stdout, cats)
		},
	}
}

func catalogVerticalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verticals",
		Short: "List the configured verticals",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			verticals := make([]domain.Vertical, 0, len(cfg.Verticals))
			for _, name := range cfg.VerticalNames() {
				v, _ := cfg.Vertical(name)
				verticals = append(verticals, v)
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, verticals)
			}
			return printVerticalsTable(os.Stdout, verticals)
		},
	}
}

