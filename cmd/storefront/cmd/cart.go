package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/storefront/internal/cart"
	"github.com/donaldgifford/storefront/internal/config"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

var errNotSignedIn = errors.New("no user given: pass --user or set STOREFRONT_USER")

func cartCmd() *cobra.Command {
	cartRoot := &cobra.Command{
		Use:   "cart",
		Short: "Manage the signed-in user's cart",
		Long: "Add catalog items to a cart and inspect it. The cart owner is the\n" +
			"--user flag; carts live in the store selected by cart.backend.",
	}

	cartRoot.AddCommand(
		cartAddCmd(),
		cartShowCmd(),
		cartClearCmd(),
	)

	return cartRoot
}

// newCartService opens the configured cart store. The returned func releases
// it.
func newCartService(cfg *config.Config) (cart.Service, func(), error) {
	switch cfg.Cart.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Cart.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing cart.redis_url: %w", err)
		}
		rdb := redis.NewClient(opts)
		return cart.NewRedisStore(rdb, cfg.Cart.TTL), func() { _ = rdb.Close() }, nil
	default:
		return cart.NewMemoryStore(), func() {}, nil
	}
}

func cartAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <vertical> <id>",
		Short: "Add one unit of an item to the cart",
		Example: `  storefront cart add materials 64f1c2 --user u-42
  STOREFRONT_USER=u-42 storefront cart add food 12ab`,
		Args: cobra.ExactArgs(2),
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

			store, closeStore, err := newCartService(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			h := cart.NewHandler(
				cart.StaticSession{User: currentUser()},
				store,
				notify.NewWriterNotifier(os.Stderr),
				newLogger(cfg),
			)
			if !h.Add(cmd.Context(), it) {
				return errors.New(cart.MsgAddFailed)
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, cart.ToEntry(it))
			}
			return nil
		},
	}
}

func cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := currentUser()
			if user == nil {
				return errNotSignedIn
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, closeStore, err := newCartService(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := store.Entries(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, entries)
			}
			if len(entries) == 0 {
				fmt.Println("Cart is empty.")
				return nil
			}
			return printCartTable(os.Stdout, entries)
		},
	}
}

func cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := currentUser()
			if user == nil {
				return errNotSignedIn
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, closeStore, err := newCartService(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Clear(cmd.Context(), user.ID); err != nil {
				return err
			}
			fmt.Println("Cart cleared.")
			return nil
		},
	}
}
