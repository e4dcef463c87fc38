// Package cmd implements the storefront CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/storefront/internal/api/client"
	"github.com/donaldgifford/storefront/internal/config"
	"github.com/donaldgifford/storefront/pkg/logger"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Marketplace storefront client and BFF server",
	Long: "storefront browses the marketplace catalog from the terminal and serves\n" +
		"the storefront backend-for-frontend API. Listing views keep their\n" +
		"search, filters, sort and page in sync with the marketplace backend.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "storefront config file (YAML)")
	pf.String("backend", "", "marketplace API base URL (overrides backend.base_url)")
	pf.String("output", "table", "output format (table, json)")
	pf.String("user", "", "signed-in user ID for cart commands")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	for _, name := range []string{"config", "backend", "output", "user", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, pf.Lookup(name)))
	}

	rootCmd.AddCommand(
		catalogCmd(),
		browseCmd(),
		cartCmd(),
		contactCmd(),
		serveCmd(),
		versionCmd(),
	)
}

// initConfig loads .env and the user preferences file ($HOME/.storefront.yaml).
// Preferences and STOREFRONT_* variables supply defaults for the flags.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".storefront")

	viper.SetEnvPrefix("STOREFRONT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using preferences file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the storefront config named by --config, or the built-in
// defaults, and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if path := viper.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if backend := viper.GetString("backend"); backend != "" {
		cfg.Backend.BaseURL = backend
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *apiclient.Client {
	return apiclient.New(cfg.Backend.BaseURL,
		apiclient.WithTimeout(cfg.Backend.Timeout),
		apiclient.WithRateLimit(cfg.Backend.RateLimit.PerSecond, cfg.Backend.RateLimit.Burst),
	)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

func currentUser() *domain.User {
	id := viper.GetString("user")
	if id == "" {
		return nil
	}
	return &domain.User{ID: id}
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

func lookupVertical(cfg *config.Config, name string) (domain.Vertical, error) {
	v, ok := cfg.Vertical(name)
	if !ok {
		return domain.Vertical{}, fmt.Errorf("unknown vertical %q (available: %v)", name, cfg.VerticalNames())
	}
	return v, nil
}
