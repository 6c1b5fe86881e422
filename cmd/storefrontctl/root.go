package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/overlay"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

// storefrontAPI is the remote storefront as the commands see it.
type storefrontAPI interface {
	overlay.DataSource
	ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error)
	ListCart(ctx context.Context) (domain.Cart, error)
	ResolveOverlay(ctx context.Context, s overlay.State) (overlay.Resolution, error)
}

// cli holds the dependencies shared by every command. Fields left nil are
// built from configuration before the command runs.
type cli struct {
	cfg    *config.ClientConfig
	logger *slog.Logger
	api    storefrontAPI
}

func newRootCmd(c *cli) *cobra.Command {
	var (
		serverFlag  string
		timeoutFlag time.Duration
		levelFlag   string
	)

	root := &cobra.Command{
		Use:   "storefrontctl",
		Short: "Browse the storefront catalog and cart from the terminal",
		Long: `storefrontctl talks to a running storefront service.

Environment:
    STOREFRONT_URL       base URL of the service (default http://localhost:8080)
    STOREFRONT_TIMEOUT   per-request timeout (default 10s)
    SCROLL_STORE         memory or redis, used by browse
    REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, SCROLL_TTL`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			override := func(cfg *config.ClientConfig) {
				if flags.Changed("server") {
					cfg.ServerURL = serverFlag
				}
				if flags.Changed("timeout") {
					cfg.Timeout = timeoutFlag
				}
				if flags.Changed("log-level") {
					cfg.LogLevel = levelFlag
				}
			}
			return c.init(cmd, override)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	root.PersistentFlags().StringVar(&serverFlag, "server", "", "storefront base URL (overrides STOREFRONT_URL)")
	root.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "per-request timeout (overrides STOREFRONT_TIMEOUT)")
	root.PersistentFlags().StringVar(&levelFlag, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newProductsCmd(c),
		newCartCmd(c),
		newOverlayCmd(c),
		newBrowseCmd(c),
		newScrollStoreCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command, override func(*config.ClientConfig)) error {
	if c.cfg == nil {
		cfg, err := config.LoadClient(override)
		if err != nil {
			return err
		}
		c.cfg = cfg
	} else {
		override(c.cfg)
		if err := c.cfg.Validate(); err != nil {
			return err
		}
	}

	if c.logger == nil {
		c.logger = logger.NewWithWriter("storefrontctl", c.cfg.LogLevel, cmd.ErrOrStderr())
	}
	if c.api == nil {
		c.api = client.NewResilient(c.cfg.ServerURL, c.cfg.Timeout, c.logger)
	}
	return nil
}
