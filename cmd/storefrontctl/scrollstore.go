package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/overlay"
	"github.com/utafrali/storefront/internal/overlay/redisscroll"
	"github.com/utafrali/storefront/pkg/database"
)

const slowRedisCommand = 50 * time.Millisecond

func (c *cli) redisClient(ctx context.Context) (*redis.Client, error) {
	rc := database.DefaultRedisConfig()
	rc.Addr = c.cfg.RedisAddr
	rc.Password = c.cfg.RedisPass
	rc.DB = c.cfg.RedisDB
	return database.NewRedisClient(ctx, rc)
}

// scrollStore opens the configured scroll store. The returned func releases it.
func (c *cli) scrollStore(ctx context.Context) (overlay.ScrollStore, func(), error) {
	if c.cfg.ScrollStore != config.ScrollStoreRedis {
		return overlay.NewMemoryScrollStore(), func() {}, nil
	}

	rdb, err := c.redisClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect scroll store: %w", err)
	}
	database.SetSlowCommandLogging(slowRedisCommand, c.logger)
	return redisscroll.New(rdb, c.cfg.ScrollTTL), func() { _ = rdb.Close() }, nil
}

func newScrollStoreCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scroll-store",
		Short: "Inspect the browse session scroll store",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Check the scroll store and show its connection pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if c.cfg.ScrollStore != config.ScrollStoreRedis {
				fmt.Fprintln(out, "scroll store: memory (offsets live only for the browse session)")
				return nil
			}

			ctx := cmd.Context()
			rdb, err := c.redisClient(ctx)
			if err != nil {
				return fmt.Errorf("connect scroll store: %w", err)
			}
			defer rdb.Close()

			if err := database.RedisChecker(rdb)(ctx); err != nil {
				return fmt.Errorf("scroll store unhealthy: %w", err)
			}
			pending, err := redisscroll.New(rdb, c.cfg.ScrollTTL).Pending(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "scroll store: redis %s db %d (ttl %s)\n", c.cfg.RedisAddr, c.cfg.RedisDB, c.cfg.ScrollTTL)
			fmt.Fprintf(out, "pending offsets: %d\n", pending)

			reg := prometheus.NewRegistry()
			if err := database.RegisterPoolMetrics(reg, rdb, "storefrontctl"); err != nil {
				return fmt.Errorf("register pool metrics: %w", err)
			}
			families, err := reg.Gather()
			if err != nil {
				return fmt.Errorf("gather pool metrics: %w", err)
			}
			for _, mf := range families {
				for _, m := range mf.GetMetric() {
					var v float64
					switch {
					case m.GetGauge() != nil:
						v = m.GetGauge().GetValue()
					case m.GetCounter() != nil:
						v = m.GetCounter().GetValue()
					}
					fmt.Fprintf(out, "%-38s %g\n", mf.GetName(), v)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(status)
	return cmd
}
