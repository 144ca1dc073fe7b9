package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/uutislabs/kieli"
	"github.com/uutislabs/kieli/cache"
	"github.com/uutislabs/kieli/config"
)

func newCleanupCmd() *cobra.Command {
	var (
		configPath string
		keepDays   int
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired cache entries and old rate counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := newLogger()
			st, err := buildStore(cfg)
			if err != nil {
				return err
			}

			ctx := context.Background()
			ttl := time.Duration(cfg.Translation.CacheTTLHours) * time.Hour

			manager := cache.NewManager(st, ttl, cache.WithLogger(logger))
			cleaned := manager.CleanupExpired(ctx)

			limiter := kieli.NewDailyLimiter(st, kieli.WithLimiterLogger(logger))
			swept := limiter.Sweep(ctx, keepDays)

			fmt.Printf("Deleted %d expired cache entries and %d old counters.\n", cleaned, swept)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().IntVar(&keepDays, "keep-days", 30, "keep rate counters newer than this many days")
	return cmd
}
