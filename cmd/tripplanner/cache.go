package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aescanero/tripplanner/pkg/ports"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var purgeExpired bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the plan cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache entry counts",
	RunE:  runCacheStats,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cached plans",
	Long: `Remove cached plans.

Examples:
  tripplanner cache purge            # remove every entry
  tripplanner cache purge --expired  # remove only entries older than the TTL`,
	RunE: runCachePurge,
}

func init() {
	cachePurgeCmd.Flags().BoolVar(&purgeExpired, "expired", false, "Only remove entries older than the TTL")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}

// withMaintainer opens the configured cache and runs fn on it
func withMaintainer(ctx context.Context, fn func(ports.CacheMaintainer) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var client *goredis.Client
	if cfg.Cache.Backend == "redis" {
		client, err = newRedisClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
	}

	store, err := newCacheStore(cfg, client, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	maintainer, ok := store.(ports.CacheMaintainer)
	if !ok {
		return fmt.Errorf("cache backend %s does not support stats or purge", cfg.Cache.Backend)
	}
	return fn(maintainer)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	return withMaintainer(cmd.Context(), func(m ports.CacheMaintainer) error {
		stats, err := m.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read cache stats: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	})
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	return withMaintainer(cmd.Context(), func(m ports.CacheMaintainer) error {
		removed, err := m.Purge(cmd.Context(), purgeExpired)
		if err != nil {
			return fmt.Errorf("failed to purge cache: %w", err)
		}

		fmt.Printf("removed %d cached plan(s)\n", removed)
		return nil
	})
}
