// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"linguatranslate/internal/observability"
	"linguatranslate/internal/storage"
	contextutils "linguatranslate/internal/utils"
)

// CacheCommands returns the cache management commands
func CacheCommands(logger *observability.Logger, store storage.Store) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Response cache management commands",
		Long: `Response cache management commands for the translation service.

Available commands:
  cleanup   - Remove expired cache and context entries
  stats     - Show storage entry counts`,
	}

	cacheCmd.AddCommand(cacheCleanupCmd(logger, store))
	cacheCmd.AddCommand(cacheStatsCmd(logger, store))

	return cacheCmd
}

// cacheCleanupCmd returns the cleanup command for the storage backend
func cacheCleanupCmd(logger *observability.Logger, store storage.Store) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired cache and context entries",
		Long: `Remove expired entries from the storage backend.

This command will:
- Delete all cache and context entries whose TTL has passed
- Report the number of entries deleted

Use --dry-run flag to see the current entry count without performing the cleanup.
Redis-backed storage expires entries natively, so cleanup there is a no-op.`,
		RunE: runCacheCleanup(logger, &dryRun, store),
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the current entry count without performing the cleanup")

	return cmd
}

// runCacheCleanup executes the storage cleanup
func runCacheCleanup(logger *observability.Logger, dryRun *bool, store storage.Store) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		if *dryRun {
			count, err := store.Len(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to count storage entries", err)
				return contextutils.WrapError(err, "failed to count storage entries")
			}

			fmt.Printf("Dry run: storage holds %d entries; expired entries among them would be deleted\n", count)
			return nil
		}

		count, err := store.CleanupExpired(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to cleanup expired entries", err)
			return contextutils.WrapError(err, "failed to cleanup expired entries")
		}

		fmt.Printf("Successfully deleted %d expired entries\n", count)
		logger.Info(ctx, "Storage cleanup completed", map[string]interface{}{
			"deleted_count": count,
		})

		return nil
	}
}

// cacheStatsCmd returns the stats command for the storage backend
func cacheStatsCmd(logger *observability.Logger, store storage.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage entry counts",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()

			count, err := store.Len(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to count storage entries", err)
				return contextutils.WrapError(err, "failed to count storage entries")
			}

			fmt.Printf("Storage entries: %d\n", count)
			return nil
		},
	}
}
