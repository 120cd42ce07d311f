package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"world-sync/core/database"
	"world-sync/core/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd runs synchronizations in this process and waits for them.
var syncCmd = &cobra.Command{
	Use:   "sync <data|achievements> [world...]",
	Short: "Synchronize worlds once and exit",
	Long: `Queues the given worlds, or every open enabled world when none are given,
and processes them in this process with the configured pool sizes.

Examples:
  # Sync data of two worlds
  sync data br52 en40

  # Sync achievements of every enabled world
  sync achievements`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	typ, err := scheduler.ParseSyncType(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Migrate(a.db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var queued int
	if worlds := args[1:]; len(worlds) > 0 {
		queued, err = a.scheduler.Enqueue(ctx, typ, worlds...)
	} else {
		queued, err = a.scheduler.SyncAll(ctx, typ)
	}
	if err != nil {
		return err
	}
	a.logger.Info("Worlds queued", zap.String("type", string(typ)), zap.Int("count", queued))

	done := make(chan struct{})
	go func() {
		a.scheduler.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Unfinished items stay persisted for the next start
		a.logger.Warn("Interrupted, stopping running synchronizations")
		a.scheduler.Close()
	}

	return printStatus(ctx, a, false)
}
