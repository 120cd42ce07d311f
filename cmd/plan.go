package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"world-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// planCmd crawls a world and reports what a data sync would change.
var planCmd = &cobra.Command{
	Use:   "plan <world>",
	Short: "Crawl a world and report the planned changes without writing",
	Long: `Logs into the world, crawls the map and rankings and diffs the result
against the stored state. Nothing is written to the database or snapshot files.

Examples:
  plan br52`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		a.logger.Info("Planning world synchronization", zap.String("world", args[0]))
		plan, err := a.scheduler.Preview(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to plan synchronization: %w", err)
		}

		printPlanReport(a.logger, plan)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(planCmd)
}

// printPlanReport prints a formatted plan report using logger.
func printPlanReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Plan report",
		zap.String("world", plan.WorldID),
		zap.Int("villages", s.Villages),
		zap.Int("players", s.Players),
		zap.Int("tribes", s.Tribes),
		zap.Int("conquests", s.Conquests),
		zap.Int("tribe_changes", s.TribeChanges),
		zap.Int("records", s.Records),
		zap.Int("archived", s.Archived),
		zap.Int("unarchived", s.Unarchived),
	)

	if len(plan.Actions) == 0 {
		l.Info("No changes detected")
		return
	}

	// Show sample of actions (max 5 for logger)
	maxShow := min(len(plan.Actions), 5)
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}
