package cmd

import (
	"context"

	"world-sync/core/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var toggleType string

// toggleCmd flips the sync enable flag of one world.
var toggleCmd = &cobra.Command{
	Use:   "toggle <world>",
	Short: "Enable or disable synchronization of a world",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := scheduler.ParseSyncType(toggleType)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		enabled, err := a.scheduler.ToggleWorld(ctx, typ, args[0])
		if err != nil {
			return err
		}

		a.logger.Info("World toggled",
			zap.String("world", args[0]),
			zap.String("type", string(typ)),
			zap.Bool("enabled", enabled),
		)
		return nil
	},
}

func init() {
	toggleCmd.Flags().StringVar(&toggleType, "type", string(scheduler.TypeData), "Sync type to toggle (data or achievements)")
	RootCmd.AddCommand(toggleCmd)
}
