package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusJSON bool

// statusCmd reports pools and per-world sync status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue and world sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return printStatus(ctx, a, statusJSON)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON to stdout")
	RootCmd.AddCommand(statusCmd)
}

func printStatus(ctx context.Context, a *app, asJSON bool) error {
	st, err := a.scheduler.Status(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	for _, p := range st.Pools {
		a.logger.Info("Pool",
			zap.String("type", string(p.Type)),
			zap.Int("concurrency", p.Concurrency),
			zap.Strings("queued", p.Queued),
			zap.Strings("active", p.Active),
		)
	}
	for _, w := range st.Worlds {
		a.logger.Info("World",
			zap.String("world", w.ID),
			zap.Bool("open", w.Open),
			zap.Bool("data", w.SyncDataEnabled),
			zap.Bool("achievements", w.SyncAchievementsEnabled),
			zap.String("last_data_status", w.LastDataSyncStatus),
			zap.String("last_achievements_status", w.LastAchievementsSyncStatus),
		)
	}
	return nil
}
