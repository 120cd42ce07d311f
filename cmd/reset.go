package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"world-sync/core/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var yesConfirm bool

// resetCmd clears the persisted queue of one sync type.
var resetCmd = &cobra.Command{
	Use:   "reset <data|achievements>",
	Short: "Clear the persisted sync queue of a type",
	Long: `Deletes every queued and active item of the given type.
A running server keeps its in-memory workers; use the control API to reset those.

Examples:
  # Reset with interactive confirmation
  reset data

  # Reset without prompting
  reset achievements --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := scheduler.ParseSyncType(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if !confirmDestructiveAction(string(typ)) {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		if err := a.scheduler.ResetQueue(ctx, typ); err != nil {
			return err
		}
		a.logger.Info("Queue reset", zap.String("type", string(typ)))
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm without prompting")
	RootCmd.AddCommand(resetCmd)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(queue string) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to clear the %s queue: ", queue)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
