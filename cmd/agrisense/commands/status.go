package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local store and sync status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	dbStore, store, err := openCropStore(log)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	lastSync, err := store.LastSyncAt(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		out := map[string]any{
			"savedCrops": stats.SavedCount,
			"pendingOps": stats.PendingCount,
			"lastSyncAt": nil,
			"oldestOpAt": stats.OldestPending,
		}
		lastSync.WhenSome(func(t time.Time) {
			out["lastSyncAt"] = t
		})
		return outputJSON(out)
	}

	fmt.Printf("Saved crops:        %d\n", stats.SavedCount)
	fmt.Printf("Pending operations: %d\n", stats.PendingCount)

	if lastSync.IsSome() {
		t := lastSync.UnwrapOr(time.Time{})
		fmt.Printf("Last sync:          %s (%s ago)\n",
			t.Format(time.RFC3339),
			time.Since(t).Round(time.Second))
	} else {
		fmt.Println("Last sync:          never")
	}

	if stats.OldestPending != nil {
		fmt.Printf("Oldest pending op:  %s ago\n",
			time.Since(*stats.OldestPending).Round(time.Second))
	}

	return nil
}
