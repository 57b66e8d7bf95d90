package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/syncer"
)

// forceSync skips the staleness gate.
var forceSync bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile saved crops with the remote store",
	Long: `Sync merges the local saved crop set with the remote copy,
replays any offline mutations in order, and writes the result to both
sides. Being offline is a clean no-op, not an error.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbStore, store, err := openCropStore(log)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	rec, err := newReconciler(cfg, store, log)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no remote_endpoint configured")
	}

	result, err := rec.Sync(ctx, forceSync)
	if err != nil {
		return err
	}

	switch result.Skipped {
	case syncer.SkipOffline:
		fmt.Println("Offline; sync will run when connectivity " +
			"returns.")
	case syncer.SkipFresh:
		fmt.Println("Already in sync. Use --force to sync anyway.")
	default:
		fmt.Printf("Synced %d crops (%d offline changes applied).\n",
			result.Merged, result.Replayed)
	}

	return nil
}

func init() {
	syncCmd.Flags().BoolVarP(
		&forceSync, "force", "f", false,
		"Sync even if the last sync is recent",
	)
}
