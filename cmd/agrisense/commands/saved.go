package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/crop"
	"github.com/agrisense/agrisense/internal/cropstore"
)

// cropFile is an optional JSON file holding a full crop record for
// `saved add`.
var cropFile string

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage your saved crops",
	Long: `Saved crops live in the local database first and are synced to
the remote store in the background. All subcommands work offline.`,
}

var savedAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a crop by reference-table name or from a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSavedAdd,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved crops",
	Args:  cobra.NoArgs,
	RunE:  runSavedList,
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <name-or-id>",
	Short: "Remove a saved crop",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedRemove,
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved crops",
	Args:  cobra.NoArgs,
	RunE:  runSavedClear,
}

func runSavedAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	var c crop.Crop
	switch {
	case cropFile != "":
		raw, err := os.ReadFile(cropFile)
		if err != nil {
			return fmt.Errorf("read crop file: %w", err)
		}
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("parse crop file: %w", err)
		}
		if c.Name == "" {
			return fmt.Errorf("crop file is missing a name")
		}

	case len(args) == 1:
		var ok bool
		c, ok = crop.LookupReference(args[0])
		if !ok {
			return fmt.Errorf("unknown crop %q; pass --file "+
				"for a custom record", args[0])
		}

	default:
		return fmt.Errorf("pass a crop name or --file")
	}

	dbStore, store, err := openCropStore(log)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	result, err := store.Add(ctx, c)
	if err != nil {
		return err
	}

	if result == cropstore.Duplicate {
		fmt.Printf("%s is already saved.\n", c.Name)
	} else {
		fmt.Printf("Saved %s.\n", c.Name)
	}

	backgroundSync(ctx, store, log)
	return nil
}

func runSavedList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	dbStore, store, err := openCropStore(log)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	crops, err := store.ReadAll(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return outputJSON(crops)
	}

	if len(crops) == 0 {
		fmt.Println("No saved crops.")
		return nil
	}

	for _, c := range crops {
		line := c.Name
		if c.ScientificName != "" {
			line += " (" + c.ScientificName + ")"
		}
		if c.Category != "" {
			line += " [" + c.Category + "]"
		}
		fmt.Println(line)
	}

	return nil
}

func runSavedRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	dbStore, store, err := openCropStore(log)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	identity := (crop.Crop{Name: args[0]}).IdentityKey()
	if err := store.Delete(ctx, identity); err != nil {
		return err
	}

	fmt.Printf("Removed %s.\n", args[0])

	backgroundSync(ctx, store, log)
	return nil
}

func runSavedClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	dbStore, store, err := openCropStore(log)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	if err := store.Clear(ctx); err != nil {
		return err
	}

	fmt.Println("Cleared all saved crops.")

	backgroundSync(ctx, store, log)
	return nil
}

// backgroundSync makes a best-effort non-forced sync after a mutation.
// Failures are invisible here: the journal keeps the intent and the
// next sync retries it.
func backgroundSync(
	ctx context.Context, store *cropstore.Store, log *slog.Logger,
) {

	cfg, err := loadConfig()
	if err != nil {
		return
	}

	rec, err := newReconciler(cfg, store, log)
	if err != nil || rec == nil {
		return
	}

	if _, err := rec.SyncIfStale(ctx); err != nil {
		log.Warn("Background sync failed; will retry later",
			"error", err)
	}
}

func init() {
	savedAddCmd.Flags().StringVar(
		&cropFile, "file", "",
		"JSON file with a full crop record",
	)

	savedCmd.AddCommand(savedAddCmd)
	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedRemoveCmd)
	savedCmd.AddCommand(savedClearCmd)
}
