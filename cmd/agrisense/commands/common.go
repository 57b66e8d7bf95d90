package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/agrisense/agrisense/internal/cropstore"
	"github.com/agrisense/agrisense/internal/db"
	"github.com/agrisense/agrisense/internal/syncer"
)

// openCropStore opens the engine database and wraps it in a crop
// store. Callers must Close the returned db.Store.
func openCropStore(log *slog.Logger) (*db.Store, *cropstore.Store, error) {
	path := dbPath
	if path == "" {
		var err error
		path, err = db.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}

	dbStore, err := db.Open(path, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	return dbStore, cropstore.New(dbStore, log), nil
}

// newReconciler wires a reconciler from config, or returns nil when no
// remote endpoint is configured.
func newReconciler(
	cfg Config, store *cropstore.Store, log *slog.Logger,
) (*syncer.Reconciler, error) {

	if cfg.RemoteEndpoint == "" {
		return nil, nil
	}

	threshold, err := cfg.stalenessThreshold()
	if err != nil {
		return nil, fmt.Errorf("parse staleness_threshold: %w", err)
	}

	syncCfg := syncer.DefaultConfig()
	syncCfg.StalenessThreshold = threshold

	return syncer.NewReconciler(
		syncCfg, store,
		syncer.NewHTTPRemoteStore(cfg.RemoteEndpoint, nil),
		syncer.NewHTTPProbe(cfg.probeURL(), nil),
		log,
	), nil
}

// outputJSON prints v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
