// Package commands implements the agrisense CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/logging"
)

var (
	// dbPath is the path to the SQLite database.
	dbPath string

	// configPath is the path to the YAML config file.
	configPath string

	// outputFormat controls output format (text, json).
	outputFormat string

	// verbose enables debug logging.
	verbose bool

	// logDir, when set, mirrors logs to a rotating file there.
	logDir string

	// logWriter is the rotating file writer, nil when --logdir is
	// unset.
	logWriter *logging.RotatingLogWriter
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "agrisense",
	Short: "Farming advisory recommendation and sync engine",
	Long: `Agrisense turns a weather forecast into a ranked list of suitable
crops and keeps your saved selections in sync across devices, even with
intermittent connectivity.

Saved crops are stored locally first and reconciled with the remote
store whenever connectivity allows.`,
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()

	if logWriter != nil {
		logWriter.Close()
	}

	return err
}

// newLogger builds the CLI logger honoring --verbose. With --logdir it
// fans out to both stderr and a rotating JSON log file.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	if logDir == "" {
		return slog.New(console)
	}

	logWriter = logging.NewRotatingLogWriter()
	err := logWriter.InitLogRotator(logging.DefaultRotatorConfig(logDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up log file: %v\n", err)
		logWriter = nil
		return slog.New(console)
	}

	file := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	return slog.New(logging.NewHandlerSet(console, file))
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "",
		"Path to SQLite database (default: ~/.agrisense/agrisense.db)",
	)
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"Path to YAML config file (default: ~/.agrisense/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "text",
		"Output format: text, json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"Enable debug logging",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir, "logdir", "",
		"Directory for rotating log files (default: disabled)",
	)

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
