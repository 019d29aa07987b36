// Package main implements the todo CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/app"
	"github.com/fastygo/todos/internal/config"
	"github.com/fastygo/todos/internal/infrastructure/kv"
	"github.com/fastygo/todos/internal/services/migration"
)

// Version is set at build time.
var Version = "dev"

// storeAnnotation controls how a command uses the store: "none" skips opening
// it, "manual" opens it without the startup migration.
const storeAnnotation = "store"

var (
	configPath string
	current    *app.App
)

func main() {
	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	if current != nil {
		if cerr := current.Close(); err == nil {
			err = cerr
		}
		_ = current.Logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "todo: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps error codes to process exit statuses.
func exitCode(err error) int {
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalid:
		return 2
	case domain.ErrCodeNotFound:
		return 3
	case domain.ErrCodeUnavailable, domain.ErrCodeQuotaExceeded:
		return 4
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "Manage todos and categories",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode := cmd.Annotations[storeAnnotation]
		if mode == "none" {
			return nil
		}
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		current = a
		if mode == "manual" {
			return nil
		}
		if _, err := a.Migrate(cmd.Context()); err != nil {
			a.Logger.Warn("continuing without migrated storage", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (default $TODO_CONFIG)")

	rootCmd.AddCommand(migrateCmd, versionCmd)
}

func openApp(stderr io.Writer) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	// stdout carries command output; logs go to stderr unless configured.
	if os.Getenv("LOG_OUTPUT") == "" {
		cfg.Logger.Output = "stderr"
		cfg.Logger.Encoding = "console"
		cfg.Logger.Level = "warn"
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log, app.WithAlerter(kv.AlertFunc(func(msg string) {
		fmt.Fprintln(stderr, msg)
	})))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Upgrade stored data to the current schema version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{storeAnnotation: "manual"},
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case res.Skipped:
			fmt.Fprintf(out, "already at version %s\n", migration.CurrentVersion)
		case res.Malformed:
			fmt.Fprintf(out, "stored todos are unreadable and were left as is; version set to %s\n", migration.CurrentVersion)
		default:
			from := res.FromVersion
			if from == "" {
				from = "none"
			}
			fmt.Fprintf(out, "migrated %s -> %s, %d todos backfilled\n", from, migration.CurrentVersion, res.Backfilled)
		}
		current.Logger.Debug("migration finished", zap.Int("backfilled", res.Backfilled))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the program and schema versions",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{storeAnnotation: "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "todo %s (schema %s)\n", Version, migration.CurrentVersion)
		return nil
	},
}
