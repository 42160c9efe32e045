package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/store"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfig resolves only the backend settings needed by store management.
// It does NOT open the stores, so migrations can run on a fresh database.
func storeConfig() error {
	if err := readConfig(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("db-backend")))
	connStr := viper.GetString("db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Handle empty runs backend as NoneBackend
	runsBackend := schema.DatabaseBackend(strings.ToLower(viper.GetString("runs-backend")))
	if runsBackend == "" {
		runsBackend = schema.NoneBackend
	}
	runsConnStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(runsBackend, runsConnStr); err != nil {
		return err
	}

	cfg.DBBackend = backend
	cfg.DBConnect = connStr
	cfg.RunsBackend = runsBackend
	cfg.RunsDBConnect = runsConnStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetup resolves the backend settings and opens the stores.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := storeConfig(); err != nil {
		return err
	}
	if err := store.InitStores(cfg.DBBackend, cfg.DBConnect, cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}
	return nil
}

// storeConfigWrapper wraps storeConfig to provide PreRunE for clear and migrate.
func storeConfigWrapper(_ *cobra.Command, _ []string) error {
	return storeConfig()
}

// sqliteFilePath returns the file an SQLite store lives in.
func sqliteFilePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// storeCmd focused on persistence management.
//
// Note: Store subcommands use minimal initialization instead of the full
// sharedSetup. This avoids threshold and selection validation for simple
// maintenance operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage league data, fitted models and retrain history",
	Long: `Manage the databases behind SmarterTips.

The league store holds games, participation and usage observations along with
the fitted models. The optional run store (--runs-backend) holds retrain run
history.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show table sizes and connection info
  clear   - Remove all stored data
  migrate - Run database schema migrations
  export  - Export models and run history to Parquet

Pass --runs to clear or migrate the run store instead of the league store.`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show backend, connection status, team, game and model counts, the last model
update and table sizes. Run history is included when a runs backend is set.

Examples:
  smartertips store status
  smartertips store status --runs-backend sqlite`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		league, err := store.Manager.GetLeagueStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get league status", err)
		}
		models, err := store.Manager.GetCoefficientStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get model status", err)
		}
		store.PrintStoreStatus(os.Stdout, league, models)

		if runs := store.Manager.GetRunStore(); runs != nil {
			status, err := runs.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get run status", err)
			}
			fmt.Println()
			store.PrintRunStatus(os.Stdout, status)
		}
	},
}

// storeClearCmd clears a store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored data",
	Long: `Delete all league data and fitted models, or with --runs all retrain history.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables

Examples:
  smartertips store export --output-file backup
  smartertips store clear
  smartertips store clear --runs --runs-backend sqlite`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if viper.GetBool("runs") {
			path := sqliteFilePath(cfg.RunsDBConnect, contract.GetRunsDBFilePath())
			if err := store.ClearRuns(cfg.RunsBackend, path, cfg.RunsDBConnect); err != nil {
				contract.LogFatal("Failed to clear run history", err)
			}
			fmt.Println("Run history cleared successfully.")
			return
		}
		path := sqliteFilePath(cfg.DBConnect, contract.GetDBFilePath())
		if err := store.ClearStore(cfg.DBBackend, path, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage the schema version of the league store, or with --runs the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  smartertips store migrate

  # Migrate the run store
  smartertips store migrate --runs --runs-backend postgresql --runs-db-connect "host=... dbname=..."

  # Rollback to initial state
  smartertips store migrate --target-version 0`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		set, backend, connStr := store.StoreMigrations, cfg.DBBackend, cfg.DBConnect
		if viper.GetBool("runs") {
			set, backend, connStr = store.RunMigrations, cfg.RunsBackend, cfg.RunsDBConnect
		}
		msg, err := store.Migrate(set, backend, connStr, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(msg)
	},
}

// storeExportCmd exports models and run history to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export models and retrain history to Parquet",
	Long: `Export fit headers and coefficients, plus retrain runs and outcomes when run
tracking is enabled, to Parquet files prefixed by --output-file.

Requires: --output-file parameter

Examples:
  smartertips store export --output-file models
  duckdb -c "SELECT * FROM read_parquet('models.usage_model_coefficients.parquet') LIMIT 10"`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ExecuteExport(rootCtx, store.Manager, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export data", err)
		}
	},
}
