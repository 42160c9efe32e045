package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/NoahAizen44/SmarterTips/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the league, coefficient and run stores.
// The league and coefficient stores share dbBackend/dbConnStr. runsBackend can be
// empty or none to disable run tracking.
func InitStores(dbBackend schema.DatabaseBackend, dbConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		league, err := NewLeagueStore(dbBackend, dbConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize league store: %w", err)
			return
		}

		coefficients, err := NewCoefficientStore(dbBackend, dbConnStr)
		if err != nil {
			_ = league.Close()
			initErr = fmt.Errorf("failed to initialize coefficient store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.league = league
		Manager.coefficients = coefficients

		if runsBackend == "" || runsBackend == schema.NoneBackend {
			return
		}
		runs, err := NewRunStore(runsBackend, runsConnStr)
		if err != nil {
			_ = league.Close()
			_ = coefficients.Close()
			Manager.league, Manager.coefficients = nil, nil
			initErr = fmt.Errorf("failed to initialize run store: %w", err)
			return
		}
		Manager.runs = runs
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.league != nil {
			_ = Manager.league.Close()
		}
		if Manager.coefficients != nil {
			_ = Manager.coefficients.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearStore clears league data and fitted models for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr,
		[]string{coefficientsTable, fitsTable, usageTable, participationTable, gamesTable, storeMigrationsTable})
}

// ClearRuns clears retrain run history for the specified backend.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr,
		[]string{outcomesTable, runsTable, runsMigrationsTable})
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables []string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if dbFilePath == ":memory:" || strings.HasPrefix(dbFilePath, "file::memory:") {
			return nil
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropTables(backend, connStr, tables)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropTables connects to the SQL database and drops the tables if they exist.
func dropTables(backend schema.DatabaseBackend, connStr string, tables []string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	if backend == schema.MySQLBackend {
		if connStr, err = mysqlDSN(connStr, false); err != nil {
			return err
		}
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
