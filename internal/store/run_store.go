package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/google/uuid"
)

// Table names for retrain run tracking.
const (
	runsTable     = "retrain_runs"
	outcomesTable = "retrain_outcomes"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := execAll(db, runTableQueries(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// runTableQueries returns the CREATE statements for the run tracking tables.
func runTableQueries(backend schema.DatabaseBackend) []string {
	runs := quoteTableName(runsTable, backend)
	outcomes := quoteTableName(outcomesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_targets INT NOT NULL DEFAULT 0,
				trained INT NOT NULL DEFAULT 0,
				skipped INT NOT NULL DEFAULT 0,
				failed INT NOT NULL DEFAULT 0,
				coefficients_written INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, runs),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				team VARCHAR(64) NOT NULL,
				player VARCHAR(128) NOT NULL,
				status VARCHAR(32) NOT NULL,
				games_used INT NOT NULL DEFAULT 0,
				coefficients INT NOT NULL DEFAULT 0,
				message TEXT,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, team, player)
			)`, outcomes),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_targets INT NOT NULL DEFAULT 0,
				trained INT NOT NULL DEFAULT 0,
				skipped INT NOT NULL DEFAULT 0,
				failed INT NOT NULL DEFAULT 0,
				coefficients_written INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, runs),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				team TEXT NOT NULL,
				player TEXT NOT NULL,
				status TEXT NOT NULL,
				games_used INT NOT NULL DEFAULT 0,
				coefficients INT NOT NULL DEFAULT 0,
				message TEXT,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, team, player)
			)`, outcomes),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_targets INTEGER NOT NULL DEFAULT 0,
				trained INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				coefficients_written INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			)`, runs),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				team TEXT NOT NULL,
				player TEXT NOT NULL,
				status TEXT NOT NULL,
				games_used INTEGER NOT NULL DEFAULT 0,
				coefficients INTEGER NOT NULL DEFAULT 0,
				message TEXT,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, team, player)
			)`, outcomes),
		}
	}
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new retrain run and returns its numeric ID and UUID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, string, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return 0, "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runUUID := uuid.NewString()
	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, runUUID, formatTime(startTime, rs.backend), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, runUUID, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert retrain run: %w", err)
	}

	return runID, runUUID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RetrainSummary) error {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var startTime timeScanner
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), rs.backend)
	if err := rs.db.QueryRow(query, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_targets = ?,
		trained = ?, skipped = ?, failed = ?, coefficients_written = ? WHERE run_id = ?`, quotedTableName), rs.backend)
	_, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, summary.TotalTargets,
		summary.Trained, summary.Skipped, summary.Failed, summary.CoefficientsWritten, runID)
	if err != nil {
		return fmt.Errorf("failed to update retrain run: %w", err)
	}

	return nil
}

// RecordOutcome stores the result of retraining one target.
func (rs *RunStoreImpl) RecordOutcome(runID int64, outcome schema.TrainOutcome) error {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil
	}

	var message *string
	if outcome.Message != "" {
		message = &outcome.Message
	}

	query := upsertQuery(outcomesTable,
		[]string{"run_id", "team", "player", "status", "games_used", "coefficients", "message", "recorded_at"},
		3, rs.backend)
	_, err := rs.db.Exec(query, runID, outcome.Team, outcome.Player, string(outcome.Status),
		outcome.GamesUsed, outcome.Coefficients, message, formatTime(time.Now(), rs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert retrain outcome: %w", err)
	}

	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// Get total runs
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		var lastRunTime timeScanner
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id, run_uuid, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName))
		if err := row.Scan(&status.LastRunID, &status.LastRunUUID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime.Time

		// Get oldest run time
		var oldestRunTime timeScanner
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedTableName))
		if err := row.Scan(&oldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime.Time

		// Get total trained targets
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(trained), 0) FROM %s", quotedTableName))
		if err := row.Scan(&status.TotalTrained); err != nil {
			return status, fmt.Errorf("failed to get total trained: %w", err)
		}
	}

	// Get table sizes
	for _, table := range []string{runsTable, outcomesTable} {
		count, err := countRows(rs.db, table, rs.backend)
		if err != nil {
			return status, err
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all retrain runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, total_targets,
		trained, skipped, failed, coefficients_written, config_params FROM %s ORDER BY run_id`,
		quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query retrain runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var startTime, endTime timeScanner
		if err := rows.Scan(&record.RunID, &record.RunUUID, &startTime, &endTime, &record.RunDurationMs,
			&record.TotalTargets, &record.Trained, &record.Skipped, &record.Failed,
			&record.CoefficientsWritten, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan retrain run: %w", err)
		}
		record.StartTime = startTime.Time
		if endTime.Valid {
			t := endTime.Time
			record.EndTime = &t
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retrain runs: %w", err)
	}

	return results, nil
}

// GetAllOutcomes retrieves all recorded per-target outcomes.
func (rs *RunStoreImpl) GetAllOutcomes() ([]schema.OutcomeRecord, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, team, player, status, games_used, coefficients, message, recorded_at
		FROM %s ORDER BY run_id, team, player`, quoteTableName(outcomesTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query retrain outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.OutcomeRecord
	for rows.Next() {
		var record schema.OutcomeRecord
		var status string
		var recordedAt timeScanner
		if err := rows.Scan(&record.RunID, &record.Team, &record.Player, &status, &record.GamesUsed,
			&record.Coefficients, &record.Message, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan retrain outcome: %w", err)
		}
		record.Status = schema.OutcomeStatus(status)
		record.RecordedAt = recordedAt.Time
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retrain outcomes: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
