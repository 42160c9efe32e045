package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// Table names for fitted usage models.
const (
	fitsTable         = "usage_model_fits"
	coefficientsTable = "usage_model_coefficients"
)

var (
	fitColumns = []string{
		"player", "model_version", "team", "baseline_usage", "games_used",
		"r_squared", "condition_number", "low_confidence", "dropped_teammates", "updated_at",
	}
	coefficientColumns = []string{
		"player", "teammate", "model_version", "team", "usage_delta", "baseline_usage",
		"p_value", "games_used", "r_squared", "low_confidence", "updated_at",
	}
)

// CoefficientStoreImpl persists fit headers and teammate coefficients.
type CoefficientStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.CoefficientStore = &CoefficientStoreImpl{} // Compile-time check

// NewCoefficientStore opens the model tables on the given backend.
func NewCoefficientStore(backend schema.DatabaseBackend, connStr string) (*CoefficientStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &CoefficientStoreImpl{backend: backend, now: time.Now}, nil
	}

	db, err := openDB(backend, connStr, contract.GetDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := execAll(db, modelTableQueries(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create model tables: %w", err)
	}
	return &CoefficientStoreImpl{db: db, backend: backend, now: time.Now}, nil
}

// modelTableQueries returns the CREATE statements for the model tables and their indexes.
func modelTableQueries(backend schema.DatabaseBackend) []string {
	fits := quoteTableName(fitsTable, backend)
	coefs := quoteTableName(coefficientsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				player VARCHAR(128) NOT NULL,
				model_version VARCHAR(64) NOT NULL,
				team VARCHAR(64) NOT NULL,
				baseline_usage DOUBLE NOT NULL,
				games_used INT NOT NULL,
				r_squared DOUBLE NOT NULL,
				condition_number DOUBLE NOT NULL,
				low_confidence SMALLINT NOT NULL DEFAULT 0,
				dropped_teammates TEXT,
				updated_at DATETIME(6) NOT NULL,
				PRIMARY KEY (player, model_version),
				INDEX idx_usage_model_fits_team (team)
			)`, fits),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				player VARCHAR(128) NOT NULL,
				teammate VARCHAR(128) NOT NULL,
				model_version VARCHAR(64) NOT NULL,
				team VARCHAR(64) NOT NULL,
				usage_delta DOUBLE NOT NULL,
				baseline_usage DOUBLE NOT NULL,
				p_value DOUBLE NOT NULL,
				games_used INT NOT NULL,
				r_squared DOUBLE NOT NULL,
				low_confidence SMALLINT NOT NULL DEFAULT 0,
				updated_at DATETIME(6) NOT NULL,
				PRIMARY KEY (player, teammate, model_version),
				INDEX idx_usage_model_coefficients_team (team),
				INDEX idx_usage_model_coefficients_target (player, model_version)
			)`, coefs),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				player TEXT NOT NULL,
				model_version TEXT NOT NULL,
				team TEXT NOT NULL,
				baseline_usage DOUBLE PRECISION NOT NULL,
				games_used INT NOT NULL,
				r_squared DOUBLE PRECISION NOT NULL,
				condition_number DOUBLE PRECISION NOT NULL,
				low_confidence SMALLINT NOT NULL DEFAULT 0,
				dropped_teammates TEXT,
				updated_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (player, model_version)
			)`, fits),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				player TEXT NOT NULL,
				teammate TEXT NOT NULL,
				model_version TEXT NOT NULL,
				team TEXT NOT NULL,
				usage_delta DOUBLE PRECISION NOT NULL,
				baseline_usage DOUBLE PRECISION NOT NULL,
				p_value DOUBLE PRECISION NOT NULL,
				games_used INT NOT NULL,
				r_squared DOUBLE PRECISION NOT NULL,
				low_confidence SMALLINT NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (player, teammate, model_version)
			)`, coefs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_usage_model_fits_team ON %s (team)`, fits),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_usage_model_coefficients_team ON %s (team)`, coefs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_usage_model_coefficients_target ON %s (player, model_version)`, coefs),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				player TEXT NOT NULL,
				model_version TEXT NOT NULL,
				team TEXT NOT NULL,
				baseline_usage REAL NOT NULL,
				games_used INTEGER NOT NULL,
				r_squared REAL NOT NULL,
				condition_number REAL NOT NULL,
				low_confidence INTEGER NOT NULL DEFAULT 0,
				dropped_teammates TEXT,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (player, model_version)
			)`, fits),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				player TEXT NOT NULL,
				teammate TEXT NOT NULL,
				model_version TEXT NOT NULL,
				team TEXT NOT NULL,
				usage_delta REAL NOT NULL,
				baseline_usage REAL NOT NULL,
				p_value REAL NOT NULL,
				games_used INTEGER NOT NULL,
				r_squared REAL NOT NULL,
				low_confidence INTEGER NOT NULL DEFAULT 0,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (player, teammate, model_version)
			)`, coefs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_usage_model_fits_team ON %s (team)`, fits),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_usage_model_coefficients_team ON %s (team)`, coefs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_usage_model_coefficients_target ON %s (player, model_version)`, coefs),
		}
	}
}

func (cs *CoefficientStoreImpl) disabled() bool {
	return cs.backend == schema.NoneBackend || cs.db == nil
}

func (cs *CoefficientStoreImpl) q(query string) string {
	return rebind(query, cs.backend)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Upsert inserts or overwrites a single coefficient row. A missing fit header
// is created from the row. An existing header only takes the row's baseline,
// sample size and R², and a low-confidence flag on it is never cleared.
func (cs *CoefficientStoreImpl) Upsert(ctx context.Context, rec schema.CoefficientRecord) error {
	if cs.disabled() {
		return nil
	}
	now := cs.now()

	tx, err := cs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := cs.mergeFitHeader(ctx, tx, rec, now); err != nil {
		return err
	}
	if err := cs.writeCoefficient(ctx, tx, upsertQuery(coefficientsTable, coefficientColumns, 3, cs.backend), rec, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit coefficient upsert: %w", err)
	}
	return nil
}

// ReplaceAllForTarget atomically swaps the target's fit header and coefficients
// for the fit's model version. On any error the previous set stays intact.
func (cs *CoefficientStoreImpl) ReplaceAllForTarget(ctx context.Context, fit schema.ModelFit) error {
	if cs.disabled() {
		return nil
	}
	now := cs.now()

	tx, err := cs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{coefficientsTable, fitsTable} {
		query := cs.q(fmt.Sprintf(`DELETE FROM %s WHERE player = ? AND model_version = ?`, quoteTableName(table, cs.backend)))
		if _, err := tx.ExecContext(ctx, query, fit.Player, fit.ModelVersion); err != nil {
			return fmt.Errorf("failed to delete previous %s rows for %s: %w", table, fit.Player, err)
		}
	}

	header := schema.FitRecord{
		Player:          fit.Player,
		Team:            fit.Team,
		ModelVersion:    fit.ModelVersion,
		BaselineUsage:   fit.Baseline,
		GamesUsed:       fit.GamesUsed,
		RSquared:        fit.RSquared,
		ConditionNumber: fit.ConditionNumber,
		LowConfidence:   fit.LowConfidence,
		Dropped:         fit.Dropped,
	}
	if err := cs.writeFit(ctx, tx, insertQuery(fitsTable, fitColumns, cs.backend), header, now); err != nil {
		return err
	}

	coefInsert := insertQuery(coefficientsTable, coefficientColumns, cs.backend)
	for _, c := range fit.Coefficients {
		rec := schema.CoefficientRecord{
			Player:        fit.Player,
			Team:          fit.Team,
			Teammate:      c.Teammate,
			ModelVersion:  fit.ModelVersion,
			UsageDelta:    c.Delta,
			BaselineUsage: fit.Baseline,
			PValue:        c.PValue,
			GamesUsed:     fit.GamesUsed,
			RSquared:      fit.RSquared,
			LowConfidence: fit.LowConfidence,
		}
		if err := cs.writeCoefficient(ctx, tx, coefInsert, rec, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit coefficients for %s: %w", fit.Player, err)
	}
	return nil
}

// mergeFitHeader creates or refreshes the fit header behind a single coefficient row.
func (cs *CoefficientStoreImpl) mergeFitHeader(ctx context.Context, tx *sql.Tx, rec schema.CoefficientRecord, now time.Time) error {
	fits := quoteTableName(fitsTable, cs.backend)
	var low int
	err := tx.QueryRowContext(ctx, cs.q(fmt.Sprintf(`SELECT low_confidence FROM %s WHERE player = ? AND model_version = ?`, fits)),
		rec.Player, rec.ModelVersion).Scan(&low)
	if errors.Is(err, sql.ErrNoRows) {
		header := schema.FitRecord{
			Player:        rec.Player,
			Team:          rec.Team,
			ModelVersion:  rec.ModelVersion,
			BaselineUsage: rec.BaselineUsage,
			GamesUsed:     rec.GamesUsed,
			RSquared:      rec.RSquared,
			LowConfidence: rec.LowConfidence,
		}
		return cs.writeFit(ctx, tx, insertQuery(fitsTable, fitColumns, cs.backend), header, now)
	}
	if err != nil {
		return fmt.Errorf("failed to read fit header for %s: %w", rec.Player, err)
	}

	update := cs.q(fmt.Sprintf(`UPDATE %s SET baseline_usage = ?, games_used = ?, r_squared = ?,
		low_confidence = ?, updated_at = ? WHERE player = ? AND model_version = ?`, fits))
	_, err = tx.ExecContext(ctx, update,
		rec.BaselineUsage, rec.GamesUsed, rec.RSquared, boolToInt(low == 1 || rec.LowConfidence),
		formatTime(now, cs.backend), rec.Player, rec.ModelVersion)
	if err != nil {
		return fmt.Errorf("failed to update fit header for %s: %w", rec.Player, err)
	}
	return nil
}

func (cs *CoefficientStoreImpl) writeFit(ctx context.Context, ex execer, query string, f schema.FitRecord, now time.Time) error {
	_, err := ex.ExecContext(ctx, query,
		f.Player, f.ModelVersion, f.Team, f.BaselineUsage, f.GamesUsed,
		f.RSquared, f.ConditionNumber, boolToInt(f.LowConfidence), strings.Join(f.Dropped, ","),
		formatTime(now, cs.backend))
	if err != nil {
		return fmt.Errorf("failed to write fit header for %s: %w", f.Player, err)
	}
	return nil
}

func (cs *CoefficientStoreImpl) writeCoefficient(ctx context.Context, ex execer, query string, r schema.CoefficientRecord, now time.Time) error {
	_, err := ex.ExecContext(ctx, query,
		r.Player, r.Teammate, r.ModelVersion, r.Team, r.UsageDelta, r.BaselineUsage,
		r.PValue, r.GamesUsed, r.RSquared, boolToInt(r.LowConfidence), formatTime(now, cs.backend))
	if err != nil {
		return fmt.Errorf("failed to write coefficient %s/%s: %w", r.Player, r.Teammate, err)
	}
	return nil
}

// insertQuery builds a plain INSERT for the given columns.
func insertQuery(table string, cols []string, backend schema.DatabaseBackend) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(table, backend), strings.Join(cols, ", "), marks), backend)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// LatestVersion returns the most recently updated model version for a target.
func (cs *CoefficientStoreImpl) LatestVersion(ctx context.Context, target string) (string, error) {
	if cs.disabled() {
		return "", sql.ErrNoRows
	}
	return cs.latestVersion(ctx, cs.db, target)
}

func (cs *CoefficientStoreImpl) latestVersion(ctx context.Context, qr queryer, target string) (string, error) {
	query := cs.q(fmt.Sprintf(`SELECT model_version FROM %s WHERE player = ?
		ORDER BY updated_at DESC, model_version DESC LIMIT 1`, quoteTableName(fitsTable, cs.backend)))

	var version string
	if err := qr.QueryRowContext(ctx, query, target).Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

// readTxOptions returns the options for a snapshot read. SQLite runs on a
// single connection and a deferred transaction already reads one snapshot.
func readTxOptions(backend schema.DatabaseBackend) *sql.TxOptions {
	if backend == schema.SQLiteBackend {
		return nil
	}
	return &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
}

// Get returns the stored model for a target, or sql.ErrNoRows when none exists.
// The version lookup, header and coefficients are read in one transaction so
// a concurrent replace is seen either entirely or not at all.
func (cs *CoefficientStoreImpl) Get(ctx context.Context, target, version string) (schema.PlayerModel, error) {
	if cs.disabled() {
		return schema.PlayerModel{}, sql.ErrNoRows
	}

	tx, err := cs.db.BeginTx(ctx, readTxOptions(cs.backend))
	if err != nil {
		return schema.PlayerModel{}, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if version == "" || version == schema.LatestModelVersion {
		latest, err := cs.latestVersion(ctx, tx, target)
		if err != nil {
			return schema.PlayerModel{}, err
		}
		version = latest
	}

	fitQuery := cs.q(fmt.Sprintf(`SELECT %s FROM %s WHERE player = ? AND model_version = ?`,
		strings.Join(fitColumns, ", "), quoteTableName(fitsTable, cs.backend)))
	fit, err := scanFit(tx.QueryRowContext(ctx, fitQuery, target, version))
	if err != nil {
		return schema.PlayerModel{}, err
	}

	coefQuery := cs.q(fmt.Sprintf(`SELECT teammate, usage_delta, p_value FROM %s
		WHERE player = ? AND model_version = ? ORDER BY teammate`, quoteTableName(coefficientsTable, cs.backend)))
	rows, err := tx.QueryContext(ctx, coefQuery, target, version)
	if err != nil {
		return schema.PlayerModel{}, fmt.Errorf("failed to query coefficients for %s: %w", target, err)
	}
	defer func() { _ = rows.Close() }()

	model := schema.PlayerModel{Fit: fit, Coefficients: make(map[string]schema.TeammateCoefficient)}
	for rows.Next() {
		var c schema.TeammateCoefficient
		if err := rows.Scan(&c.Teammate, &c.Delta, &c.PValue); err != nil {
			return schema.PlayerModel{}, fmt.Errorf("failed to scan coefficient: %w", err)
		}
		model.Coefficients[c.Teammate] = c
	}
	if err := rows.Err(); err != nil {
		return schema.PlayerModel{}, fmt.Errorf("error iterating coefficients: %w", err)
	}
	return model, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanFit reads one fit header in fitColumns order.
func scanFit(row rowScanner) (schema.FitRecord, error) {
	var f schema.FitRecord
	var low int
	var dropped sql.NullString
	var updated timeScanner
	if err := row.Scan(&f.Player, &f.ModelVersion, &f.Team, &f.BaselineUsage, &f.GamesUsed,
		&f.RSquared, &f.ConditionNumber, &low, &dropped, &updated); err != nil {
		return f, err
	}
	f.LowConfidence = low == 1
	if dropped.Valid && dropped.String != "" {
		f.Dropped = strings.Split(dropped.String, ",")
	}
	f.UpdatedAt = updated.Time
	return f, nil
}

// ListModels returns a summary of stored models, optionally filtered by team.
func (cs *CoefficientStoreImpl) ListModels(ctx context.Context, team string) ([]schema.ModelSummary, error) {
	if cs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT f.player, f.team, f.model_version, f.baseline_usage, f.games_used,
		f.r_squared, f.low_confidence, f.updated_at,
		(SELECT COUNT(*) FROM %s c WHERE c.player = f.player AND c.model_version = f.model_version)
		FROM %s f`, quoteTableName(coefficientsTable, cs.backend), quoteTableName(fitsTable, cs.backend))
	var args []any
	if team != "" {
		query += ` WHERE f.team = ?`
		args = append(args, team)
	}
	query += ` ORDER BY f.team, f.player, f.model_version`

	rows, err := cs.db.QueryContext(ctx, cs.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ModelSummary
	for rows.Next() {
		var m schema.ModelSummary
		var low int
		var updated timeScanner
		if err := rows.Scan(&m.Player, &m.Team, &m.ModelVersion, &m.BaselineUsage, &m.GamesUsed,
			&m.RSquared, &low, &updated, &m.Teammates); err != nil {
			return nil, fmt.Errorf("failed to scan model summary: %w", err)
		}
		m.LowConfidence = low == 1
		m.UpdatedAt = updated.Time
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}
	return results, nil
}

// GetAllFits returns every stored fit header.
func (cs *CoefficientStoreImpl) GetAllFits(ctx context.Context) ([]schema.FitRecord, error) {
	if cs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY team, player, model_version`,
		strings.Join(fitColumns, ", "), quoteTableName(fitsTable, cs.backend))
	rows, err := cs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FitRecord
	for rows.Next() {
		f, err := scanFit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fit: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fits: %w", err)
	}
	return results, nil
}

// GetAllCoefficients returns every stored coefficient row.
func (cs *CoefficientStoreImpl) GetAllCoefficients(ctx context.Context) ([]schema.CoefficientRecord, error) {
	if cs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY team, player, model_version, teammate`,
		strings.Join(coefficientColumns, ", "), quoteTableName(coefficientsTable, cs.backend))
	rows, err := cs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query coefficients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CoefficientRecord
	for rows.Next() {
		var r schema.CoefficientRecord
		var low int
		var updated timeScanner
		if err := rows.Scan(&r.Player, &r.Teammate, &r.ModelVersion, &r.Team, &r.UsageDelta, &r.BaselineUsage,
			&r.PValue, &r.GamesUsed, &r.RSquared, &low, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan coefficient: %w", err)
		}
		r.LowConfidence = low == 1
		r.UpdatedAt = updated.Time
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coefficients: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the model tables.
func (cs *CoefficientStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(cs.backend),
		Connected:  cs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if cs.disabled() {
		return status, nil
	}

	for _, table := range []string{fitsTable, coefficientsTable} {
		count, err := countRows(cs.db, table, cs.backend)
		if err != nil {
			return status, err
		}
		status.TableSizes[table] = count
	}
	status.Models = int(status.TableSizes[fitsTable])

	if status.Models > 0 {
		var last timeScanner
		query := fmt.Sprintf("SELECT MAX(updated_at) FROM %s", quoteTableName(fitsTable, cs.backend))
		if err := cs.db.QueryRow(query).Scan(&last); err != nil {
			return status, fmt.Errorf("failed to get last model time: %w", err)
		}
		status.LastModelTime = last.Time
	}

	if cs.backend == schema.SQLiteBackend {
		status.DatabaseSizeKB = sqliteSizeKB(cs.db)
	}
	return status, nil
}

// Close closes the underlying connection.
func (cs *CoefficientStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}
