package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const (
	// sqliteBusyTimeout is appended to SQLite DSNs that carry no options.
	sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

	// sqliteTimeLayout keeps a fixed width so text timestamps sort chronologically.
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName ensures the table name is safe to interpolate.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func rebind(query string, backend schema.DatabaseBackend) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// driverFor returns the database/sql driver name of a backend.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// sqliteDSN returns the SQLite DSN for a path, adding a busy timeout.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteBusyTimeout
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(connStr string, multiStatements bool) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = multiStatements
	return cfg.FormatDSN(), nil
}

// openDB opens and pings a database for the backend. defaultPath is used for
// SQLite when connStr is empty.
func openDB(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	dsn := connStr
	switch backend {
	case schema.SQLiteBackend:
		if dsn == "" {
			dsn = defaultPath
		}
		dsn = sqliteDSN(dsn)
	case schema.MySQLBackend:
		if dsn, err = mysqlDSN(connStr, false); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Check that the directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// execAll runs each statement in order.
func execAll(db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t.UTC()
	}
}

// timeScanner scans a timestamp column regardless of backend storage.
type timeScanner struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (ts *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v, true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts *timeScanner) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	ts.Time, ts.Valid = t, true
	return nil
}

// formatDate renders a game date as YYYY-MM-DD.
func formatDate(t time.Time) string {
	return t.Format(schema.GameDateLayout)
}

// parseDate parses a stored YYYY-MM-DD game date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(schema.GameDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse game date %q: %w", s, err)
	}
	return t, nil
}

// boolToInt maps a flag onto the SMALLINT 0/1 column encoding.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// countRows returns the number of rows in a table.
func countRows(db *sql.DB, table string, backend schema.DatabaseBackend) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, backend))
	if err := db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get count for table %s: %w", table, err)
	}
	return count, nil
}

// sqliteSizeKB returns the SQLite database size in KiB, or 0 when unavailable.
func sqliteSizeKB(db *sql.DB) int64 {
	var size int64
	row := db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	if err := row.Scan(&size); err != nil {
		return 0
	}
	return size / 1024
}

// upsertQuery builds the backend-specific insert-or-overwrite statement for
// the given columns. keyCols must be a prefix of cols.
func upsertQuery(table string, cols []string, keyCols int, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)
	colList := strings.Join(cols, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	switch backend {
	case schema.MySQLBackend:
		sets := make([]string, 0, len(cols)-keyCols)
		for _, c := range cols[keyCols:] {
			sets = append(sets, fmt.Sprintf("%s = new.%s", c, c))
		}
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE %s`, quoted, colList, marks, strings.Join(sets, ", "))

	case schema.PostgreSQLBackend:
		sets := make([]string, 0, len(cols)-keyCols)
		for _, c := range cols[keyCols:] {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
		return rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (%s) DO UPDATE SET %s`, quoted, colList, marks,
			strings.Join(cols[:keyCols], ", "), strings.Join(sets, ", ")), backend)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quoted, colList, marks)
	}
}
