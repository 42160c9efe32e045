package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// Table names for league data.
const (
	gamesTable         = "games"
	participationTable = "participation"
	usageTable         = "usage_observations"
)

var (
	gameColumns          = []string{"team", "game_date", "game_id", "opponent", "home", "result", "team_score", "opponent_score"}
	participationColumns = []string{"team", "player", "game_date", "played"}
	usageColumns         = []string{"team", "player", "game_date", "minutes", "usage_pct"}
)

// LeagueStoreImpl reads and writes games, participation facts and usage observations.
type LeagueStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.LeagueStore = &LeagueStoreImpl{} // Compile-time check

// NewLeagueStore opens the league tables on the given backend.
func NewLeagueStore(backend schema.DatabaseBackend, connStr string) (*LeagueStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &LeagueStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := execAll(db, leagueTableQueries(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create league tables: %w", err)
	}
	return &LeagueStoreImpl{db: db, backend: backend}, nil
}

// leagueTableQueries returns the CREATE statements for the league tables.
func leagueTableQueries(backend schema.DatabaseBackend) []string {
	games := quoteTableName(gamesTable, backend)
	participation := quoteTableName(participationTable, backend)
	usage := quoteTableName(usageTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team VARCHAR(64) NOT NULL,
				game_date VARCHAR(10) NOT NULL,
				game_id VARCHAR(32) NOT NULL DEFAULT '',
				opponent VARCHAR(64) NOT NULL DEFAULT '',
				home SMALLINT NOT NULL DEFAULT 0,
				result VARCHAR(1) NOT NULL DEFAULT '',
				team_score INT NOT NULL DEFAULT 0,
				opponent_score INT NOT NULL DEFAULT 0,
				PRIMARY KEY (team, game_date)
			)`, games),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team VARCHAR(64) NOT NULL,
				player VARCHAR(128) NOT NULL,
				game_date VARCHAR(10) NOT NULL,
				played SMALLINT NOT NULL DEFAULT 0,
				PRIMARY KEY (team, player, game_date)
			)`, participation),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team VARCHAR(64) NOT NULL,
				player VARCHAR(128) NOT NULL,
				game_date VARCHAR(10) NOT NULL,
				minutes DOUBLE NOT NULL DEFAULT 0,
				usage_pct DOUBLE NOT NULL DEFAULT 0,
				PRIMARY KEY (team, player, game_date)
			)`, usage),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team TEXT NOT NULL,
				game_date TEXT NOT NULL,
				game_id TEXT NOT NULL DEFAULT '',
				opponent TEXT NOT NULL DEFAULT '',
				home SMALLINT NOT NULL DEFAULT 0,
				result TEXT NOT NULL DEFAULT '',
				team_score INT NOT NULL DEFAULT 0,
				opponent_score INT NOT NULL DEFAULT 0,
				PRIMARY KEY (team, game_date)
			)`, games),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team TEXT NOT NULL,
				player TEXT NOT NULL,
				game_date TEXT NOT NULL,
				played SMALLINT NOT NULL DEFAULT 0,
				PRIMARY KEY (team, player, game_date)
			)`, participation),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team TEXT NOT NULL,
				player TEXT NOT NULL,
				game_date TEXT NOT NULL,
				minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
				usage_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
				PRIMARY KEY (team, player, game_date)
			)`, usage),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team TEXT NOT NULL,
				game_date TEXT NOT NULL,
				game_id TEXT NOT NULL DEFAULT '',
				opponent TEXT NOT NULL DEFAULT '',
				home INTEGER NOT NULL DEFAULT 0,
				result TEXT NOT NULL DEFAULT '',
				team_score INTEGER NOT NULL DEFAULT 0,
				opponent_score INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (team, game_date)
			)`, games),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team TEXT NOT NULL,
				player TEXT NOT NULL,
				game_date TEXT NOT NULL,
				played INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (team, player, game_date)
			)`, participation),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				team TEXT NOT NULL,
				player TEXT NOT NULL,
				game_date TEXT NOT NULL,
				minutes REAL NOT NULL DEFAULT 0,
				usage_pct REAL NOT NULL DEFAULT 0,
				PRIMARY KEY (team, player, game_date)
			)`, usage),
		}
	}
}

func (ls *LeagueStoreImpl) disabled() bool {
	return ls.backend == schema.NoneBackend || ls.db == nil
}

func (ls *LeagueStoreImpl) q(query string) string {
	return rebind(query, ls.backend)
}

// UpsertGame inserts or overwrites the game keyed by (team, game_date).
func (ls *LeagueStoreImpl) UpsertGame(ctx context.Context, game schema.Game) error {
	if ls.disabled() {
		return nil
	}
	query := upsertQuery(gamesTable, gameColumns, 2, ls.backend)
	_, err := ls.db.ExecContext(ctx, query,
		game.Team, formatDate(game.GameDate), game.GameID, game.Opponent,
		boolToInt(game.Home), game.Result, game.TeamScore, game.OpponentScore)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s %s: %w", game.Team, formatDate(game.GameDate), err)
	}
	return nil
}

// RecordParticipation inserts or overwrites the played flag for (team, player, date).
func (ls *LeagueStoreImpl) RecordParticipation(ctx context.Context, team, player string, date time.Time, played bool) error {
	if ls.disabled() {
		return nil
	}
	query := upsertQuery(participationTable, participationColumns, 3, ls.backend)
	if _, err := ls.db.ExecContext(ctx, query, team, player, formatDate(date), boolToInt(played)); err != nil {
		return fmt.Errorf("failed to record participation for %s: %w", player, err)
	}
	return nil
}

// UpsertUsage inserts or overwrites the usage observation for (team, player, date).
func (ls *LeagueStoreImpl) UpsertUsage(ctx context.Context, obs schema.UsageObservation) error {
	if ls.disabled() {
		return nil
	}
	query := upsertQuery(usageTable, usageColumns, 3, ls.backend)
	_, err := ls.db.ExecContext(ctx, query, obs.Team, obs.Player, formatDate(obs.GameDate), obs.Minutes, obs.UsagePct)
	if err != nil {
		return fmt.Errorf("failed to upsert usage for %s: %w", obs.Player, err)
	}
	return nil
}

// CountTeamGames returns the number of distinct game dates recorded for a team,
// whether they come from the schedule or from participation facts.
func (ls *LeagueStoreImpl) CountTeamGames(ctx context.Context, team string) (int, error) {
	if ls.disabled() {
		return 0, nil
	}
	query := ls.q(fmt.Sprintf(`SELECT COUNT(*) FROM (
		SELECT game_date FROM %s WHERE team = ?
		UNION
		SELECT game_date FROM %s WHERE team = ?
	) d`, quoteTableName(gamesTable, ls.backend), quoteTableName(participationTable, ls.backend)))

	var count int
	if err := ls.db.QueryRowContext(ctx, query, team, team).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games for %s: %w", team, err)
	}
	return count, nil
}

// GetPlayerAggregates returns games played and average minutes per player on a team.
// Minutes are averaged over played games; a missing usage row counts as zero.
func (ls *LeagueStoreImpl) GetPlayerAggregates(ctx context.Context, team string) ([]schema.PlayerAggregate, error) {
	if ls.disabled() {
		return nil, nil
	}
	query := ls.q(fmt.Sprintf(`SELECT p.player, COUNT(*), AVG(COALESCE(u.minutes, 0))
		FROM %s p
		LEFT JOIN %s u ON u.team = p.team AND u.player = p.player AND u.game_date = p.game_date
		WHERE p.team = ? AND p.played = 1
		GROUP BY p.player
		ORDER BY p.player`, quoteTableName(participationTable, ls.backend), quoteTableName(usageTable, ls.backend)))

	rows, err := ls.db.QueryContext(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("failed to query player aggregates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PlayerAggregate
	for rows.Next() {
		var agg schema.PlayerAggregate
		if err := rows.Scan(&agg.Player, &agg.GamesPlayed, &agg.AvgMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan player aggregate: %w", err)
		}
		results = append(results, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player aggregates: %w", err)
	}
	return results, nil
}

// GetTrainingRows returns the games the target played, ordered by date, with
// an absence flag for every requested teammate. A teammate without a played
// fact on a date counts as absent.
func (ls *LeagueStoreImpl) GetTrainingRows(ctx context.Context, team, target string, teammates []string) ([]schema.TrainingRow, error) {
	if ls.disabled() {
		return nil, nil
	}

	targetQuery := ls.q(fmt.Sprintf(`SELECT p.game_date, COALESCE(u.usage_pct, 0)
		FROM %s p
		LEFT JOIN %s u ON u.team = p.team AND u.player = p.player AND u.game_date = p.game_date
		WHERE p.team = ? AND p.player = ? AND p.played = 1
		ORDER BY p.game_date`, quoteTableName(participationTable, ls.backend), quoteTableName(usageTable, ls.backend)))

	rows, err := ls.db.QueryContext(ctx, targetQuery, team, target)
	if err != nil {
		return nil, fmt.Errorf("failed to query training rows for %s: %w", target, err)
	}
	var dates []string
	var usages []float64
	for rows.Next() {
		var date string
		var usage float64
		if err := rows.Scan(&date, &usage); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}
		dates = append(dates, date)
		usages = append(usages, usage)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating training rows: %w", err)
	}
	_ = rows.Close()

	played, err := ls.playedDates(ctx, team, teammates)
	if err != nil {
		return nil, err
	}

	results := make([]schema.TrainingRow, 0, len(dates))
	for i, date := range dates {
		gameDate, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		absent := make(map[string]bool, len(teammates))
		for _, tm := range teammates {
			absent[tm] = !played[tm][date]
		}
		results = append(results, schema.TrainingRow{GameDate: gameDate, Usage: usages[i], Absent: absent})
	}
	return results, nil
}

// playedDates returns the set of dates each listed player played.
func (ls *LeagueStoreImpl) playedDates(ctx context.Context, team string, players []string) (map[string]map[string]bool, error) {
	wanted := make(map[string]bool, len(players))
	for _, p := range players {
		wanted[p] = true
	}

	query := ls.q(fmt.Sprintf(`SELECT player, game_date FROM %s WHERE team = ? AND played = 1`,
		quoteTableName(participationTable, ls.backend)))
	rows, err := ls.db.QueryContext(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("failed to query participation: %w", err)
	}
	defer func() { _ = rows.Close() }()

	played := make(map[string]map[string]bool, len(players))
	for rows.Next() {
		var player, date string
		if err := rows.Scan(&player, &date); err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		if !wanted[player] {
			continue
		}
		if played[player] == nil {
			played[player] = make(map[string]bool)
		}
		played[player][date] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participation: %w", err)
	}
	return played, nil
}

// GetUsageSplits returns every played game of every other player on the team,
// joined with whether the reference player played that date.
func (ls *LeagueStoreImpl) GetUsageSplits(ctx context.Context, team, reference string) ([]schema.SplitRow, error) {
	if ls.disabled() {
		return nil, nil
	}
	participation := quoteTableName(participationTable, ls.backend)
	query := ls.q(fmt.Sprintf(`SELECT p.player, p.game_date, COALESCE(u.usage_pct, 0), COALESCE(r.played, 0)
		FROM %s p
		LEFT JOIN %s u ON u.team = p.team AND u.player = p.player AND u.game_date = p.game_date
		LEFT JOIN %s r ON r.team = p.team AND r.game_date = p.game_date AND r.player = ?
		WHERE p.team = ? AND p.played = 1 AND p.player <> ?
		ORDER BY p.player, p.game_date`, participation, quoteTableName(usageTable, ls.backend), participation))

	rows, err := ls.db.QueryContext(ctx, query, reference, team, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage splits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SplitRow
	for rows.Next() {
		var row schema.SplitRow
		var date string
		var refPlayed int
		if err := rows.Scan(&row.Player, &date, &row.UsagePct, &refPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan usage split: %w", err)
		}
		if row.GameDate, err = parseDate(date); err != nil {
			return nil, err
		}
		row.ReferencePlayed = refPlayed == 1
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage splits: %w", err)
	}
	return results, nil
}

// ListTeams returns the teams that have at least one recorded game or participation fact.
func (ls *LeagueStoreImpl) ListTeams(ctx context.Context) ([]string, error) {
	if ls.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT team FROM %s UNION SELECT team FROM %s ORDER BY 1`,
		quoteTableName(gamesTable, ls.backend), quoteTableName(participationTable, ls.backend))
	rows, err := ls.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}
	return teams, nil
}

// GetStatus returns status information about the league tables.
func (ls *LeagueStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(ls.backend),
		Connected:  ls.db != nil,
		TableSizes: make(map[string]int64),
	}
	if ls.disabled() {
		return status, nil
	}

	teams, err := ls.ListTeams(context.Background())
	if err != nil {
		return status, err
	}
	status.Teams = len(teams)

	for _, table := range []string{gamesTable, participationTable, usageTable} {
		count, err := countRows(ls.db, table, ls.backend)
		if err != nil {
			return status, err
		}
		status.TableSizes[table] = count
	}
	status.Games = int(status.TableSizes[gamesTable])

	if ls.backend == schema.SQLiteBackend {
		status.DatabaseSizeKB = sqliteSizeKB(ls.db)
	}
	return status, nil
}

// Close closes the underlying connection.
func (ls *LeagueStoreImpl) Close() error {
	if ls.db != nil {
		return ls.db.Close()
	}
	return nil
}
