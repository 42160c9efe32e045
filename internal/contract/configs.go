package contract

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit         = 25
	MaxResultLimit             = 1000
	DefaultPrecision           = 2
	DefaultMinMPG              = 22.0
	DefaultMinGamesMissed      = 3
	DefaultMinGamesPlayed      = 3
	DefaultMinSample           = 10
	DefaultMaxConditionNumber  = 1e6
	DefaultHighConfidenceGames = 15
	DefaultScheduleInterval    = 24 * time.Hour
)

// DateTimeFormat is the layout for timestamps in human-readable output.
var DateTimeFormat = time.RFC3339

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	DBBackend schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	ModelVersion        string
	Thresholds          schema.Thresholds
	MaxConditionNumber  float64
	HighConfidenceGames int

	// Team is the canonical team key selected with --team, if any.
	Team string

	// Player is the normalized target taken from a positional argument.
	Player string

	// Absent is the normalized absent set selected with --absent.
	Absent []string

	ScheduleInterval time.Duration
	MetricsPort      int
	OTLPEndpoint     string
	OTLPInsecure     bool

	LogLevel slog.Level
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile    string `mapstructure:"output-file"`
	Limit         int    `mapstructure:"limit"`
	Workers       int    `mapstructure:"workers"`
	Precision     int    `mapstructure:"precision"`
	Output        string `mapstructure:"output"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	DBBackend     string `mapstructure:"db-backend"`
	DBConnect     string `mapstructure:"db-connect"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`
	ModelVersion  string `mapstructure:"model-version"`
	LogLevel      string `mapstructure:"log-level"`

	// --- Model thresholds ---
	MinMPG              float64 `mapstructure:"min-mpg"`
	MinGamesMissed      int     `mapstructure:"min-games-missed"`
	MinGamesPlayed      int     `mapstructure:"min-games-played"`
	MinSample           int     `mapstructure:"min-sample"`
	MaxCondition        float64 `mapstructure:"max-condition"`
	HighConfidenceGames int     `mapstructure:"high-confidence-games"`

	// --- Fields from subcommand flags ---
	Team   string `mapstructure:"team"`
	Absent string `mapstructure:"absent"`

	// --- Fields from scheduleCmd.Flags() ---
	Every        string `mapstructure:"every"`
	MetricsPort  int    `mapstructure:"metrics-port"`
	OTLPEndpoint string `mapstructure:"otlp-endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp-insecure"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Absent != nil {
		clone.Absent = make([]string, len(c.Absent))
		copy(clone.Absent, c.Absent)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := processSelection(cfg, input); err != nil {
		return err
	}
	if err := processSchedule(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the league and run-tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.DBBackend = schema.DatabaseBackend(strings.ToLower(input.DBBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DBBackend]; !ok {
		return fmt.Errorf("invalid db backend '%s'. must be sqlite, mysql, postgresql, none", input.DBBackend)
	}
	cfg.DBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.DBBackend, cfg.DBConnect); err != nil {
		return err
	}

	// Run tracking is optional; an empty backend disables it.
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	if cfg.DBBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		dbPath := cfg.DBConnect
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if dbPath == runsPath && dbPath != ":memory:" {
			return fmt.Errorf("league and run storage must use different SQLite database files. Both resolve to %q", dbPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the presentation and execution fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 3 {
		return fmt.Errorf("precision must be between 1 and 3 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	cfg.ModelVersion = strings.TrimSpace(input.ModelVersion)
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = schema.DefaultModelVersion
	}
	return nil
}

// processThresholds copies the qualification and fit thresholds into the config.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	if input.MinMPG < 0 {
		return fmt.Errorf("min-mpg cannot be negative (received %.2f)", input.MinMPG)
	}
	if input.MinGamesMissed < 0 {
		return fmt.Errorf("min-games-missed cannot be negative (received %d)", input.MinGamesMissed)
	}
	if input.MinGamesPlayed < 0 {
		return fmt.Errorf("min-games-played cannot be negative (received %d)", input.MinGamesPlayed)
	}
	if input.MinSample < 2 {
		return fmt.Errorf("min-sample must be at least 2 (received %d)", input.MinSample)
	}
	if input.MaxCondition <= 1 {
		return fmt.Errorf("max-condition must be greater than 1 (received %g)", input.MaxCondition)
	}
	if input.HighConfidenceGames < 0 {
		return fmt.Errorf("high-confidence-games cannot be negative (received %d)", input.HighConfidenceGames)
	}

	cfg.Thresholds = schema.Thresholds{
		MinMPG:         input.MinMPG,
		MinGamesMissed: input.MinGamesMissed,
		MinGamesPlayed: input.MinGamesPlayed,
		MinSample:      input.MinSample,
	}
	cfg.MaxConditionNumber = input.MaxCondition
	cfg.HighConfidenceGames = input.HighConfidenceGames
	return nil
}

// processSelection resolves the --team and --absent selections.
func processSelection(cfg *Config, input *ConfigRawInput) error {
	cfg.Team = ""
	if strings.TrimSpace(input.Team) != "" {
		team, ok := schema.LookupTeam(input.Team)
		if !ok {
			return fmt.Errorf("unknown team '%s'. run 'smartertips teams' for the list of keys", input.Team)
		}
		cfg.Team = team.Key
	}

	cfg.Absent = nil
	seen := make(map[string]bool)
	for part := range strings.SplitSeq(input.Absent, ",") {
		name := schema.NormalizeName(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cfg.Absent = append(cfg.Absent, name)
	}
	return nil
}

// RevalidateSelection re-resolves the team and absent selection on a cloned
// config, for callers that bypass the viper pipeline such as the MCP server.
func RevalidateSelection(cfg *Config, team, absent string) error {
	return processSelection(cfg, &ConfigRawInput{Team: team, Absent: absent})
}

// processSchedule handles the schedule interval and telemetry options.
func processSchedule(cfg *Config, input *ConfigRawInput) error {
	cfg.ScheduleInterval = DefaultScheduleInterval
	if input.Every != "" {
		every, err := time.ParseDuration(input.Every)
		if err != nil {
			return fmt.Errorf("invalid --every value '%s': %w", input.Every, err)
		}
		if every < time.Minute {
			return fmt.Errorf("--every must be at least 1m (received %s)", every)
		}
		cfg.ScheduleInterval = every
	}

	if input.MetricsPort < 0 || input.MetricsPort > 65535 {
		return fmt.Errorf("metrics-port must be between 0 and 65535 (received %d)", input.MetricsPort)
	}
	cfg.MetricsPort = input.MetricsPort
	cfg.OTLPEndpoint = strings.TrimSpace(input.OTLPEndpoint)
	cfg.OTLPInsecure = input.OTLPInsecure
	return nil
}

// ConfigParams returns the run parameters recorded with each tracked retrain run.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"model_version":         c.ModelVersion,
		"min_mpg":               c.Thresholds.MinMPG,
		"min_games_missed":      c.Thresholds.MinGamesMissed,
		"min_games_played":      c.Thresholds.MinGamesPlayed,
		"min_sample":            c.Thresholds.MinSample,
		"max_condition":         c.MaxConditionNumber,
		"high_confidence_games": c.HighConfidenceGames,
		"workers":               c.Workers,
	}
	if c.Team != "" {
		params["team"] = c.Team
	}
	return params
}
