// Package cmd defines the command-line interface for smartertips.
package cmd

import (
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(qualifyCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the models subcommands to the parent models command
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsShowCmd)

	// Add the record subcommands to the parent record command
	recordCmd.AddCommand(recordGameCmd)
	recordCmd.AddCommand(recordBoxScoreCmd)
	recordCmd.AddCommand(recordDNPCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Diagnostic log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for the store (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Retrain run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from db-connect)")
	rootCmd.PersistentFlags().String("model-version", schema.DefaultModelVersion, "Model version tag to fit or read ('latest' reads the newest)")
	rootCmd.PersistentFlags().StringP("team", "t", "", "Team key, abbreviation or name")
	rootCmd.PersistentFlags().StringP("absent", "a", "", "Comma-separated list of absent teammates")
	rootCmd.PersistentFlags().Float64("min-mpg", contract.DefaultMinMPG, "Minimum average minutes per played game to qualify")
	rootCmd.PersistentFlags().Int("min-games-missed", contract.DefaultMinGamesMissed, "Games missed must exceed this to qualify")
	rootCmd.PersistentFlags().Int("min-games-played", contract.DefaultMinGamesPlayed, "Minimum games played to qualify (0 disables)")
	rootCmd.PersistentFlags().Int("min-sample", contract.DefaultMinSample, "Minimum played games needed to fit a model")
	rootCmd.PersistentFlags().Float64("max-condition", contract.DefaultMaxConditionNumber, "Condition number above which a fit is flagged low confidence")
	rootCmd.PersistentFlags().Int("high-confidence-games", contract.DefaultHighConfidenceGames, "Minimum games used for a High confidence prediction")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind the date shared by all record subcommands
	recordCmd.PersistentFlags().String("date", "", "Game date (YYYY-MM-DD)")
	if err := viper.BindPFlags(recordCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding record flags", err)
	}

	// Bind all flags of recordGameCmd to Viper
	recordGameCmd.Flags().String("game-id", "", "Source game identifier")
	recordGameCmd.Flags().String("opponent", "", "Opponent team key, abbreviation or name")
	recordGameCmd.Flags().Bool("home", false, "The team played at home")
	recordGameCmd.Flags().String("result", "", "Game result: W or L")
	recordGameCmd.Flags().Int("team-score", 0, "Points scored by the team")
	recordGameCmd.Flags().Int("opponent-score", 0, "Points scored by the opponent")
	if err := viper.BindPFlags(recordGameCmd.Flags()); err != nil {
		contract.LogFatal("Error binding record game flags", err)
	}

	// Bind all flags of recordBoxScoreCmd to Viper
	recordBoxScoreCmd.Flags().Float64("fga", 0, "Field goal attempts")
	recordBoxScoreCmd.Flags().Float64("fta", 0, "Free throw attempts")
	recordBoxScoreCmd.Flags().Float64("tov", 0, "Turnovers")
	recordBoxScoreCmd.Flags().Float64("minutes", 0, "Minutes played")
	if err := viper.BindPFlags(recordBoxScoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding record boxscore flags", err)
	}

	// Bind the run store selector shared by the store subcommands
	storeCmd.PersistentFlags().Bool("runs", false, "Operate on the retrain run store instead of the league store")
	if err := viper.BindPFlags(storeCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding store flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}

	// Bind all flags of scheduleCmd to Viper
	scheduleCmd.Flags().String("every", contract.DefaultScheduleInterval.String(), "Retrain interval (e.g. 24h, 30m)")
	scheduleCmd.Flags().Int("metrics-port", 0, "Serve Prometheus metrics on this port (0 disables)")
	scheduleCmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP metrics endpoint (host:port)")
	scheduleCmd.Flags().Bool("otlp-insecure", false, "Use plain HTTP for the OTLP endpoint")
	if err := viper.BindPFlags(scheduleCmd.Flags()); err != nil {
		contract.LogFatal("Error binding schedule flags", err)
	}
}
