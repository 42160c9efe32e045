package cmd

import (
	"fmt"
	"time"

	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// recordTarget returns the validated team and game date shared by the record subcommands.
func recordTarget() (string, time.Time, error) {
	if cfg.Team == "" {
		return "", time.Time{}, fmt.Errorf("--team is required")
	}
	raw := viper.GetString("date")
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("--date is required")
	}
	gameDate, err := schema.ParseGameDate(raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid --date value '%s'. use YYYY-MM-DD: %w", raw, err)
	}
	return cfg.Team, gameDate, nil
}

// recordCmd groups the data entry subcommands.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record games, box scores and did-not-play entries",
	Long: `Write league data used for qualification and training.

Subcommands:
  game     - A team game on a date (the denominator of games missed)
  boxscore - A player's box score; usage is computed from FGA, FTA, TOV and minutes
  dnp      - A player who did not play in a team game

Examples:
  smartertips record game --team BOS --date 2024-01-15 --opponent MIA --home --result W
  smartertips record boxscore "Jaylen Brown" --team BOS --date 2024-01-15 --fga 20 --fta 6 --tov 3 --minutes 36
  smartertips record dnp "Jayson Tatum" --team BOS --date 2024-01-15`,
}

// recordGameCmd records a team game.
var recordGameCmd = &cobra.Command{
	Use:     "game",
	Short:   "Record a team game",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		team, gameDate, err := recordTarget()
		if err != nil {
			contract.LogFatal("Cannot record game", err)
		}
		game := schema.Game{
			Team:          team,
			GameDate:      gameDate,
			GameID:        viper.GetString("game-id"),
			Opponent:      viper.GetString("opponent"),
			Home:          viper.GetBool("home"),
			Result:        viper.GetString("result"),
			TeamScore:     viper.GetInt("team-score"),
			OpponentScore: viper.GetInt("opponent-score"),
		}
		if opp, ok := schema.LookupTeam(game.Opponent); ok {
			game.Opponent = opp.Key
		}
		if err := core.RecordGame(rootCtx, storeManager.GetLeagueStore(), game); err != nil {
			contract.LogFatal("Cannot record game", err)
		}
		fmt.Printf("Recorded %s game on %s.\n", team, gameDate.Format(schema.GameDateLayout))
	},
}

// recordBoxScoreCmd records a player's box score.
var recordBoxScoreCmd = &cobra.Command{
	Use:     "boxscore PLAYER",
	Short:   "Record a player's box score and computed usage",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		team, gameDate, err := recordTarget()
		if err != nil {
			contract.LogFatal("Cannot record box score", err)
		}
		box := schema.BoxScore{
			FGA:     viper.GetFloat64("fga"),
			FTA:     viper.GetFloat64("fta"),
			TOV:     viper.GetFloat64("tov"),
			Minutes: viper.GetFloat64("minutes"),
		}
		obs, err := core.RecordBoxScore(rootCtx, storeManager.GetLeagueStore(), team, cfg.Player, gameDate, box)
		if err != nil {
			contract.LogFatal("Cannot record box score", err)
		}
		fmt.Printf("Recorded %s on %s: %.*f%% usage in %.1f minutes.\n",
			obs.Player, gameDate.Format(schema.GameDateLayout), cfg.Precision, obs.UsagePct, obs.Minutes)
	},
}

// recordDNPCmd records a did-not-play entry.
var recordDNPCmd = &cobra.Command{
	Use:     "dnp PLAYER",
	Short:   "Record that a player did not play",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		team, gameDate, err := recordTarget()
		if err != nil {
			contract.LogFatal("Cannot record DNP", err)
		}
		obs, err := core.RecordDNP(rootCtx, storeManager.GetLeagueStore(), team, cfg.Player, gameDate)
		if err != nil {
			contract.LogFatal("Cannot record DNP", err)
		}
		fmt.Printf("Recorded DNP for %s on %s.\n", obs.Player, gameDate.Format(schema.GameDateLayout))
	},
}
