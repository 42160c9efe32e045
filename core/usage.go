package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// freeThrowWeight scales free throw attempts into possessions.
const freeThrowWeight = 0.44

// UsageRate returns the single-player usage proxy 100*(FGA + 0.44*FTA + TOV)/MIN.
// It is not normalized by team pace. Zero minutes yields exactly 0, and negative
// or NaN inputs are treated as 0.
func UsageRate(fga, fta, tov, minutes float64) float64 {
	minutes = clampStat(minutes)
	if minutes == 0 {
		return 0
	}
	return 100 * (clampStat(fga) + freeThrowWeight*clampStat(fta) + clampStat(tov)) / minutes
}

// BoxScoreUsage applies UsageRate to a box score.
func BoxScoreUsage(b schema.BoxScore) float64 {
	return UsageRate(b.FGA, b.FTA, b.TOV, b.Minutes)
}

func clampStat(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// RecordBoxScore computes usage for a player's game and writes both the usage
// observation and the participation fact. The player is marked as played iff
// minutes are non-zero.
func RecordBoxScore(ctx context.Context, store contract.LeagueStore, team, player string, date time.Time, box schema.BoxScore) (schema.UsageObservation, error) {
	player = schema.NormalizeName(player)
	if player == "" {
		return schema.UsageObservation{}, fmt.Errorf("player name is required")
	}
	obs := schema.UsageObservation{
		Team:     team,
		Player:   player,
		GameDate: date,
		Minutes:  clampStat(box.Minutes),
		UsagePct: BoxScoreUsage(box),
	}
	if err := store.UpsertUsage(ctx, obs); err != nil {
		return schema.UsageObservation{}, fmt.Errorf("failed to record usage for %s: %w", player, err)
	}
	if err := store.RecordParticipation(ctx, team, player, date, obs.Minutes > 0); err != nil {
		return schema.UsageObservation{}, fmt.Errorf("failed to record participation for %s: %w", player, err)
	}
	return obs, nil
}

// RecordDNP records a did-not-play game for a player.
func RecordDNP(ctx context.Context, store contract.LeagueStore, team, player string, date time.Time) (schema.UsageObservation, error) {
	return RecordBoxScore(ctx, store, team, player, date, schema.DNPBoxScore())
}

// RecordGame stores one team game. Result must be empty, "W" or "L".
func RecordGame(ctx context.Context, store contract.LeagueStore, game schema.Game) error {
	if game.Team == "" {
		return fmt.Errorf("team is required")
	}
	if game.GameDate.IsZero() {
		return fmt.Errorf("game date is required")
	}
	game.Result = strings.ToUpper(strings.TrimSpace(game.Result))
	if game.Result != "" && game.Result != "W" && game.Result != "L" {
		return fmt.Errorf("invalid result '%s'. must be W or L", game.Result)
	}
	if err := store.UpsertGame(ctx, game); err != nil {
		return fmt.Errorf("failed to record game for %s on %s: %w", game.Team, game.GameDate.Format(schema.GameDateLayout), err)
	}
	return nil
}
