package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// Qualify filters per-player aggregates down to the players eligible to be
// regression targets or teammate predictors. The result is ordered by average
// minutes descending, then by player name.
func Qualify(totalGames int, aggregates []schema.PlayerAggregate, th schema.Thresholds) []schema.QualifyingPlayer {
	out := make([]schema.QualifyingPlayer, 0, len(aggregates))
	for _, agg := range aggregates {
		missed := totalGames - agg.GamesPlayed
		if agg.AvgMinutes < th.MinMPG {
			continue
		}
		if missed <= th.MinGamesMissed {
			continue
		}
		if th.MinGamesPlayed > 0 && agg.GamesPlayed < th.MinGamesPlayed {
			continue
		}
		out = append(out, schema.QualifyingPlayer{
			Player:      agg.Player,
			GamesPlayed: agg.GamesPlayed,
			GamesMissed: missed,
			AvgMinutes:  agg.AvgMinutes,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgMinutes != out[j].AvgMinutes {
			return out[i].AvgMinutes > out[j].AvgMinutes
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// QualifyTeam reads a team's aggregates from the league store and applies Qualify.
func QualifyTeam(ctx context.Context, store contract.LeagueStore, team string, th schema.Thresholds) ([]schema.QualifyingPlayer, error) {
	total, err := store.CountTeamGames(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to count games for %s: %w", team, err)
	}
	aggregates, err := store.GetPlayerAggregates(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to load player aggregates for %s: %w", team, err)
	}
	return Qualify(total, aggregates, th), nil
}
