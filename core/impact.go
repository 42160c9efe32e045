package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

type usageSplit struct {
	withSum, withoutSum float64
	with, without       int
}

// ImpactFromSplits ranks every player by how much their mean usage changes in
// games the reference player missed. Players need games on both sides of the
// split to be ranked.
func ImpactFromSplits(rows []schema.SplitRow) []schema.ImpactResult {
	splits := make(map[string]*usageSplit)
	for _, row := range rows {
		s, ok := splits[row.Player]
		if !ok {
			s = &usageSplit{}
			splits[row.Player] = s
		}
		if row.ReferencePlayed {
			s.withSum += row.UsagePct
			s.with++
		} else {
			s.withoutSum += row.UsagePct
			s.without++
		}
	}

	results := make([]schema.ImpactResult, 0, len(splits))
	for player, s := range splits {
		if s.with == 0 || s.without == 0 {
			continue
		}
		withAvg := s.withSum / float64(s.with)
		withoutAvg := s.withoutSum / float64(s.without)
		results = append(results, schema.ImpactResult{
			Player:       player,
			WithUsage:    withAvg,
			WithoutUsage: withoutAvg,
			ImpactPct:    impactPct(withAvg, withoutAvg),
			GamesWith:    s.with,
			GamesWithout: s.without,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].ImpactPct != results[j].ImpactPct {
			return results[i].ImpactPct > results[j].ImpactPct
		}
		return results[i].Player < results[j].Player
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// impactPct is the relative change from the with-average to the without-average.
// A zero baseline reports 100 when usage appears only without the reference.
func impactPct(with, without float64) float64 {
	switch {
	case with > 0:
		return (without - with) / with * 100
	case without > 0:
		return 100
	default:
		return 0
	}
}

// TeammateImpact loads a team's usage splits around the reference player and ranks them.
func TeammateImpact(ctx context.Context, store contract.LeagueStore, team, reference string) ([]schema.ImpactResult, error) {
	reference = schema.NormalizeName(reference)
	rows, err := store.GetUsageSplits(ctx, team, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage splits for %s: %w", reference, err)
	}
	return ImpactFromSplits(rows), nil
}
