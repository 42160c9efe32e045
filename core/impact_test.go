package core

import (
	"context"
	"testing"

	"github.com/NoahAizen44/SmarterTips/internal/store"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func split(player string, usage float64, refPlayed bool) schema.SplitRow {
	return schema.SplitRow{Player: player, UsagePct: usage, ReferencePlayed: refPlayed}
}

func TestImpactFromSplits(t *testing.T) {
	rows := []schema.SplitRow{
		split("jaylen_brown", 25, true), split("jaylen_brown", 27, true), split("jaylen_brown", 30, false),
		split("derrick_white", 18, true), split("derrick_white", 18, false),
		split("al_horford", 15, true), split("al_horford", 12, false),
		split("sam_hauser", 14, true), // never played without the reference
	}

	results := ImpactFromSplits(rows)
	require.Len(t, results, 3)

	assert.Equal(t, "jaylen_brown", results[0].Player)
	assert.Equal(t, 1, results[0].Rank)
	assert.InDelta(t, 26.0, results[0].WithUsage, 1e-9)
	assert.InDelta(t, 30.0, results[0].WithoutUsage, 1e-9)
	assert.InDelta(t, 4.0/26.0*100, results[0].ImpactPct, 1e-9)
	assert.Equal(t, 2, results[0].GamesWith)
	assert.Equal(t, 1, results[0].GamesWithout)

	assert.Equal(t, "derrick_white", results[1].Player)
	assert.InDelta(t, 0.0, results[1].ImpactPct, 1e-9)
	assert.Equal(t, "al_horford", results[2].Player)
	assert.InDelta(t, -20.0, results[2].ImpactPct, 1e-9)
	assert.Equal(t, 3, results[2].Rank)
}

func TestImpactPct(t *testing.T) {
	tests := []struct {
		name          string
		with, without float64
		expected      float64
	}{
		{"increase", 20, 25, 25},
		{"decrease", 20, 15, -25},
		{"zero baseline with usage", 0, 10, 100},
		{"all zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, impactPct(tt.with, tt.without), 1e-9)
		})
	}
}

func TestTeammateImpact(t *testing.T) {
	ctx := context.Background()
	league := &store.MockLeagueStore{}
	league.On("GetUsageSplits", ctx, "boston_celtics", "jayson_tatum").Return([]schema.SplitRow{
		split("jaylen_brown", 25, true), split("jaylen_brown", 30, false),
	}, nil)

	results, err := TeammateImpact(ctx, league, "boston_celtics", "Jayson Tatum")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 20.0, results[0].ImpactPct, 1e-9)
	league.AssertExpectations(t)
}
