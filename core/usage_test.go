package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/store"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUsageRate(t *testing.T) {
	tests := []struct {
		name               string
		fga, fta, tov, min float64
		expected           float64
	}{
		{"typical starter", 20, 8, 3, 36, 100 * (20 + 0.44*8 + 3) / 36},
		{"bench minutes", 4, 0, 1, 12, 100 * 5.0 / 12},
		{"zero minutes", 10, 10, 10, 0, 0},
		{"dnp", 0, 0, 0, 0, 0},
		{"negative minutes", 5, 1, 1, -3, 0},
		{"negative attempts clamp", -5, 2, 1, 10, 100 * (0.44*2 + 1) / 10},
		{"nan turnovers clamp", 10, 0, math.NaN(), 20, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, UsageRate(tt.fga, tt.fta, tt.tov, tt.min), 1e-12)
		})
	}
}

func TestUsageRateZeroMinutesIsExactlyZero(t *testing.T) {
	for _, fga := range []float64{0, 1, 25, 1e9} {
		assert.Equal(t, 0.0, UsageRate(fga, fga, fga, 0))
	}
}

func TestBoxScoreUsage(t *testing.T) {
	assert.Equal(t, 0.0, BoxScoreUsage(schema.DNPBoxScore()))
	assert.InDelta(t, 50.0, BoxScoreUsage(schema.BoxScore{FGA: 10, TOV: 0, Minutes: 20}), 1e-12)
}

func TestRecordBoxScore(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("played game writes usage and participation", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("UpsertUsage", ctx, mock.MatchedBy(func(obs schema.UsageObservation) bool {
			return obs.Player == "dangelo_russell" && obs.Minutes == 30 && math.Abs(obs.UsagePct-50) < 1e-9
		})).Return(nil)
		league.On("RecordParticipation", ctx, "los_angeles_lakers", "dangelo_russell", date, true).Return(nil)

		obs, err := RecordBoxScore(ctx, league, "los_angeles_lakers", "D'Angelo Russell", date,
			schema.BoxScore{FGA: 12, FTA: 0, TOV: 3, Minutes: 30})
		require.NoError(t, err)
		assert.InDelta(t, 50.0, obs.UsagePct, 1e-9)
		league.AssertExpectations(t)
	})

	t.Run("dnp is recorded as not played", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("UpsertUsage", ctx, schema.UsageObservation{
			Team: "los_angeles_lakers", Player: "lebron_james", GameDate: date,
		}).Return(nil)
		league.On("RecordParticipation", ctx, "los_angeles_lakers", "lebron_james", date, false).Return(nil)

		obs, err := RecordDNP(ctx, league, "los_angeles_lakers", "LeBron James", date)
		require.NoError(t, err)
		assert.Equal(t, 0.0, obs.UsagePct)
		league.AssertExpectations(t)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("UpsertUsage", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := RecordDNP(ctx, league, "los_angeles_lakers", "LeBron James", date)
		assert.ErrorContains(t, err, "disk full")
		league.AssertNotCalled(t, "RecordParticipation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty player name", func(t *testing.T) {
		_, err := RecordDNP(ctx, &store.MockLeagueStore{}, "los_angeles_lakers", "  ", date)
		assert.Error(t, err)
	})
}

func TestRecordGame(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		game   schema.Game
		errMsg string
	}{
		{name: "missing team", game: schema.Game{GameDate: date}, errMsg: "team is required"},
		{name: "missing date", game: schema.Game{Team: "utah_jazz"}, errMsg: "game date is required"},
		{name: "bad result", game: schema.Game{Team: "utah_jazz", GameDate: date, Result: "T"}, errMsg: "invalid result"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			league := &store.MockLeagueStore{}
			err := RecordGame(ctx, league, tt.game)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			league.AssertNotCalled(t, "UpsertGame", mock.Anything, mock.Anything)
		})
	}

	t.Run("result is normalized", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("UpsertGame", ctx, schema.Game{Team: "utah_jazz", GameDate: date, Result: "W", TeamScore: 110, OpponentScore: 101}).Return(nil)

		err := RecordGame(ctx, league, schema.Game{Team: "utah_jazz", GameDate: date, Result: " w ", TeamScore: 110, OpponentScore: 101})
		require.NoError(t, err)
		league.AssertExpectations(t)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("UpsertGame", ctx, mock.Anything).Return(errors.New("disk full"))

		err := RecordGame(ctx, league, schema.Game{Team: "utah_jazz", GameDate: date})
		assert.ErrorContains(t, err, "failed to record game for utah_jazz on 2024-01-15: disk full")
	})
}
