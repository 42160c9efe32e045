package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/store"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCoreConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		ResultLimit:         contract.DefaultResultLimit,
		Precision:           contract.DefaultPrecision,
		Output:              schema.JSONOut,
		OutputFile:          filepath.Join(t.TempDir(), "out.json"),
		ModelVersion:        schema.LatestModelVersion,
		HighConfidenceGames: contract.DefaultHighConfidenceGames,
		Thresholds:          defaultThresholds,
	}
}

func managerWith(league contract.LeagueStore, coefficients contract.CoefficientStore) *store.MockStoreManager {
	mgr := &store.MockStoreManager{}
	if league != nil {
		mgr.On("GetLeagueStore").Return(league)
	}
	if coefficients != nil {
		mgr.On("GetCoefficientStore").Return(coefficients)
	}
	return mgr
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(content, v))
}

func TestGetPredictionResult_RequiresPlayer(t *testing.T) {
	_, _, err := GetPredictionResult(context.Background(), newCoreConfig(t), &store.MockStoreManager{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player is required")
}

func TestExecutePredict(t *testing.T) {
	coefficients := &store.MockCoefficientStore{}
	coefficients.On("Get", mock.Anything, "jayson_tatum", schema.LatestModelVersion).Return(tatumModel(), nil)

	cfg := newCoreConfig(t)
	cfg.Player = "jayson_tatum"
	cfg.Team = "boston_celtics"
	cfg.Absent = []string{"jaylen_brown"}

	require.NoError(t, ExecutePredict(context.Background(), cfg, managerWith(nil, coefficients)))

	var pred schema.Prediction
	readJSON(t, cfg.OutputFile, &pred)
	assert.Equal(t, 31.75, pred.PredictedUsage)
	assert.Equal(t, schema.HighConfidence, pred.Confidence)
	coefficients.AssertExpectations(t)
}

func TestExecutePredict_NoModel(t *testing.T) {
	coefficients := &store.MockCoefficientStore{}
	coefficients.On("Get", mock.Anything, "jayson_tatum", mock.Anything).Return(schema.PlayerModel{}, sql.ErrNoRows)

	cfg := newCoreConfig(t)
	cfg.Player = "jayson_tatum"

	err := ExecutePredict(context.Background(), cfg, managerWith(nil, coefficients))
	_, ok := AsNoModelFound(err)
	assert.True(t, ok)
	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGetQualifyingResults(t *testing.T) {
	ctx := context.Background()
	cfg := newCoreConfig(t)

	_, _, err := GetQualifyingResults(ctx, cfg, &store.MockStoreManager{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--team is required")

	league := &store.MockLeagueStore{}
	league.On("CountTeamGames", ctx, "boston_celtics").Return(20, nil)
	league.On("GetPlayerAggregates", ctx, "boston_celtics").Return([]schema.PlayerAggregate{
		{Player: "jayson_tatum", GamesPlayed: 15, AvgMinutes: 36},
		{Player: "sam_hauser", GamesPlayed: 10, AvgMinutes: 18},
	}, nil)

	cfg.Team = "boston_celtics"
	players, _, err := GetQualifyingResults(ctx, cfg, managerWith(league, nil))
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "jayson_tatum", players[0].Player)
	assert.Equal(t, 5, players[0].GamesMissed)
}

func TestGetImpactResults_Validation(t *testing.T) {
	tests := []struct {
		name   string
		team   string
		absent []string
		errMsg string
	}{
		{"missing team", "", []string{"jayson_tatum"}, "--team is required"},
		{"no absent player", "boston_celtics", nil, "exactly one player (received 0)"},
		{"two absent players", "boston_celtics", []string{"a", "b"}, "exactly one player (received 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newCoreConfig(t)
			cfg.Team = tt.team
			cfg.Absent = tt.absent
			_, _, err := GetImpactResults(context.Background(), cfg, &store.MockStoreManager{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestExecuteImpact_Limit(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	league := &store.MockLeagueStore{}
	league.On("GetUsageSplits", ctx, "boston_celtics", "jayson_tatum").Return([]schema.SplitRow{
		split("jaylen_brown", 25, true), split("jaylen_brown", 30, false),
		split("derrick_white", 20, true), split("derrick_white", 21, false),
		split("al_horford", 15, true), split("al_horford", 14, false),
	}, nil)

	cfg := newCoreConfig(t)
	cfg.Team = "boston_celtics"
	cfg.Absent = []string{"jayson_tatum"}
	cfg.ResultLimit = 2

	require.NoError(t, ExecuteImpact(ctx, cfg, managerWith(league, nil)))

	var results []schema.ImpactResult
	readJSON(t, cfg.OutputFile, &results)
	require.Len(t, results, 2)
	assert.Equal(t, "jaylen_brown", results[0].Player)
	assert.Equal(t, "derrick_white", results[1].Player)
}

func TestGetPlayerModel(t *testing.T) {
	tests := []struct {
		name       string
		team       string
		version    string
		askVersion string
		model      schema.PlayerModel
		err        error
		wantNoMod  bool
		wantErr    bool
	}{
		{name: "found", version: schema.LatestModelVersion, askVersion: schema.LatestModelVersion, model: tatumModel()},
		{name: "empty version asks for latest", askVersion: schema.LatestModelVersion, model: tatumModel()},
		{name: "explicit version", version: "additive_v2", askVersion: "additive_v2", model: tatumModel()},
		{name: "matching team", team: "boston_celtics", version: schema.LatestModelVersion, askVersion: schema.LatestModelVersion, model: tatumModel()},
		{name: "missing", version: schema.LatestModelVersion, askVersion: schema.LatestModelVersion, err: sql.ErrNoRows, wantNoMod: true, wantErr: true},
		{name: "team mismatch", team: "new_york_knicks", version: schema.LatestModelVersion, askVersion: schema.LatestModelVersion, model: tatumModel(), wantNoMod: true, wantErr: true},
		{name: "store failure", version: schema.LatestModelVersion, askVersion: schema.LatestModelVersion, err: assert.AnError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coefficients := &store.MockCoefficientStore{}
			coefficients.On("Get", mock.Anything, "jayson_tatum", tt.askVersion).Return(tt.model, tt.err)

			cfg := newCoreConfig(t)
			cfg.Player = "jayson_tatum"
			cfg.Team = tt.team
			cfg.ModelVersion = tt.version

			model, err := GetPlayerModel(context.Background(), cfg, managerWith(nil, coefficients))
			coefficients.AssertExpectations(t)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, 28.5, model.Fit.BaselineUsage)
				return
			}
			require.Error(t, err)
			_, isNoModel := AsNoModelFound(err)
			assert.Equal(t, tt.wantNoMod, isNoModel)
			if !tt.wantNoMod {
				assert.ErrorIs(t, err, assert.AnError)
			}
		})
	}
}

func TestExecuteModelsList(t *testing.T) {
	coefficients := &store.MockCoefficientStore{}
	coefficients.On("ListModels", mock.Anything, "boston_celtics").Return([]schema.ModelSummary{
		{Player: "jayson_tatum", Team: "boston_celtics", ModelVersion: schema.DefaultModelVersion, GamesUsed: 60},
	}, nil)

	cfg := newCoreConfig(t)
	cfg.Team = "boston_celtics"
	require.NoError(t, ExecuteModelsList(context.Background(), cfg, managerWith(nil, coefficients)))

	var models []schema.ModelSummary
	readJSON(t, cfg.OutputFile, &models)
	require.Len(t, models, 1)
	assert.Equal(t, 60, models[0].GamesUsed)
}

func TestExecuteModelsShow(t *testing.T) {
	coefficients := &store.MockCoefficientStore{}
	coefficients.On("Get", mock.Anything, "jayson_tatum", schema.LatestModelVersion).Return(tatumModel(), nil)

	cfg := newCoreConfig(t)
	cfg.Player = "jayson_tatum"
	require.NoError(t, ExecuteModelsShow(context.Background(), cfg, managerWith(nil, coefficients)))

	var decoded struct {
		Player       string                       `json:"player"`
		Coefficients []schema.TeammateCoefficient `json:"coefficients"`
	}
	readJSON(t, cfg.OutputFile, &decoded)
	assert.Equal(t, "jayson_tatum", decoded.Player)
	require.Len(t, decoded.Coefficients, 4)
	assert.Equal(t, "jaylen_brown", decoded.Coefficients[0].Teammate)
}

func TestRunRetrain_TeamResolution(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	t.Run("no teams", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("ListTeams", ctx).Return([]string{}, nil)
		_, err := RunRetrain(ctx, newCoreConfig(t), managerWith(league, nil), contract.NewLogger(slog.LevelError), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no teams with recorded games")
	})

	t.Run("list failure", func(t *testing.T) {
		league := &store.MockLeagueStore{}
		league.On("ListTeams", ctx).Return([]string(nil), assert.AnError)
		_, err := RunRetrain(ctx, newCoreConfig(t), managerWith(league, nil), contract.NewLogger(slog.LevelError), nil)
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestGetTeamListing(t *testing.T) {
	ctx := context.Background()
	league := &store.MockLeagueStore{}
	league.On("CountTeamGames", ctx, "boston_celtics").Return(20, nil)
	league.On("CountTeamGames", ctx, mock.Anything).Return(0, nil)

	listing, err := GetTeamListing(ctx, managerWith(league, nil))
	require.NoError(t, err)
	require.Len(t, listing, 30)
	assert.Equal(t, "atlanta_hawks", listing[0].Key)
	for _, entry := range listing {
		if entry.Key == "boston_celtics" {
			assert.Equal(t, 20, entry.Games)
			assert.Equal(t, "BOS", entry.Abbreviation)
		} else {
			assert.Zero(t, entry.Games)
		}
	}
}

func TestGetTeamListing_Error(t *testing.T) {
	ctx := context.Background()
	league := &store.MockLeagueStore{}
	league.On("CountTeamGames", ctx, mock.Anything).Return(0, assert.AnError)

	_, err := GetTeamListing(ctx, managerWith(league, nil))
	require.ErrorIs(t, err, assert.AnError)
}
