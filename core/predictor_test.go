package core

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/NoahAizen44/SmarterTips/internal/store"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tatumModel() schema.PlayerModel {
	return schema.PlayerModel{
		Fit: schema.FitRecord{
			Player: "jayson_tatum", Team: "boston_celtics", ModelVersion: schema.DefaultModelVersion,
			BaselineUsage: 28.5, GamesUsed: 60, RSquared: 0.25,
		},
		Coefficients: map[string]schema.TeammateCoefficient{
			"jaylen_brown":       {Teammate: "jaylen_brown", Delta: 3.25, PValue: 0.01},
			"kristaps_porzingis": {Teammate: "kristaps_porzingis", Delta: 1.5, PValue: 0.03},
			"derrick_white":      {Teammate: "derrick_white", Delta: -0.5, PValue: 0.08},
			"al_horford":         {Teammate: "al_horford", Delta: 0.25, PValue: 0.6},
		},
	}
}

func newMockPredictor(model schema.PlayerModel, err error) (*Predictor, *store.MockCoefficientStore) {
	coefficients := &store.MockCoefficientStore{}
	coefficients.On("Get", mock.Anything, "jayson_tatum", mock.Anything).Return(model, err)
	return NewPredictor(coefficients, 15), coefficients
}

func TestPredict_Additivity(t *testing.T) {
	p, _ := newMockPredictor(tatumModel(), nil)

	pred, err := p.Predict(context.Background(), schema.PredictRequest{
		Player: "Jayson Tatum",
		Absent: []string{"Jaylen Brown", "Kristaps Porzingis"},
	})
	require.NoError(t, err)

	assert.Equal(t, 28.5+3.25+1.5, pred.PredictedUsage)
	assert.Equal(t, 3.25+1.5, pred.TotalDelta)
	assert.Equal(t, 28.5, pred.BaselineUsage)
	assert.Equal(t, "boston_celtics", pred.Team)
	require.Len(t, pred.Breakdown, 2)
	assert.True(t, pred.Breakdown[0].Known)
	assert.Equal(t, 60, pred.Breakdown[0].GamesUsed)
	assert.Equal(t, schema.HighConfidence, pred.Confidence)
}

func TestPredict_NoAbsences(t *testing.T) {
	p, _ := newMockPredictor(tatumModel(), nil)

	pred, err := p.Predict(context.Background(), schema.PredictRequest{Player: "jayson_tatum"})
	require.NoError(t, err)
	assert.Equal(t, 28.5, pred.PredictedUsage)
	assert.Empty(t, pred.Breakdown)
	assert.Equal(t, schema.LowConfidence, pred.Confidence)
}

func TestPredict_UnknownTeammateAndDuplicates(t *testing.T) {
	p, _ := newMockPredictor(tatumModel(), nil)

	pred, err := p.Predict(context.Background(), schema.PredictRequest{
		Player: "jayson_tatum",
		Absent: []string{"jaylen_brown", "Jaylen Brown", "sam_hauser", "jayson_tatum"},
	})
	require.NoError(t, err)

	require.Len(t, pred.Breakdown, 2)
	assert.Equal(t, "sam_hauser", pred.Breakdown[1].Teammate)
	assert.False(t, pred.Breakdown[1].Known)
	assert.Equal(t, "no data", pred.Breakdown[1].Note)
	assert.Equal(t, 28.5+3.25, pred.PredictedUsage)
}

func TestPredict_NoModelFound(t *testing.T) {
	tests := []struct {
		name string
		req  schema.PredictRequest
		err  error
	}{
		{"missing model", schema.PredictRequest{Player: "jayson_tatum", Absent: []string{"jaylen_brown"}}, sql.ErrNoRows},
		{"wrong team", schema.PredictRequest{Player: "jayson_tatum", Team: "new_york_knicks"}, nil},
		{"unknown team", schema.PredictRequest{Player: "jayson_tatum", Team: "springfield_atoms"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := tatumModel()
			if tt.err != nil {
				model = schema.PlayerModel{}
			}
			p, _ := newMockPredictor(model, tt.err)

			pred, err := p.Predict(context.Background(), tt.req)
			nf, ok := AsNoModelFound(err)
			require.True(t, ok, "expected NoModelFoundError, got %v", err)
			assert.Equal(t, "jayson_tatum", nf.Player)
			assert.Zero(t, pred.PredictedUsage)
		})
	}
}

func TestPredict_StoreErrorIsNotNoModel(t *testing.T) {
	p, _ := newMockPredictor(schema.PlayerModel{}, errors.New("connection refused"))

	_, err := p.Predict(context.Background(), schema.PredictRequest{Player: "jayson_tatum"})
	require.Error(t, err)
	_, ok := AsNoModelFound(err)
	assert.False(t, ok)
}

func TestPredict_TeamAliasAndVersion(t *testing.T) {
	p, coefficients := newMockPredictor(tatumModel(), nil)

	_, err := p.Predict(context.Background(), schema.PredictRequest{Player: "jayson_tatum", Team: "BOS", ModelVersion: "additive_v1"})
	require.NoError(t, err)
	coefficients.AssertCalled(t, "Get", mock.Anything, "jayson_tatum", "additive_v1")

	_, err = p.Predict(context.Background(), schema.PredictRequest{Player: "jayson_tatum"})
	require.NoError(t, err)
	coefficients.AssertCalled(t, "Get", mock.Anything, "jayson_tatum", schema.LatestModelVersion)
}

func TestClassifyConfidence(t *testing.T) {
	fit := schema.FitRecord{GamesUsed: 40}
	coef := func(p float64) schema.TeammateCoefficient { return schema.TeammateCoefficient{PValue: p} }

	tests := []struct {
		name     string
		fit      schema.FitRecord
		matched  []schema.TeammateCoefficient
		expected schema.Confidence
	}{
		{"all significant", fit, []schema.TeammateCoefficient{coef(0.01), coef(0.04)}, schema.HighConfidence},
		{"small sample", schema.FitRecord{GamesUsed: 14}, []schema.TeammateCoefficient{coef(0.01)}, schema.MediumConfidence},
		{"small sample marginal", schema.FitRecord{GamesUsed: 14}, []schema.TeammateCoefficient{coef(0.001), coef(0.08)}, schema.MediumConfidence},
		{"one marginal", fit, []schema.TeammateCoefficient{coef(0.01), coef(0.07)}, schema.MediumConfidence},
		{"one weak", fit, []schema.TeammateCoefficient{coef(0.01), coef(0.2)}, schema.LowConfidence},
		{"nothing matched", fit, nil, schema.LowConfidence},
		{"flagged fit", schema.FitRecord{GamesUsed: 40, LowConfidence: true}, []schema.TeammateCoefficient{coef(0.001)}, schema.LowConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyConfidence(tt.fit, tt.matched, 15))
		})
	}
}
