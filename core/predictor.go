package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// noDataNote flags absent teammates without a coefficient against the target.
const noDataNote = "no data"

// Predictor turns stored coefficients into additive usage predictions.
type Predictor struct {
	store               contract.CoefficientStore
	highConfidenceGames int
}

// NewPredictor creates a predictor reading from the given coefficient store.
// highConfidenceGames is the minimum fit sample required for a High label.
func NewPredictor(store contract.CoefficientStore, highConfidenceGames int) *Predictor {
	return &Predictor{store: store, highConfidenceGames: highConfidenceGames}
}

// Predict returns baseline + the sum of the deltas of the absent teammates.
// It fails with *NoModelFoundError when the target has no stored model for the
// requested version, or when the stored model belongs to a different team.
func (p *Predictor) Predict(ctx context.Context, req schema.PredictRequest) (schema.Prediction, error) {
	player := schema.NormalizeName(req.Player)
	version := req.ModelVersion
	if version == "" {
		version = schema.LatestModelVersion
	}
	notFound := &NoModelFoundError{Player: player, Team: req.Team, ModelVersion: version}

	model, err := p.store.Get(ctx, player, version)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Prediction{}, notFound
	}
	if err != nil {
		return schema.Prediction{}, fmt.Errorf("failed to load model for %s: %w", player, err)
	}

	if req.Team != "" {
		team, ok := schema.LookupTeam(req.Team)
		if !ok || team.Key != model.Fit.Team {
			return schema.Prediction{}, notFound
		}
	}

	pred := schema.Prediction{
		Player:        player,
		Team:          model.Fit.Team,
		ModelVersion:  model.Fit.ModelVersion,
		BaselineUsage: model.Fit.BaselineUsage,
		Breakdown:     []schema.BreakdownEntry{},
	}

	var matched []schema.TeammateCoefficient
	seen := make(map[string]bool)
	for _, raw := range req.Absent {
		name := schema.NormalizeName(raw)
		if name == "" || name == player || seen[name] {
			continue
		}
		seen[name] = true

		coef, ok := model.Coefficients[name]
		if !ok {
			pred.Breakdown = append(pred.Breakdown, schema.BreakdownEntry{Teammate: name, Note: noDataNote})
			continue
		}
		matched = append(matched, coef)
		pred.TotalDelta += coef.Delta
		pred.Breakdown = append(pred.Breakdown, schema.BreakdownEntry{
			Teammate:  name,
			Delta:     coef.Delta,
			PValue:    coef.PValue,
			GamesUsed: model.Fit.GamesUsed,
			Known:     true,
		})
	}

	pred.PredictedUsage = pred.BaselineUsage + pred.TotalDelta
	pred.Confidence = classifyConfidence(model.Fit, matched, p.highConfidenceGames)
	return pred, nil
}

// classifyConfidence derives the presentation label from the matched p-values
// and the fit sample size. It is a heuristic, not an interval.
func classifyConfidence(fit schema.FitRecord, matched []schema.TeammateCoefficient, highGames int) schema.Confidence {
	if len(matched) == 0 || fit.LowConfidence {
		return schema.LowConfidence
	}
	maxP := 0.0
	for _, c := range matched {
		maxP = max(maxP, c.PValue)
	}
	switch {
	case maxP < schema.SignificantPValue && fit.GamesUsed >= highGames:
		return schema.HighConfidence
	case maxP < schema.MarginalPValue:
		return schema.MediumConfidence
	default:
		return schema.LowConfidence
	}
}
