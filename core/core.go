// Package core has the usage model logic: qualification, fitting, retraining and prediction.
package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/metrics"
	"github.com/NoahAizen44/SmarterTips/internal/outwriter"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// ExecutorFunc defines the function signature for executing the CLI commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecutePredict predicts the usage of cfg.Player with cfg.Absent sitting out.
func ExecutePredict(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	pred, duration, err := GetPredictionResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if len(cfg.Absent) > 0 {
		printHeader(ctx, "🏀 Predicting usage for %s without %s\n", schema.DisplayName(pred.Player), schema.FormatPlayers(cfg.Absent))
	}
	return outwriter.WritePrediction(pred, cfg, duration)
}

// GetPredictionResult runs the predictor for the configured target and absence set.
func GetPredictionResult(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.Prediction, time.Duration, error) {
	start := time.Now()
	if cfg.Player == "" {
		return schema.Prediction{}, 0, errors.New("player is required")
	}
	predictor := NewPredictor(mgr.GetCoefficientStore(), cfg.HighConfidenceGames)
	pred, err := predictor.Predict(ctx, schema.PredictRequest{
		Player:       cfg.Player,
		Team:         cfg.Team,
		Absent:       cfg.Absent,
		ModelVersion: cfg.ModelVersion,
	})
	return pred, time.Since(start), err
}

// ExecuteQualify prints the qualifying players of cfg.Team.
func ExecuteQualify(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	players, duration, err := GetQualifyingResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteQualifying(players, cfg, duration)
}

// GetQualifyingResults applies the qualification thresholds to cfg.Team.
func GetQualifyingResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.QualifyingPlayer, time.Duration, error) {
	start := time.Now()
	if cfg.Team == "" {
		return nil, 0, errors.New("--team is required")
	}
	players, err := QualifyTeam(ctx, mgr.GetLeagueStore(), cfg.Team, cfg.Thresholds)
	return players, time.Since(start), err
}

// ExecuteImpact prints how every player's usage shifts when cfg.Absent[0] sits out.
func ExecuteImpact(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	results, duration, err := GetImpactResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	printHeader(ctx, "🏀 Usage impact of %s missing games for %s\n", cfg.Absent[0], cfg.Team)
	return outwriter.WriteImpact(results, cfg, duration)
}

// GetImpactResults ranks the teammates of cfg.Team by usage change without cfg.Absent[0].
func GetImpactResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.ImpactResult, time.Duration, error) {
	start := time.Now()
	if cfg.Team == "" {
		return nil, 0, errors.New("--team is required")
	}
	if len(cfg.Absent) != 1 {
		return nil, 0, fmt.Errorf("--absent must name exactly one player (received %d)", len(cfg.Absent))
	}
	results, err := TeammateImpact(ctx, mgr.GetLeagueStore(), cfg.Team, cfg.Absent[0])
	if err != nil {
		return nil, 0, err
	}
	if len(results) > cfg.ResultLimit {
		results = results[:cfg.ResultLimit]
	}
	return results, time.Since(start), nil
}

// ExecuteModelsList prints the stored models, filtered by cfg.Team when set.
func ExecuteModelsList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	models, err := mgr.GetCoefficientStore().ListModels(ctx, cfg.Team)
	if err != nil {
		return err
	}
	return outwriter.WriteModelList(models, cfg)
}

// ExecuteModelsShow prints the stored model of cfg.Player.
func ExecuteModelsShow(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	model, err := GetPlayerModel(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WritePlayerModel(model, cfg)
}

// GetPlayerModel loads the stored model of cfg.Player at cfg.ModelVersion.
func GetPlayerModel(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.PlayerModel, error) {
	if cfg.Player == "" {
		return schema.PlayerModel{}, errors.New("player is required")
	}
	version := cfg.ModelVersion
	if version == "" {
		version = schema.LatestModelVersion
	}
	model, err := mgr.GetCoefficientStore().Get(ctx, cfg.Player, version)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.PlayerModel{}, &NoModelFoundError{Player: cfg.Player, Team: cfg.Team, ModelVersion: version}
	}
	if err != nil {
		return schema.PlayerModel{}, fmt.Errorf("failed to load model for %s: %w", cfg.Player, err)
	}
	if cfg.Team != "" && model.Fit.Team != cfg.Team {
		return schema.PlayerModel{}, &NoModelFoundError{Player: cfg.Player, Team: cfg.Team, ModelVersion: version}
	}
	return model, nil
}

// ExecuteTrain retrains cfg.Team, or every team with recorded games, and prints the summary.
func ExecuteTrain(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	summary, err := RunRetrain(ctx, cfg, mgr, contract.NewLogger(cfg.LogLevel), nil)
	if err != nil {
		return err
	}
	return outwriter.WriteRetrainSummary(summary, cfg)
}

// RunRetrain resolves the teams to retrain and runs one batch over them.
func RunRetrain(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *slog.Logger, recorder *metrics.Recorder) (schema.RetrainSummary, error) {
	teams := []string{cfg.Team}
	if cfg.Team == "" {
		var err error
		teams, err = mgr.GetLeagueStore().ListTeams(ctx)
		if err != nil {
			return schema.RetrainSummary{}, fmt.Errorf("failed to list teams: %w", err)
		}
		if len(teams) == 0 {
			return schema.RetrainSummary{}, errors.New("no teams with recorded games")
		}
	}
	printHeader(ctx, "🏀 Retraining %d team(s) at model version %s with %d workers\n", len(teams), cfg.ModelVersion, cfg.Workers)
	return NewTrainer(cfg, mgr, logger, recorder).RetrainAll(ctx, teams)
}

// ExecuteTeams prints the franchise list with the games recorded for each.
func ExecuteTeams(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	listing, err := GetTeamListing(ctx, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteTeams(listing, cfg)
}

// GetTeamListing returns every franchise in key order with its recorded game count.
func GetTeamListing(ctx context.Context, mgr contract.StoreManager) ([]schema.TeamListing, error) {
	league := mgr.GetLeagueStore()
	keys := schema.TeamKeys()
	listing := make([]schema.TeamListing, 0, len(keys))
	for _, key := range keys {
		games, err := league.CountTeamGames(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to count games for %s: %w", key, err)
		}
		listing = append(listing, schema.TeamListing{Team: schema.Teams[key], Games: games})
	}
	return listing, nil
}

// printHeader writes a progress line to stderr unless headers are suppressed.
func printHeader(ctx context.Context, format string, args ...any) {
	if shouldSuppressHeader(ctx) {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
