package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/metrics"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// Trainer retrains usage models for every qualifying target on a set of teams.
type Trainer struct {
	cfg      *contract.Config
	mgr      contract.StoreManager
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// trainUnit is one independent (team, target) fit.
type trainUnit struct {
	team      string
	target    string
	teammates []string
}

// NewTrainer builds a trainer. The logger and recorder may be nil.
func NewTrainer(cfg *contract.Config, mgr contract.StoreManager, logger *slog.Logger, recorder *metrics.Recorder) *Trainer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Trainer{cfg: cfg, mgr: mgr, logger: logger, recorder: recorder}
}

// RetrainTeam retrains every qualifying target on one team.
func (t *Trainer) RetrainTeam(ctx context.Context, team string) (schema.RetrainSummary, error) {
	return t.RetrainAll(ctx, []string{team})
}

// RetrainAll retrains every qualifying target on the given teams. Per-target
// failures are absorbed into the summary and never abort the batch; only a
// cancelled context stops it early.
func (t *Trainer) RetrainAll(ctx context.Context, teams []string) (schema.RetrainSummary, error) {
	start := time.Now()
	summary := schema.RetrainSummary{
		ModelVersion: t.cfg.ModelVersion,
		Teams:        len(teams),
		Outcomes:     []schema.TrainOutcome{},
	}

	// --- 0. Begin run tracking (if configured) ---
	runStore := t.mgr.GetRunStore()
	if runStore != nil {
		runID, runUUID, err := runStore.BeginRun(start, t.cfg.ConfigParams())
		if err != nil {
			t.logger.Warn("retrain run tracking initialization failed", "error", err)
		} else if runID > 0 {
			summary.RunUUID = runUUID
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Qualification phase ---
	league := t.mgr.GetLeagueStore()
	var units []trainUnit
	for _, team := range teams {
		if ctx.Err() != nil {
			break
		}
		qualifying, err := QualifyTeam(ctx, league, team, t.cfg.Thresholds)
		if err != nil {
			t.logger.Warn("qualification failed", "team", team, "error", err)
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, schema.TrainOutcome{
				Team: team, Status: schema.OutcomeFailed, Message: err.Error(),
			})
			continue
		}
		t.logger.Debug("qualified players", "team", team, "count", len(qualifying))
		units = append(units, buildUnits(team, qualifying)...)
	}
	summary.TotalTargets = len(units)

	// --- 2. Fit phase ---
	var outcomes []schema.TrainOutcome
	if ctx.Err() == nil {
		outcomes = t.runUnits(ctx, units)
	}
	for _, o := range outcomes {
		switch o.Status {
		case schema.OutcomeTrained:
			summary.Trained++
			summary.CoefficientsWritten += o.Coefficients
		case schema.OutcomeInsufficient:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	summary.Outcomes = append(summary.Outcomes, outcomes...)
	summary.Elapsed = time.Since(start)

	// --- 3. End run tracking ---
	if runID, ok := getRunID(ctx); ok && runStore != nil {
		if err := runStore.EndRun(runID, time.Now(), summary); err != nil {
			t.logger.Warn("failed to finalize retrain run tracking", "run_id", runID, "error", err)
		}
	}
	t.recorder.RecordBatch(summary)
	t.logger.Info("retrain finished",
		"teams", summary.Teams, "targets", summary.TotalTargets, "trained", summary.Trained,
		"skipped", summary.Skipped, "failed", summary.Failed, "elapsed", summary.Elapsed)

	return summary, ctx.Err()
}

// buildUnits pairs every qualifying target with all other qualifying players.
func buildUnits(team string, qualifying []schema.QualifyingPlayer) []trainUnit {
	units := make([]trainUnit, 0, len(qualifying))
	for _, target := range qualifying {
		teammates := make([]string, 0, len(qualifying)-1)
		for _, other := range qualifying {
			if other.Player != target.Player {
				teammates = append(teammates, other.Player)
			}
		}
		units = append(units, trainUnit{team: team, target: target.Player, teammates: teammates})
	}
	return units
}

// runUnits fits all units on a pool of workers and returns outcomes ordered by team and player.
func (t *Trainer) runUnits(ctx context.Context, units []trainUnit) []schema.TrainOutcome {
	unitCh := make(chan trainUnit, len(units))
	outcomeCh := make(chan schema.TrainOutcome, len(units))

	var wg sync.WaitGroup
	for range max(t.cfg.Workers, 1) {
		wg.Go(func() {
			for u := range unitCh {
				outcomeCh <- t.trainOne(ctx, u)
			}
		})
	}

	for _, u := range units {
		unitCh <- u
	}
	close(unitCh)
	wg.Wait()
	close(outcomeCh)

	outcomes := make([]schema.TrainOutcome, 0, len(units))
	for o := range outcomeCh {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Team != outcomes[j].Team {
			return outcomes[i].Team < outcomes[j].Team
		}
		return outcomes[i].Player < outcomes[j].Player
	})
	return outcomes
}

// trainOne fits and persists a single target.
func (t *Trainer) trainOne(ctx context.Context, u trainUnit) schema.TrainOutcome {
	start := time.Now()
	outcome := t.fitAndStore(ctx, u)

	t.recorder.RecordOutcome(outcome, time.Since(start))
	if runID, ok := getRunID(ctx); ok {
		if err := t.mgr.GetRunStore().RecordOutcome(runID, outcome); err != nil {
			t.logger.Warn("failed to record retrain outcome", "player", u.target, "error", err)
		}
	}
	t.logger.Debug("target processed", "team", u.team, "player", u.target, "status", outcome.Status, "games", outcome.GamesUsed)
	return outcome
}

func (t *Trainer) fitAndStore(ctx context.Context, u trainUnit) schema.TrainOutcome {
	outcome := schema.TrainOutcome{Team: u.team, Player: u.target}
	failed := func(err error) schema.TrainOutcome {
		outcome.Status = schema.OutcomeFailed
		outcome.Message = err.Error()
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	rows, err := t.mgr.GetLeagueStore().GetTrainingRows(ctx, u.team, u.target, u.teammates)
	if err != nil {
		return failed(fmt.Errorf("failed to load training rows: %w", err))
	}

	fit, err := FitUsageModel(u.target, rows, u.teammates, FitOptions{
		MinSample:          t.cfg.Thresholds.MinSample,
		MaxConditionNumber: t.cfg.MaxConditionNumber,
	})
	if ie, ok := AsInsufficientData(err); ok {
		outcome.Status = schema.OutcomeInsufficient
		outcome.GamesUsed = ie.Games
		outcome.Message = ie.Error()
		return outcome
	}
	if err != nil {
		return failed(err)
	}

	fit.Team = u.team
	fit.ModelVersion = t.cfg.ModelVersion
	if err := t.mgr.GetCoefficientStore().ReplaceAllForTarget(ctx, fit); err != nil {
		return failed(fmt.Errorf("failed to store coefficients: %w", err))
	}

	outcome.Status = schema.OutcomeTrained
	outcome.GamesUsed = fit.GamesUsed
	outcome.Coefficients = len(fit.Coefficients)
	if fit.LowConfidence {
		outcome.Message = "low confidence fit"
	}
	return outcome
}
