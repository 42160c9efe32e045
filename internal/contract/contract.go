// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
)

// StoreManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetLeagueStore() LeagueStore
	GetCoefficientStore() CoefficientStore
	GetRunStore() RunStore
}

// LeagueStore holds the games, participation facts and usage observations
// that the regression engine reads.
type LeagueStore interface {
	// --- Writes ---

	// UpsertGame inserts or overwrites the game keyed by (team, game_date).
	UpsertGame(ctx context.Context, game schema.Game) error

	// RecordParticipation inserts or overwrites the played flag for (team, player, date).
	RecordParticipation(ctx context.Context, team, player string, date time.Time, played bool) error

	// UpsertUsage inserts or overwrites the usage observation for (team, player, date).
	UpsertUsage(ctx context.Context, obs schema.UsageObservation) error

	// --- Reads ---

	// CountTeamGames returns the number of distinct game dates recorded for a team.
	CountTeamGames(ctx context.Context, team string) (int, error)

	// GetPlayerAggregates returns games played and average minutes per player on a team.
	GetPlayerAggregates(ctx context.Context, team string) ([]schema.PlayerAggregate, error)

	// GetTrainingRows returns the games the target played, ordered by date,
	// with an absence flag for every requested teammate.
	GetTrainingRows(ctx context.Context, team, target string, teammates []string) ([]schema.TrainingRow, error)

	// GetUsageSplits returns every played game of every other player on the team,
	// joined with whether the reference player played that date.
	GetUsageSplits(ctx context.Context, team, reference string) ([]schema.SplitRow, error)

	// ListTeams returns the teams that have at least one recorded game.
	ListTeams(ctx context.Context) ([]string, error)

	// GetStatus returns status information about the league tables.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// CoefficientStore persists fitted usage models keyed by (target, teammate, version).
type CoefficientStore interface {
	// Upsert inserts or overwrites a single coefficient row and its fit header.
	Upsert(ctx context.Context, rec schema.CoefficientRecord) error

	// ReplaceAllForTarget atomically swaps the target's fit and coefficients for the fit's version.
	ReplaceAllForTarget(ctx context.Context, fit schema.ModelFit) error

	// Get returns the stored model for a target, or sql.ErrNoRows when none exists.
	Get(ctx context.Context, target, version string) (schema.PlayerModel, error)

	// LatestVersion returns the most recently updated model version for a target.
	LatestVersion(ctx context.Context, target string) (string, error)

	// ListModels returns a summary of stored models, optionally filtered by team.
	ListModels(ctx context.Context, team string) ([]schema.ModelSummary, error)

	// GetAllFits returns every stored fit header.
	GetAllFits(ctx context.Context) ([]schema.FitRecord, error)

	// GetAllCoefficients returns every stored coefficient row.
	GetAllCoefficients(ctx context.Context) ([]schema.CoefficientRecord, error)

	// GetStatus returns status information about the model tables.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// RunStore defines the interface for tracking retrain runs and their per-target outcomes.
type RunStore interface {
	// BeginRun creates a new retrain run and returns its numeric ID and UUID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, string, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RetrainSummary) error

	// RecordOutcome stores the result of retraining one target
	RecordOutcome(runID int64, outcome schema.TrainOutcome) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns retrieves all retrain runs
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllOutcomes retrieves all recorded outcomes
	GetAllOutcomes() ([]schema.OutcomeRecord, error)

	// Close closes the underlying connection
	Close() error
}
