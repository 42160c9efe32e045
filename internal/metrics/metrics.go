// Package metrics records retrain throughput and outcomes, in memory and through OpenTelemetry.
package metrics

import (
	"sync"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
)

type outcomeStats struct {
	trained      int
	skipped      int
	failed       int
	coefficients int
	lastFit      time.Duration
}

// Recorder captures retrain metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	mu      sync.Mutex
	stats   map[string]*outcomeStats
	batches int
	otel    *otelInstruments
}

// NewRecorder returns an in-memory recorder without exporters.
func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*outcomeStats),
		otel:  otel,
	}
}

// RecordOutcome tracks the result of fitting one target on a team.
func (r *Recorder) RecordOutcome(outcome schema.TrainOutcome, duration time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.stats[outcome.Team]
	if !ok {
		stats = &outcomeStats{}
		r.stats[outcome.Team] = stats
	}
	switch outcome.Status {
	case schema.OutcomeTrained:
		stats.trained++
		stats.coefficients += outcome.Coefficients
	case schema.OutcomeInsufficient:
		stats.skipped++
	default:
		stats.failed++
	}
	stats.lastFit = duration
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordOutcome(outcome, duration)
	}
}

// RecordBatch tracks one completed retrain batch.
func (r *Recorder) RecordBatch(summary schema.RetrainSummary) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.batches++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordBatch(summary)
	}
}

// Snapshot is a copy of the per-team counters.
type Snapshot struct {
	Trained      int
	Skipped      int
	Failed       int
	Coefficients int
	LastFit      time.Duration
}

// Snapshot returns a copy of the current stats for the team.
func (r *Recorder) Snapshot(team string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[team]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Trained:      stats.trained,
		Skipped:      stats.skipped,
		Failed:       stats.failed,
		Coefficients: stats.coefficients,
		LastFit:      stats.lastFit,
	}
}

// Batches returns how many retrain batches have completed.
func (r *Recorder) Batches() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}
