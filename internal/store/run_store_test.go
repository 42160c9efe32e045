package store

import (
	"testing"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// BeginRun should return 0 for NoneBackend
	runID, runUUID, err := store.BeginRun(time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.Empty(t, runUUID)

	// Other operations should not error
	assert.NoError(t, store.EndRun(1, time.Now(), schema.RetrainSummary{}))
	assert.NoError(t, store.RecordOutcome(1, schema.TrainOutcome{Team: testTeam, Player: "x"}))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestRunStore_SQLite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	startTime := time.Now().Add(-2 * time.Second)
	runID, runUUID, err := store.BeginRun(startTime, map[string]any{"model_version": "additive_v1", "workers": 4})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))
	_, err = uuid.Parse(runUUID)
	assert.NoError(t, err, "run UUID should be a valid UUID")

	require.NoError(t, store.RecordOutcome(runID, schema.TrainOutcome{
		Team: testTeam, Player: "jayson_tatum", Status: schema.OutcomeTrained, GamesUsed: 60, Coefficients: 5,
	}))
	require.NoError(t, store.RecordOutcome(runID, schema.TrainOutcome{
		Team: testTeam, Player: "sam_hauser", Status: schema.OutcomeInsufficient, GamesUsed: 4, Message: "too few games",
	}))

	summary := schema.RetrainSummary{TotalTargets: 2, Trained: 1, Skipped: 1, CoefficientsWritten: 5}
	require.NoError(t, store.EndRun(runID, time.Now(), summary))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, runUUID, run.RunUUID)
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.GreaterOrEqual(t, *run.RunDurationMs, int32(2000))
	assert.Equal(t, int32(2), run.TotalTargets)
	assert.Equal(t, int32(1), run.Trained)
	assert.Equal(t, int32(5), run.CoefficientsWritten)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"model_version":"additive_v1","workers":4}`, *run.ConfigParams)

	outcomes, err := store.GetAllOutcomes()
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "jayson_tatum", outcomes[0].Player)
	assert.Equal(t, schema.OutcomeTrained, outcomes[0].Status)
	assert.Nil(t, outcomes[0].Message)
	require.NotNil(t, outcomes[1].Message)
	assert.Equal(t, "too few games", *outcomes[1].Message)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, runUUID, status.LastRunUUID)
	assert.Equal(t, 1, status.TotalTrained)
	assert.Equal(t, int64(2), status.TableSizes[outcomesTable])
}

func TestRunStore_UnfinishedRun(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, err = store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
}

func TestRunStore_EndRunUnknownID(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndRun(999, time.Now(), schema.RetrainSummary{})
	assert.Error(t, err)
}
