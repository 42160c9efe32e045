package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoefficientStore(t *testing.T) *CoefficientStoreImpl {
	t.Helper()
	store, err := NewCoefficientStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func sampleFit() schema.ModelFit {
	return schema.ModelFit{
		Player:          "jaylen_brown",
		Team:            testTeam,
		ModelVersion:    schema.DefaultModelVersion,
		Baseline:        24.5,
		GamesUsed:       40,
		RSquared:        0.31,
		ConditionNumber: 5.5,
		Dropped:         []string{"sam_hauser"},
		Coefficients: []schema.TeammateCoefficient{
			{Teammate: "jayson_tatum", Delta: 4.2, PValue: 0.001},
			{Teammate: "derrick_white", Delta: 0.8, PValue: 0.3},
		},
	}
}

func TestCoefficientStore_NoneBackend(t *testing.T) {
	store, err := NewCoefficientStore(schema.NoneBackend, "")
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, store.ReplaceAllForTarget(ctx, sampleFit()))
	assert.NoError(t, store.Upsert(ctx, schema.CoefficientRecord{Player: "x", Teammate: "y"}))

	_, err = store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	models, err := store.ListModels(ctx, "")
	assert.NoError(t, err)
	assert.Empty(t, models)
	assert.NoError(t, store.Close())
}

func TestCoefficientStore_ReplaceAllAndGet(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAllForTarget(ctx, sampleFit()))

	model, err := store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)

	assert.Equal(t, testTeam, model.Fit.Team)
	assert.InDelta(t, 24.5, model.Fit.BaselineUsage, 1e-9)
	assert.Equal(t, 40, model.Fit.GamesUsed)
	assert.InDelta(t, 5.5, model.Fit.ConditionNumber, 1e-9)
	assert.Equal(t, []string{"sam_hauser"}, model.Fit.Dropped)
	assert.False(t, model.Fit.UpdatedAt.IsZero())

	require.Len(t, model.Coefficients, 2)
	assert.InDelta(t, 4.2, model.Coefficients["jayson_tatum"].Delta, 1e-9)
	assert.InDelta(t, 0.3, model.Coefficients["derrick_white"].PValue, 1e-9)
}

func TestCoefficientStore_ReplaceAllRemovesStaleTeammates(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAllForTarget(ctx, sampleFit()))

	refit := sampleFit()
	refit.Baseline = 25.0
	refit.Dropped = nil
	refit.Coefficients = []schema.TeammateCoefficient{{Teammate: "kristaps_porzingis", Delta: 2.1, PValue: 0.04}}
	require.NoError(t, store.ReplaceAllForTarget(ctx, refit))

	model, err := store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, model.Fit.BaselineUsage, 1e-9)
	assert.Empty(t, model.Fit.Dropped)
	require.Len(t, model.Coefficients, 1)
	assert.Contains(t, model.Coefficients, "kristaps_porzingis")
}

func TestCoefficientStore_ReplaceAllIsAtomic(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAllForTarget(ctx, sampleFit()))

	// Duplicate teammates violate the primary key part way through the insert
	bad := sampleFit()
	bad.Baseline = 99
	bad.Coefficients = []schema.TeammateCoefficient{
		{Teammate: "jayson_tatum", Delta: 1},
		{Teammate: "jayson_tatum", Delta: 2},
	}
	require.Error(t, store.ReplaceAllForTarget(ctx, bad))

	model, err := store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)
	assert.InDelta(t, 24.5, model.Fit.BaselineUsage, 1e-9, "previous fit must survive a failed replace")
	assert.Len(t, model.Coefficients, 2)
}

func TestCoefficientStore_ReplaceAllWithNoCoefficientsKeepsBaseline(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	fit := sampleFit()
	fit.Coefficients = nil
	fit.Dropped = []string{"jayson_tatum", "derrick_white"}
	require.NoError(t, store.ReplaceAllForTarget(ctx, fit))

	model, err := store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)
	assert.InDelta(t, 24.5, model.Fit.BaselineUsage, 1e-9)
	assert.Empty(t, model.Coefficients)
}

func TestCoefficientStore_GetMissing(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "nobody", schema.DefaultModelVersion)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.Get(ctx, "nobody", schema.LatestModelVersion)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCoefficientStore_LatestVersion(t *testing.T) {
	store := newTestCoefficientStore(t)
	store.now = fixedClock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	v1 := sampleFit()
	require.NoError(t, store.ReplaceAllForTarget(ctx, v1))

	v2 := sampleFit()
	v2.ModelVersion = "additive_v2"
	v2.Baseline = 26.0
	require.NoError(t, store.ReplaceAllForTarget(ctx, v2))

	latest, err := store.LatestVersion(ctx, "jaylen_brown")
	require.NoError(t, err)
	assert.Equal(t, "additive_v2", latest)

	model, err := store.Get(ctx, "jaylen_brown", schema.LatestModelVersion)
	require.NoError(t, err)
	assert.Equal(t, "additive_v2", model.Fit.ModelVersion)
	assert.InDelta(t, 26.0, model.Fit.BaselineUsage, 1e-9)

	// Older versions coexist
	old, err := store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)
	assert.InDelta(t, 24.5, old.Fit.BaselineUsage, 1e-9)
}

func TestCoefficientStore_UpsertIsIdempotent(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	rec := schema.CoefficientRecord{
		Player: "jaylen_brown", Team: testTeam, Teammate: "jayson_tatum", ModelVersion: schema.DefaultModelVersion,
		UsageDelta: 4.0, BaselineUsage: 24.0, PValue: 0.02, GamesUsed: 30, RSquared: 0.2,
	}
	require.NoError(t, store.Upsert(ctx, rec))
	rec.UsageDelta = 4.5
	require.NoError(t, store.Upsert(ctx, rec))

	all, err := store.GetAllCoefficients(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 4.5, all[0].UsageDelta, 1e-9)

	model, err := store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)
	assert.InDelta(t, 24.0, model.Fit.BaselineUsage, 1e-9)
	assert.Equal(t, 30, model.Fit.GamesUsed)

	// A later single-row upsert keeps the header fields it does not carry.
	fit := sampleFit()
	fit.LowConfidence = true
	fit.ConditionNumber = 2e7
	fit.Dropped = []string{"sam_hauser"}
	require.NoError(t, store.ReplaceAllForTarget(ctx, fit))

	rec.BaselineUsage = 25.0
	rec.GamesUsed = 41
	rec.RSquared = 0.33
	rec.LowConfidence = false
	require.NoError(t, store.Upsert(ctx, rec))

	model, err = store.Get(ctx, "jaylen_brown", schema.DefaultModelVersion)
	require.NoError(t, err)
	assert.True(t, model.Fit.LowConfidence)
	assert.InDelta(t, 2e7, model.Fit.ConditionNumber, 1e-3)
	assert.Equal(t, []string{"sam_hauser"}, model.Fit.Dropped)
	assert.InDelta(t, 25.0, model.Fit.BaselineUsage, 1e-9)
	assert.Equal(t, 41, model.Fit.GamesUsed)
	assert.InDelta(t, 0.33, model.Fit.RSquared, 1e-9)
	assert.InDelta(t, 4.5, model.Coefficients["jayson_tatum"].Delta, 1e-9)
	assert.Contains(t, model.Coefficients, "derrick_white")
}

func TestCoefficientStore_GetDuringReplaceSeesOneGeneration(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	generation := func(baseline float64, teammate string) schema.ModelFit {
		return schema.ModelFit{
			Player:       "jaylen_brown",
			Team:         testTeam,
			ModelVersion: schema.DefaultModelVersion,
			Baseline:     baseline,
			GamesUsed:    40,
			Coefficients: []schema.TeammateCoefficient{{Teammate: teammate, Delta: baseline / 10, PValue: 0.01}},
		}
	}
	even, odd := generation(10, "even"), generation(20, "odd")
	require.NoError(t, store.ReplaceAllForTarget(ctx, even))

	const reads = 2000
	done := make(chan struct{})
	writeErr := make(chan error, 1)
	go func() {
		defer close(writeErr)
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			fit := even
			if i%2 == 1 {
				fit = odd
			}
			if err := store.ReplaceAllForTarget(ctx, fit); err != nil {
				writeErr <- err
				return
			}
		}
	}()

	var mixed int
	for i := 0; i < reads; i++ {
		model, err := store.Get(ctx, "jaylen_brown", schema.LatestModelVersion)
		require.NoError(t, err)
		want := "even"
		if model.Fit.BaselineUsage == 20 {
			want = "odd"
		}
		if _, ok := model.Coefficients[want]; !ok || len(model.Coefficients) != 1 {
			mixed++
		}
	}
	close(done)
	require.NoError(t, <-writeErr)
	assert.Zero(t, mixed, "reads mixing two generations")
}

func TestCoefficientStore_ListModelsAndStatus(t *testing.T) {
	store := newTestCoefficientStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAllForTarget(ctx, sampleFit()))
	other := sampleFit()
	other.Player = "jalen_brunson"
	other.Team = "new_york_knicks"
	other.LowConfidence = true
	other.Coefficients = other.Coefficients[:1]
	require.NoError(t, store.ReplaceAllForTarget(ctx, other))

	all, err := store.ListModels(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "jaylen_brown", all[0].Player)
	assert.Equal(t, 2, all[0].Teammates)
	assert.Equal(t, 1, all[1].Teammates)
	assert.True(t, all[1].LowConfidence)

	knicks, err := store.ListModels(ctx, "new_york_knicks")
	require.NoError(t, err)
	require.Len(t, knicks, 1)
	assert.Equal(t, "jalen_brunson", knicks[0].Player)

	fits, err := store.GetAllFits(ctx)
	require.NoError(t, err)
	assert.Len(t, fits, 2)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.Models)
	assert.Equal(t, int64(3), status.TableSizes[coefficientsTable])
	assert.False(t, status.LastModelTime.IsZero())
}
