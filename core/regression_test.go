package core

import (
	"math"
	"testing"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

var fitOpts = FitOptions{MinSample: 10, MaxConditionNumber: 1e6}

// buildRows creates one training row per usage value. absentFor maps a
// teammate to the row indices in which they sat out.
func buildRows(usage []float64, absentFor map[string][]int) []schema.TrainingRow {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]schema.TrainingRow, len(usage))
	for i, u := range usage {
		rows[i] = schema.TrainingRow{GameDate: start.AddDate(0, 0, i), Usage: u, Absent: map[string]bool{}}
	}
	for tm, idx := range absentFor {
		for _, i := range idx {
			rows[i].Absent[tm] = true
		}
	}
	return rows
}

// noisyUsage returns usage around 22 with a +6 bump on the given indices.
func noisyUsage(n int, bumped []int) []float64 {
	noise := []float64{0.4, -0.4, 0.2, -0.2, 0.1, -0.1, 0.3, -0.3, 0, 0}
	out := make([]float64, n)
	for i := range out {
		out[i] = 22 + noise[i%len(noise)]
	}
	for _, i := range bumped {
		out[i] += 6
	}
	return out
}

func TestFitUsageModel_SingleTeammate(t *testing.T) {
	absent := []int{0, 3, 6, 9, 12}
	rows := buildRows(noisyUsage(20, absent), map[string][]int{"star": absent})

	fit, err := FitUsageModel("target", rows, []string{"star"}, fitOpts)
	require.NoError(t, err)

	assert.Equal(t, 20, fit.GamesUsed)
	require.Len(t, fit.Coefficients, 1)
	assert.Equal(t, "star", fit.Coefficients[0].Teammate)
	assert.InDelta(t, 6.0, fit.Coefficients[0].Delta, 0.5)
	assert.InDelta(t, 22.0, fit.Baseline, 0.5)
	assert.Less(t, fit.Coefficients[0].PValue, 0.001)
	assert.Greater(t, fit.RSquared, 0.9)
	assert.False(t, fit.LowConfidence)
	assert.Empty(t, fit.Dropped)
}

func TestFitUsageModel_InsufficientData(t *testing.T) {
	rows := buildRows(noisyUsage(9, nil), nil)

	_, err := FitUsageModel("target", rows, []string{"star"}, fitOpts)
	ie, ok := AsInsufficientData(err)
	require.True(t, ok)
	assert.Equal(t, 9, ie.Games)
	assert.Equal(t, 10, ie.Required)
}

func TestFitUsageModel_DropsZeroVarianceColumns(t *testing.T) {
	all := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	rows := buildRows(noisyUsage(12, []int{2, 5}), map[string][]int{
		"ironman":  nil,
		"injured":  all,
		"rotation": {2, 5},
	})

	fit, err := FitUsageModel("target", rows, []string{"rotation", "injured", "ironman"}, fitOpts)
	require.NoError(t, err)

	assert.Equal(t, []string{"injured", "ironman"}, fit.Dropped)
	require.Len(t, fit.Coefficients, 1)
	assert.Equal(t, "rotation", fit.Coefficients[0].Teammate)
}

func TestFitUsageModel_AllColumnsDroppedKeepsBaseline(t *testing.T) {
	rows := buildRows(noisyUsage(10, nil), nil)

	fit, err := FitUsageModel("target", rows, []string{"ironman"}, fitOpts)
	require.NoError(t, err)
	assert.Empty(t, fit.Coefficients)
	assert.Equal(t, []string{"ironman"}, fit.Dropped)
	assert.InDelta(t, 22.0, fit.Baseline, 1e-9)
}

func TestFitUsageModel_IgnoresTargetAndDuplicates(t *testing.T) {
	absent := []int{1, 4, 7}
	rows := buildRows(noisyUsage(12, absent), map[string][]int{"star": absent})

	fit, err := FitUsageModel("target", rows, []string{"star", "target", "star", ""}, fitOpts)
	require.NoError(t, err)
	require.Len(t, fit.Coefficients, 1)
	assert.Empty(t, fit.Dropped)
}

func TestFitUsageModel_Reproducible(t *testing.T) {
	rows := buildRows(noisyUsage(30, []int{1, 2, 10, 20}), map[string][]int{
		"a": {1, 2, 10, 20},
		"b": {2, 5, 6, 15, 25},
		"c": {0, 10, 11, 12},
	})
	teammates := []string{"c", "a", "b"}

	first, err := FitUsageModel("target", rows, teammates, fitOpts)
	require.NoError(t, err)
	second, err := FitUsageModel("target", rows, []string{"b", "c", "a"}, fitOpts)
	require.NoError(t, err)

	assert.InDelta(t, first.Baseline, second.Baseline, 1e-12)
	require.Len(t, second.Coefficients, len(first.Coefficients))
	for i := range first.Coefficients {
		assert.Equal(t, first.Coefficients[i].Teammate, second.Coefficients[i].Teammate)
		assert.InDelta(t, first.Coefficients[i].Delta, second.Coefficients[i].Delta, 1e-12)
		assert.InDelta(t, first.Coefficients[i].PValue, second.Coefficients[i].PValue, 1e-12)
	}
	// Columns are ordered by teammate name
	assert.Equal(t, "a", first.Coefficients[0].Teammate)
}

func TestFitUsageModel_CollinearTeammatesAreLowConfidence(t *testing.T) {
	together := []int{0, 4, 8, 12}
	rows := buildRows(noisyUsage(16, together), map[string][]int{"twin_a": together, "twin_b": together})

	fit, err := FitUsageModel("target", rows, []string{"twin_a", "twin_b"}, fitOpts)
	require.NoError(t, err)

	assert.True(t, fit.LowConfidence)
	require.Len(t, fit.Coefficients, 2)
	// Minimum-norm solution splits the shared effect evenly
	assert.InDelta(t, fit.Coefficients[0].Delta, fit.Coefficients[1].Delta, 1e-6)
	assert.InDelta(t, 6.0, fit.Coefficients[0].Delta+fit.Coefficients[1].Delta, 0.5)
	assert.Greater(t, fit.ConditionNumber, fitOpts.MaxConditionNumber)
}

func TestFitUsageModel_ExactFit(t *testing.T) {
	absent := []int{0, 5}
	usage := make([]float64, 10)
	for i := range usage {
		usage[i] = 20
	}
	for _, i := range absent {
		usage[i] = 25
	}
	rows := buildRows(usage, map[string][]int{"star": absent})

	fit, err := FitUsageModel("target", rows, []string{"star"}, fitOpts)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, fit.Coefficients[0].Delta, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.Equal(t, 0.0, fit.Coefficients[0].PValue)
}

func TestFitUsageModel_ConstantUsage(t *testing.T) {
	usage := make([]float64, 10)
	rows := buildRows(usage, map[string][]int{"star": {1, 2}})

	fit, err := FitUsageModel("target", rows, []string{"star"}, fitOpts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fit.RSquared)
	assert.InDelta(t, 0.0, fit.Coefficients[0].Delta, 1e-9)
	assert.Equal(t, 1.0, fit.Coefficients[0].PValue)
}

func TestTwoSidedPValue(t *testing.T) {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 10}

	assert.InDelta(t, 1.0, twoSidedPValue(dist, 0, 1), 1e-12)
	assert.Equal(t, 0.0, twoSidedPValue(dist, 2, 0))
	assert.Equal(t, 1.0, twoSidedPValue(dist, 0, math.NaN()))
	// t = 2.228 is the 97.5th percentile at 10 degrees of freedom
	assert.InDelta(t, 0.05, twoSidedPValue(dist, 2.228, 1), 1e-3)
	assert.InDelta(t, twoSidedPValue(dist, 1.5, 1), twoSidedPValue(dist, -1.5, 1), 1e-12)
}

func BenchmarkFitUsageModel(b *testing.B) {
	teammates := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	absentFor := make(map[string][]int, len(teammates))
	for k, tm := range teammates {
		for i := k; i < 82; i += k + 3 {
			absentFor[tm] = append(absentFor[tm], i)
		}
	}
	rows := buildRows(noisyUsage(82, absentFor["a"]), absentFor)

	for b.Loop() {
		if _, err := FitUsageModel("target", rows, teammates, fitOpts); err != nil {
			b.Fatal(err)
		}
	}
}
