package core

import (
	"math"
	"testing"
)

// FuzzUsageRate checks that usage is never negative or NaN for finite inputs.
func FuzzUsageRate(f *testing.F) {
	seeds := [][4]float64{
		{20, 6, 3, 36},
		{0, 0, 0, 0},
		{10, 4, 2, -5},
		{-3, 2, 1, 30},
		{math.NaN(), 1, 1, 12},
		{1e9, 1e9, 1e9, 1e-9},
	}
	for _, s := range seeds {
		f.Add(s[0], s[1], s[2], s[3])
	}

	f.Fuzz(func(t *testing.T, fga, fta, tov, minutes float64) {
		for _, v := range []float64{fga, fta, tov, minutes} {
			if math.IsInf(v, 0) {
				t.Skip()
			}
		}
		usage := UsageRate(fga, fta, tov, minutes)
		if math.IsNaN(usage) || usage < 0 {
			t.Fatalf("UsageRate(%v, %v, %v, %v) = %v", fga, fta, tov, minutes, usage)
		}
		if clampStat(minutes) == 0 && usage != 0 {
			t.Fatalf("zero minutes must give zero usage, got %v", usage)
		}
	})
}
