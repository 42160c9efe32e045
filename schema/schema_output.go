package schema

import (
	"math"
	"sort"
)

// Round2 rounds a value to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SignificanceMarker returns "*" for coefficients significant at the 5% level.
func SignificanceMarker(p float64) string {
	if p < SignificantPValue {
		return "*"
	}
	return ""
}

// Rounded returns a copy of the prediction with numbers rounded to two decimals.
func (p Prediction) Rounded() Prediction {
	out := p
	out.PredictedUsage = Round2(p.PredictedUsage)
	out.BaselineUsage = Round2(p.BaselineUsage)
	out.TotalDelta = Round2(p.TotalDelta)
	out.Breakdown = make([]BreakdownEntry, len(p.Breakdown))
	for i, b := range p.Breakdown {
		b.Delta = Round2(b.Delta)
		b.PValue = math.Round(b.PValue*10000) / 10000
		out.Breakdown[i] = b
	}
	return out
}

// SortedCoefficients returns the model's coefficients ordered by absolute
// delta, largest first, then by teammate name.
func (m PlayerModel) SortedCoefficients() []TeammateCoefficient {
	out := make([]TeammateCoefficient, 0, len(m.Coefficients))
	for _, c := range m.Coefficients {
		out = append(out, c)
	}
	SortCoefficients(out)
	return out
}

// SortCoefficients orders coefficients by absolute delta descending, then name.
func SortCoefficients(cs []TeammateCoefficient) {
	sort.Slice(cs, func(i, j int) bool {
		di, dj := math.Abs(cs[i].Delta), math.Abs(cs[j].Delta)
		if di != dj {
			return di > dj
		}
		return cs[i].Teammate < cs[j].Teammate
	})
}

// TeamListing is a franchise with the number of games recorded for it.
type TeamListing struct {
	Team
	Games int `json:"games"`
}
