package core

import (
	"errors"
	"math"
	"slices"

	"github.com/NoahAizen44/SmarterTips/schema"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FitOptions tunes a single usage regression.
type FitOptions struct {
	MinSample          int
	MaxConditionNumber float64
}

// errFactorize is returned when the SVD of the design matrix does not converge.
var errFactorize = errors.New("design matrix factorization failed")

// designColumn is one teammate absence indicator kept in the design matrix.
type designColumn struct {
	teammate string
	values   []float64
}

// FitUsageModel regresses the target's usage on teammate absence indicators
// over the given rows, which must only contain games the target played.
//
// Columns without variance are dropped and listed in ModelFit.Dropped. The
// least-squares solution comes from a thin SVD pseudo-inverse, so rank
// deficient designs get the minimum-norm split and are marked LowConfidence
// together with designs whose condition number exceeds MaxConditionNumber.
func FitUsageModel(player string, rows []schema.TrainingRow, teammates []string, opts FitOptions) (schema.ModelFit, error) {
	n := len(rows)
	if required := max(opts.MinSample, 2); n < required {
		return schema.ModelFit{}, &InsufficientDataError{Player: player, Games: n, Required: required}
	}

	fit := schema.ModelFit{Player: player, GamesUsed: n}

	candidates := slices.Clone(teammates)
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	var columns []designColumn
	for _, tm := range candidates {
		if tm == player || tm == "" {
			continue
		}
		values := make([]float64, n)
		absences := 0
		for i, row := range rows {
			if row.Absent[tm] {
				values[i] = 1
				absences++
			}
		}
		if absences == 0 || absences == n {
			fit.Dropped = append(fit.Dropped, tm)
			continue
		}
		columns = append(columns, designColumn{teammate: tm, values: values})
	}

	p := len(columns) + 1
	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i, row := range rows {
		x.Set(i, 0, 1)
		for j, col := range columns {
			x.Set(i, j+1, col.values[i])
		}
		y[i] = row.Usage
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return schema.ModelFit{}, errFactorize
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	tol := values[0] * float64(max(n, p)) * machineEpsilon
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}

	df := n - rank
	if df <= 0 {
		return schema.ModelFit{}, &InsufficientDataError{Player: player, Games: n, Required: rank + 1}
	}

	// Project y onto the retained left singular vectors.
	uty := make([]float64, rank)
	for i := range rank {
		var sum float64
		for k := range n {
			sum += u.At(k, i) * y[k]
		}
		uty[i] = sum
	}

	beta := make([]float64, p)
	covDiag := make([]float64, p)
	for j := range p {
		for i := range rank {
			vji := v.At(j, i)
			beta[j] += vji * uty[i] / values[i]
			covDiag[j] += vji * vji / (values[i] * values[i])
		}
	}

	var rss float64
	for i := range n {
		fitted := beta[0]
		for j := 1; j < p; j++ {
			fitted += beta[j] * x.At(i, j)
		}
		r := y[i] - fitted
		rss += r * r
	}
	tss := stat.Variance(y, nil) * float64(n-1)
	if tss > 0 {
		fit.RSquared = 1 - rss/tss
	}

	sigma2 := rss / float64(df)
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}

	fit.Baseline = beta[0]
	fit.Coefficients = make([]schema.TeammateCoefficient, 0, len(columns))
	for j, col := range columns {
		idx := j + 1
		se := math.Sqrt(sigma2 * covDiag[idx])
		fit.Coefficients = append(fit.Coefficients, schema.TeammateCoefficient{
			Teammate: col.teammate,
			Delta:    beta[idx],
			PValue:   twoSidedPValue(tdist, beta[idx], se),
		})
	}

	smallest := values[len(values)-1]
	fit.ConditionNumber = values[0] / math.Max(smallest, tol)
	fit.LowConfidence = rank < p || fit.ConditionNumber > opts.MaxConditionNumber
	return fit, nil
}

// machineEpsilon is the float64 spacing at 1.0, used for the rank tolerance.
const machineEpsilon = 2.220446049250313e-16

// twoSidedPValue returns P(|T| >= |beta/se|). A zero standard error means the
// fit is exact: any non-zero coefficient is then maximally significant.
func twoSidedPValue(dist distuv.StudentsT, beta, se float64) float64 {
	if se == 0 || math.IsNaN(se) {
		if math.Abs(beta) > 1e-12 {
			return 0
		}
		return 1
	}
	t := math.Abs(beta / se)
	p := 2 * (1 - dist.CDF(t))
	return math.Min(math.Max(p, 0), 1)
}
