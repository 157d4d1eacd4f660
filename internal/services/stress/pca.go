package stress

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"StressPulse/internal/domain/models"
	domsvc "StressPulse/internal/domain/service"
)

// PCAEstimator derives indicator weights from the principal components of
// the directed rank panel. Component retention combines the Kaiser
// criterion with a cumulative explained-variance target; each indicator's
// weight is its summed squared loadings over the retained components,
// normalized to 1.
type PCAEstimator struct {
	EigenvalueThreshold float64
	VarianceExplained   float64
	ValidityDays        int

	now func() time.Time
}

// NewPCAEstimator builds the estimator with the given retention thresholds
// and weight-vector validity epoch.
func NewPCAEstimator(eigenThreshold, varianceExplained float64, validityDays int) *PCAEstimator {
	return &PCAEstimator{
		EigenvalueThreshold: eigenThreshold,
		VarianceExplained:   varianceExplained,
		ValidityDays:        validityDays,
		now:                 time.Now,
	}
}

var _ domsvc.WeightEstimator = (*PCAEstimator)(nil)

// Estimate computes a weight vector over the panel's indicators using only
// complete-case rows (every indicator non-nil). Partial rows are dropped,
// never imputed.
func (e *PCAEstimator) Estimate(panel models.DirectedRankPanel) (*models.WeightVector, error) {
	rows := completeRows(panel)
	p := len(panel.Codes)
	if len(rows) < 2 || p == 0 {
		return nil, &models.InsufficientDataError{
			CompleteRows: len(rows),
			Reason:       "fewer than 2 complete-case rows",
		}
	}

	std := standardize(rows, p)

	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, std, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, &models.InsufficientDataError{
			CompleteRows: len(rows),
			Reason:       "eigen decomposition failed",
		}
	}
	eigenvalues := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// gonum returns eigenvalues ascending; work in descending order.
	order := make([]int, p)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return eigenvalues[order[a]] > eigenvalues[order[b]] })

	total := 0.0
	for _, ev := range eigenvalues {
		if ev > 0 {
			total += ev
		}
	}
	if total <= 0 {
		return nil, &models.InsufficientDataError{
			CompleteRows: len(rows),
			Reason:       "no positive eigenvalues",
		}
	}

	// Take components in descending order until the variance target is met,
	// then drop any of those below the Kaiser threshold.
	prefix := 0
	cum := 0.0
	for _, idx := range order {
		prefix++
		cum += eigenvalues[idx] / total
		if cum >= e.VarianceExplained {
			break
		}
	}
	retained := make([]int, 0, prefix)
	for _, idx := range order[:prefix] {
		if eigenvalues[idx] > e.EigenvalueThreshold {
			retained = append(retained, idx)
		}
	}
	if len(retained) == 0 {
		return nil, &models.InsufficientDataError{
			CompleteRows: len(rows),
			Retained:     0,
			Reason:       "no components survive retention",
		}
	}

	// Loadings are eigenvectors scaled by sqrt(eigenvalue); weight is the
	// summed squared loading over the retained components.
	weights := make(map[string]float64, p)
	sum := 0.0
	for j, code := range panel.Codes {
		w := 0.0
		for _, k := range retained {
			loading := vectors.At(j, k) * math.Sqrt(eigenvalues[k])
			w += loading * loading
		}
		weights[code] = w
		sum += w
	}
	if sum <= 0 {
		return nil, &models.InsufficientDataError{
			CompleteRows: len(rows),
			Retained:     len(retained),
			Reason:       "degenerate loadings",
		}
	}
	for code := range weights {
		weights[code] /= sum
	}

	computedAt := e.now().UTC()
	return &models.WeightVector{
		Weights:      weights,
		ComputedAt:   computedAt,
		ValidThrough: computedAt.AddDate(0, 0, e.ValidityDays),
		Source:       "pca",
	}, nil
}

// completeRows keeps only panel rows where every indicator has a directed
// rank.
func completeRows(panel models.DirectedRankPanel) [][]float64 {
	rows := make([][]float64, 0, len(panel.Values))
	for _, row := range panel.Values {
		complete := true
		vals := make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				complete = false
				break
			}
			vals[j] = *v
		}
		if complete && len(row) > 0 {
			rows = append(rows, vals)
		}
	}
	return rows
}

// standardize centers each column and scales it to unit sample variance.
// A zero-variance column is centered only; it then contributes nothing to
// any component.
func standardize(rows [][]float64, p int) *mat.Dense {
	n := len(rows)
	out := mat.NewDense(n, p, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = rows[i][j]
		}
		mean, sd := stat.MeanStdDev(col, nil)
		for i := 0; i < n; i++ {
			v := col[i] - mean
			if sd > 0 {
				v /= sd
			}
			out.Set(i, j, v)
		}
	}
	return out
}
