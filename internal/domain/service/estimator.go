package service

import (
	"StressPulse/internal/domain/models"
)

// WeightEstimator derives a weight vector over the indicators of a directed
// rank panel. The static PCA estimator is the default implementation; the
// interface is the extension point for a future regime-aware estimator.
type WeightEstimator interface {
	// Estimate returns a vector whose weights are non-negative and sum to 1
	// over the indicators included in the solution. It returns
	// *models.InsufficientDataError when the panel cannot support an
	// estimate; it never emits degenerate weights.
	Estimate(panel models.DirectedRankPanel) (*models.WeightVector, error)
}
