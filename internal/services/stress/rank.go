package stress

import (
	"fmt"

	"StressPulse/internal/domain/models"
)

// Ranker converts raw indicator history into rolling percentile ranks.
// The rank of a value is its fractional position (0 = lowest, 1 = highest)
// among the trailing Window observations, with ties resolved by average
// rank. Fewer than MinPeriods non-missing observations in the window yields
// a nil rank that propagates downstream.
type Ranker struct {
	Window     int
	MinPeriods int
}

// NewRanker validates the window configuration.
func NewRanker(window, minPeriods int) (*Ranker, error) {
	if window < 2 {
		return nil, &models.ConfigError{Field: "rolling_window_days", Reason: fmt.Sprintf("must be >= 2, got %d", window)}
	}
	if minPeriods < 2 {
		return nil, &models.ConfigError{Field: "min_periods_for_ranking", Reason: fmt.Sprintf("must be >= 2, got %d", minPeriods)}
	}
	if minPeriods > window {
		return nil, &models.ConfigError{
			Field:  "min_periods_for_ranking",
			Reason: fmt.Sprintf("must be <= rolling_window_days (%d > %d)", minPeriods, window),
		}
	}
	return &Ranker{Window: window, MinPeriods: minPeriods}, nil
}

// RankSeries ranks every non-missing observation against its own trailing
// window. Missing observations produce no ranked value.
func (r *Ranker) RankSeries(series models.IndicatorSeries) []models.RankedValue {
	out := make([]models.RankedValue, 0, len(series.Observations))
	for i, o := range series.Observations {
		if o.Value == nil {
			continue
		}
		rv := models.RankedValue{
			IndicatorCode: series.Code,
			Date:          o.Date,
			Raw:           *o.Value,
		}
		lo := i - r.Window + 1
		if lo < 0 {
			lo = 0
		}
		window := make([]float64, 0, r.Window)
		for _, w := range series.Observations[lo : i+1] {
			if w.Value != nil {
				window = append(window, *w.Value)
			}
		}
		if rank, ok := percentileRank(*o.Value, window, r.MinPeriods); ok {
			rv.Rank = &rank
		}
		out = append(out, rv)
	}
	return out
}

// percentileRank returns the fractional position of v among window values.
// ok is false when the window holds fewer than minPeriods observations.
func percentileRank(v float64, window []float64, minPeriods int) (float64, bool) {
	n := len(window)
	if n < minPeriods || n < 2 {
		return 0, false
	}
	less, equal := 0, 0
	for _, w := range window {
		switch {
		case w < v:
			less++
		case w == v:
			equal++
		}
	}
	// 1-based average position of the tied group, mapped onto [0, 1].
	pos := float64(less) + (float64(equal)+1)/2
	return (pos - 1) / float64(n-1), true
}
