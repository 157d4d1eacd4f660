package models

import "time"

// RankedValue is one indicator observation expressed as a rolling percentile
// rank. Rank is nil when the trailing window held fewer than the configured
// minimum of non-missing observations; the nil propagates downstream, it is
// never zero-filled.
type RankedValue struct {
	IndicatorCode string
	Date          time.Time
	Raw           float64
	Rank          *float64
	DirectedRank  *float64
}

// StressLevel classifies a smoothed composite value into a regime band.
type StressLevel string

const (
	StressNormal   StressLevel = "NORMAL"
	StressModerate StressLevel = "MODERATE"
	StressHigh     StressLevel = "HIGH"
	StressExtreme  StressLevel = "EXTREME"
)

// StressIndexPoint is one day's composite output. Append-only; one per
// trading day per universe.
type StressIndexPoint struct {
	Date              time.Time
	RawComposite      float64
	SmoothedComposite float64
	MACDLine          *float64
	MACDSignal        *float64
	Level             StressLevel
	// UncoveredWeight is the weight mass of indicators missing from today's
	// snapshot. It is reported, never redistributed over the covered set.
	UncoveredWeight float64
	// WeightsFallback flags that the point was composed with previous or
	// equal weights because PCA estimation failed.
	WeightsFallback bool
}

// WeightVector is an immutable snapshot of per-indicator weights. It is
// superseded by a new snapshot on recomputation, never mutated in place.
type WeightVector struct {
	Weights      map[string]float64 `json:"weights"`
	ComputedAt   time.Time          `json:"computed_at"`
	ValidThrough time.Time          `json:"valid_through"`
	// Source records how the vector was derived: "pca", "fallback_previous"
	// or "fallback_equal".
	Source string `json:"source"`
}

// ValidAt reports whether the vector is still inside its recalculation epoch.
func (w *WeightVector) ValidAt(t time.Time) bool {
	return w != nil && !t.After(w.ValidThrough)
}

// Clone returns a deep copy so callers can never alias the shared snapshot.
func (w *WeightVector) Clone() *WeightVector {
	if w == nil {
		return nil
	}
	cp := *w
	cp.Weights = make(map[string]float64, len(w.Weights))
	for k, v := range w.Weights {
		cp.Weights[k] = v
	}
	return &cp
}

// EqualWeights builds a uniform vector over the given indicator codes.
func EqualWeights(codes []string, computedAt, validThrough time.Time) *WeightVector {
	w := make(map[string]float64, len(codes))
	if len(codes) > 0 {
		per := 1.0 / float64(len(codes))
		for _, c := range codes {
			w[c] = per
		}
	}
	return &WeightVector{Weights: w, ComputedAt: computedAt, ValidThrough: validThrough, Source: "fallback_equal"}
}

// DirectedRankPanel holds directed ranks for a universe, rows aligned by
// date, one column per indicator. Values[i][j] is the directed rank of
// Codes[j] on Dates[i]; nil marks a missing or insufficient-history cell.
type DirectedRankPanel struct {
	Codes  []string
	Dates  []time.Time
	Values [][]*float64
}
