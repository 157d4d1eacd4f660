package stress

import (
	"fmt"

	"StressPulse/internal/domain/models"
)

// MACDConfig parameterizes the optional momentum overlay computed on the
// smoothed composite series.
type MACDConfig struct {
	Enabled bool
	Fast    int
	Slow    int
	Signal  int
}

// Validate checks the span ordering.
func (c MACDConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Fast < 1 || c.Slow < 1 || c.Signal < 1 {
		return &models.ConfigError{Field: "stress.macd", Reason: "spans must be >= 1"}
	}
	if c.Fast >= c.Slow {
		return &models.ConfigError{
			Field:  "stress.macd",
			Reason: fmt.Sprintf("fast span %d must be below slow span %d", c.Fast, c.Slow),
		}
	}
	return nil
}

// MinHistory is the number of points required before the overlay produces
// values; below it the MACD fields stay null.
func (c MACDConfig) MinHistory() int { return c.Slow + c.Signal }

// Latest computes MACD(fast, slow, signal) over the series and returns the
// newest line and signal values. Both are nil when the overlay is disabled
// or history is too short.
func (c MACDConfig) Latest(xs []float64) (line, signal *float64) {
	if !c.Enabled || len(xs) < c.MinHistory() {
		return nil, nil
	}
	fast := ema(xs, c.Fast)
	slow := ema(xs, c.Slow)
	macd := make([]float64, len(xs))
	for i := range xs {
		macd[i] = fast[i] - slow[i]
	}
	sig := ema(macd, c.Signal)

	l := macd[len(macd)-1]
	s := sig[len(sig)-1]
	return &l, &s
}
