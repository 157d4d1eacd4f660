package stress

import (
	"fmt"
	"time"

	"StressPulse/internal/domain/models"
)

// Thresholds are the lower bounds of the MODERATE, HIGH and EXTREME bands.
// Bounds are inclusive; everything below Moderate is NORMAL.
type Thresholds struct {
	Moderate float64
	High     float64
	Extreme  float64
}

// Validate rejects bands that are not strictly increasing.
func (t Thresholds) Validate() error {
	if !(t.Moderate < t.High && t.High < t.Extreme) {
		return &models.ConfigError{
			Field:  "stress.thresholds",
			Reason: fmt.Sprintf("bands must be strictly increasing, got [%g, %g, %g]", t.Moderate, t.High, t.Extreme),
		}
	}
	return nil
}

// Classify maps a smoothed composite value onto its stress band.
func (t Thresholds) Classify(v float64) models.StressLevel {
	switch {
	case v >= t.Extreme:
		return models.StressExtreme
	case v >= t.High:
		return models.StressHigh
	case v >= t.Moderate:
		return models.StressModerate
	default:
		return models.StressNormal
	}
}

// Composer turns directed ranks and weights into daily stress index points.
type Composer struct {
	SmoothMethod string
	SmoothWindow int
	MACD         MACDConfig
	Thresholds   Thresholds
}

// NewComposer validates the composition configuration.
func NewComposer(method string, window int, macd MACDConfig, thresholds Thresholds) (*Composer, error) {
	if err := ValidateSmoothing(method, window); err != nil {
		return nil, err
	}
	if err := macd.Validate(); err != nil {
		return nil, err
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Composer{SmoothMethod: method, SmoothWindow: window, MACD: macd, Thresholds: thresholds}, nil
}

// RawComposite computes 100 * sum(weight_i * directed_rank_i) over the
// indicators covered by both the weights and today's directed ranks.
// Uncovered weight mass is returned alongside the value; it is never
// redistributed over the covered indicators.
func (c *Composer) RawComposite(directed map[string]*float64, wv *models.WeightVector) (value, uncovered float64) {
	if wv == nil {
		return 0, 1
	}
	for code, w := range wv.Weights {
		dr, ok := directed[code]
		if !ok || dr == nil {
			uncovered += w
			continue
		}
		value += w * *dr
	}
	return 100 * value, uncovered
}

// Compose builds the day's stress index point from the raw composite
// history (oldest first, today last). The smoothed value, optional MACD
// overlay and classification all derive from that history.
func (c *Composer) Compose(date time.Time, rawHistory []float64, uncovered float64, weightsFallback bool) models.StressIndexPoint {
	smoothed := Smooth(rawHistory, c.SmoothMethod, c.SmoothWindow)
	line, signal := c.MACD.Latest(smoothed)

	today := smoothed[len(smoothed)-1]
	return models.StressIndexPoint{
		Date:              date,
		RawComposite:      rawHistory[len(rawHistory)-1],
		SmoothedComposite: today,
		MACDLine:          line,
		MACDSignal:        signal,
		Level:             c.Thresholds.Classify(today),
		UncoveredWeight:   uncovered,
		WeightsFallback:   weightsFallback,
	}
}
