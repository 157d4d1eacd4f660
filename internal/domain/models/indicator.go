package models

import "time"

// Observation is a single dated reading of an indicator.
// Value is nil when the source reported no data for that date.
type Observation struct {
	Date  time.Time
	Value *float64
}

// IndicatorSeries is an ordered-by-date window of observations for one
// indicator. It is read-only from the engines' perspective; the raw data
// store owns the canonical copy.
type IndicatorSeries struct {
	Code         string
	Observations []Observation
}

// Latest returns the newest observation, or nil if the series is empty.
func (s IndicatorSeries) Latest() *Observation {
	if len(s.Observations) == 0 {
		return nil
	}
	return &s.Observations[len(s.Observations)-1]
}

// LastObserved returns the date and value of the newest non-missing
// observation. ok is false when every observation is missing.
func (s IndicatorSeries) LastObserved() (time.Time, float64, bool) {
	for i := len(s.Observations) - 1; i >= 0; i-- {
		if s.Observations[i].Value != nil {
			return s.Observations[i].Date, *s.Observations[i].Value, true
		}
	}
	return time.Time{}, 0, false
}

// Values returns the non-missing values in date order.
func (s IndicatorSeries) Values() []float64 {
	out := make([]float64, 0, len(s.Observations))
	for _, o := range s.Observations {
		if o.Value != nil {
			out = append(out, *o.Value)
		}
	}
	return out
}

// Since returns the observations with Date strictly after cutoff.
func (s IndicatorSeries) Since(cutoff time.Time) []Observation {
	for i, o := range s.Observations {
		if o.Date.After(cutoff) {
			return s.Observations[i:]
		}
	}
	return nil
}

// Float is a convenience for building pointer-valued observations.
func Float(v float64) *float64 { return &v }
