package quality

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"StressPulse/internal/domain/models"
)

// Rule is one data-quality check over an indicator's trailing history.
// The set of implementations is closed: range, spike, not_null, stale.
type Rule interface {
	Type() models.RuleType
	Severity() models.Severity
	// RequiredHistory is the number of trailing days the rule needs to be
	// decidable.
	RequiredHistory() int
	// Evaluate inspects the series window and produces exactly one finding.
	// It never returns an error: an undecidable rule yields an inconclusive
	// finding so callers can audit coverage.
	Evaluate(series models.IndicatorSeries, asOf time.Time) models.Finding
	// Validate checks the rule's parameters at load time.
	Validate() error
}

// RangeCheck fails when the latest value is present and falls outside
// [Min, Max]. Boundaries are inclusive passes. A missing bound is open.
type RangeCheck struct {
	Min *float64
	Max *float64
	Sev models.Severity
}

func (r RangeCheck) Type() models.RuleType      { return models.RuleRange }
func (r RangeCheck) Severity() models.Severity  { return r.Sev }
func (r RangeCheck) RequiredHistory() int       { return 1 }

func (r RangeCheck) Validate() error {
	if r.Min == nil && r.Max == nil {
		return fmt.Errorf("range check needs at least one of min, max")
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("range check min %v exceeds max %v", *r.Min, *r.Max)
	}
	return nil
}

func (r RangeCheck) Evaluate(series models.IndicatorSeries, asOf time.Time) models.Finding {
	f := newFinding(series.Code, asOf, r)
	latest := series.Latest()
	if latest == nil || latest.Value == nil {
		f.Status = models.StatusPass
		f.Detail = "no latest value to bound"
		return f
	}
	v := *latest.Value
	if r.Min != nil && v < *r.Min {
		f.Status = models.StatusFail
		f.Detail = fmt.Sprintf("value %g below min %g", v, *r.Min)
		return f
	}
	if r.Max != nil && v > *r.Max {
		f.Status = models.StatusFail
		f.Detail = fmt.Sprintf("value %g above max %g", v, *r.Max)
		return f
	}
	f.Status = models.StatusPass
	f.Detail = fmt.Sprintf("value %g within bounds", v)
	return f
}

// SpikeCheck fails when the latest day-over-day change exceeds
// ThresholdStd sample standard deviations of the trailing changes. With
// fewer than Window trailing points, or zero dispersion, the check is
// inconclusive rather than a pass or fail.
type SpikeCheck struct {
	Window       int
	ThresholdStd float64
	Sev          models.Severity
}

func (r SpikeCheck) Type() models.RuleType     { return models.RuleSpike }
func (r SpikeCheck) Severity() models.Severity { return r.Sev }
func (r SpikeCheck) RequiredHistory() int      { return r.Window + 1 }

func (r SpikeCheck) Validate() error {
	if r.Window < 2 {
		return fmt.Errorf("spike check window must be >= 2, got %d", r.Window)
	}
	if r.ThresholdStd <= 0 {
		return fmt.Errorf("spike check threshold_std must be > 0, got %g", r.ThresholdStd)
	}
	return nil
}

func (r SpikeCheck) Evaluate(series models.IndicatorSeries, asOf time.Time) models.Finding {
	f := newFinding(series.Code, asOf, r)
	vals := series.Values()
	// Window trailing points plus the newest point to difference against.
	if len(vals) < r.Window+1 {
		f.Status = models.StatusInconclusive
		f.Detail = fmt.Sprintf("need %d observations, have %d", r.Window+1, len(vals))
		return f
	}
	trailing := vals[len(vals)-1-r.Window : len(vals)-1]
	diffs := make([]float64, 0, len(trailing)-1)
	for i := 1; i < len(trailing); i++ {
		diffs = append(diffs, trailing[i]-trailing[i-1])
	}
	if len(diffs) < 2 {
		f.Status = models.StatusInconclusive
		f.Detail = "too few differences for a sample deviation"
		return f
	}
	sigma := stat.StdDev(diffs, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		f.Status = models.StatusInconclusive
		f.Detail = "zero dispersion in trailing differences"
		return f
	}
	latestDiff := vals[len(vals)-1] - vals[len(vals)-2]
	limit := r.ThresholdStd * sigma
	if math.Abs(latestDiff) > limit {
		f.Status = models.StatusFail
		f.Detail = fmt.Sprintf("change %g exceeds %g (%.1f sigma)", latestDiff, limit, r.ThresholdStd)
		return f
	}
	f.Status = models.StatusPass
	f.Detail = fmt.Sprintf("change %g within %g", latestDiff, limit)
	return f
}

// NotNullCheck fails only when every value in the trailing LookbackDays
// window is missing; a single observed value passes.
type NotNullCheck struct {
	LookbackDays int
	Sev          models.Severity
}

func (r NotNullCheck) Type() models.RuleType     { return models.RuleNotNull }
func (r NotNullCheck) Severity() models.Severity { return r.Sev }
func (r NotNullCheck) RequiredHistory() int      { return r.LookbackDays }

func (r NotNullCheck) Validate() error {
	if r.LookbackDays <= 0 {
		return fmt.Errorf("not_null check lookback_days must be > 0, got %d", r.LookbackDays)
	}
	return nil
}

func (r NotNullCheck) Evaluate(series models.IndicatorSeries, asOf time.Time) models.Finding {
	f := newFinding(series.Code, asOf, r)
	cutoff := asOf.AddDate(0, 0, -r.LookbackDays)
	seen := 0
	for _, o := range series.Since(cutoff) {
		if o.Value != nil {
			f.Status = models.StatusPass
			f.Detail = fmt.Sprintf("observed value on %s", o.Date.Format("2006-01-02"))
			return f
		}
		seen++
	}
	f.Status = models.StatusFail
	f.Detail = fmt.Sprintf("all %d observations missing in trailing %d days", seen, r.LookbackDays)
	return f
}

// StaleCheck fails when the most recent non-missing observation is more
// than MaxDaysStale calendar days before the evaluation date.
type StaleCheck struct {
	MaxDaysStale int
	Sev          models.Severity
}

func (r StaleCheck) Type() models.RuleType     { return models.RuleStale }
func (r StaleCheck) Severity() models.Severity { return r.Sev }
func (r StaleCheck) RequiredHistory() int      { return r.MaxDaysStale }

func (r StaleCheck) Validate() error {
	if r.MaxDaysStale <= 0 {
		return fmt.Errorf("stale check max_days_stale must be > 0, got %d", r.MaxDaysStale)
	}
	return nil
}

func (r StaleCheck) Evaluate(series models.IndicatorSeries, asOf time.Time) models.Finding {
	f := newFinding(series.Code, asOf, r)
	last, _, ok := series.LastObserved()
	if !ok {
		f.Status = models.StatusFail
		f.Detail = "no observed values in window"
		return f
	}
	gap := calendarDays(last, asOf)
	if gap > r.MaxDaysStale {
		f.Status = models.StatusFail
		f.Detail = fmt.Sprintf("last observation %s is %d days old (max %d)",
			last.Format("2006-01-02"), gap, r.MaxDaysStale)
		return f
	}
	f.Status = models.StatusPass
	f.Detail = fmt.Sprintf("last observation %d days old", gap)
	return f
}

func newFinding(code string, asOf time.Time, r Rule) models.Finding {
	return models.Finding{
		IndicatorCode: code,
		Date:          asOf,
		RuleType:      r.Type(),
		Severity:      r.Severity(),
	}
}

// calendarDays counts whole calendar days between two dates, ignoring the
// time-of-day component.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
