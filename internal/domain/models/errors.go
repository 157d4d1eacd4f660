package models

import "fmt"

// ConfigError marks malformed rule, threshold or direction configuration.
// It is fatal and surfaced at load time; a bad catalog is never partially
// applied.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// InsufficientHistoryError reports that a computation did not have enough
// observations. Per-indicator shortfalls surface as null ranks instead;
// this error is reserved for a whole stage that cannot produce output.
type InsufficientHistoryError struct {
	IndicatorCode string // empty when the whole universe is affected
	Stage         string
	Need          int
	Have          int
}

func (e *InsufficientHistoryError) Error() string {
	if e.IndicatorCode == "" {
		return fmt.Sprintf("insufficient history at %s: need %d, have %d", e.Stage, e.Need, e.Have)
	}
	return fmt.Sprintf("insufficient history for %s at %s: need %d, have %d",
		e.IndicatorCode, e.Stage, e.Need, e.Have)
}

// MissingDirectionError reports an indicator with no entry in the direction
// map. The sign is never guessed; the indicator is excluded from the
// composite and the gap is logged.
type MissingDirectionError struct {
	IndicatorCode string
}

func (e *MissingDirectionError) Error() string {
	return fmt.Sprintf("indicator %s has no direction mapping", e.IndicatorCode)
}

// InsufficientDataError is returned by the PCA estimator when fewer than two
// complete-case rows exist or no components survive retention. The caller
// falls back to the previous weight vector, or equal weights.
type InsufficientDataError struct {
	CompleteRows int
	Retained     int
	Reason       string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for weight estimation: %s (complete rows=%d, retained components=%d)",
		e.Reason, e.CompleteRows, e.Retained)
}
