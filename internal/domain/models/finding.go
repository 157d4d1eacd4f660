package models

import "time"

// Severity grades a data-quality rule. Severity never changes how a rule is
// evaluated, only how callers react to a failing finding.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// RuleType identifies a data-quality rule kind.
type RuleType string

const (
	RuleRange   RuleType = "range"
	RuleSpike   RuleType = "spike"
	RuleNotNull RuleType = "not_null"
	RuleStale   RuleType = "stale"
)

// FindingStatus is the outcome of a single rule evaluation. Inconclusive is
// emitted when a rule could not be decided (e.g. a spike check with zero
// dispersion) so callers can audit coverage.
type FindingStatus string

const (
	StatusPass         FindingStatus = "pass"
	StatusFail         FindingStatus = "fail"
	StatusInconclusive FindingStatus = "inconclusive"
)

// Finding is the graded outcome of evaluating one rule against one
// indicator on one evaluation date. Findings are data, never control-flow
// faults: a failing ERROR finding does not abort a run.
type Finding struct {
	IndicatorCode string
	Date          time.Time
	RuleType      RuleType
	Severity      Severity
	Status        FindingStatus
	Detail        string
}

// Passed reports whether the rule passed. Inconclusive findings are neither
// passes nor failures.
func (f Finding) Passed() bool { return f.Status == StatusPass }

// Blocking reports whether this finding should exclude the indicator's
// latest observation from downstream use under the default gating policy.
func (f Finding) Blocking() bool {
	return f.Status == StatusFail && f.Severity == SeverityError
}
