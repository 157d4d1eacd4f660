package quality

import (
	"time"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	applogger "StressPulse/pkg/logger"
)

// Engine evaluates a rule set against indicator history windows. Every rule
// configured for an indicator is evaluated on every run; severities grade
// the findings but never change evaluation.
type Engine struct {
	rules   RuleSet
	metrics domrepo.Metrics
	l       *applogger.Logger
}

// NewEngine creates a rule engine over a validated rule set.
func NewEngine(rules RuleSet, metrics domrepo.Metrics) *Engine {
	return &Engine{rules: rules, metrics: metrics}
}

// SetLogger injects a structured logger.
func (e *Engine) SetLogger(l *applogger.Logger) { e.l = l }

// RequiredHistory returns the trailing days of history the most
// history-hungry rule for the indicator needs. Zero means the indicator has
// no rules configured.
func (e *Engine) RequiredHistory(code string) int {
	need := 0
	for _, r := range e.rules[code] {
		if h := r.RequiredHistory(); h > need {
			need = h
		}
	}
	return need
}

// Evaluate runs every rule configured for the indicator against its series
// window. An indicator absent from the rule set is unvalidated: it passes
// through with no findings, which is never an error.
func (e *Engine) Evaluate(code string, series models.IndicatorSeries, asOf time.Time) []models.Finding {
	rules, ok := e.rules[code]
	if !ok {
		return nil
	}

	findings := make([]models.Finding, 0, len(rules))
	for _, r := range rules {
		f := r.Evaluate(series, asOf)
		findings = append(findings, f)
		if e.metrics != nil {
			e.metrics.RecordFinding(string(f.RuleType), string(f.Severity), string(f.Status))
		}
		if e.l != nil && f.Status == models.StatusFail {
			e.l.Warn("dq rule failed",
				applogger.String("indicator", code),
				applogger.String("rule", string(f.RuleType)),
				applogger.String("severity", string(f.Severity)),
				applogger.String("detail", f.Detail),
			)
		}
	}
	return findings
}

// Blocking reports whether any finding excludes the indicator's latest
// observation under the default gating policy (failing ERROR rule).
func Blocking(findings []models.Finding) bool {
	for _, f := range findings {
		if f.Blocking() {
			return true
		}
	}
	return false
}
