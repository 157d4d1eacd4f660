package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"StressPulse/internal/domain/models"
)

// RuleSet maps indicator codes to their ordered rules. Order is evaluation
// order only; rules never short-circuit each other.
type RuleSet map[string][]Rule

// catalogFile is the YAML shape of the declarative rule catalog.
type catalogFile struct {
	Rules map[string][]ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	RuleType string          `yaml:"rule_type"`
	Severity string          `yaml:"severity"`
	Params   ruleParams      `yaml:"params"`
}

type ruleParams struct {
	Min          *float64 `yaml:"min"`
	Max          *float64 `yaml:"max"`
	Window       int      `yaml:"window"`
	ThresholdStd float64  `yaml:"threshold_std"`
	LookbackDays int      `yaml:"lookback_days"`
	MaxDaysStale int      `yaml:"max_days_stale"`
}

// LoadCatalog reads and validates the rule catalog. A malformed catalog is
// rejected as a whole; no partially-applied rule set is ever returned.
func LoadCatalog(path string) (RuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog builds a RuleSet from YAML catalog bytes.
func ParseCatalog(b []byte) (RuleSet, error) {
	var file catalogFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}

	rs := make(RuleSet, len(file.Rules))
	for code, entries := range file.Rules {
		rules := make([]Rule, 0, len(entries))
		for i, e := range entries {
			field := fmt.Sprintf("rules.%s[%d]", code, i)
			rule, err := buildRule(e)
			if err != nil {
				return nil, &models.ConfigError{Field: field, Reason: err.Error()}
			}
			if err := rule.Validate(); err != nil {
				return nil, &models.ConfigError{Field: field, Reason: err.Error()}
			}
			rules = append(rules, rule)
		}
		rs[code] = rules
	}
	return rs, nil
}

func buildRule(e ruleEntry) (Rule, error) {
	sev := models.Severity(e.Severity)
	if !sev.Valid() {
		return nil, fmt.Errorf("unknown severity %q", e.Severity)
	}
	switch models.RuleType(e.RuleType) {
	case models.RuleRange:
		return RangeCheck{Min: e.Params.Min, Max: e.Params.Max, Sev: sev}, nil
	case models.RuleSpike:
		return SpikeCheck{Window: e.Params.Window, ThresholdStd: e.Params.ThresholdStd, Sev: sev}, nil
	case models.RuleNotNull:
		return NotNullCheck{LookbackDays: e.Params.LookbackDays, Sev: sev}, nil
	case models.RuleStale:
		return StaleCheck{MaxDaysStale: e.Params.MaxDaysStale, Sev: sev}, nil
	default:
		return nil, fmt.Errorf("unknown rule_type %q", e.RuleType)
	}
}
