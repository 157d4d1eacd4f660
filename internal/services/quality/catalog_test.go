package quality

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StressPulse/internal/domain/models"
)

const validCatalog = `
rules:
  VIX:
    - rule_type: range
      severity: ERROR
      params:
        min: 0
        max: 200
    - rule_type: spike
      severity: WARNING
      params:
        window: 20
        threshold_std: 6
  TED:
    - rule_type: stale
      severity: ERROR
      params:
        max_days_stale: 5
`

func TestParseCatalog(t *testing.T) {
	rs, err := ParseCatalog([]byte(validCatalog))
	require.NoError(t, err)
	require.Len(t, rs["VIX"], 2)
	require.Len(t, rs["TED"], 1)

	assert.Equal(t, models.RuleRange, rs["VIX"][0].Type())
	assert.Equal(t, models.SeverityError, rs["VIX"][0].Severity())
	assert.Equal(t, 21, rs["VIX"][1].RequiredHistory())
}

func TestParseCatalogRejectsUnknownSeverity(t *testing.T) {
	bad := `
rules:
  VIX:
    - rule_type: range
      severity: CRITICAL
      params:
        min: 0
`
	_, err := ParseCatalog([]byte(bad))
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "rules.VIX[0]", cfgErr.Field)
}

func TestParseCatalogRejectsUnknownRuleType(t *testing.T) {
	bad := `
rules:
  VIX:
    - rule_type: outlier
      severity: ERROR
      params: {}
`
	_, err := ParseCatalog([]byte(bad))
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestParseCatalogRejectsBadParams(t *testing.T) {
	bad := `
rules:
  VIX:
    - rule_type: spike
      severity: WARNING
      params:
        window: 1
        threshold_std: 3
`
	_, err := ParseCatalog([]byte(bad))
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr), "whole catalog is rejected on one bad rule")
}
