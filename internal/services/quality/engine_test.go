package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StressPulse/internal/domain/models"
)

func TestEngineEvaluateRunsAllRules(t *testing.T) {
	rs, err := ParseCatalog([]byte(validCatalog))
	require.NoError(t, err)
	engine := NewEngine(rs, nil)

	s := seriesOf("VIX", day(2024, 1, 1), []*float64{models.Float(-1)})
	findings := engine.Evaluate("VIX", s, day(2024, 1, 1))
	require.Len(t, findings, 2, "every configured rule produces a finding")

	assert.Equal(t, models.StatusFail, findings[0].Status, "range fails on -1")
	assert.Equal(t, models.StatusInconclusive, findings[1].Status, "spike has no history")
	assert.True(t, Blocking(findings))
}

func TestEngineUnknownIndicatorPassesThrough(t *testing.T) {
	rs, err := ParseCatalog([]byte(validCatalog))
	require.NoError(t, err)
	engine := NewEngine(rs, nil)

	s := seriesOf("UNLISTED", day(2024, 1, 1), []*float64{models.Float(1)})
	findings := engine.Evaluate("UNLISTED", s, day(2024, 1, 1))
	assert.Nil(t, findings)
	assert.False(t, Blocking(findings))
}

func TestEngineRequiredHistory(t *testing.T) {
	rs, err := ParseCatalog([]byte(validCatalog))
	require.NoError(t, err)
	engine := NewEngine(rs, nil)

	assert.Equal(t, 21, engine.RequiredHistory("VIX"), "spike window 20 dominates")
	assert.Equal(t, 5, engine.RequiredHistory("TED"))
	assert.Equal(t, 0, engine.RequiredHistory("UNLISTED"))
}

func TestBlockingPolicy(t *testing.T) {
	warnFail := models.Finding{Status: models.StatusFail, Severity: models.SeverityWarning}
	errPass := models.Finding{Status: models.StatusPass, Severity: models.SeverityError}
	errFail := models.Finding{Status: models.StatusFail, Severity: models.SeverityError}

	assert.False(t, Blocking([]models.Finding{warnFail, errPass}))
	assert.True(t, Blocking([]models.Finding{warnFail, errFail}))
}
