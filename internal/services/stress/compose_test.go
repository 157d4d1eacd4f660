package stress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StressPulse/internal/domain/models"
)

func defaultThresholds() Thresholds {
	return Thresholds{Moderate: 50, High: 70, Extreme: 85}
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, defaultThresholds().Validate())

	err := Thresholds{Moderate: 50, High: 70, Extreme: 70}.Validate()
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	assert.Error(t, Thresholds{Moderate: 70, High: 50, Extreme: 85}.Validate())
}

func TestClassifyInclusiveLowerBounds(t *testing.T) {
	th := defaultThresholds()
	assert.Equal(t, models.StressNormal, th.Classify(49.999))
	assert.Equal(t, models.StressModerate, th.Classify(50.0))
	assert.Equal(t, models.StressModerate, th.Classify(69.999))
	assert.Equal(t, models.StressHigh, th.Classify(70.0))
	assert.Equal(t, models.StressHigh, th.Classify(83.2))
	assert.Equal(t, models.StressExtreme, th.Classify(85.0))
}

func TestRawComposite(t *testing.T) {
	c, err := NewComposer(SmoothSMA, 1, MACDConfig{}, defaultThresholds())
	require.NoError(t, err)

	wv := &models.WeightVector{Weights: map[string]float64{"A": 0.5, "B": 0.5}}
	directed := map[string]*float64{
		"A": models.Float(0.8),
		"B": models.Float(0.864),
	}
	value, uncovered := c.RawComposite(directed, wv)
	assert.InDelta(t, 83.2, value, 1e-9)
	assert.InDelta(t, 0.0, uncovered, 1e-12)
}

func TestRawCompositeUncoveredNeverRedistributed(t *testing.T) {
	c, err := NewComposer(SmoothSMA, 1, MACDConfig{}, defaultThresholds())
	require.NoError(t, err)

	wv := &models.WeightVector{Weights: map[string]float64{"A": 0.6, "B": 0.4}}
	directed := map[string]*float64{"A": models.Float(1.0)}

	value, uncovered := c.RawComposite(directed, wv)
	assert.InDelta(t, 60.0, value, 1e-9, "covered contribution only, no renormalization")
	assert.InDelta(t, 0.4, uncovered, 1e-12)

	// A nil cell counts as uncovered just like an absent one.
	directed["B"] = nil
	value, uncovered = c.RawComposite(directed, wv)
	assert.InDelta(t, 60.0, value, 1e-9)
	assert.InDelta(t, 0.4, uncovered, 1e-12)
}

func TestRawCompositeNoWeights(t *testing.T) {
	c, err := NewComposer(SmoothSMA, 1, MACDConfig{}, defaultThresholds())
	require.NoError(t, err)

	value, uncovered := c.RawComposite(map[string]*float64{"A": models.Float(0.5)}, nil)
	assert.Zero(t, value)
	assert.InDelta(t, 1.0, uncovered, 1e-12)
}

func TestCompose(t *testing.T) {
	c, err := NewComposer(SmoothSMA, 1, MACDConfig{}, defaultThresholds())
	require.NoError(t, err)

	p := c.Compose(day(2024, 3, 1), []float64{40, 60, 83.2}, 0.1, true)
	assert.InDelta(t, 83.2, p.RawComposite, 1e-9)
	assert.InDelta(t, 83.2, p.SmoothedComposite, 1e-9, "window 1 leaves the series unchanged")
	assert.Equal(t, models.StressHigh, p.Level)
	assert.Nil(t, p.MACDLine, "overlay disabled")
	assert.InDelta(t, 0.1, p.UncoveredWeight, 1e-12)
	assert.True(t, p.WeightsFallback)
}

func TestComposeSmoothingDampsSpike(t *testing.T) {
	c, err := NewComposer(SmoothEMA, 5, MACDConfig{}, defaultThresholds())
	require.NoError(t, err)

	history := []float64{40, 40, 40, 40, 40, 40, 90}
	p := c.Compose(day(2024, 3, 1), history, 0, false)
	assert.InDelta(t, 90.0, p.RawComposite, 1e-9)
	assert.Less(t, p.SmoothedComposite, 90.0)
	assert.Greater(t, p.SmoothedComposite, 40.0)
}
