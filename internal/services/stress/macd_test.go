package stress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACDValidate(t *testing.T) {
	assert.NoError(t, MACDConfig{Enabled: true, Fast: 12, Slow: 26, Signal: 9}.Validate())
	assert.NoError(t, MACDConfig{Enabled: false}.Validate(), "disabled overlay skips validation")
	assert.Error(t, MACDConfig{Enabled: true, Fast: 26, Slow: 12, Signal: 9}.Validate())
	assert.Error(t, MACDConfig{Enabled: true, Fast: 0, Slow: 12, Signal: 9}.Validate())
}

func TestMACDNullBeforeMinHistory(t *testing.T) {
	cfg := MACDConfig{Enabled: true, Fast: 12, Slow: 26, Signal: 9}
	require.Equal(t, 35, cfg.MinHistory())

	xs := make([]float64, 34)
	line, signal := cfg.Latest(xs)
	assert.Nil(t, line)
	assert.Nil(t, signal)

	xs = append(xs, 1)
	line, signal = cfg.Latest(xs)
	assert.NotNil(t, line)
	assert.NotNil(t, signal)
}

func TestMACDDisabledIsNull(t *testing.T) {
	cfg := MACDConfig{Enabled: false, Fast: 12, Slow: 26, Signal: 9}
	xs := make([]float64, 100)
	line, signal := cfg.Latest(xs)
	assert.Nil(t, line)
	assert.Nil(t, signal)
}

func TestMACDRisingSeriesHasPositiveLine(t *testing.T) {
	cfg := MACDConfig{Enabled: true, Fast: 3, Slow: 6, Signal: 2}
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = float64(i)
	}
	line, signal := cfg.Latest(xs)
	require.NotNil(t, line)
	require.NotNil(t, signal)
	assert.Greater(t, *line, 0.0, "fast EMA leads slow EMA on a rising series")
}
