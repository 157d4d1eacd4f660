package stress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StressPulse/internal/domain/models"
)

func TestDirectionMapValidate(t *testing.T) {
	assert.NoError(t, DirectionMap{"VIX": 1, "EQ": -1}.Validate())

	err := DirectionMap{"VIX": 2}.Validate()
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "directions.VIX", cfgErr.Field)
}

func TestDirectionMissingIsHardFailure(t *testing.T) {
	d := DirectionMap{"VIX": 1}
	_, err := d.Direction("UNKNOWN")
	var missing *models.MissingDirectionError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "UNKNOWN", missing.IndicatorCode)
}

func TestApplyDirectionFlips(t *testing.T) {
	ranked := []models.RankedValue{
		{IndicatorCode: "EQ", Rank: models.Float(0.8)},
		{IndicatorCode: "EQ", Rank: nil},
	}
	out := ApplyDirection(ranked, -1)
	require.NotNil(t, out[0].DirectedRank)
	assert.InDelta(t, 0.2, *out[0].DirectedRank, 1e-12)
	assert.Nil(t, out[1].DirectedRank, "nil rank stays nil")

	// +1 keeps the rank; flipping twice is the identity.
	kept := ApplyDirection(ranked, 1)
	assert.InDelta(t, 0.8, *kept[0].DirectedRank, 1e-12)
	twice := ApplyDirection(ApplyDirection(ranked, -1), -1)
	assert.InDelta(t, 0.8, *twice[0].Rank, 1e-12)
}

func TestBuildPanelAlignsUnionOfDates(t *testing.T) {
	d1, d2, d3 := day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 3)
	directed := map[string][]models.RankedValue{
		"B": {
			{Date: d1, DirectedRank: models.Float(0.1)},
			{Date: d3, DirectedRank: models.Float(0.3)},
		},
		"A": {
			{Date: d2, DirectedRank: models.Float(0.2)},
		},
	}
	panel := BuildPanel(directed)

	assert.Equal(t, []string{"A", "B"}, panel.Codes)
	require.Len(t, panel.Dates, 3)
	assert.True(t, panel.Dates[0].Equal(d1) && panel.Dates[2].Equal(d3))

	assert.Nil(t, panel.Values[0][0], "A has no value on d1")
	assert.InDelta(t, 0.1, *panel.Values[0][1], 1e-12)
	assert.InDelta(t, 0.2, *panel.Values[1][0], 1e-12)
	assert.Nil(t, panel.Values[1][1])
	assert.InDelta(t, 0.3, *panel.Values[2][1], 1e-12)
}
