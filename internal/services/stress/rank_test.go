package stress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StressPulse/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seriesOf(code string, start time.Time, vals []*float64) models.IndicatorSeries {
	s := models.IndicatorSeries{Code: code}
	for i, v := range vals {
		s.Observations = append(s.Observations, models.Observation{
			Date:  start.AddDate(0, 0, i),
			Value: v,
		})
	}
	return s
}

func floats(vals ...float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		out[i] = models.Float(v)
	}
	return out
}

func TestNewRankerValidation(t *testing.T) {
	_, err := NewRanker(1, 1)
	assert.Error(t, err)

	_, err = NewRanker(10, 11)
	assert.Error(t, err, "min periods cannot exceed window")

	r, err := NewRanker(252, 126)
	require.NoError(t, err)
	assert.Equal(t, 252, r.Window)
}

func TestRankSeriesExtremes(t *testing.T) {
	r, err := NewRanker(4, 2)
	require.NoError(t, err)

	s := seriesOf("VIX", day(2024, 1, 1), floats(1, 2, 3, 4))
	ranked := r.RankSeries(s)
	require.Len(t, ranked, 4)

	assert.Nil(t, ranked[0].Rank, "window of one is below min periods")
	require.NotNil(t, ranked[3].Rank)
	assert.InDelta(t, 1.0, *ranked[3].Rank, 1e-12, "window maximum ranks 1")
	require.NotNil(t, ranked[1].Rank)
	assert.InDelta(t, 1.0, *ranked[1].Rank, 1e-12)
}

func TestRankSeriesTiesAverage(t *testing.T) {
	r, err := NewRanker(4, 2)
	require.NoError(t, err)

	s := seriesOf("VIX", day(2024, 1, 1), floats(1, 2, 3, 2))
	ranked := r.RankSeries(s)
	require.Len(t, ranked, 4)
	require.NotNil(t, ranked[3].Rank)
	// Tied group {2, 2} occupies positions 2 and 3; average 2.5 maps to 0.5.
	assert.InDelta(t, 0.5, *ranked[3].Rank, 1e-12)
}

func TestRankSeriesSkipsMissing(t *testing.T) {
	r, err := NewRanker(4, 3)
	require.NoError(t, err)

	s := seriesOf("VIX", day(2024, 1, 1), []*float64{
		models.Float(1), nil, models.Float(2), models.Float(3),
	})
	ranked := r.RankSeries(s)
	require.Len(t, ranked, 3, "missing observations produce no ranked value")

	// Last window holds 3 non-missing values, exactly at min periods.
	require.NotNil(t, ranked[2].Rank)
	assert.InDelta(t, 1.0, *ranked[2].Rank, 1e-12)
	assert.Nil(t, ranked[1].Rank, "only 2 non-missing values in that window")
}

func TestRankNilBelowMinPeriods(t *testing.T) {
	r, err := NewRanker(252, 126)
	require.NoError(t, err)

	vals := make([]*float64, 125)
	for i := range vals {
		vals[i] = models.Float(float64(i))
	}
	ranked := r.RankSeries(seriesOf("VIX", day(2023, 1, 1), vals))
	require.Len(t, ranked, 125)
	for _, rv := range ranked {
		assert.Nil(t, rv.Rank)
	}
}
