package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StressPulse/internal/domain/models"
	"StressPulse/internal/services/quality"
	"StressPulse/internal/services/stress"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeRawStore struct {
	series map[string]models.IndicatorSeries
}

func (f *fakeRawStore) GetSeries(_ context.Context, code string, _, _ time.Time) (models.IndicatorSeries, error) {
	return f.series[code], nil
}
func (f *fakeRawStore) StoreObservations(context.Context, string, []models.Observation) error {
	return nil
}
func (f *fakeRawStore) Health(context.Context) error { return nil }
func (f *fakeRawStore) Close() error                 { return nil }

type fakeFeatureStore struct {
	points   []models.StressIndexPoint
	findings []models.Finding
}

func (f *fakeFeatureStore) PutStressPoint(_ context.Context, p models.StressIndexPoint) error {
	f.points = append(f.points, p)
	return nil
}
func (f *fakeFeatureStore) PutFindings(_ context.Context, fs []models.Finding) error {
	f.findings = append(f.findings, fs...)
	return nil
}
func (f *fakeFeatureStore) GetLatestStressPoint(context.Context) (*models.StressIndexPoint, error) {
	return nil, nil
}
func (f *fakeFeatureStore) GetStressHistory(context.Context, time.Time, time.Time) ([]models.StressIndexPoint, error) {
	return nil, nil
}
func (f *fakeFeatureStore) GetFindings(context.Context, string, time.Time, time.Time) ([]models.Finding, error) {
	return nil, nil
}
func (f *fakeFeatureStore) Close() error { return nil }

type fakePublisher struct {
	points   int
	findings int
}

func (f *fakePublisher) PublishStressPoint(context.Context, models.StressIndexPoint) error {
	f.points++
	return nil
}
func (f *fakePublisher) PublishFindings(_ context.Context, fs []models.Finding) error {
	f.findings += len(fs)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

type fixedEstimator struct {
	weights map[string]float64
}

func (e *fixedEstimator) Estimate(models.DirectedRankPanel) (*models.WeightVector, error) {
	now := time.Now().UTC()
	return &models.WeightVector{
		Weights:      e.weights,
		ComputedAt:   now,
		ValidThrough: now.AddDate(0, 0, 180),
		Source:       "pca",
	}, nil
}

func increasingSeries(code string, start time.Time, n int) models.IndicatorSeries {
	s := models.IndicatorSeries{Code: code}
	for i := 0; i < n; i++ {
		s.Observations = append(s.Observations, models.Observation{
			Date:  start.AddDate(0, 0, i),
			Value: models.Float(float64(i + 1)),
		})
	}
	return s
}

func newTestRunner(t *testing.T, raw *fakeRawStore, features *fakeFeatureStore, pub *fakePublisher, rules string) *StressRunner {
	t.Helper()

	rs, err := quality.ParseCatalog([]byte(rules))
	require.NoError(t, err)

	ranker, err := stress.NewRanker(4, 2)
	require.NoError(t, err)
	composer, err := stress.NewComposer(stress.SmoothSMA, 1, stress.MACDConfig{}, stress.Thresholds{Moderate: 50, High: 70, Extreme: 85})
	require.NoError(t, err)

	weights := stress.NewWeightManager("test", &fixedEstimator{weights: map[string]float64{"A": 0.5, "B": 0.5}}, nil, 180, nil)

	runner, err := NewStressRunner(RunnerParams{
		RawStore:   raw,
		Features:   features,
		Publisher:  pub,
		Engine:     quality.NewEngine(rs, nil),
		Ranker:     ranker,
		Directions: stress.DirectionMap{"A": 1, "B": 1},
		Weights:    weights,
		Composer:   composer,
		Codes:      []string{"A", "B"},
	})
	require.NoError(t, err)
	return runner
}

func TestRunDailyComposesAndPersists(t *testing.T) {
	start := day(2024, 1, 1)
	raw := &fakeRawStore{series: map[string]models.IndicatorSeries{
		"A": increasingSeries("A", start, 6),
		"B": increasingSeries("B", start, 6),
	}}
	features := &fakeFeatureStore{}
	pub := &fakePublisher{}
	runner := newTestRunner(t, raw, features, pub, `
rules:
  A:
    - rule_type: range
      severity: ERROR
      params:
        min: 0
`)

	asOf := start.AddDate(0, 0, 5)
	point, err := runner.RunDaily(context.Background(), asOf)
	require.NoError(t, err)
	require.NotNil(t, point)

	// Both series end at their window maximum: directed rank 1 each.
	assert.InDelta(t, 100.0, point.RawComposite, 1e-9)
	assert.Equal(t, models.StressExtreme, point.Level)
	assert.InDelta(t, 0.0, point.UncoveredWeight, 1e-12)
	assert.False(t, point.WeightsFallback)

	require.Len(t, features.points, 1)
	require.Len(t, features.findings, 1, "one range rule evaluated for A")
	assert.Equal(t, models.StatusPass, features.findings[0].Status)
	assert.Equal(t, 1, pub.points)
	assert.Equal(t, 1, pub.findings)
}

func TestRunDailyGatesBlockedIndicator(t *testing.T) {
	start := day(2024, 1, 1)
	badA := increasingSeries("A", start, 6)
	badA.Observations[5].Value = models.Float(-5)

	raw := &fakeRawStore{series: map[string]models.IndicatorSeries{
		"A": badA,
		"B": increasingSeries("B", start, 6),
	}}
	features := &fakeFeatureStore{}
	pub := &fakePublisher{}
	runner := newTestRunner(t, raw, features, pub, `
rules:
  A:
    - rule_type: range
      severity: ERROR
      params:
        min: 0
`)

	asOf := start.AddDate(0, 0, 5)
	point, err := runner.RunDaily(context.Background(), asOf)
	require.NoError(t, err)

	// A is excluded for the day; its weight is reported, not redistributed.
	assert.InDelta(t, 50.0, point.RawComposite, 1e-9)
	assert.InDelta(t, 0.5, point.UncoveredWeight, 1e-12)
	assert.Equal(t, models.StressModerate, point.Level)

	require.Len(t, features.findings, 1)
	assert.Equal(t, models.StatusFail, features.findings[0].Status)
	assert.True(t, features.findings[0].Blocking())
}

func TestRunDailyWarningFailureDoesNotGate(t *testing.T) {
	start := day(2024, 1, 1)
	badA := increasingSeries("A", start, 6)
	badA.Observations[5].Value = models.Float(-5)

	raw := &fakeRawStore{series: map[string]models.IndicatorSeries{
		"A": badA,
		"B": increasingSeries("B", start, 6),
	}}
	features := &fakeFeatureStore{}
	runner := newTestRunner(t, raw, features, &fakePublisher{}, `
rules:
  A:
    - rule_type: range
      severity: WARNING
      params:
        min: 0
`)

	point, err := runner.RunDaily(context.Background(), start.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, point.UncoveredWeight, 1e-12, "WARNING failures are recorded, not gated")
}

func TestRunDailyMissingDirectionExcludesIndicator(t *testing.T) {
	start := day(2024, 1, 1)
	raw := &fakeRawStore{series: map[string]models.IndicatorSeries{
		"A": increasingSeries("A", start, 6),
		"B": increasingSeries("B", start, 6),
	}}
	features := &fakeFeatureStore{}

	rs, err := quality.ParseCatalog([]byte("rules: {}"))
	require.NoError(t, err)
	ranker, err := stress.NewRanker(4, 2)
	require.NoError(t, err)
	composer, err := stress.NewComposer(stress.SmoothSMA, 1, stress.MACDConfig{}, stress.Thresholds{Moderate: 50, High: 70, Extreme: 85})
	require.NoError(t, err)
	weights := stress.NewWeightManager("test", &fixedEstimator{weights: map[string]float64{"A": 0.5, "B": 0.5}}, nil, 180, nil)

	runner, err := NewStressRunner(RunnerParams{
		RawStore:   raw,
		Features:   features,
		Engine:     quality.NewEngine(rs, nil),
		Ranker:     ranker,
		Directions: stress.DirectionMap{"B": 1}, // A has no direction
		Weights:    weights,
		Composer:   composer,
		Codes:      []string{"A", "B"},
	})
	require.NoError(t, err)

	point, err := runner.RunDaily(context.Background(), start.AddDate(0, 0, 5))
	require.NoError(t, err)

	// A never enters the panel; half the weight mass goes uncovered.
	assert.InDelta(t, 50.0, point.RawComposite, 1e-9)
	assert.InDelta(t, 0.5, point.UncoveredWeight, 1e-12)
}

func TestNewStressRunnerRejectsEmptyUniverse(t *testing.T) {
	_, err := NewStressRunner(RunnerParams{})
	assert.Error(t, err)
}
