package repository

import (
	"context"
	"time"

	"StressPulse/internal/domain/models"
)

// RawDataStore persists per-indicator time series and returns them as an
// ordered sequence of dated observations. Append-only from the engines'
// perspective.
type RawDataStore interface {
	GetSeries(ctx context.Context, code string, from, to time.Time) (models.IndicatorSeries, error)
	StoreObservations(ctx context.Context, code string, obs []models.Observation) error
	Health(ctx context.Context) error
	Close() error
}

// FeatureStore receives the composite outputs and quality findings.
type FeatureStore interface {
	PutStressPoint(ctx context.Context, p models.StressIndexPoint) error
	PutFindings(ctx context.Context, findings []models.Finding) error
	GetLatestStressPoint(ctx context.Context) (*models.StressIndexPoint, error)
	GetStressHistory(ctx context.Context, from, to time.Time) ([]models.StressIndexPoint, error)
	GetFindings(ctx context.Context, code string, from, to time.Time) ([]models.Finding, error)
	Close() error
}

// WeightStore persists the current weight vector per universe so it
// survives process restarts.
type WeightStore interface {
	Load(ctx context.Context, universe string) (*models.WeightVector, error)
	Save(ctx context.Context, universe string, wv *models.WeightVector) error
	Close() error
}

// EventPublisher emits stress points and findings for downstream consumers
// (report generators and alerting live outside this service).
type EventPublisher interface {
	PublishStressPoint(ctx context.Context, p models.StressIndexPoint) error
	PublishFindings(ctx context.Context, findings []models.Finding) error
	Close() error
}

// Metrics records operational counters and gauges for the pipeline.
type Metrics interface {
	RecordFinding(rule string, severity string, status string)
	RecordStressIndex(level string, smoothed float64)
	RecordUncoveredWeight(fraction float64)
	RecordWeightsFallback(reason string)
	RecordFetch(code string, ok bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
