package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	"StressPulse/internal/service/fetch"
	"StressPulse/internal/services/quality"
	"StressPulse/internal/services/stress"
	applogger "StressPulse/pkg/logger"
)

// StressRunner drives one end-of-day cycle: collect raw observations, run
// the quality rules, rank and direct each indicator, ensure a valid weight
// vector, compose the index, then persist and publish the results.
type StressRunner struct {
	collector  *fetch.Collector
	raw        domrepo.RawDataStore
	features   domrepo.FeatureStore
	publisher  domrepo.EventPublisher
	engine     *quality.Engine
	ranker     *stress.Ranker
	directions stress.DirectionMap
	weights    *stress.WeightManager
	composer   *stress.Composer
	codes      []string
	metrics    domrepo.Metrics
	l          *applogger.Logger
}

// RunnerParams bundles the runner's collaborators.
type RunnerParams struct {
	Collector  *fetch.Collector // nil when ingestion is driven externally
	RawStore   domrepo.RawDataStore
	Features   domrepo.FeatureStore
	Publisher  domrepo.EventPublisher
	Engine     *quality.Engine
	Ranker     *stress.Ranker
	Directions stress.DirectionMap
	Weights    *stress.WeightManager
	Composer   *stress.Composer
	Codes      []string
	Metrics    domrepo.Metrics
}

func NewStressRunner(p RunnerParams) (*StressRunner, error) {
	if len(p.Codes) == 0 {
		return nil, &models.ConfigError{Field: "stress.directions", Reason: "indicator universe is empty"}
	}
	if err := p.Directions.Validate(); err != nil {
		return nil, err
	}
	return &StressRunner{
		collector:  p.Collector,
		raw:        p.RawStore,
		features:   p.Features,
		publisher:  p.Publisher,
		engine:     p.Engine,
		ranker:     p.Ranker,
		directions: p.Directions,
		weights:    p.Weights,
		composer:   p.Composer,
		codes:      p.Codes,
		metrics:    p.Metrics,
	}, nil
}

// SetLogger injects a structured logger.
func (r *StressRunner) SetLogger(l *applogger.Logger) { r.l = l }

// RunDaily executes the full pipeline for asOf and returns the stored
// stress point. Individual indicators may drop out along the way; the run
// itself fails only on configuration or storage errors.
func (r *StressRunner) RunDaily(ctx context.Context, asOf time.Time) (*models.StressIndexPoint, error) {
	start := time.Now()

	if r.collector != nil {
		r.collector.CollectAll(ctx)
	}

	from := asOf.AddDate(0, 0, -r.lookbackDays())

	var allFindings []models.Finding
	directed := make(map[string][]models.RankedValue, len(r.codes))
	gated := make(map[string]bool)

	for _, code := range r.codes {
		series, err := r.raw.GetSeries(ctx, code, from, asOf)
		if err != nil {
			if r.metrics != nil {
				r.metrics.RecordError("raw_store_get")
			}
			if r.l != nil {
				r.l.Warn("indicator series unavailable, excluding from run",
					applogger.String("code", code),
					applogger.Error(err),
				)
			}
			continue
		}

		findings := r.engine.Evaluate(code, series, asOf)
		allFindings = append(allFindings, findings...)
		if quality.Blocking(findings) {
			gated[code] = true
			if r.l != nil {
				r.l.Warn("indicator gated by blocking quality finding",
					applogger.String("code", code),
					applogger.Time("as_of", asOf),
				)
			}
		}

		sign, err := r.directions.Direction(code)
		if err != nil {
			var missing *models.MissingDirectionError
			if errors.As(err, &missing) {
				if r.metrics != nil {
					r.metrics.RecordError("missing_direction")
				}
				if r.l != nil {
					r.l.Error("indicator has no direction, excluding from composite",
						applogger.String("code", code),
					)
				}
				continue
			}
			return nil, err
		}

		ranked := r.ranker.RankSeries(series)
		directed[code] = stress.ApplyDirection(ranked, sign)
	}

	if len(directed) == 0 {
		return nil, fmt.Errorf("no indicators usable as of %s", asOf.Format("2006-01-02"))
	}

	panel := stress.BuildPanel(directed)
	wv, fallback, err := r.weights.Ensure(ctx, panel, asOf)
	if err != nil {
		return nil, fmt.Errorf("ensure weights: %w", err)
	}

	rawHistory, uncovered := r.compositeHistory(panel, wv, asOf, gated)
	if len(rawHistory) == 0 {
		return nil, &models.InsufficientHistoryError{Stage: "compose", Need: 1, Have: 0}
	}

	point := r.composer.Compose(asOf, rawHistory, uncovered, fallback)

	if err := r.features.PutFindings(ctx, allFindings); err != nil {
		return nil, fmt.Errorf("persist findings: %w", err)
	}
	if err := r.features.PutStressPoint(ctx, point); err != nil {
		return nil, fmt.Errorf("persist stress point: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.PublishFindings(ctx, allFindings); err != nil {
			if r.metrics != nil {
				r.metrics.RecordError("publish_findings")
			}
			if r.l != nil {
				r.l.Warn("findings publish failed", applogger.Error(err))
			}
		}
		if err := r.publisher.PublishStressPoint(ctx, point); err != nil {
			if r.metrics != nil {
				r.metrics.RecordError("publish_stress_point")
			}
			if r.l != nil {
				r.l.Warn("stress point publish failed", applogger.Error(err))
			}
		}
	}

	if r.metrics != nil {
		r.metrics.RecordStressIndex(string(point.Level), point.SmoothedComposite)
		r.metrics.RecordUncoveredWeight(point.UncoveredWeight)
		r.metrics.RecordLatency("run_daily", time.Since(start).Seconds())
	}
	if r.l != nil {
		r.l.Info("daily stress run finished",
			applogger.Time("as_of", asOf),
			applogger.Float64("raw", point.RawComposite),
			applogger.Float64("smoothed", point.SmoothedComposite),
			applogger.String("level", string(point.Level)),
			applogger.Float64("uncovered_weight", point.UncoveredWeight),
			applogger.Bool("weights_fallback", fallback),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &point, nil
}

// compositeHistory builds the raw composite series over the panel's dates
// up to asOf. Gating applies only to the asOf row: a gated indicator's
// directed rank is treated as missing that day and its weight counts as
// uncovered. Returns the series plus the asOf row's uncovered weight.
func (r *StressRunner) compositeHistory(panel models.DirectedRankPanel, wv *models.WeightVector, asOf time.Time, gated map[string]bool) ([]float64, float64) {
	history := make([]float64, 0, len(panel.Dates))
	var lastUncovered float64
	for i, d := range panel.Dates {
		if d.After(asOf) {
			break
		}
		row := make(map[string]*float64, len(panel.Codes))
		isAsOf := sameDay(d, asOf)
		for j, code := range panel.Codes {
			if isAsOf && gated[code] {
				continue
			}
			row[code] = panel.Values[i][j]
		}
		value, uncovered := r.composer.RawComposite(row, wv)
		history = append(history, value)
		lastUncovered = uncovered
	}
	return history, lastUncovered
}

// lookbackDays sizes the raw history query: the ranking window plus what
// smoothing, MACD and the most demanding quality rule need, doubled to
// cover weekends and market holidays.
func (r *StressRunner) lookbackDays() int {
	extra := r.composer.SmoothWindow
	if m := r.composer.MACD.MinHistory(); m > extra {
		extra = m
	}
	for _, code := range r.codes {
		if h := r.engine.RequiredHistory(code); h > extra {
			extra = h
		}
	}
	return (r.ranker.Window + extra) * 2
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
