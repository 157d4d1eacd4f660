package stress

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	domsvc "StressPulse/internal/domain/service"
	applogger "StressPulse/pkg/logger"
)

// WeightManager owns the current weight vector for one universe. The vector
// is an immutable snapshot behind an atomically-replaced reference: readers
// always see a complete, still-valid vector while a recomputation is in
// flight, and recomputations are serialized by a mutex.
type WeightManager struct {
	universe  string
	estimator domsvc.WeightEstimator
	store     domrepo.WeightStore
	freqDays  int
	metrics   domrepo.Metrics
	l         *applogger.Logger

	recomputeMu sync.Mutex
	current     atomic.Pointer[models.WeightVector]
}

// NewWeightManager creates a manager; call Bootstrap before first use to
// restore a persisted vector across restarts.
func NewWeightManager(universe string, estimator domsvc.WeightEstimator, store domrepo.WeightStore, freqDays int, metrics domrepo.Metrics) *WeightManager {
	return &WeightManager{
		universe:  universe,
		estimator: estimator,
		store:     store,
		freqDays:  freqDays,
		metrics:   metrics,
	}
}

// SetLogger injects a structured logger.
func (m *WeightManager) SetLogger(l *applogger.Logger) { m.l = l }

// Bootstrap loads the persisted weight vector, if any.
func (m *WeightManager) Bootstrap(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	wv, err := m.store.Load(ctx, m.universe)
	if err != nil {
		return err
	}
	if wv != nil {
		m.current.Store(wv)
		if m.l != nil {
			m.l.Info("weight vector restored",
				applogger.String("universe", m.universe),
				applogger.String("source", wv.Source),
				applogger.Int("indicators", len(wv.Weights)),
			)
		}
	}
	return nil
}

// Current returns the active snapshot; callers must treat it as read-only.
func (m *WeightManager) Current() *models.WeightVector {
	return m.current.Load()
}

// Ensure returns weights valid at now, recomputing from the panel when the
// active vector is absent or past its epoch. On estimation failure the
// previous vector is kept; with no previous vector, equal weights over the
// panel's indicators are used. fallback reports that the returned vector
// did not come from a fresh successful estimation.
func (m *WeightManager) Ensure(ctx context.Context, panel models.DirectedRankPanel, now time.Time) (wv *models.WeightVector, fallback bool, err error) {
	if cur := m.current.Load(); cur.ValidAt(now) {
		return cur, false, nil
	}

	m.recomputeMu.Lock()
	defer m.recomputeMu.Unlock()

	// Another caller may have finished the recomputation while we waited.
	if cur := m.current.Load(); cur.ValidAt(now) {
		return cur, false, nil
	}

	fresh, estErr := m.estimator.Estimate(panel)
	if estErr != nil {
		var insufficient *models.InsufficientDataError
		if !errors.As(estErr, &insufficient) {
			return nil, false, estErr
		}
		if m.metrics != nil {
			m.metrics.RecordWeightsFallback(insufficient.Reason)
		}
		if prev := m.current.Load(); prev != nil {
			if m.l != nil {
				m.l.Warn("weight estimation failed, keeping previous vector",
					applogger.String("universe", m.universe),
					applogger.Error(estErr),
				)
			}
			kept := prev.Clone()
			kept.Source = "fallback_previous"
			return kept, true, nil
		}
		if m.l != nil {
			m.l.Warn("weight estimation failed with no prior vector, using equal weights",
				applogger.String("universe", m.universe),
				applogger.Error(estErr),
			)
		}
		eq := models.EqualWeights(panel.Codes, now, now.AddDate(0, 0, m.freqDays))
		return eq, true, nil
	}

	m.current.Store(fresh)
	if m.store != nil {
		if saveErr := m.store.Save(ctx, m.universe, fresh); saveErr != nil {
			if m.l != nil {
				m.l.Warn("weight vector persist failed", applogger.Error(saveErr))
			}
			if m.metrics != nil {
				m.metrics.RecordError("weight_store_save")
			}
		}
	}
	if m.l != nil {
		m.l.Info("weight vector recomputed",
			applogger.String("universe", m.universe),
			applogger.Int("indicators", len(fresh.Weights)),
		)
	}
	return fresh, false, nil
}
