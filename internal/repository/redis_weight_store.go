package repository

import (
	"context"
	"errors"
	"fmt"

	"StressPulse/internal/domain/models"
	domrepo "StressPulse/internal/domain/repository"
	"StressPulse/pkg/cache"
)

// CacheWeightStore persists the active weight vector per universe in a
// key-value store so it survives restarts. No TTL: validity is carried in
// the vector itself and checked by the reader.
type CacheWeightStore struct {
	store cache.Store
}

func NewCacheWeightStore(store cache.Store) *CacheWeightStore {
	return &CacheWeightStore{store: store}
}

func weightKey(universe string) string {
	return fmt.Sprintf("weights:%s", universe)
}

func (s *CacheWeightStore) Load(ctx context.Context, universe string) (*models.WeightVector, error) {
	var wv models.WeightVector
	err := s.store.Get(ctx, weightKey(universe), &wv)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load weights %s: %w", universe, err)
	}
	return &wv, nil
}

func (s *CacheWeightStore) Save(ctx context.Context, universe string, wv *models.WeightVector) error {
	if err := s.store.Set(ctx, weightKey(universe), wv, 0); err != nil {
		return fmt.Errorf("save weights %s: %w", universe, err)
	}
	return nil
}

func (s *CacheWeightStore) Close() error {
	return s.store.Close()
}

var _ domrepo.WeightStore = (*CacheWeightStore)(nil)
