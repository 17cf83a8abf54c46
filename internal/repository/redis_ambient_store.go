package repository

import (
	"context"
	"errors"
	"fmt"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
	"ScoreFuse/pkg/cache"
)

const (
	conditionKey   = "ambient:condition"
	priorKeyPrefix = "ambient:prior:"
)

// RedisAmbientStore implements AmbientStore on top of the shared Redis
// cache so multiple instances see the same condition and priors.
type RedisAmbientStore struct {
	cache cache.Service
}

// NewRedisAmbientStore creates a Redis-backed ambient store.
func NewRedisAmbientStore(c cache.Service) *RedisAmbientStore {
	return &RedisAmbientStore{cache: c}
}

var _ domrepo.AmbientStore = (*RedisAmbientStore)(nil)

func (s *RedisAmbientStore) Snapshot(ctx context.Context) (models.MarketCondition, map[models.SourceKind]models.ReliabilityPrior, error) {
	cond, err := s.Condition(ctx)
	if err != nil {
		return "", nil, err
	}
	priors, err := s.Priors(ctx)
	if err != nil {
		return "", nil, err
	}
	return cond, priors, nil
}

func (s *RedisAmbientStore) Condition(ctx context.Context) (models.MarketCondition, error) {
	var raw string
	if err := s.cache.Get(ctx, conditionKey, &raw); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.ConditionNormal, nil
		}
		return "", fmt.Errorf("get condition: %w", err)
	}
	cond, err := models.ParseMarketCondition(raw)
	if err != nil {
		// A corrupted value falls back to the safe default rather than
		// blocking every computation.
		return models.ConditionNormal, nil
	}
	return cond, nil
}

func (s *RedisAmbientStore) SetCondition(ctx context.Context, c models.MarketCondition) error {
	if err := s.cache.Set(ctx, conditionKey, string(c), 0); err != nil {
		return fmt.Errorf("set condition: %w", err)
	}
	return nil
}

func (s *RedisAmbientStore) Priors(ctx context.Context) (map[models.SourceKind]models.ReliabilityPrior, error) {
	kinds := models.SourceKinds()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = priorKeyPrefix + string(k)
	}

	typed, err := cache.MGetTyped[models.ReliabilityPrior](ctx, s.cache, keys...)
	if err != nil {
		return nil, fmt.Errorf("get priors: %w", err)
	}

	priors := make(map[models.SourceKind]models.ReliabilityPrior, len(typed))
	for i, k := range kinds {
		if p, ok := typed[keys[i]]; ok {
			priors[k] = p
		}
	}
	return priors, nil
}

func (s *RedisAmbientStore) SetPrior(ctx context.Context, p models.ReliabilityPrior) error {
	key := priorKeyPrefix + string(p.Kind)
	if err := s.cache.Set(ctx, key, p, 0); err != nil {
		return fmt.Errorf("set prior %s: %w", p.Kind, err)
	}
	return nil
}
