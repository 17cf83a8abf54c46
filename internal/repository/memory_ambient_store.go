package repository

import (
	"context"
	"sync"

	"ScoreFuse/internal/domain/models"
	domrepo "ScoreFuse/internal/domain/repository"
)

// MemoryAmbientStore implements AmbientStore with in-process state. Used
// when Redis is disabled and in tests.
type MemoryAmbientStore struct {
	mu        sync.RWMutex
	condition models.MarketCondition
	priors    map[models.SourceKind]models.ReliabilityPrior
}

// NewMemoryAmbientStore creates an ambient store starting in the NORMAL
// condition with no stored priors.
func NewMemoryAmbientStore() *MemoryAmbientStore {
	return &MemoryAmbientStore{
		condition: models.ConditionNormal,
		priors:    make(map[models.SourceKind]models.ReliabilityPrior),
	}
}

var _ domrepo.AmbientStore = (*MemoryAmbientStore)(nil)

func (s *MemoryAmbientStore) Snapshot(ctx context.Context) (models.MarketCondition, map[models.SourceKind]models.ReliabilityPrior, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.condition, clonePriors(s.priors), nil
}

func (s *MemoryAmbientStore) Condition(ctx context.Context) (models.MarketCondition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.condition, nil
}

func (s *MemoryAmbientStore) SetCondition(ctx context.Context, c models.MarketCondition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.condition = c
	return nil
}

func (s *MemoryAmbientStore) Priors(ctx context.Context) (map[models.SourceKind]models.ReliabilityPrior, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePriors(s.priors), nil
}

func (s *MemoryAmbientStore) SetPrior(ctx context.Context, p models.ReliabilityPrior) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priors[p.Kind] = p
	return nil
}

func clonePriors(in map[models.SourceKind]models.ReliabilityPrior) map[models.SourceKind]models.ReliabilityPrior {
	out := make(map[models.SourceKind]models.ReliabilityPrior, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
