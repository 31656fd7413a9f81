package services

import (
	"context"
	"sync"

	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
)

// ObservationService bridges the repository and the presentation layer.
// It owns the in-memory mirror of the collection plus loading and sticky
// error state. The mirror is only mutated after the corresponding store
// write has been confirmed by the repository.
type ObservationService struct {
	repo domain.ObservationRepository

	mu           sync.RWMutex
	observations []domain.Observation
	loading      bool
	lastErr      string
}

func NewObservationService(repo domain.ObservationRepository) *ObservationService {
	return &ObservationService{
		repo:         repo,
		observations: []domain.Observation{},
	}
}

// Snapshot returns a copy of the in-memory mirror in persisted order.
func (s *ObservationService) Snapshot() []domain.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.Observation, len(s.observations))
	copy(snapshot, s.observations)
	return snapshot
}

func (s *ObservationService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the sticky error message. Empty means the last operation
// succeeded; the message is retained until the next successful one.
func (s *ObservationService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Refresh re-synchronizes the mirror from the store. The presentation
// layer calls it every time the consuming view becomes visible again.
// On failure the previous mirror is retained and the error is set.
func (s *ObservationService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	observations, err := s.repo.ListAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastErr = err.Error()
		return err
	}

	s.observations = observations
	s.lastErr = ""
	return nil
}

func (s *ObservationService) Get(ctx context.Context, id string) (*domain.Observation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ObservationService) Create(ctx context.Context, input domain.CreateObservationInput) (*domain.Observation, error) {
	obs, err := s.repo.Create(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err.Error()
		return nil, err
	}

	s.observations = append(s.observations, *obs)
	s.lastErr = ""
	return obs, nil
}

func (s *ObservationService) Update(ctx context.Context, id string, patch domain.UpdateObservationInput) (*domain.Observation, error) {
	obs, err := s.repo.Update(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err.Error()
		return nil, err
	}

	for i := range s.observations {
		if s.observations[i].ID == id {
			s.observations[i] = *obs
			break
		}
	}
	s.lastErr = ""
	return obs, nil
}

func (s *ObservationService) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err.Error()
		return false, err
	}

	if removed {
		filtered := s.observations[:0:0]
		for _, obs := range s.observations {
			if obs.ID != id {
				filtered = append(filtered, obs)
			}
		}
		s.observations = filtered
	}
	s.lastErr = ""
	return removed, nil
}
