package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/progress"
)

const progressCollection = "progress"

// ProgressStore persists learner progress as JSON files.
type ProgressStore struct {
	store *Store
}

// NewProgressStore creates a progress store backed by s.
func NewProgressStore(s *Store) *ProgressStore {
	return &ProgressStore{store: s}
}

// Get loads a learner's progress.
func (p *ProgressStore) Get(_ context.Context, learnerID string) (*domain.Progress, error) {
	var rec domain.Progress
	if err := p.store.Load(progressCollection, learnerID, &rec); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, domain.ErrProgressNotFound
		case errors.Is(err, ErrCorrupt):
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
		}
		return nil, err
	}
	rec.Normalize()
	return &rec, nil
}

// Save writes a learner's progress.
func (p *ProgressStore) Save(_ context.Context, rec *domain.Progress) error {
	if err := p.store.Save(progressCollection, rec.LearnerID, rec); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Delete removes a learner's progress.
func (p *ProgressStore) Delete(_ context.Context, learnerID string) error {
	if err := p.store.Delete(progressCollection, learnerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.ErrProgressNotFound
		}
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// Learners returns the ids of all stored learners.
func (p *ProgressStore) Learners(_ context.Context) ([]string, error) {
	return p.store.List(progressCollection)
}

var _ progress.Store = (*ProgressStore)(nil)
