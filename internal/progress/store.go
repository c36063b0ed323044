package progress

import (
	"context"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// Store persists progress records keyed by learner id.
//
// Get returns domain.ErrProgressNotFound when no record exists and an error
// wrapping domain.ErrInvalidProgress when the stored record cannot be decoded.
// Delete returns domain.ErrProgressNotFound when there was nothing to delete.
type Store interface {
	Get(ctx context.Context, learnerID string) (*domain.Progress, error)
	Save(ctx context.Context, p *domain.Progress) error
	Delete(ctx context.Context, learnerID string) error
}
