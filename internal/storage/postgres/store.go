// Package postgres persists progress in PostgreSQL for deployments where
// several daemons share learners.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/progress"
)

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	learner_id    TEXT PRIMARY KEY,
	data          JSONB NOT NULL,
	last_accessed TIMESTAMPTZ,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ProgressStore implements progress persistence using PostgreSQL.
type ProgressStore struct {
	pool *pgxpool.Pool
}

// NewProgressStore creates a new PostgreSQL progress store.
func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

// EnsureSchema creates the progress table when missing.
func (s *ProgressStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create progress table: %w", err)
	}
	return nil
}

// Save upserts a progress record.
func (s *ProgressStore) Save(ctx context.Context, p *domain.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	query := `
		INSERT INTO progress (learner_id, data, last_accessed, updated_at)
		VALUES ($1, $2::jsonb, $3, $4)
		ON CONFLICT (learner_id) DO UPDATE SET
			data = EXCLUDED.data,
			last_accessed = EXCLUDED.last_accessed,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, p.LearnerID, string(data), p.LastAccessed, time.Now()); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// Get retrieves a learner's progress.
func (s *ProgressStore) Get(ctx context.Context, learnerID string) (*domain.Progress, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM progress WHERE learner_id = $1`, learnerID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}

	var p domain.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}
	p.Normalize()
	return &p, nil
}

// Delete removes a learner's progress.
func (s *ProgressStore) Delete(ctx context.Context, learnerID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM progress WHERE learner_id = $1`, learnerID)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProgressNotFound
	}
	return nil
}

// Learners returns stored learner ids, most recently active first.
func (s *ProgressStore) Learners(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT learner_id FROM progress ORDER BY last_accessed DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan learners: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

var _ progress.Store = (*ProgressStore)(nil)
