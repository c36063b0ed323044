package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// ProgressStore implements progress persistence backed by SQLite. Each
// learner's record is stored as one JSON document.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new SQLite-backed progress store.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Save persists a progress record (insert or update).
func (s *ProgressStore) Save(ctx context.Context, p *domain.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (learner_id, data, last_accessed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(learner_id) DO UPDATE SET
			data=excluded.data,
			last_accessed=excluded.last_accessed,
			updated_at=excluded.updated_at`,
		p.LearnerID, string(data), p.LastAccessed.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// Get retrieves a learner's progress.
func (s *ProgressStore) Get(ctx context.Context, learnerID string) (*domain.Progress, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM progress WHERE learner_id = ?", learnerID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, fmt.Errorf("query progress: %w", err)
	}

	var p domain.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}
	p.Normalize()
	return &p, nil
}

// Delete removes a learner's progress.
func (s *ProgressStore) Delete(ctx context.Context, learnerID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM progress WHERE learner_id = ?", learnerID)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrProgressNotFound
	}
	return nil
}

// Learners returns stored learner ids, most recently active first.
func (s *ProgressStore) Learners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT learner_id FROM progress ORDER BY last_accessed DESC")
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
