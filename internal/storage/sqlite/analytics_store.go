package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/events"
)

var _ events.Log = (*AnalyticsStore)(nil)

// AnalyticsStore keeps a local log of learning events backed by SQLite.
type AnalyticsStore struct {
	db *DB
}

// NewAnalyticsStore creates a new SQLite-backed analytics store.
func NewAnalyticsStore(db *DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// Record stores an event.
func (s *AnalyticsStore) Record(ctx context.Context, e events.Event) error {
	attrs := e.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	payload, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal event attributes: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO analytics_events (event_id, event_type, learner_id, subject, data, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, string(e.Type), e.LearnerID, e.Subject, string(payload), e.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// Query returns events of the given type, newest first, optionally filtered
// by learner and time range.
func (s *AnalyticsStore) Query(ctx context.Context, eventType events.Type, learnerID string, since, until time.Time) ([]events.Event, error) {
	query := "SELECT event_id, event_type, learner_id, subject, data, created_at FROM analytics_events WHERE event_type = ?"
	args := []interface{}{string(eventType)}

	if learnerID != "" {
		query += " AND learner_id = ?"
		args = append(args, learnerID)
	}
	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC())
	}
	if !until.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, until.UTC())
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analytics: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			e       events.Event
			typ     string
			payload string
		)
		if err := rows.Scan(&e.ID, &typ, &e.LearnerID, &e.Subject, &payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		e.Type = events.Type(typ)
		if err := json.Unmarshal([]byte(payload), &e.Attributes); err != nil {
			return nil, fmt.Errorf("decode analytics event %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of events matching the given type.
func (s *AnalyticsStore) Count(ctx context.Context, eventType events.Type) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM analytics_events WHERE event_type = ?", string(eventType),
	).Scan(&count)
	return count, err
}

// Prune deletes events older than the given duration.
func (s *AnalyticsStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, "DELETE FROM analytics_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune analytics: %w", err)
	}
	return result.RowsAffected()
}
