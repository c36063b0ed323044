// Package events publishes learning events (attempts, completions and
// achievements) to interested sinks such as RabbitMQ or a local analytics log.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

const (
	TypeAttemptRecorded     Type = "attempt.recorded"
	TypeLessonCompleted     Type = "lesson.completed"
	TypeAchievementUnlocked Type = "achievement.unlocked"
)

// Types lists every event type in the order they occur for one submission.
func Types() []Type {
	return []Type{TypeAttemptRecorded, TypeLessonCompleted, TypeAchievementUnlocked}
}

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Event is a single learning event. Subject is the exercise, lesson or
// achievement id the event is about.
type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	LearnerID  string            `json:"learner_id"`
	Subject    string            `json:"subject"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// New creates an event with a fresh id stamped with the current time.
func New(typ Type, learnerID, subject string, attrs map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		LearnerID:  learnerID,
		Subject:    subject,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Recorder persists events locally.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// Log reads recorded events back.
type Log interface {
	Query(ctx context.Context, eventType Type, learnerID string, since, until time.Time) ([]Event, error)
	Count(ctx context.Context, eventType Type) (int, error)
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// RecordingPublisher adapts a Recorder to the Publisher interface.
type RecordingPublisher struct {
	Recorder Recorder
}

// Publish implements Publisher.
func (p RecordingPublisher) Publish(ctx context.Context, e Event) error {
	return p.Recorder.Record(ctx, e)
}

// Multi fans out to several publishers. Every publisher is attempted; the
// returned error joins all failures.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
