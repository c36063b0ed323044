// Package progress tracks what each learner has completed, attempted and
// unlocked, on top of a pluggable Store.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// Service handles progress business logic. Read-modify-write cycles are
// serialized per learner.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	locks sync.Map // learner id -> *sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for recoverable storage problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new progress service
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lock(learnerID string) func() {
	mu, _ := s.locks.LoadOrStore(learnerID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Load returns the learner's progress. A missing or unreadable record
// yields a fresh default record; only storage failures are returned.
func (s *Service) Load(ctx context.Context, learnerID string) (*domain.Progress, error) {
	learnerID = normalizeID(learnerID)

	p, err := s.store.Get(ctx, learnerID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, domain.ErrProgressNotFound):
		return domain.NewProgress(learnerID, s.now()), nil
	case errors.Is(err, domain.ErrInvalidProgress):
		s.logger.Warn("discarding unreadable progress record",
			"learner_id", learnerID,
			"error", err)
		return domain.NewProgress(learnerID, s.now()), nil
	default:
		return nil, fmt.Errorf("load progress: %w", err)
	}
}

// Save stores the record, stamping LastAccessed with the current time.
func (s *Service) Save(ctx context.Context, p *domain.Progress) error {
	p.LearnerID = normalizeID(p.LearnerID)
	p.Normalize()
	p.LastAccessed = s.now()
	return s.store.Save(ctx, p)
}

// Update loads the learner's record, applies fn and saves the result.
// Nothing is saved when fn returns an error.
func (s *Service) Update(ctx context.Context, learnerID string, fn func(p *domain.Progress) error) (*domain.Progress, error) {
	learnerID = normalizeID(learnerID)
	unlock := s.lock(learnerID)
	defer unlock()

	p, err := s.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkLessonCompleted records a completed lesson. It reports whether the
// lesson was newly completed.
func (s *Service) MarkLessonCompleted(ctx context.Context, learnerID, lessonID string) (bool, error) {
	var added bool
	_, err := s.Update(ctx, learnerID, func(p *domain.Progress) error {
		added = p.MarkCompleted(lessonID)
		return nil
	})
	return added, err
}

// IsLessonCompleted reports whether the learner completed the lesson.
func (s *Service) IsLessonCompleted(ctx context.Context, learnerID, lessonID string) (bool, error) {
	p, err := s.Load(ctx, learnerID)
	if err != nil {
		return false, err
	}
	return p.HasCompleted(lessonID), nil
}

// SaveAttempt appends an attempt, keeping the most recent ones per exercise.
func (s *Service) SaveAttempt(ctx context.Context, learnerID string, attempt domain.ExerciseAttempt) error {
	if attempt.ExerciseID == "" {
		return fmt.Errorf("%w: attempt without exercise id", domain.ErrInvalidInput)
	}
	_, err := s.Update(ctx, learnerID, func(p *domain.Progress) error {
		p.RecordAttempt(attempt)
		return nil
	})
	return err
}

// Attempts returns the learner's recorded attempts for an exercise.
func (s *Service) Attempts(ctx context.Context, learnerID, exerciseID string) ([]domain.ExerciseAttempt, error) {
	p, err := s.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return p.Attempts(exerciseID), nil
}

// IsExerciseSolved reports whether any recorded attempt was correct.
func (s *Service) IsExerciseSolved(ctx context.Context, learnerID, exerciseID string) (bool, error) {
	p, err := s.Load(ctx, learnerID)
	if err != nil {
		return false, err
	}
	return p.IsExerciseSolved(exerciseID), nil
}

// AddAchievement unlocks an achievement once. It reports whether it was new.
func (s *Service) AddAchievement(ctx context.Context, learnerID string, a domain.Achievement) (bool, error) {
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = s.now()
	}
	var added bool
	_, err := s.Update(ctx, learnerID, func(p *domain.Progress) error {
		added = p.AddAchievement(a)
		return nil
	})
	return added, err
}

// AddTimeSpent adds minutes to the learner's total study time.
func (s *Service) AddTimeSpent(ctx context.Context, learnerID string, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: negative time spent", domain.ErrInvalidInput)
	}
	_, err := s.Update(ctx, learnerID, func(p *domain.Progress) error {
		p.TotalTimeSpent += minutes
		return nil
	})
	return err
}

// UpdateStreak advances the daily streak against the stored last access
// time and returns the new streak.
func (s *Service) UpdateStreak(ctx context.Context, learnerID string) (int, error) {
	p, err := s.Update(ctx, learnerID, func(p *domain.Progress) error {
		p.UpdateStreak(s.now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.Streak, nil
}

// SetCurrentLesson records the lesson the learner is working on.
func (s *Service) SetCurrentLesson(ctx context.Context, learnerID, lessonID string) error {
	_, err := s.Update(ctx, learnerID, func(p *domain.Progress) error {
		p.CurrentLesson = lessonID
		return nil
	})
	return err
}

// CurrentLesson returns the lesson the learner is working on, if any.
func (s *Service) CurrentLesson(ctx context.Context, learnerID string) (string, error) {
	p, err := s.Load(ctx, learnerID)
	if err != nil {
		return "", err
	}
	return p.CurrentLesson, nil
}

// Reset removes the learner's record. Resetting a learner without a
// record is not an error.
func (s *Service) Reset(ctx context.Context, learnerID string) error {
	learnerID = normalizeID(learnerID)
	unlock := s.lock(learnerID)
	defer unlock()

	if err := s.store.Delete(ctx, learnerID); err != nil && !errors.Is(err, domain.ErrProgressNotFound) {
		return fmt.Errorf("reset progress: %w", err)
	}
	s.logger.Info("progress reset", "learner_id", learnerID)
	return nil
}

// Export returns the learner's record as indented JSON.
func (s *Service) Export(ctx context.Context, learnerID string) ([]byte, error) {
	p, err := s.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return data, nil
}

// Import replaces the learner's record with an exported one. The record is
// stored under learnerID regardless of the id it was exported with.
func (s *Service) Import(ctx context.Context, learnerID string, data []byte) (*domain.Progress, error) {
	var p domain.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}
	if p.Streak < 0 || p.TotalTimeSpent < 0 {
		return nil, fmt.Errorf("%w: negative counters", domain.ErrInvalidProgress)
	}
	for id, attempts := range p.ExerciseAttempts {
		if len(attempts) > domain.MaxAttemptsPerExercise {
			p.ExerciseAttempts[id] = attempts[len(attempts)-domain.MaxAttemptsPerExercise:]
		}
	}

	learnerID = normalizeID(learnerID)
	unlock := s.lock(learnerID)
	defer unlock()

	p.LearnerID = learnerID
	if err := s.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("import progress: %w", err)
	}
	return &p, nil
}

func normalizeID(learnerID string) string {
	if learnerID == "" {
		return domain.DefaultLearnerID
	}
	return learnerID
}
