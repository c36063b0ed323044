// Package practice ties the lesson catalog, the validator, the mock runner
// and learner progress together into the operations a lesson page needs.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/events"
	"github.com/felixgeelhaar/pymastery/internal/lesson"
	"github.com/felixgeelhaar/pymastery/internal/progress"
	"github.com/felixgeelhaar/pymastery/internal/runner"
	"github.com/felixgeelhaar/pymastery/internal/validator"
)

// DefaultThinkingDelay is the pause before a submission is judged.
const DefaultThinkingDelay = 500 * time.Millisecond

// Config holds the collaborators of a Service.
type Config struct {
	Catalog   *lesson.Catalog
	Progress  *progress.Service
	Validator *validator.Validator
	Executor  runner.Executor
	Publisher events.Publisher
	Detector  *Detector
	Logger    *slog.Logger

	// ThinkingDelay is waited before each validation. Zero disables it.
	ThinkingDelay time.Duration

	Now func() time.Time
}

// Service implements the practice operations.
type Service struct {
	catalog   *lesson.Catalog
	progress  *progress.Service
	validator *validator.Validator
	executor  runner.Executor
	publisher events.Publisher
	detector  *Detector
	logger    *slog.Logger
	delay     time.Duration
	now       func() time.Time
}

// NewService creates a practice service. Missing optional collaborators get
// defaults: English validator and runner, no event publishing.
func NewService(cfg Config) *Service {
	s := &Service{
		catalog:   cfg.Catalog,
		progress:  cfg.Progress,
		validator: cfg.Validator,
		executor:  cfg.Executor,
		publisher: cfg.Publisher,
		detector:  cfg.Detector,
		logger:    cfg.Logger,
		delay:     cfg.ThinkingDelay,
		now:       cfg.Now,
	}
	if s.validator == nil {
		s.validator = validator.New()
	}
	if s.executor == nil {
		s.executor = runner.NewMockExecutor("en")
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.detector == nil {
		s.detector = NewDetector("en")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Outcome is the result of validating a submission.
type Outcome struct {
	Result          domain.ValidationResult `json:"result"`
	AttemptID       string                  `json:"attempt_id"`
	AttemptCount    int                     `json:"attempt_count"`
	LessonCompleted bool                    `json:"lesson_completed"`
	NewlyCompleted  bool                    `json:"newly_completed"`
	Achievements    []domain.Achievement    `json:"achievements,omitempty"`
}

// Validate judges code against the lesson's exercise and records the
// attempt in the learner's progress. A correct submission completes the
// lesson and may unlock achievements.
func (s *Service) Validate(ctx context.Context, learnerID, lessonID, code string, hintsUsed int) (*Outcome, error) {
	l, err := s.catalog.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if hintsUsed < 0 {
		return nil, fmt.Errorf("%w: negative hint count", domain.ErrInvalidInput)
	}

	if err := s.think(ctx); err != nil {
		return nil, err
	}

	result := s.validator.Validate(code, l.Exercise)
	now := s.now()
	attempt := domain.ExerciseAttempt{
		ID:         uuid.NewString(),
		ExerciseID: l.Exercise.ID,
		Code:       code,
		IsCorrect:  result.IsCorrect,
		Timestamp:  now,
		HintsUsed:  hintsUsed,
	}

	var topicLessons []*domain.Lesson
	if result.IsCorrect {
		topicLessons, err = s.catalog.ListByCategory(l.Category)
		if err != nil {
			return nil, err
		}
	}

	out := &Outcome{Result: result, AttemptID: attempt.ID}
	p, err := s.progress.Update(ctx, learnerID, func(p *domain.Progress) error {
		// An abandoned submission must not leave an attempt behind.
		if err := ctx.Err(); err != nil {
			return err
		}
		firstTry := len(p.Attempts(attempt.ExerciseID)) == 0
		p.UpdateStreak(now)
		p.RecordAttempt(attempt)
		p.CurrentLesson = l.ID

		if result.IsCorrect {
			out.NewlyCompleted = p.MarkCompleted(l.ID)
			earned := s.detector.Detect(p, Solve{
				Lesson:       l,
				TopicLessons: topicLessons,
				FirstTry:     firstTry,
				HintsUsed:    hintsUsed,
				At:           now,
			})
			for _, a := range earned {
				if p.AddAchievement(a) {
					out.Achievements = append(out.Achievements, a)
				}
			}
		}
		out.AttemptCount = len(p.Attempts(attempt.ExerciseID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	out.LessonCompleted = p.HasCompleted(l.ID)

	s.logger.Info("submission validated",
		"learner_id", p.LearnerID,
		"lesson_id", l.ID,
		"correct", result.IsCorrect,
		"attempts", out.AttemptCount)

	s.publish(ctx, p.LearnerID, l, attempt, out)
	return out, nil
}

func (s *Service) think(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) publish(ctx context.Context, learnerID string, l *domain.Lesson, attempt domain.ExerciseAttempt, out *Outcome) {
	evs := []events.Event{
		events.New(events.TypeAttemptRecorded, learnerID, attempt.ExerciseID, map[string]string{
			"attempt_id": attempt.ID,
			"lesson_id":  l.ID,
			"correct":    strconv.FormatBool(attempt.IsCorrect),
			"hints_used": strconv.Itoa(attempt.HintsUsed),
		}),
	}
	if out.NewlyCompleted {
		evs = append(evs, events.New(events.TypeLessonCompleted, learnerID, l.ID, map[string]string{
			"topic":    string(l.Category),
			"attempts": strconv.Itoa(out.AttemptCount),
		}))
	}
	for _, a := range out.Achievements {
		evs = append(evs, events.New(events.TypeAchievementUnlocked, learnerID, a.ID, map[string]string{
			"category": string(a.Category),
		}))
	}

	for _, e := range evs {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logger.Warn("failed to publish event",
				"type", e.Type,
				"subject", e.Subject,
				"error", err)
		}
	}
}

// Run simulates code with the mock execution engine.
func (s *Service) Run(ctx context.Context, code string) (domain.ExecutionResult, error) {
	return s.executor.Run(ctx, code)
}

// LessonState is a learner's standing on one lesson.
type LessonState struct {
	Lesson    *domain.Lesson `json:"lesson"`
	Completed bool           `json:"completed"`
	Solved    bool           `json:"solved"`
	Attempts  int            `json:"attempts"`
}

// Lesson returns a lesson together with the learner's standing on it.
func (s *Service) Lesson(ctx context.Context, learnerID, lessonID string) (*LessonState, error) {
	l, err := s.catalog.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return &LessonState{
		Lesson:    l,
		Completed: p.HasCompleted(l.ID),
		Solved:    p.IsExerciseSolved(l.Exercise.ID),
		Attempts:  len(p.Attempts(l.Exercise.ID)),
	}, nil
}

// TopicOverview lists a topic's lessons with the learner's status on each.
type TopicOverview struct {
	Topic     domain.TopicInfo    `json:"topic"`
	Cards     []domain.LessonCard `json:"lessons"`
	Completed int                 `json:"completed"`
	Total     int                 `json:"total"`
	Percent   int                 `json:"percent"`
}

// LessonCards returns the learner's status on each lesson of a topic. The
// first lesson is always open; each later one unlocks once the one before
// it is completed. A lesson with attempts but no completion is in progress.
func (s *Service) LessonCards(ctx context.Context, learnerID string, topic domain.Topic) (*TopicOverview, error) {
	info, ok := domain.LookupTopic(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, topic)
	}
	lessons, err := s.catalog.ListByCategory(topic)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	ov := &TopicOverview{
		Topic: info,
		Cards: make([]domain.LessonCard, 0, len(lessons)),
		Total: len(lessons),
	}
	for i, l := range lessons {
		card := domain.LessonCard{Lesson: l}
		switch {
		case i > 0 && !p.HasCompleted(lessons[i-1].ID):
			card.Status = domain.StatusLocked
		case p.HasCompleted(l.ID):
			card.Status = domain.StatusCompleted
			card.Progress = 100
			ov.Completed++
		case len(p.Attempts(l.Exercise.ID)) > 0:
			card.Status = domain.StatusInProgress
		default:
			card.Status = domain.StatusAvailable
		}
		ov.Cards = append(ov.Cards, card)
	}
	if ov.Total > 0 {
		ov.Percent = ov.Completed * 100 / ov.Total
	}
	return ov, nil
}

// TopicStatus is the learner's standing on a topic.
type TopicStatus struct {
	Topic   domain.TopicInfo    `json:"topic"`
	Status  domain.LessonStatus `json:"status"`
	Lessons int                 `json:"lessons"`
}

// TopicStatuses returns every topic in curriculum order. The first topic is
// always open; a later topic opens once any lesson of the previous topic is
// completed. A topic counts as completed once any of its lessons is. Lessons
// belong to a topic when their id starts with the topic name.
func (s *Service) TopicStatuses(ctx context.Context, learnerID string) ([]TopicStatus, error) {
	p, err := s.progress.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	topics := domain.Topics()
	out := make([]TopicStatus, 0, len(topics))
	for i, info := range topics {
		st := TopicStatus{Topic: info, Status: domain.StatusLocked}
		if lessons, err := s.catalog.ListByCategory(info.Topic); err == nil {
			st.Lessons = len(lessons)
		}
		if i == 0 || anyCompletedIn(p, topics[i-1].Topic) {
			st.Status = domain.StatusAvailable
			if anyCompletedIn(p, info.Topic) {
				st.Status = domain.StatusCompleted
			}
		}
		out = append(out, st)
	}
	return out, nil
}

func anyCompletedIn(p *domain.Progress, t domain.Topic) bool {
	for _, id := range p.CompletedLessons {
		if strings.HasPrefix(id, string(t)) {
			return true
		}
	}
	return false
}

// Direction selects a navigation neighbour.
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// ErrInvalidDirection is returned for an unknown navigation direction.
var ErrInvalidDirection = errors.New("invalid direction")

// Destination is where navigation leads: a lesson, or the topic index of
// the current lesson when there is no neighbour.
type Destination struct {
	Lesson *domain.Lesson `json:"lesson,omitempty"`
	Topic  domain.Topic   `json:"topic,omitempty"`
}

// Navigate returns the neighbour of a lesson in the global curriculum order.
func (s *Service) Navigate(lessonID string, dir Direction) (*Destination, error) {
	l, err := s.catalog.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}

	var next *domain.Lesson
	switch dir {
	case DirectionNext:
		next, err = s.catalog.Next(lessonID)
	case DirectionPrevious:
		next, err = s.catalog.Previous(lessonID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	if err != nil {
		return nil, err
	}
	if next == nil {
		return &Destination{Topic: l.Category}, nil
	}
	return &Destination{Lesson: next}, nil
}

// Catalog exposes the lesson catalog.
func (s *Service) Catalog() *lesson.Catalog { return s.catalog }

// Progress exposes the progress service.
func (s *Service) Progress() *progress.Service { return s.progress }
