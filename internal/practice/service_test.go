package practice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/events"
	"github.com/felixgeelhaar/pymastery/internal/lesson"
	"github.com/felixgeelhaar/pymastery/internal/progress"
)

const (
	solvedVar01 = "meu_nome = \"Ana\"\nprint(meu_nome)"
	solvedVar02 = "largura = 10\naltura = 5\narea = largura * altura\nprint(area)"
	solvedOps01 = "total = 5 + 3\nprint(total)"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return c.err
}

func (c *capturePublisher) types() []events.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Type, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(t *testing.T) (*Service, *capturePublisher) {
	t.Helper()
	catalog, err := lesson.NewBuiltinCatalog("")
	if err != nil {
		t.Fatalf("NewBuiltinCatalog() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := &capturePublisher{}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	svc := NewService(Config{
		Catalog:   catalog,
		Progress:  progress.NewService(progress.NewMemoryStore(), progress.WithLogger(logger), progress.WithClock(clock)),
		Publisher: pub,
		Logger:    logger,
		Now:       clock,
	})
	return svc, pub
}

func TestValidateIncorrect(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	out, err := svc.Validate(ctx, "ana", "variables-01", "print(x)", 1)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if out.Result.IsCorrect {
		t.Error("Result.IsCorrect = true; want false")
	}
	if out.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d; want 1", out.AttemptCount)
	}
	if out.LessonCompleted || out.NewlyCompleted {
		t.Error("incorrect submission completed the lesson")
	}
	if len(out.Achievements) != 0 {
		t.Errorf("Achievements = %v; want none", out.Achievements)
	}
	if got := pub.types(); len(got) != 1 || got[0] != events.TypeAttemptRecorded {
		t.Errorf("published %v; want [%s]", got, events.TypeAttemptRecorded)
	}

	current, _ := svc.Progress().CurrentLesson(ctx, "ana")
	if current != "variables-01" {
		t.Errorf("CurrentLesson = %q; want %q", current, "variables-01")
	}
	attempts, _ := svc.Progress().Attempts(ctx, "ana", "variables-exercise-01")
	if len(attempts) != 1 || attempts[0].HintsUsed != 1 || attempts[0].ID == "" {
		t.Errorf("attempts = %+v; want one attempt with an id and 1 hint", attempts)
	}
}

func TestValidateCorrectCompletesLesson(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	out, err := svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !out.Result.IsCorrect {
		t.Fatalf("Result = %+v; want correct", out.Result)
	}
	if !out.LessonCompleted || !out.NewlyCompleted {
		t.Errorf("LessonCompleted = %v, NewlyCompleted = %v; want both true", out.LessonCompleted, out.NewlyCompleted)
	}

	ids := map[string]bool{}
	for _, a := range out.Achievements {
		ids[a.ID] = true
	}
	for _, want := range []string{AchievementFirstLesson, AchievementFirstTry, AchievementNoHints} {
		if !ids[want] {
			t.Errorf("missing achievement %q in %v", want, out.Achievements)
		}
	}
	if ids[TopicAchievementID(domain.TopicVariables)] {
		t.Error("topic achievement unlocked with lessons remaining")
	}

	got := pub.types()
	if len(got) < 2 || got[0] != events.TypeAttemptRecorded || got[1] != events.TypeLessonCompleted {
		t.Errorf("published %v; want attempt then completion first", got)
	}

	// solving again neither re-completes nor re-unlocks
	out, err = svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if out.NewlyCompleted || len(out.Achievements) != 0 {
		t.Errorf("second solve: NewlyCompleted = %v, Achievements = %v", out.NewlyCompleted, out.Achievements)
	}
	if out.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d; want 2", out.AttemptCount)
	}
}

func TestValidateTopicCompletion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	out, err := svc.Validate(ctx, "ana", "variables-02", solvedVar02, 2)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	var found bool
	for _, a := range out.Achievements {
		if a.ID == TopicAchievementID(domain.TopicVariables) {
			found = true
		}
		if a.ID == AchievementNoHints {
			t.Error("no-hints achievement repeated")
		}
	}
	if !found {
		t.Errorf("Achievements = %v; want topic completion", out.Achievements)
	}
}

func TestValidateErrors(t *testing.T) {
	svc, pub := newTestService(t)

	if _, err := svc.Validate(context.Background(), "ana", "missing", "x = 1", 0); !errors.Is(err, domain.ErrLessonNotFound) {
		t.Errorf("Validate(missing) error = %v; want %v", err, domain.ErrLessonNotFound)
	}
	if _, err := svc.Validate(context.Background(), "ana", "variables-01", "x = 1", -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Validate(-1 hints) error = %v; want %v", err, domain.ErrInvalidInput)
	}
	if n := len(pub.types()); n != 0 {
		t.Errorf("published %d events for rejected submissions", n)
	}
}

func TestValidateThinkingDelayCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	svc.delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Validate() error = %v; want %v", err, context.Canceled)
	}
	attempts, _ := svc.Progress().Attempts(context.Background(), "ana", "variables-exercise-01")
	if len(attempts) != 0 {
		t.Errorf("cancelled validation recorded %d attempts", len(attempts))
	}
}

func TestValidateThinkingDelayElapses(t *testing.T) {
	svc, _ := newTestService(t)
	svc.delay = 10 * time.Millisecond

	start := time.Now()
	if _, err := svc.Validate(context.Background(), "ana", "variables-01", solvedVar01, 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Validate() returned after %v; want at least 10ms", elapsed)
	}
}

func TestValidatePublishFailureIsNotFatal(t *testing.T) {
	svc, pub := newTestService(t)
	pub.err = errors.New("broker down")

	out, err := svc.Validate(context.Background(), "ana", "variables-01", solvedVar01, 0)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !out.Result.IsCorrect {
		t.Error("Result.IsCorrect = false; want true")
	}
}

func TestRun(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Run(context.Background(), "x = 2\ny = 3\nz = x * y\nprint(z)")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Output != "6" {
		t.Errorf("Output = %q; want %q", res.Output, "6")
	}
}

func TestLesson(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Validate(ctx, "ana", "variables-01", "oops", 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	st, err := svc.Lesson(ctx, "ana", "variables-01")
	if err != nil {
		t.Fatalf("Lesson() error = %v", err)
	}
	if st.Completed || st.Solved || st.Attempts != 1 {
		t.Errorf("Lesson() = %+v; want 1 attempt, unsolved", st)
	}
	if _, err := svc.Lesson(ctx, "ana", "nope"); !errors.Is(err, domain.ErrLessonNotFound) {
		t.Errorf("Lesson(nope) error = %v; want %v", err, domain.ErrLessonNotFound)
	}
}

func TestLessonCards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ov, err := svc.LessonCards(ctx, "ana", domain.TopicVariables)
	if err != nil {
		t.Fatalf("LessonCards() error = %v", err)
	}
	if ov.Total != 2 || ov.Percent != 0 {
		t.Errorf("Total = %d, Percent = %d; want 2, 0", ov.Total, ov.Percent)
	}
	if ov.Cards[0].Status != domain.StatusAvailable || ov.Cards[1].Status != domain.StatusLocked {
		t.Errorf("statuses = %s, %s; want available, locked", ov.Cards[0].Status, ov.Cards[1].Status)
	}

	if _, err := svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := svc.Validate(ctx, "ana", "variables-02", "largura = 1", 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	ov, err = svc.LessonCards(ctx, "ana", domain.TopicVariables)
	if err != nil {
		t.Fatalf("LessonCards() error = %v", err)
	}
	if ov.Cards[0].Status != domain.StatusCompleted || ov.Cards[0].Progress != 100 {
		t.Errorf("card 0 = %s/%d; want completed/100", ov.Cards[0].Status, ov.Cards[0].Progress)
	}
	if ov.Cards[1].Status != domain.StatusInProgress {
		t.Errorf("card 1 status = %s; want %s", ov.Cards[1].Status, domain.StatusInProgress)
	}
	if ov.Completed != 1 || ov.Percent != 50 {
		t.Errorf("Completed = %d, Percent = %d; want 1, 50", ov.Completed, ov.Percent)
	}

	empty, err := svc.LessonCards(ctx, "ana", domain.TopicLoops)
	if err != nil {
		t.Fatalf("LessonCards(loops) error = %v", err)
	}
	if empty.Total != 0 || len(empty.Cards) != 0 {
		t.Errorf("LessonCards(loops) = %+v; want empty", empty)
	}

	if _, err := svc.LessonCards(ctx, "ana", "cooking"); !errors.Is(err, domain.ErrTopicNotFound) {
		t.Errorf("LessonCards(cooking) error = %v; want %v", err, domain.ErrTopicNotFound)
	}
}

func TestTopicStatuses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	statuses, err := svc.TopicStatuses(ctx, "ana")
	if err != nil {
		t.Fatalf("TopicStatuses() error = %v", err)
	}
	if len(statuses) != len(domain.Topics()) {
		t.Fatalf("len = %d; want %d", len(statuses), len(domain.Topics()))
	}
	if statuses[0].Status != domain.StatusAvailable || statuses[1].Status != domain.StatusLocked {
		t.Errorf("fresh statuses = %s, %s; want available, locked", statuses[0].Status, statuses[1].Status)
	}
	if statuses[0].Lessons != 2 {
		t.Errorf("variables lessons = %d; want 2", statuses[0].Lessons)
	}

	if _, err := svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	statuses, _ = svc.TopicStatuses(ctx, "ana")
	want := []domain.LessonStatus{domain.StatusCompleted, domain.StatusAvailable, domain.StatusLocked}
	for i, w := range want {
		if statuses[i].Status != w {
			t.Errorf("topic %s = %s; want %s", statuses[i].Topic.Topic, statuses[i].Status, w)
		}
	}

	if _, err := svc.Validate(ctx, "ana", "operators-01", solvedOps01, 0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	statuses, _ = svc.TopicStatuses(ctx, "ana")
	if statuses[1].Status != domain.StatusCompleted || statuses[2].Status != domain.StatusAvailable {
		t.Errorf("after operators: %s, %s; want completed, available", statuses[1].Status, statuses[2].Status)
	}
}

func TestNavigate(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name       string
		lessonID   string
		dir        Direction
		wantLesson string
		wantTopic  domain.Topic
	}{
		{"next within topic", "variables-01", DirectionNext, "variables-02", ""},
		{"next across topics", "variables-02", DirectionNext, "operators-01", ""},
		{"previous", "variables-02", DirectionPrevious, "variables-01", ""},
		{"first has no previous", "variables-01", DirectionPrevious, "", domain.TopicVariables},
		{"last has no next", "operators-01", DirectionNext, "", domain.TopicOperators},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, err := svc.Navigate(tt.lessonID, tt.dir)
			if err != nil {
				t.Fatalf("Navigate() error = %v", err)
			}
			var got string
			if dest.Lesson != nil {
				got = dest.Lesson.ID
			}
			if got != tt.wantLesson || dest.Topic != tt.wantTopic {
				t.Errorf("Navigate() = {%q, %q}; want {%q, %q}", got, dest.Topic, tt.wantLesson, tt.wantTopic)
			}
		})
	}

	if _, err := svc.Navigate("variables-01", "sideways"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Navigate(sideways) error = %v; want %v", err, ErrInvalidDirection)
	}
	if _, err := svc.Navigate("nope", DirectionNext); !errors.Is(err, domain.ErrLessonNotFound) {
		t.Errorf("Navigate(nope) error = %v; want %v", err, domain.ErrLessonNotFound)
	}
}

// cancelAfterCtx reports cancellation once Err has been asked n times.
type cancelAfterCtx struct {
	context.Context
	mu sync.Mutex
	n  int
}

func (c *cancelAfterCtx) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n <= 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestValidate_CancelledBeforeRecording(t *testing.T) {
	svc, pub := newTestService(t)

	// The first check passes, so cancellation lands after the thinking delay.
	ctx := &cancelAfterCtx{Context: context.Background(), n: 1}
	if _, err := svc.Validate(ctx, "ana", "variables-01", solvedVar01, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Validate() error = %v; want context.Canceled", err)
	}

	attempts, err := svc.Progress().Attempts(context.Background(), "ana", "variables-exercise-01")
	if err != nil {
		t.Fatalf("Attempts() error = %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("recorded attempts = %d; want 0", len(attempts))
	}
	if got := pub.types(); len(got) != 0 {
		t.Errorf("published %v; want nothing", got)
	}
}
