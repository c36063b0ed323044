package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

func newTestProgressStore(t *testing.T) (*ProgressStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return NewProgressStore(store), dir
}

func TestProgressStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	ps, _ := newTestProgressStore(t)

	p := domain.NewProgress("ana", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	p.MarkCompleted("variables-01")
	p.RecordAttempt(domain.ExerciseAttempt{ID: "a1", ExerciseID: "variables-exercise-01", IsCorrect: true})
	p.Streak = 3

	if err := ps.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := ps.Get(ctx, "ana")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.HasCompleted("variables-01") {
		t.Error("completed lesson not persisted")
	}
	if !got.IsExerciseSolved("variables-exercise-01") {
		t.Error("attempt not persisted")
	}
	if got.Streak != 3 {
		t.Errorf("Streak = %d; want 3", got.Streak)
	}
	if !got.LastAccessed.Equal(p.LastAccessed) {
		t.Errorf("LastAccessed = %v; want %v", got.LastAccessed, p.LastAccessed)
	}
}

func TestProgressStore_Get_NotFound(t *testing.T) {
	ps, _ := newTestProgressStore(t)

	if _, err := ps.Get(context.Background(), "nobody"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Errorf("Get() error = %v; want ErrProgressNotFound", err)
	}
}

func TestProgressStore_Get_Corrupt(t *testing.T) {
	ps, dir := newTestProgressStore(t)

	path := filepath.Join(dir, progressCollection)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "ana.json"), []byte("[1,2"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ps.Get(context.Background(), "ana"); !errors.Is(err, domain.ErrInvalidProgress) {
		t.Errorf("Get() error = %v; want ErrInvalidProgress", err)
	}
}

func TestProgressStore_Get_NormalizesNulls(t *testing.T) {
	ps, dir := newTestProgressStore(t)

	path := filepath.Join(dir, progressCollection)
	os.MkdirAll(path, 0755)
	if err := os.WriteFile(filepath.Join(path, "ana.json"), []byte(`{"learner_id":"ana","completed_lessons":null}`), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ps.Get(context.Background(), "ana")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CompletedLessons == nil || got.ExerciseAttempts == nil || got.Achievements == nil {
		t.Errorf("Get() = %+v; want non-nil collections", got)
	}
}

func TestProgressStore_DeleteAndLearners(t *testing.T) {
	ctx := context.Background()
	ps, _ := newTestProgressStore(t)

	now := time.Now()
	ps.Save(ctx, domain.NewProgress("a", now))
	ps.Save(ctx, domain.NewProgress("b", now))

	learners, err := ps.Learners(ctx)
	if err != nil {
		t.Fatalf("Learners() error = %v", err)
	}
	if len(learners) != 2 {
		t.Errorf("Learners() = %v; want 2 entries", learners)
	}

	if err := ps.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := ps.Delete(ctx, "a"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Errorf("Delete() again error = %v; want ErrProgressNotFound", err)
	}
}
