package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// openTestStore connects to the database named by PYMASTERY_TEST_POSTGRES_URL
// and skips the test when it is unset.
func openTestStore(t *testing.T) *ProgressStore {
	t.Helper()

	url := os.Getenv("PYMASTERY_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("PYMASTERY_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(pool.Close)

	store := NewProgressStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return store
}

func TestProgressStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	learner := "test-" + uuid.NewString()
	t.Cleanup(func() { store.Delete(ctx, learner) })

	p := domain.NewProgress(learner, time.Now().UTC().Truncate(time.Microsecond))
	p.MarkCompleted("variables-01")
	p.RecordAttempt(domain.ExerciseAttempt{ID: "a", ExerciseID: "variables-exercise-01", IsCorrect: true})

	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, learner)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.HasCompleted("variables-01") || !got.IsExerciseSolved("variables-exercise-01") {
		t.Errorf("Get() = %+v; want saved state", got)
	}

	ids, err := store.Learners(ctx)
	if err != nil {
		t.Fatalf("Learners() error = %v", err)
	}
	found := false
	for _, id := range ids {
		found = found || id == learner
	}
	if !found {
		t.Errorf("Learners() missing %q", learner)
	}

	if err := store.Delete(ctx, learner); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, learner); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Errorf("Get() after delete error = %v; want ErrProgressNotFound", err)
	}
}

func TestProgressStore_Delete_NotFound(t *testing.T) {
	store := openTestStore(t)

	if err := store.Delete(context.Background(), "missing-"+uuid.NewString()); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Errorf("Delete() error = %v; want ErrProgressNotFound", err)
	}
}
