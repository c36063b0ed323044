package practice

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

func TestDetectStreaks(t *testing.T) {
	d := NewDetector("en")
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		streak int
		want   []string
	}{
		{1, nil},
		{3, []string{AchievementStreak3}},
		{9, []string{AchievementStreak3, AchievementStreak7}},
	}
	for _, tt := range tests {
		p := domain.NewProgress("ana", at)
		p.Streak = tt.streak

		var got []string
		for _, a := range d.Detect(p, Solve{HintsUsed: 1, At: at}) {
			if a.Category == domain.AchievementStreak {
				got = append(got, a.ID)
			}
		}
		if len(got) != len(tt.want) {
			t.Errorf("streak %d: got %v; want %v", tt.streak, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("streak %d: got %v; want %v", tt.streak, got, tt.want)
			}
		}
	}
}

func TestDetectLocalizedTitles(t *testing.T) {
	at := time.Now()
	p := domain.NewProgress("ana", at)
	p.MarkCompleted("variables-01")

	en := NewDetector("en").Detect(p, Solve{HintsUsed: 1, At: at})
	pt := NewDetector("pt-BR").Detect(p, Solve{HintsUsed: 1, At: at})
	if len(en) != 1 || len(pt) != 1 {
		t.Fatalf("got %d and %d achievements; want 1 each", len(en), len(pt))
	}
	if en[0].Title != "First steps" {
		t.Errorf("en title = %q; want %q", en[0].Title, "First steps")
	}
	if pt[0].Title != "Primeiros passos" {
		t.Errorf("pt title = %q; want %q", pt[0].Title, "Primeiros passos")
	}
	if !en[0].UnlockedAt.Equal(at) {
		t.Errorf("UnlockedAt = %v; want %v", en[0].UnlockedAt, at)
	}
}

func TestTopicCompleteNeedsLessons(t *testing.T) {
	p := domain.NewProgress("ana", time.Now())
	if topicComplete(p, nil) {
		t.Error("topicComplete(nil) = true; want false")
	}
}
