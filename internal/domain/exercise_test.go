package domain

import (
	"testing"
)

func TestDifficulty_Valid(t *testing.T) {
	tests := []struct {
		name string
		d    Difficulty
		want bool
	}{
		{"easy", DifficultyEasy, true},
		{"medium", DifficultyMedium, true},
		{"hard", DifficultyHard, true},
		{"empty", Difficulty(""), false},
		{"unknown", Difficulty("beginner"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Valid(); got != tt.want {
				t.Errorf("Difficulty(%q).Valid() = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestExercise_HasExpectedCode(t *testing.T) {
	ex := &Exercise{ID: "variables-exercise-02", ExpectedCode: "area ="}
	if !ex.HasExpectedCode() {
		t.Error("HasExpectedCode() = false, want true")
	}

	ex = &Exercise{ID: "no-token"}
	if ex.HasExpectedCode() {
		t.Error("HasExpectedCode() = true, want false")
	}
}

func TestTopics_Order(t *testing.T) {
	all := Topics()
	if len(all) != 12 {
		t.Fatalf("Topics() len = %d; want 12", len(all))
	}
	if all[0].Topic != TopicVariables {
		t.Errorf("Topics()[0] = %q; want %q", all[0].Topic, TopicVariables)
	}
	if all[11].Topic != TopicExceptions {
		t.Errorf("Topics()[11] = %q; want %q", all[11].Topic, TopicExceptions)
	}

	// Callers must not be able to reorder the curriculum.
	all[0].Topic = TopicLoops
	if Topics()[0].Topic != TopicVariables {
		t.Error("Topics() returned shared backing array")
	}
}

func TestTopic_Valid(t *testing.T) {
	if !TopicStrings.Valid() {
		t.Error("TopicStrings.Valid() = false; want true")
	}
	if Topic("rust").Valid() {
		t.Error(`Topic("rust").Valid() = true; want false`)
	}
}
