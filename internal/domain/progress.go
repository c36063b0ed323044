package domain

import (
	"slices"
	"time"
)

// MaxAttemptsPerExercise bounds the attempt history kept for each exercise.
const MaxAttemptsPerExercise = 10

// DefaultLearnerID identifies the single local learner when no id is given.
const DefaultLearnerID = "default"

// Progress is the persisted record of one learner's work.
type Progress struct {
	LearnerID        string                       `json:"learner_id"`
	CompletedLessons []string                     `json:"completed_lessons"`
	CurrentLesson    string                       `json:"current_lesson,omitempty"`
	ExerciseAttempts map[string][]ExerciseAttempt `json:"exercise_attempts"`
	TotalTimeSpent   int                          `json:"total_time_spent"` // minutes
	Achievements     []Achievement                `json:"achievements"`
	Streak           int                          `json:"streak"`
	LastAccessed     time.Time                    `json:"last_accessed"`
}

// ExerciseAttempt records one submission against an exercise.
type ExerciseAttempt struct {
	ID         string    `json:"id"`
	ExerciseID string    `json:"exercise_id"`
	Code       string    `json:"code"`
	IsCorrect  bool      `json:"is_correct"`
	Timestamp  time.Time `json:"timestamp"`
	TimeSpent  int       `json:"time_spent"` // seconds
	HintsUsed  int       `json:"hints_used"`
}

// AchievementCategory groups achievements.
type AchievementCategory string

const (
	AchievementCompletion  AchievementCategory = "completion"
	AchievementStreak      AchievementCategory = "streak"
	AchievementSpeed       AchievementCategory = "speed"
	AchievementExploration AchievementCategory = "exploration"
)

// Achievement is an unlocked badge.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	UnlockedAt  time.Time           `json:"unlocked_at"`
	Category    AchievementCategory `json:"category"`
}

// NewProgress returns an empty record for a learner.
func NewProgress(learnerID string, now time.Time) *Progress {
	if learnerID == "" {
		learnerID = DefaultLearnerID
	}
	return &Progress{
		LearnerID:        learnerID,
		CompletedLessons: []string{},
		ExerciseAttempts: make(map[string][]ExerciseAttempt),
		Achievements:     []Achievement{},
		LastAccessed:     now,
	}
}

// Normalize fills nil collections left behind by older or hand-edited records.
func (p *Progress) Normalize() {
	if p.LearnerID == "" {
		p.LearnerID = DefaultLearnerID
	}
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}
	if p.ExerciseAttempts == nil {
		p.ExerciseAttempts = make(map[string][]ExerciseAttempt)
	}
	if p.Achievements == nil {
		p.Achievements = []Achievement{}
	}
}

// HasCompleted reports whether the lesson is marked completed.
func (p *Progress) HasCompleted(lessonID string) bool {
	return slices.Contains(p.CompletedLessons, lessonID)
}

// MarkCompleted adds the lesson to the completed set. It reports whether
// the record changed.
func (p *Progress) MarkCompleted(lessonID string) bool {
	if p.HasCompleted(lessonID) {
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, lessonID)
	return true
}

// RecordAttempt appends an attempt, evicting the oldest ones beyond
// MaxAttemptsPerExercise.
func (p *Progress) RecordAttempt(a ExerciseAttempt) {
	if p.ExerciseAttempts == nil {
		p.ExerciseAttempts = make(map[string][]ExerciseAttempt)
	}
	attempts := append(p.ExerciseAttempts[a.ExerciseID], a)
	if len(attempts) > MaxAttemptsPerExercise {
		attempts = attempts[len(attempts)-MaxAttemptsPerExercise:]
	}
	p.ExerciseAttempts[a.ExerciseID] = attempts
}

// Attempts returns the recorded attempts for an exercise, oldest first.
func (p *Progress) Attempts(exerciseID string) []ExerciseAttempt {
	attempts := p.ExerciseAttempts[exerciseID]
	if attempts == nil {
		return []ExerciseAttempt{}
	}
	return attempts
}

// IsExerciseSolved reports whether any recorded attempt was correct.
func (p *Progress) IsExerciseSolved(exerciseID string) bool {
	for _, a := range p.ExerciseAttempts[exerciseID] {
		if a.IsCorrect {
			return true
		}
	}
	return false
}

// AddAchievement unlocks an achievement once. It reports whether the record changed.
func (p *Progress) AddAchievement(a Achievement) bool {
	for _, existing := range p.Achievements {
		if existing.ID == a.ID {
			return false
		}
	}
	p.Achievements = append(p.Achievements, a)
	return true
}

// UpdateStreak advances the daily streak based on the last access time.
// Access on the next calendar day extends the streak, a longer gap resets
// it to one, and access on the same day leaves it unchanged.
func (p *Progress) UpdateStreak(now time.Time) {
	days := calendarDaysBetween(p.LastAccessed, now)
	switch {
	case days == 1:
		p.Streak++
	case days > 1:
		p.Streak = 1
	}
}

func calendarDaysBetween(from, to time.Time) int {
	if from.IsZero() {
		return 0
	}
	to = to.In(from.Location())
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
