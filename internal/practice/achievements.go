package practice

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/message"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/i18n"
)

// Achievement ids. Topic achievements are "topic-<topic>".
const (
	AchievementFirstLesson = "first-lesson"
	AchievementFirstTry    = "first-try"
	AchievementNoHints     = "no-hints"
	AchievementStreak3     = "streak-3"
	AchievementStreak7     = "streak-7"
)

// Solve describes a correct submission for achievement detection.
type Solve struct {
	Lesson       *domain.Lesson
	TopicLessons []*domain.Lesson
	FirstTry     bool
	HintsUsed    int
	At           time.Time
}

// Detector identifies achievements earned by a correct submission.
type Detector struct {
	printer      *message.Printer
	streakLevels []int
}

// NewDetector creates a detector producing titles in the given locale.
func NewDetector(locale string) *Detector {
	return &Detector{
		printer:      i18n.Printer(locale),
		streakLevels: []int{3, 7},
	}
}

// Detect returns the achievements the progress record qualifies for after
// the solve. Already unlocked ones are included; the caller deduplicates.
func (d *Detector) Detect(p *domain.Progress, s Solve) []domain.Achievement {
	var out []domain.Achievement

	if len(p.CompletedLessons) > 0 {
		out = append(out, d.achievement(AchievementFirstLesson, domain.AchievementCompletion, "🎯",
			d.printer.Sprintf(i18n.MsgAchFirstLesson),
			d.printer.Sprintf(i18n.MsgAchFirstLessonDesc), s.At))
	}

	if s.Lesson != nil && topicComplete(p, s.TopicLessons) {
		title := string(s.Lesson.Category)
		if info, ok := domain.LookupTopic(s.Lesson.Category); ok {
			title = info.Title
		}
		out = append(out, d.achievement(TopicAchievementID(s.Lesson.Category), domain.AchievementCompletion, "🏆",
			d.printer.Sprintf(i18n.MsgAchTopicComplete, title),
			d.printer.Sprintf(i18n.MsgAchTopicCompleteDesc, title), s.At))
	}

	if s.FirstTry {
		out = append(out, d.achievement(AchievementFirstTry, domain.AchievementSpeed, "⚡",
			d.printer.Sprintf(i18n.MsgAchFirstTry),
			d.printer.Sprintf(i18n.MsgAchFirstTryDesc), s.At))
	}

	if s.HintsUsed == 0 {
		out = append(out, d.achievement(AchievementNoHints, domain.AchievementExploration, "🧭",
			d.printer.Sprintf(i18n.MsgAchNoHints),
			d.printer.Sprintf(i18n.MsgAchNoHintsDesc), s.At))
	}

	for _, days := range d.streakLevels {
		if p.Streak < days {
			break
		}
		out = append(out, d.achievement(fmt.Sprintf("streak-%d", days), domain.AchievementStreak, "🔥",
			d.printer.Sprintf(i18n.MsgAchStreak, days),
			d.printer.Sprintf(i18n.MsgAchStreakDesc, days), s.At))
	}

	return out
}

func (d *Detector) achievement(id string, cat domain.AchievementCategory, icon, title, desc string, at time.Time) domain.Achievement {
	return domain.Achievement{
		ID:          id,
		Title:       title,
		Description: desc,
		Icon:        icon,
		UnlockedAt:  at,
		Category:    cat,
	}
}

// TopicAchievementID returns the achievement id for completing a topic.
func TopicAchievementID(t domain.Topic) string {
	return "topic-" + strings.ToLower(string(t))
}

func topicComplete(p *domain.Progress, lessons []*domain.Lesson) bool {
	if len(lessons) == 0 {
		return false
	}
	for _, l := range lessons {
		if !p.HasCompleted(l.ID) {
			return false
		}
	}
	return true
}
