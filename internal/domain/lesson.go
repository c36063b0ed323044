package domain

// Lesson is one unit of the Python curriculum: reading content, worked
// examples and a single exercise.
type Lesson struct {
	ID               string        `json:"id" yaml:"id"`
	Title            string        `json:"title" yaml:"title"`
	Description      string        `json:"description" yaml:"description"`
	Content          string        `json:"content" yaml:"content"`
	Examples         []CodeExample `json:"examples" yaml:"examples"`
	Exercise         Exercise      `json:"exercise" yaml:"exercise"`
	Prerequisites    []string      `json:"prerequisites,omitempty" yaml:"prerequisites"`
	Category         Topic         `json:"category" yaml:"category"`
	Order            int           `json:"order" yaml:"order"`
	EstimatedMinutes int           `json:"estimated_minutes" yaml:"estimated_minutes"`
}

// CodeExample is a worked example shown inside a lesson.
type CodeExample struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Code        string `json:"code" yaml:"code"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Output      string `json:"output,omitempty" yaml:"output"`
}

// LessonStatus is the learner-facing availability of a lesson or topic.
type LessonStatus string

const (
	StatusLocked     LessonStatus = "locked"
	StatusAvailable  LessonStatus = "available"
	StatusInProgress LessonStatus = "in-progress"
	StatusCompleted  LessonStatus = "completed"
)

// LessonCard pairs a lesson with the learner's status on it.
type LessonCard struct {
	Lesson   *Lesson      `json:"lesson"`
	Status   LessonStatus `json:"status"`
	Progress int          `json:"progress"` // 0-100
}
