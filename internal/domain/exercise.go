package domain

// Exercise describes one coding exercise attached to a lesson.
// Exercises are authored as static content and never mutated after load.
type Exercise struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Description    string     `json:"description" yaml:"description"`
	Hint           string     `json:"hint,omitempty" yaml:"hint"`
	ExpectedOutput string     `json:"expected_output,omitempty" yaml:"expected_output"`
	ExpectedCode   string     `json:"expected_code,omitempty" yaml:"expected_code"`
	TestCases      []TestCase `json:"test_cases,omitempty" yaml:"test_cases"`
	InitialCode    string     `json:"initial_code,omitempty" yaml:"initial_code"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
}

// Difficulty represents exercise difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// TestCase is a textual description of what an exercise checks.
// It is shown to the learner; the validator does not execute it.
type TestCase struct {
	Input          string `json:"input,omitempty" yaml:"input"`
	ExpectedOutput string `json:"expected_output" yaml:"expected_output"`
	Description    string `json:"description" yaml:"description"`
}

// HasExpectedCode reports whether the exercise carries an expected-substring token.
func (e *Exercise) HasExpectedCode() bool {
	return e.ExpectedCode != ""
}
