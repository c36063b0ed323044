package domain

// ValidationResult is the verdict on one submission. It has no identity
// beyond the call that produced it.
type ValidationResult struct {
	IsCorrect   bool     `json:"is_correct"`
	Message     string   `json:"message"`
	Errors      []string `json:"errors,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ExecutionResult is the simulated output of a piece of learner code.
type ExecutionResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the simulation hit an internal fault.
func (r ExecutionResult) Failed() bool {
	return r.Error != ""
}
