package runner

import (
	"context"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// Executor runs submitted code and reports its output.
type Executor interface {
	Run(ctx context.Context, code string) (domain.ExecutionResult, error)
}

// MockExecutor implements Executor with the simulation engine.
type MockExecutor struct {
	engine *Engine
}

// NewMockExecutor creates a mock executor whose messages use locale.
func NewMockExecutor(locale string) *MockExecutor {
	return &MockExecutor{engine: NewEngine(locale)}
}

// Run simulates code. The context is only checked before the simulation
// starts since a simulation is linear in the input and never blocks.
func (e *MockExecutor) Run(ctx context.Context, code string) (domain.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExecutionResult{}, err
	}
	return e.engine.Simulate(code), nil
}
