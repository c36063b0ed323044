// Package mcp exposes the practice operations as MCP tools so editors and
// assistants can drive lessons.
package mcp

import (
	"context"
	"fmt"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/practice"
)

// Server wraps the MCP server with PyMastery functionality
type Server struct {
	mcpServer *server.Server
	practice  *practice.Service
	learnerID string
}

// Config contains configuration for the MCP server
type Config struct {
	Practice  *practice.Service
	LearnerID string
	Version   string
}

// NewServer creates a new MCP server for PyMastery
func NewServer(cfg Config) *Server {
	s := &Server{
		practice:  cfg.Practice,
		learnerID: cfg.LearnerID,
	}
	if s.learnerID == "" {
		s.learnerID = domain.DefaultLearnerID
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "pymastery",
		Version: version,
	}, server.WithInstructions(`
PyMastery teaches Python through short lessons, each ending in one exercise.

Available tools:
- pymastery_lessons: List lessons, optionally for one topic, with the learner's status
- pymastery_lesson: Show a lesson's content and exercise
- pymastery_validate: Check a solution for a lesson's exercise and record the attempt
- pymastery_run: Simulate running a snippet and show its output
- pymastery_progress: Show the learner's completed lessons and achievements

Code is never executed; output comes from a small simulator that understands
assignments, multiplication and print().
`))

	s.registerTools()

	return s
}

// registerTools registers all PyMastery MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("pymastery_lessons").
		Description("List lessons in curriculum order, optionally filtered by topic.").
		Handler(s.handleLessons)

	s.mcpServer.Tool("pymastery_lesson").
		Description("Show a lesson's content, examples and exercise.").
		Handler(s.handleLesson)

	s.mcpServer.Tool("pymastery_validate").
		Description("Validate a solution for a lesson's exercise and record the attempt.").
		Handler(s.handleValidate)

	s.mcpServer.Tool("pymastery_run").
		Description("Simulate running Python code and return its output.").
		Handler(s.handleRun)

	s.mcpServer.Tool("pymastery_progress").
		Description("Show the learner's progress.").
		Handler(s.handleProgress)
}

// Input/Output types for tools

type LessonsInput struct {
	Topic string `json:"topic,omitempty" jsonschema:"description=Topic such as variables or operators; empty lists every lesson"`
}

type LessonSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Topic            string `json:"topic"`
	Status           string `json:"status,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

type LessonsOutput struct {
	Lessons []LessonSummary `json:"lessons"`
	Percent int             `json:"percent,omitempty"`
}

type LessonInput struct {
	LessonID string `json:"lesson_id" jsonschema:"description=Lesson ID such as variables-01"`
}

type LessonOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Exercise    string `json:"exercise"`
	Hint        string `json:"hint,omitempty"`
	InitialCode string `json:"initial_code,omitempty"`
	Completed   bool   `json:"completed"`
	Attempts    int    `json:"attempts"`
	Next        string `json:"next,omitempty"`
}

type ValidateInput struct {
	LessonID  string `json:"lesson_id" jsonschema:"description=Lesson ID such as variables-01"`
	Code      string `json:"code" jsonschema:"description=Python source to check"`
	HintsUsed int    `json:"hints_used,omitempty" jsonschema:"description=Number of hints the learner looked at"`
}

type ValidateOutput struct {
	IsCorrect    bool     `json:"is_correct"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	AttemptCount int      `json:"attempt_count"`
	Achievements []string `json:"achievements,omitempty"`
}

type RunInput struct {
	Code string `json:"code" jsonschema:"description=Python source to simulate"`
}

type RunOutput struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

type ProgressInput struct{}

type ProgressOutput struct {
	CompletedLessons []string `json:"completed_lessons"`
	CurrentLesson    string   `json:"current_lesson,omitempty"`
	Achievements     []string `json:"achievements"`
	Streak           int      `json:"streak"`
	TotalTimeSpent   int      `json:"total_time_spent"`
}

// Tool handlers

func (s *Server) handleLessons(ctx context.Context, input LessonsInput) (LessonsOutput, error) {
	if input.Topic == "" {
		lessons := s.practice.Catalog().ListLessons()
		out := LessonsOutput{Lessons: make([]LessonSummary, 0, len(lessons))}
		for _, l := range lessons {
			out.Lessons = append(out.Lessons, summarize(l, ""))
		}
		return out, nil
	}

	ov, err := s.practice.LessonCards(ctx, s.learnerID, domain.Topic(input.Topic))
	if err != nil {
		return LessonsOutput{}, fmt.Errorf("list lessons: %w", err)
	}
	out := LessonsOutput{
		Lessons: make([]LessonSummary, 0, len(ov.Cards)),
		Percent: ov.Percent,
	}
	for _, card := range ov.Cards {
		out.Lessons = append(out.Lessons, summarize(card.Lesson, card.Status))
	}
	return out, nil
}

func summarize(l *domain.Lesson, status domain.LessonStatus) LessonSummary {
	return LessonSummary{
		ID:               l.ID,
		Title:            l.Title,
		Topic:            string(l.Category),
		Status:           string(status),
		EstimatedMinutes: l.EstimatedMinutes,
	}
}

func (s *Server) handleLesson(ctx context.Context, input LessonInput) (LessonOutput, error) {
	state, err := s.practice.Lesson(ctx, s.learnerID, input.LessonID)
	if err != nil {
		return LessonOutput{}, fmt.Errorf("lesson not available: %w", err)
	}

	l := state.Lesson
	out := LessonOutput{
		ID:          l.ID,
		Title:       l.Title,
		Content:     l.Content,
		Exercise:    l.Exercise.Description,
		Hint:        l.Exercise.Hint,
		InitialCode: l.Exercise.InitialCode,
		Completed:   state.Completed,
		Attempts:    state.Attempts,
	}
	if dest, err := s.practice.Navigate(l.ID, practice.DirectionNext); err == nil && dest.Lesson != nil {
		out.Next = dest.Lesson.ID
	}
	return out, nil
}

func (s *Server) handleValidate(ctx context.Context, input ValidateInput) (ValidateOutput, error) {
	outcome, err := s.practice.Validate(ctx, s.learnerID, input.LessonID, input.Code, input.HintsUsed)
	if err != nil {
		return ValidateOutput{}, fmt.Errorf("validation failed: %w", err)
	}

	out := ValidateOutput{
		IsCorrect:    outcome.Result.IsCorrect,
		Message:      outcome.Result.Message,
		Errors:       outcome.Result.Errors,
		Suggestions:  outcome.Result.Suggestions,
		AttemptCount: outcome.AttemptCount,
	}
	for _, a := range outcome.Achievements {
		out.Achievements = append(out.Achievements, a.Icon+" "+a.Title)
	}
	return out, nil
}

func (s *Server) handleRun(ctx context.Context, input RunInput) (RunOutput, error) {
	res, err := s.practice.Run(ctx, input.Code)
	if err != nil {
		return RunOutput{}, fmt.Errorf("run failed: %w", err)
	}
	return RunOutput{Output: res.Output, Error: res.Error}, nil
}

func (s *Server) handleProgress(ctx context.Context, _ ProgressInput) (ProgressOutput, error) {
	p, err := s.practice.Progress().Load(ctx, s.learnerID)
	if err != nil {
		return ProgressOutput{}, fmt.Errorf("load progress: %w", err)
	}

	out := ProgressOutput{
		CompletedLessons: p.CompletedLessons,
		CurrentLesson:    p.CurrentLesson,
		Achievements:     make([]string, 0, len(p.Achievements)),
		Streak:           p.Streak,
		TotalTimeSpent:   p.TotalTimeSpent,
	}
	for _, a := range p.Achievements {
		out.Achievements = append(out.Achievements, a.Title)
	}
	return out, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
