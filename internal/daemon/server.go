// Package daemon serves the learning API over HTTP.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/ferrors"
	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/pymastery/internal/config"
	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/events"
	"github.com/felixgeelhaar/pymastery/internal/practice"
)

// maxBodyBytes bounds request bodies, including progress imports.
const maxBodyBytes = 1 << 20

// Server represents the PyMastery daemon HTTP server
type Server struct {
	cfg     *config.LocalConfig
	server  *http.Server
	router  *http.ServeMux
	version string
	started time.Time

	practice    *practice.Service
	analytics   events.Log
	broker      BrokerStatus
	limiter     ratelimit.RateLimiter
	validations bulkhead.Bulkhead[*practice.Outcome]
}

// BrokerStatus reports whether the event broker connection is up.
type BrokerStatus interface {
	IsConnected() bool
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config   *config.LocalConfig
	Practice *practice.Service
	Version  string

	// Analytics serves GET /v1/analytics. Nil disables the route.
	Analytics events.Log

	// Broker reports the event broker connection in /v1/status. Nil when
	// no broker is configured.
	Broker BrokerStatus

	// MaxConcurrentValidations bounds validations waiting out their
	// thinking delay at once. Zero means 16.
	MaxConcurrentValidations int
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil || cfg.Practice == nil {
		return nil, errors.New("daemon: config and practice service are required")
	}

	s := &Server{
		cfg:       cfg.Config,
		router:    http.NewServeMux(),
		version:   cfg.Version,
		started:   time.Now(),
		practice:  cfg.Practice,
		analytics: cfg.Analytics,
		broker:    cfg.Broker,
	}
	if s.version == "" {
		s.version = "dev"
	}

	if rate := cfg.Config.Daemon.RatePerSecond; rate > 0 {
		burst := cfg.Config.Daemon.RateBurst
		if burst < rate {
			burst = rate
		}
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    burst,
			Interval: time.Second,
		})
	}

	maxConcurrent := cfg.MaxConcurrentValidations
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	// No queue: a submission either runs on the request goroutine or is
	// rejected before anything is recorded.
	s.validations = bulkhead.New[*practice.Outcome](bulkhead.Config{
		MaxConcurrent: maxConcurrent,
	})

	s.setupRoutes()

	handler := correlationIDMiddleware(recoveryMiddleware(loggingMiddleware(s.rateLimitMiddleware(s.learnerMiddleware(s.router)))))
	s.server = &http.Server{
		Addr:         cfg.Config.Address(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Curriculum
	s.router.HandleFunc("GET /v1/topics", s.handleListTopics)
	s.router.HandleFunc("GET /v1/topics/{topic}/lessons", s.handleTopicLessons)
	s.router.HandleFunc("GET /v1/lessons", s.handleListLessons)
	s.router.HandleFunc("GET /v1/lessons/{id}", s.handleGetLesson)
	s.router.HandleFunc("GET /v1/lessons/{id}/next", s.handleNavigate(practice.DirectionNext))
	s.router.HandleFunc("GET /v1/lessons/{id}/previous", s.handleNavigate(practice.DirectionPrevious))

	// Practice
	s.router.HandleFunc("POST /v1/lessons/{id}/validate", s.handleValidate)
	s.router.HandleFunc("POST /v1/run", s.handleRun)
	s.router.HandleFunc("GET /v1/exercises/{id}/attempts", s.handleAttempts)

	// Progress
	s.router.HandleFunc("GET /v1/progress", s.handleGetProgress)
	s.router.HandleFunc("PUT /v1/progress/current", s.handleSetCurrentLesson)
	s.router.HandleFunc("POST /v1/progress/time", s.handleAddTime)
	s.router.HandleFunc("GET /v1/progress/export", s.handleExportProgress)
	s.router.HandleFunc("POST /v1/progress/import", s.handleImportProgress)
	s.router.HandleFunc("DELETE /v1/progress", s.handleResetProgress)

	// Analytics
	s.router.HandleFunc("GET /v1/analytics", s.handleAnalytics)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	stats := s.practice.Catalog().Stats()
	slog.Info("starting pymastery daemon",
		"addr", s.server.Addr,
		"lessons", stats.LessonCount,
		"locale", s.cfg.Learning.Locale,
		"storage", s.cfg.Storage.Driver,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			slog.Warn("failed to close rate limiter", "error", err)
		}
	}
	if err := s.validations.Close(); err != nil {
		slog.Warn("failed to close validation bulkhead", "error", err)
	}

	return s.server.Shutdown(ctx)
}

// Handler implementations

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":         "running",
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"locale":         s.cfg.Learning.Locale,
		"storage":        s.cfg.Storage.Driver,
		"events":         s.cfg.Events.AMQPURL != "",
		"events_online":  s.broker != nil && s.broker.IsConnected(),
		"analytics":      s.analytics != nil,
		"catalog":        s.practice.Catalog().Stats(),
	})
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.practice.TopicStatuses(r.Context(), s.learnerID(r))
	if err != nil {
		s.serviceError(w, "failed to load topics", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"topics": statuses,
	})
}

func (s *Server) handleTopicLessons(w http.ResponseWriter, r *http.Request) {
	topic := domain.Topic(r.PathValue("topic"))
	overview, err := s.practice.LessonCards(r.Context(), s.learnerID(r), topic)
	if err != nil {
		s.serviceError(w, "failed to load topic", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, overview)
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	catalog := s.practice.Catalog()
	lessons := catalog.ListLessons()

	result := make([]map[string]interface{}, 0, len(lessons))
	for _, l := range lessons {
		result = append(result, map[string]interface{}{
			"id":                l.ID,
			"title":             l.Title,
			"description":       l.Description,
			"category":          l.Category,
			"order":             l.Order,
			"estimated_minutes": l.EstimatedMinutes,
			"difficulty":        l.Exercise.Difficulty,
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"lessons": result,
		"stats":   catalog.Stats(),
	})
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	state, err := s.practice.Lesson(r.Context(), s.learnerID(r), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, "failed to load lesson", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleNavigate(dir practice.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dest, err := s.practice.Navigate(r.PathValue("id"), dir)
		if err != nil {
			s.serviceError(w, "failed to navigate", err)
			return
		}
		s.jsonResponse(w, http.StatusOK, dest)
	}
}

// ValidateRequest is the body of POST /v1/lessons/{id}/validate.
type ValidateRequest struct {
	Code      string `json:"code"`
	HintsUsed int    `json:"hints_used"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	lessonID := r.PathValue("id")
	learnerID := s.learnerID(r)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outcome, err := s.validations.Execute(ctx, func(ctx context.Context) (*practice.Outcome, error) {
		return s.practice.Validate(ctx, learnerID, lessonID, req.Code, req.HintsUsed)
	})
	if err != nil {
		if errors.Is(err, ferrors.ErrBulkheadFull) {
			w.Header().Set("Retry-After", "1")
			s.jsonError(w, http.StatusServiceUnavailable, "too many validations in flight", err)
			return
		}
		s.serviceError(w, "failed to validate code", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, outcome)
}

// RunRequest is the body of POST /v1/run.
type RunRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.practice.Run(r.Context(), req.Code)
	if err != nil {
		s.serviceError(w, "failed to run code", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.PathValue("id")
	if _, _, err := s.practice.Catalog().GetExercise(exerciseID); err != nil {
		s.serviceError(w, "failed to load exercise", err)
		return
	}

	attempts, err := s.practice.Progress().Attempts(r.Context(), s.learnerID(r), exerciseID)
	if err != nil {
		s.serviceError(w, "failed to load attempts", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"exercise_id": exerciseID,
		"attempts":    attempts,
	})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.practice.Progress().Load(r.Context(), s.learnerID(r))
	if err != nil {
		s.serviceError(w, "failed to load progress", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// CurrentLessonRequest is the body of PUT /v1/progress/current.
type CurrentLessonRequest struct {
	LessonID string `json:"lesson_id"`
}

func (s *Server) handleSetCurrentLesson(w http.ResponseWriter, r *http.Request) {
	var req CurrentLessonRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if _, err := s.practice.Catalog().GetLesson(req.LessonID); err != nil {
		s.serviceError(w, "unknown lesson", err)
		return
	}

	if err := s.practice.Progress().SetCurrentLesson(r.Context(), s.learnerID(r), req.LessonID); err != nil {
		s.serviceError(w, "failed to set current lesson", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"current_lesson": req.LessonID,
	})
}

// TimeRequest is the body of POST /v1/progress/time.
type TimeRequest struct {
	Minutes int `json:"minutes"`
}

func (s *Server) handleAddTime(w http.ResponseWriter, r *http.Request) {
	var req TimeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	learnerID := s.learnerID(r)
	if err := s.practice.Progress().AddTimeSpent(r.Context(), learnerID, req.Minutes); err != nil {
		s.serviceError(w, "failed to record time", err)
		return
	}
	p, err := s.practice.Progress().Load(r.Context(), learnerID)
	if err != nil {
		s.serviceError(w, "failed to load progress", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"total_time_spent": p.TotalTimeSpent,
	})
}

func (s *Server) handleExportProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := s.learnerID(r)
	data, err := s.practice.Progress().Export(r.Context(), learnerID)
	if err != nil {
		s.serviceError(w, "failed to export progress", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pymastery-%s.json"`, learnerID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "failed to read body", err)
		return
	}

	p, err := s.practice.Progress().Import(r.Context(), s.learnerID(r), data)
	if err != nil {
		s.serviceError(w, "failed to import progress", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.practice.Progress().Reset(r.Context(), s.learnerID(r)); err != nil {
		s.serviceError(w, "failed to reset progress", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"reset": true,
	})
}

// Helper methods

// AnalyticsResponse summarizes recorded events for one learner.
type AnalyticsResponse struct {
	LearnerID string              `json:"learner_id"`
	Since     *time.Time          `json:"since,omitempty"`
	Until     *time.Time          `json:"until,omitempty"`
	Counts    map[events.Type]int `json:"counts"`
	Totals    map[events.Type]int `json:"totals"`
	Events    []events.Event      `json:"events,omitempty"`
}

// handleAnalytics reports event counts for the learner, and lists the
// events themselves when ?type= names one. since and until take RFC 3339
// times or a duration back from now ("24h").
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.analytics == nil {
		s.jsonError(w, http.StatusNotFound, "analytics is disabled", nil)
		return
	}

	q := r.URL.Query()
	now := time.Now()
	since, err := parseTimeParam(q.Get("since"), now)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid since", err)
		return
	}
	until, err := parseTimeParam(q.Get("until"), now)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid until", err)
		return
	}

	types := events.Types()
	listed := events.Type(q.Get("type"))
	if listed != "" {
		if !listed.Valid() {
			s.jsonError(w, http.StatusBadRequest, "unknown event type", fmt.Errorf("%q", listed))
			return
		}
		types = []events.Type{listed}
	}

	resp := AnalyticsResponse{
		LearnerID: s.learnerID(r),
		Counts:    make(map[events.Type]int, len(types)),
		Totals:    make(map[events.Type]int, len(types)),
	}
	if !since.IsZero() {
		resp.Since = &since
	}
	if !until.IsZero() {
		resp.Until = &until
	}

	for _, typ := range types {
		evs, err := s.analytics.Query(r.Context(), typ, resp.LearnerID, since, until)
		if err != nil {
			s.serviceError(w, "failed to query analytics", err)
			return
		}
		total, err := s.analytics.Count(r.Context(), typ)
		if err != nil {
			s.serviceError(w, "failed to count analytics", err)
			return
		}
		resp.Counts[typ] = len(evs)
		resp.Totals[typ] = total
		if typ == listed {
			resp.Events = evs
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// parseTimeParam accepts an RFC 3339 time or a duration before now.
// Empty means unbounded.
func parseTimeParam(v string, now time.Time) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("negative duration %q", v)
		}
		return now.Add(-d), nil
	}
	return time.Parse(time.RFC3339, v)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

// serviceError maps domain errors to HTTP status codes.
func (s *Server) serviceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrTopicNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrNotFound):
		s.jsonError(w, http.StatusNotFound, message, err)
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, practice.ErrInvalidDirection):
		s.jsonError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.jsonError(w, http.StatusServiceUnavailable, message, err)
	default:
		s.jsonError(w, http.StatusInternalServerError, message, err)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
