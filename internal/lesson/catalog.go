package lesson

import (
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// Catalog provides access to lessons in curriculum order. Sources are read
// in order; a lesson id defined by a later source replaces an earlier one.
type Catalog struct {
	sources []*Loader

	mu         sync.RWMutex
	ordered    []*domain.Lesson
	byID       map[string]*domain.Lesson
	byExercise map[string]*domain.Lesson
}

// NewCatalog creates a catalog over the given sources. Call Load before use.
func NewCatalog(sources ...*Loader) *Catalog {
	return &Catalog{
		sources:    sources,
		byID:       make(map[string]*domain.Lesson),
		byExercise: make(map[string]*domain.Lesson),
	}
}

// NewBuiltinCatalog creates and loads a catalog of the embedded lessons,
// extended by dir when it is not empty.
func NewBuiltinCatalog(dir string) (*Catalog, error) {
	sources := []*Loader{NewLoader("builtin", Builtin())}
	if dir != "" {
		sources = append(sources, NewDirLoader(dir))
	}

	c := NewCatalog(sources...)
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads all sources into memory.
func (c *Catalog) Load() error {
	byID := make(map[string]*domain.Lesson)
	for _, src := range c.sources {
		lessons, err := src.LoadAll()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		for _, l := range lessons {
			byID[l.ID] = l
		}
	}

	ordered := make([]*domain.Lesson, 0, len(byID))
	byExercise := make(map[string]*domain.Lesson, len(byID))
	for _, l := range byID {
		ordered = append(ordered, l)
		byExercise[l.Exercise.ID] = l
	}
	sortCurriculum(ordered)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ordered = ordered
	c.byID = byID
	c.byExercise = byExercise
	return nil
}

// Reload re-reads all sources. The previous contents stay visible until the
// new ones are fully loaded.
func (c *Catalog) Reload() error {
	return c.Load()
}

// sortCurriculum orders lessons by topic position, then Order, then id.
func sortCurriculum(lessons []*domain.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if ai, bi := a.Category.Index(), b.Category.Index(); ai != bi {
			return ai < bi
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}

// GetLesson returns a lesson by id.
func (c *Catalog) GetLesson(id string) (*domain.Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLessonNotFound, id)
	}
	return l, nil
}

// GetExercise returns an exercise and the lesson that owns it.
func (c *Catalog) GetExercise(exerciseID string) (*domain.Exercise, *domain.Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.byExercise[exerciseID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, exerciseID)
	}
	return &l.Exercise, l, nil
}

// ListLessons returns every lesson in curriculum order.
func (c *Catalog) ListLessons() []*domain.Lesson {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Lesson, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ListByCategory returns the lessons of a topic sorted by Order. A known
// topic without lessons yields an empty slice.
func (c *Catalog) ListByCategory(topic domain.Topic) ([]*domain.Lesson, error) {
	if !topic.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, topic)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []*domain.Lesson{}
	for _, l := range c.ordered {
		if l.Category == topic {
			out = append(out, l)
		}
	}
	return out, nil
}

// Next returns the lesson after id in the global order, which may belong to
// another topic. Returns nil when id is the last lesson.
func (c *Catalog) Next(id string) (*domain.Lesson, error) {
	return c.neighbour(id, 1)
}

// Previous returns the lesson before id in the global order, or nil when id
// is the first lesson.
func (c *Catalog) Previous(id string) (*domain.Lesson, error) {
	return c.neighbour(id, -1)
}

func (c *Catalog) neighbour(id string, step int) (*domain.Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i, l := range c.ordered {
		if l.ID != id {
			continue
		}
		j := i + step
		if j < 0 || j >= len(c.ordered) {
			return nil, nil
		}
		return c.ordered[j], nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrLessonNotFound, id)
}

// Stats returns statistics about loaded lessons.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		LessonCount:  len(c.ordered),
		ByTopic:      make(map[string]int),
		ByDifficulty: make(map[string]int),
	}
	for _, l := range c.ordered {
		stats.ByTopic[string(l.Category)]++
		stats.ByDifficulty[string(l.Exercise.Difficulty)]++
		stats.TotalMinutes += l.EstimatedMinutes
	}
	return stats
}

// Stats holds statistics about the catalog.
type Stats struct {
	LessonCount  int            `json:"lesson_count"`
	TotalMinutes int            `json:"total_minutes"`
	ByTopic      map[string]int `json:"by_topic"`
	ByDifficulty map[string]int `json:"by_difficulty"`
}
