// Package lesson loads the lesson catalog from YAML documents and serves
// lookups and curriculum-order traversal over it.
package lesson

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

//go:embed content/*.yaml
var builtinContent embed.FS

// ErrInvalidLesson is returned for lesson documents missing required fields.
var ErrInvalidLesson = errors.New("invalid lesson")

// Builtin returns the lessons shipped with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinContent, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

// Loader reads lesson documents from a file system, one lesson per file.
type Loader struct {
	fsys fs.FS
	name string
}

// NewLoader creates a loader over fsys. name identifies the source in errors.
func NewLoader(name string, fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, name: name}
}

// NewDirLoader creates a loader over a directory on disk.
func NewDirLoader(dir string) *Loader {
	return NewLoader(dir, os.DirFS(dir))
}

// LoadLesson parses a single lesson file.
func (l *Loader) LoadLesson(file string) (*domain.Lesson, error) {
	data, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read lesson file: %w", err)
	}

	var lesson domain.Lesson
	if err := yaml.Unmarshal(data, &lesson); err != nil {
		return nil, fmt.Errorf("parse lesson file %s: %w", file, err)
	}

	if err := validateLesson(&lesson); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return &lesson, nil
}

// LoadAll parses every .yaml/.yml file under the loader's root.
func (l *Loader) LoadAll() ([]*domain.Lesson, error) {
	var lessons []*domain.Lesson

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case ".yaml", ".yml":
		default:
			return nil
		}

		lesson, err := l.LoadLesson(p)
		if err != nil {
			return err
		}
		lessons = append(lessons, lesson)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load lessons from %s: %w", l.name, err)
	}

	return lessons, nil
}

func validateLesson(l *domain.Lesson) error {
	var missing []string
	if l.ID == "" {
		missing = append(missing, "id")
	}
	if l.Title == "" {
		missing = append(missing, "title")
	}
	if l.Exercise.ID == "" {
		missing = append(missing, "exercise.id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidLesson, strings.Join(missing, ", "))
	}

	if !l.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidLesson, l.Category)
	}
	if l.Exercise.Difficulty == "" {
		l.Exercise.Difficulty = domain.DifficultyEasy
	}
	if !l.Exercise.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidLesson, l.Exercise.Difficulty)
	}
	return nil
}
