package lesson_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/lesson"
)

const loopsLesson = `
id: loops-01
title: Repetições
description: for e while
category: loops
order: 1
estimated_minutes: 15
exercise:
  id: loops-exercise-01
  title: Contagem
  description: Conte até três
  expected_code: for
  difficulty: medium
`

func TestLoader_LoadAll_Builtin(t *testing.T) {
	lessons, err := lesson.NewLoader("builtin", lesson.Builtin()).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(lessons) < 2 {
		t.Fatalf("LoadAll() returned %d lessons; want at least 2", len(lessons))
	}

	var first *domain.Lesson
	for _, l := range lessons {
		if l.ID == "variables-01" {
			first = l
		}
	}
	if first == nil {
		t.Fatal("variables-01 not found in builtin lessons")
	}
	if first.Exercise.ID != "variables-exercise-01" {
		t.Errorf("Exercise.ID = %q; want %q", first.Exercise.ID, "variables-exercise-01")
	}
	if first.Exercise.ExpectedCode != `meu_nome = "` {
		t.Errorf("Exercise.ExpectedCode = %q; want %q", first.Exercise.ExpectedCode, `meu_nome = "`)
	}
	if !strings.HasSuffix(first.Exercise.InitialCode, "\n\n") {
		t.Errorf("Exercise.InitialCode = %q; want trailing blank line kept", first.Exercise.InitialCode)
	}
	if len(first.Examples) != 2 {
		t.Errorf("len(Examples) = %d; want 2", len(first.Examples))
	}
	if first.EstimatedMinutes != 10 {
		t.Errorf("EstimatedMinutes = %d; want 10", first.EstimatedMinutes)
	}
}

func TestLoader_LoadLesson(t *testing.T) {
	fsys := fstest.MapFS{
		"loops/01.yaml": {Data: []byte(loopsLesson)},
	}

	l, err := lesson.NewLoader("test", fsys).LoadLesson("loops/01.yaml")
	if err != nil {
		t.Fatalf("LoadLesson() error = %v", err)
	}
	if l.Category != domain.TopicLoops {
		t.Errorf("Category = %q; want %q", l.Category, domain.TopicLoops)
	}
	if l.Exercise.Difficulty != domain.DifficultyMedium {
		t.Errorf("Difficulty = %q; want %q", l.Exercise.Difficulty, domain.DifficultyMedium)
	}
}

func TestLoader_DefaultsDifficulty(t *testing.T) {
	doc := "id: x\ntitle: X\ncategory: strings\nexercise:\n  id: x-ex\n"
	fsys := fstest.MapFS{"x.yml": {Data: []byte(doc)}}

	lessons, err := lesson.NewLoader("test", fsys).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(lessons) != 1 || lessons[0].Exercise.Difficulty != domain.DifficultyEasy {
		t.Errorf("LoadAll() = %+v; want one lesson with easy difficulty", lessons)
	}
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing id", "title: X\ncategory: loops\nexercise:\n  id: e\n"},
		{"missing exercise", "id: x\ntitle: X\ncategory: loops\n"},
		{"unknown category", "id: x\ntitle: X\ncategory: rust\nexercise:\n  id: e\n"},
		{"bad difficulty", "id: x\ntitle: X\ncategory: loops\nexercise:\n  id: e\n  difficulty: extreme\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"l.yaml": {Data: []byte(tt.doc)}}
			_, err := lesson.NewLoader("test", fsys).LoadAll()
			if !errors.Is(err, lesson.ErrInvalidLesson) {
				t.Errorf("LoadAll() error = %v; want ErrInvalidLesson", err)
			}
		})
	}
}

func TestLoader_MalformedYAML(t *testing.T) {
	fsys := fstest.MapFS{"bad.yaml": {Data: []byte("id: [unterminated")}}
	if _, err := lesson.NewLoader("test", fsys).LoadAll(); err == nil {
		t.Error("LoadAll() expected error for malformed YAML")
	}
}

func TestLoader_IgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":  {Data: []byte("# lessons")},
		"loops.yaml": {Data: []byte(loopsLesson)},
	}
	lessons, err := lesson.NewLoader("test", fsys).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(lessons) != 1 {
		t.Errorf("len(lessons) = %d; want 1", len(lessons))
	}
}

func TestNewDirLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loops.yaml"), []byte(loopsLesson), 0644); err != nil {
		t.Fatal(err)
	}

	lessons, err := lesson.NewDirLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(lessons) != 1 || lessons[0].ID != "loops-01" {
		t.Errorf("LoadAll() = %v; want loops-01", lessons)
	}
}
