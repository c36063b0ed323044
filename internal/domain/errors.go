package domain

import "errors"

// Catalog errors
var (
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrExerciseNotFound = errors.New("exercise not found")
)

// Progress errors
var (
	ErrProgressNotFound = errors.New("progress not found")
	ErrInvalidProgress  = errors.New("invalid progress data")
)

// General errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
