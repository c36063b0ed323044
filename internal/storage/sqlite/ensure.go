package sqlite

import (
	"github.com/felixgeelhaar/pymastery/internal/events"
	"github.com/felixgeelhaar/pymastery/internal/progress"
)

// Ensure SQLite stores implement the storage interfaces.
var (
	_ progress.Store  = (*ProgressStore)(nil)
	_ events.Recorder = (*AnalyticsStore)(nil)
)
