// Package app wires configuration into a ready practice service. Both the
// daemon and the CLI build their services through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/config"
	"github.com/felixgeelhaar/pymastery/internal/events"
	"github.com/felixgeelhaar/pymastery/internal/lesson"
	"github.com/felixgeelhaar/pymastery/internal/practice"
	"github.com/felixgeelhaar/pymastery/internal/progress"
	"github.com/felixgeelhaar/pymastery/internal/runner"
	"github.com/felixgeelhaar/pymastery/internal/storage/local"
	"github.com/felixgeelhaar/pymastery/internal/storage/postgres"
	"github.com/felixgeelhaar/pymastery/internal/storage/sqlite"
	"github.com/felixgeelhaar/pymastery/internal/validator"
)

// App holds the services built from a configuration.
type App struct {
	Config    *config.LocalConfig
	Catalog   *lesson.Catalog
	Progress  *progress.Service
	Practice  *practice.Service
	Analytics *sqlite.AnalyticsStore // nil unless analytics is enabled
	Broker    *events.Connection     // nil unless a broker was reached

	logger  *slog.Logger
	dbs     map[string]*sqlite.DB
	closers []func() error
}

// New builds the services described by cfg. Close releases every resource
// it opened.
func New(ctx context.Context, cfg *config.LocalConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	catalog, err := lesson.NewBuiltinCatalog(cfg.Learning.LessonsPath)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	a.Catalog = catalog

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Progress = progress.NewService(store, progress.WithLogger(logger))

	publisher, err := a.openPublisher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	locale := cfg.Learning.Locale
	a.Practice = practice.NewService(practice.Config{
		Catalog:       catalog,
		Progress:      a.Progress,
		Validator:     validator.New(validator.WithLocale(locale)),
		Executor:      runner.NewMockExecutor(locale),
		Publisher:     publisher,
		Detector:      practice.NewDetector(locale),
		Logger:        logger,
		ThinkingDelay: time.Duration(cfg.Learning.ThinkingDelayMS) * time.Millisecond,
	})

	return a, nil
}

func (a *App) openStore(ctx context.Context) (progress.Store, error) {
	st := a.Config.Storage
	switch st.Driver {
	case config.DriverMemory:
		return progress.NewMemoryStore(), nil

	case config.DriverSQLite:
		db, err := a.openSQLite(ctx, st.Path)
		if err != nil {
			return nil, err
		}
		return sqlite.NewProgressStore(db), nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, st.PostgresURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		store := postgres.NewProgressStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverJSON, "":
		base, err := local.NewStore(st.Path)
		if err != nil {
			return nil, fmt.Errorf("open progress directory: %w", err)
		}
		return local.NewProgressStore(base), nil

	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, st.Driver)
	}
}

// openSQLite opens and migrates a database file once per path.
func (a *App) openSQLite(ctx context.Context, path string) (*sqlite.DB, error) {
	if db, ok := a.dbs[path]; ok {
		return db, nil
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	if a.dbs == nil {
		a.dbs = make(map[string]*sqlite.DB)
	}
	a.dbs[path] = db
	return db, nil
}

// openPublisher fans events out to the local analytics log and RabbitMQ,
// whichever are configured. An unreachable broker is logged, not fatal.
func (a *App) openPublisher(ctx context.Context) (events.Publisher, error) {
	var pubs events.Multi

	if a.Config.Storage.Analytics {
		path := a.analyticsPath()
		db, err := a.openSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open analytics: %w", err)
		}
		a.Analytics = sqlite.NewAnalyticsStore(db)
		pubs = append(pubs, events.RecordingPublisher{Recorder: a.Analytics})
	}

	if url := a.Config.Events.AMQPURL; url != "" {
		conn, err := events.NewConnection(url)
		if err != nil {
			a.logger.Warn("event broker unavailable, events will not be published", "error", err)
		} else {
			a.Broker = conn
			pub := events.NewAMQPPublisher(conn)
			a.closers = append(a.closers, pub.Close)
			pubs = append(pubs, pub)
		}
	}

	switch len(pubs) {
	case 0:
		return events.NopPublisher{}, nil
	case 1:
		return pubs[0], nil
	default:
		return pubs, nil
	}
}

func (a *App) analyticsPath() string {
	st := a.Config.Storage
	if st.Driver == config.DriverSQLite {
		return st.Path
	}
	return filepath.Join(filepath.Dir(st.Path), "analytics.db")
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
