package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/app"
	"github.com/felixgeelhaar/pymastery/internal/config"
	"github.com/felixgeelhaar/pymastery/internal/daemon"
	"github.com/felixgeelhaar/pymastery/internal/lesson"
)

const (
	pidFileName = "pymasteryd.pid"

	// analyticsRetention is how long recorded learning events are kept.
	analyticsRetention = 90 * 24 * time.Hour
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	dir, err := config.EnsureDir()
	if err != nil {
		return fmt.Errorf("ensure pymastery dir: %w", err)
	}

	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogging(dir, parseLogLevel(cfg.Daemon.LogLevel))
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	pidPath := filepath.Join(dir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ctx := context.Background()
	services, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer services.Close()

	if services.Analytics != nil {
		if n, err := services.Analytics.Prune(ctx, analyticsRetention); err != nil {
			slog.Warn("prune analytics failed", "error", err)
		} else if n > 0 {
			slog.Info("pruned analytics events", "count", n)
		}
	}

	serverCfg := daemon.ServerConfig{
		Config:   cfg,
		Practice: services.Practice,
		Version:  version,
	}
	if services.Analytics != nil {
		serverCfg.Analytics = services.Analytics
	}
	if services.Broker != nil {
		serverCfg.Broker = services.Broker
	}
	server, err := daemon.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	go reloadOnHangup(hupCh, services.Catalog)

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
}

// reloadOnHangup re-reads lesson files each time a signal arrives, so
// edited lessons show up without a restart.
func reloadOnHangup(sigCh <-chan os.Signal, catalog *lesson.Catalog) {
	for range sigCh {
		if err := catalog.Reload(); err != nil {
			slog.Error("reload lessons failed, keeping previous catalog", "error", err)
			continue
		}
		slog.Info("lessons reloaded", "lessons", catalog.Stats().LessonCount)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging(dir string, level slog.Level) (*os.File, error) {
	logPath := filepath.Join(dir, "logs", "pymasteryd.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// JSON to the file, text to stderr for foreground runs
	slog.SetDefault(slog.New(&multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}),
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		},
	}))

	return logFile, nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

// multiHandler logs to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
