package config

import (
	"os"
	"strconv"
)

// Environment overrides. Each one wins over the config files.
const (
	EnvPort          = "PYMASTERY_PORT"
	EnvBind          = "PYMASTERY_BIND"
	EnvLogLevel      = "PYMASTERY_LOG_LEVEL"
	EnvLocale        = "PYMASTERY_LOCALE"
	EnvThinkingDelay = "PYMASTERY_THINKING_DELAY_MS"
	EnvLessonsPath   = "PYMASTERY_LESSONS_PATH"
	EnvLearnerID     = "PYMASTERY_LEARNER_ID"
	EnvStorageDriver = "PYMASTERY_STORAGE_DRIVER"
	EnvStoragePath   = "PYMASTERY_STORAGE_PATH"
	EnvAnalytics     = "PYMASTERY_ANALYTICS"
	EnvPostgresURL   = "PYMASTERY_POSTGRES_URL"
	EnvAMQPURL       = "PYMASTERY_AMQP_URL"
)

func applyEnv(cfg *LocalConfig) {
	cfg.Daemon.Port = getEnvInt(EnvPort, cfg.Daemon.Port)
	cfg.Daemon.Bind = getEnv(EnvBind, cfg.Daemon.Bind)
	cfg.Daemon.LogLevel = getEnv(EnvLogLevel, cfg.Daemon.LogLevel)

	cfg.Learning.Locale = getEnv(EnvLocale, cfg.Learning.Locale)
	cfg.Learning.ThinkingDelayMS = getEnvInt(EnvThinkingDelay, cfg.Learning.ThinkingDelayMS)
	cfg.Learning.LessonsPath = getEnv(EnvLessonsPath, cfg.Learning.LessonsPath)
	cfg.Learning.LearnerID = getEnv(EnvLearnerID, cfg.Learning.LearnerID)

	cfg.Storage.Driver = getEnv(EnvStorageDriver, cfg.Storage.Driver)
	cfg.Storage.Path = getEnv(EnvStoragePath, cfg.Storage.Path)
	cfg.Storage.Analytics = getEnvBool(EnvAnalytics, cfg.Storage.Analytics)
	cfg.Storage.PostgresURL = getEnv(EnvPostgresURL, cfg.Storage.PostgresURL)

	cfg.Events.AMQPURL = getEnv(EnvAMQPURL, cfg.Events.AMQPURL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
