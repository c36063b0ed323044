package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pymastery/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		locale      string
		driver      string
		postgresURL string
		amqpURL     string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize PyMastery (first-time setup)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "PyMastery - First-Time Setup")
			fmt.Fprintln(out, "============================")

			fmt.Fprint(out, "Creating ~/.pymastery directory structure... ")
			dir, err := config.EnsureDir()
			if err != nil {
				return fmt.Errorf("create directories: %w", err)
			}
			fmt.Fprintln(out, "✓")

			configPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				fmt.Fprint(out, "Creating default configuration... ")
				cfg := config.DefaultLocalConfig()
				if locale != "" {
					cfg.Learning.Locale = locale
				}
				if driver != "" {
					cfg.Storage.Driver = driver
				}
				if err := config.SaveLocalConfig(cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				fmt.Fprintln(out, "✓")
			} else {
				fmt.Fprintln(out, "Configuration already exists ✓")
			}

			if postgresURL != "" || amqpURL != "" {
				fmt.Fprint(out, "Saving connection secrets... ")
				if err := config.SaveSecrets(config.SecretsConfig{
					PostgresURL: postgresURL,
					AMQPURL:     amqpURL,
				}); err != nil {
					return fmt.Errorf("save secrets: %w", err)
				}
				fmt.Fprintln(out, "✓")
			}

			if _, err := config.LoadLocalConfig(); err != nil {
				return fmt.Errorf("configuration is not usable: %w", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. pymastery lessons           # See the curriculum")
			fmt.Fprintln(out, "  2. pymastery lesson <id>       # Read a lesson")
			fmt.Fprintln(out, "  3. pymastery validate <id> f   # Check your solution")
			fmt.Fprintln(out, "  4. pymastery start             # Run the daemon for editor plugins")
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "Feedback language (pt-BR or en)")
	cmd.Flags().StringVar(&driver, "driver", "", "Progress storage driver (json, sqlite, postgres, memory)")
	cmd.Flags().StringVar(&postgresURL, "postgres-url", "", "PostgreSQL connection string, stored in secrets.yaml")
	cmd.Flags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL for learning events, stored in secrets.yaml")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "PyMastery Configuration")

			fmt.Fprintln(out, "Daemon:")
			fmt.Fprintf(out, "  bind: %s\n", cfg.Address())
			fmt.Fprintf(out, "  log_level: %s\n", cfg.Daemon.LogLevel)
			fmt.Fprintf(out, "  rate: %d/s burst %d\n", cfg.Daemon.RatePerSecond, cfg.Daemon.RateBurst)

			fmt.Fprintln(out, "\nLearning:")
			fmt.Fprintf(out, "  locale: %s\n", cfg.Learning.Locale)
			fmt.Fprintf(out, "  learner_id: %s\n", cfg.Learning.LearnerID)
			fmt.Fprintf(out, "  thinking_delay_ms: %d\n", cfg.Learning.ThinkingDelayMS)
			if cfg.Learning.LessonsPath != "" {
				fmt.Fprintf(out, "  lessons_path: %s\n", cfg.Learning.LessonsPath)
			}

			fmt.Fprintln(out, "\nStorage:")
			fmt.Fprintf(out, "  driver: %s\n", cfg.Storage.Driver)
			fmt.Fprintf(out, "  path: %s\n", cfg.Storage.Path)
			fmt.Fprintf(out, "  analytics: %t\n", cfg.Storage.Analytics)
			fmt.Fprintf(out, "  postgres: %s\n", configured(cfg.Storage.PostgresURL))

			fmt.Fprintln(out, "\nEvents:")
			fmt.Fprintf(out, "  amqp: %s\n", configured(cfg.Events.AMQPURL))
			return nil
		},
	}
}

func configured(secret string) string {
	if secret == "" {
		return "✗"
	}
	return "✓ configured"
}
