package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pymastery/internal/app"
	"github.com/felixgeelhaar/pymastery/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pymastery",
		Short:         "Learn Python one small lesson at a time",
		Long:          "PyMastery teaches Python fundamentals through short lessons, exercises and instant feedback.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("learner", "", "Learner ID (overrides learning.learner_id)")

	root.AddCommand(
		newInitCmd(),
		newConfigCmd(),
		newStartCmd(),
		newStopCmd(),
		newStatusCmd(),
		newLogsCmd(),
		newLessonsCmd(),
		newLessonCmd(),
		newValidateCmd(),
		newRunCmd(),
		newProgressCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pymastery %s\n", Version)
		},
	}
}

// loadConfig makes sure ~/.pymastery exists and loads the configuration.
func loadConfig() (*config.LocalConfig, error) {
	if _, err := config.EnsureDir(); err != nil {
		return nil, fmt.Errorf("setup pymastery directory: %w", err)
	}
	return config.LoadLocalConfig()
}

// openApp builds the local services and resolves the learner to act for.
// Logs go to stderr at warn level so they never mix with command output.
func openApp(cmd *cobra.Command) (*app.App, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, "", err
	}

	learner := cfg.Learning.LearnerID
	if flag, _ := cmd.Flags().GetString("learner"); flag != "" {
		learner = flag
	}
	return a, learner, nil
}
