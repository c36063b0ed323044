package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pymastery/internal/events"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show and manage learning progress",
		Args:  cobra.NoArgs,
		RunE:  runProgressShow,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show learning progress",
			Args:  cobra.NoArgs,
			RunE:  runProgressShow,
		},
		newProgressStatsCmd(),
		newProgressExportCmd(),
		newProgressImportCmd(),
		newProgressResetCmd(),
	)
	return cmd
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	a, learner, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Progress.Load(cmd.Context(), learner)
	if err != nil {
		return err
	}
	total := a.Catalog.Stats().LessonCount

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Learner:    %s\n", p.LearnerID)
	fmt.Fprintf(out, "Lessons:    %d/%d completed\n", len(p.CompletedLessons), total)
	if p.CurrentLesson != "" {
		fmt.Fprintf(out, "Current:    %s\n", p.CurrentLesson)
	}
	fmt.Fprintf(out, "Streak:     %d days\n", p.Streak)
	fmt.Fprintf(out, "Time spent: %d min\n", p.TotalTimeSpent)
	if len(p.Achievements) > 0 {
		fmt.Fprintln(out, "Achievements:")
		for _, ach := range p.Achievements {
			fmt.Fprintf(out, "  🏆 %s (%s)\n", ach.Title, ach.UnlockedAt.Format("2006-01-02"))
		}
	}
	return nil
}

func newProgressStatsCmd() *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize practice activity from the analytics log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since < 0 {
				return fmt.Errorf("--since must not be negative")
			}

			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.Analytics == nil {
				fmt.Fprintln(out, "Analytics is disabled. Enable it with 'storage.analytics: true' or PYMASTERY_ANALYTICS=1.")
				return nil
			}

			var from time.Time
			window := "all time"
			if since > 0 {
				from = time.Now().Add(-since)
				window = "last " + since.String()
			}

			ctx := cmd.Context()
			found := make(map[events.Type][]events.Event)
			for _, typ := range events.Types() {
				evs, err := a.Analytics.Query(ctx, typ, learner, from, time.Time{})
				if err != nil {
					return err
				}
				found[typ] = evs
			}

			attempts := found[events.TypeAttemptRecorded]
			correct := 0
			for _, e := range attempts {
				if e.Attributes["correct"] == "true" {
					correct++
				}
			}

			fmt.Fprintf(out, "Activity for %s (%s):\n", learner, window)
			fmt.Fprintf(out, "  Attempts:     %d\n", len(attempts))
			if len(attempts) > 0 {
				fmt.Fprintf(out, "  Success rate: %d%%\n", correct*100/len(attempts))
			}
			fmt.Fprintf(out, "  Completions:  %d\n", len(found[events.TypeLessonCompleted]))
			fmt.Fprintf(out, "  Achievements: %d\n", len(found[events.TypeAchievementUnlocked]))

			if done := found[events.TypeLessonCompleted]; len(done) > 0 {
				fmt.Fprintln(out, "Recently completed:")
				for i, e := range done {
					if i == 5 {
						break
					}
					fmt.Fprintf(out, "  %s  %s\n", e.OccurredAt.Local().Format("2006-01-02 15:04"), e.Subject)
				}
			}

			total, err := a.Analytics.Count(ctx, events.TypeAttemptRecorded)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "All learners: %d attempts recorded\n", total)
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "Only count activity this far back (e.g. 168h)")
	return cmd
}

func newProgressExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.Progress.Export(cmd.Context(), learner)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newProgressImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace progress with a previous export ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Progress.Import(cmd.Context(), learner, []byte(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported progress for %s: %d lessons completed\n",
				p.LearnerID, len(p.CompletedLessons))
			return nil
		},
	}
}

func newProgressResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress for the learner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "This erases all progress. Continue? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Progress.Reset(cmd.Context(), learner); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset ✓")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
