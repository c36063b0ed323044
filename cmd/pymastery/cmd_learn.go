package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pymastery/internal/app"
	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// errNotSolved makes a failed validation exit non-zero.
var errNotSolved = errors.New("exercise not solved yet")

var statusMarks = map[domain.LessonStatus]string{
	domain.StatusCompleted:  "✓",
	domain.StatusInProgress: "…",
	domain.StatusAvailable:  "○",
	domain.StatusLocked:     "🔒",
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons [topic]",
		Short: "List topics, or the lessons of one topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				statuses, err := a.Practice.TopicStatuses(cmd.Context(), learner)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Topics:")
				for _, ts := range statuses {
					fmt.Fprintf(out, "  %s %s %-14s %-12s %d lessons\n",
						statusMarks[ts.Status], ts.Topic.Icon, ts.Topic.Topic, ts.Status, ts.Lessons)
				}
				fmt.Fprintln(out, "\nUse 'pymastery lessons <topic>' for details")
				return nil
			}

			overview, err := a.Practice.LessonCards(cmd.Context(), learner, domain.Topic(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s (%d/%d, %d%%)\n", overview.Topic.Icon, overview.Topic.Title,
				overview.Completed, overview.Total, overview.Percent)
			for _, card := range overview.Cards {
				fmt.Fprintf(out, "  %s %-16s %s (%d min)\n",
					statusMarks[card.Status], card.Lesson.ID, card.Lesson.Title, card.Lesson.EstimatedMinutes)
			}
			return nil
		},
	}
}

func newLessonCmd() *cobra.Command {
	var showHint bool
	cmd := &cobra.Command{
		Use:   "lesson [lesson-id]",
		Short: "Show a lesson and its exercise (default: where you left off)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := resolveLessonID(cmd, a, learner, args)
			if err != nil {
				return err
			}
			state, err := a.Practice.Lesson(cmd.Context(), learner, id)
			if err != nil {
				return err
			}
			printLesson(cmd.OutOrStdout(), state.Lesson, showHint)
			if state.Completed {
				fmt.Fprintln(cmd.OutOrStdout(), "\n✓ Completed")
			} else if state.Attempts > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nAttempts so far: %d\n", state.Attempts)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHint, "hint", false, "Show the exercise hint")
	return cmd
}

// resolveLessonID picks the lesson named in args, else the learner's
// current lesson, else the first lesson of the curriculum.
func resolveLessonID(cmd *cobra.Command, a *app.App, learner string, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	current, err := a.Progress.CurrentLesson(cmd.Context(), learner)
	if err != nil {
		return "", err
	}
	if current != "" {
		return current, nil
	}
	lessons := a.Catalog.ListLessons()
	if len(lessons) == 0 {
		return "", domain.ErrLessonNotFound
	}
	return lessons[0].ID, nil
}

func printLesson(w io.Writer, l *domain.Lesson, showHint bool) {
	fmt.Fprintf(w, "%s\n%s\n\n%s\n", l.Title, l.Description, strings.TrimSpace(l.Content))
	for _, ex := range l.Examples {
		fmt.Fprintf(w, "\n## %s\n%s\n", ex.Title, strings.TrimSpace(ex.Code))
		if ex.Explanation != "" {
			fmt.Fprintf(w, "%s\n", ex.Explanation)
		}
	}

	e := l.Exercise
	fmt.Fprintf(w, "\nExercise: %s (%s)\n%s\n", e.Title, e.Difficulty, e.Description)
	if e.InitialCode != "" {
		fmt.Fprintf(w, "\nStarter code:\n%s\n", strings.TrimSpace(e.InitialCode))
	}
	if showHint && e.Hint != "" {
		fmt.Fprintf(w, "\nHint: %s\n", e.Hint)
	}
}

func newValidateCmd() *cobra.Command {
	var hints int
	cmd := &cobra.Command{
		Use:   "validate <lesson-id> <file>",
		Short: "Check a solution against a lesson exercise ('-' reads stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd, args[1])
			if err != nil {
				return err
			}

			a, learner, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			outcome, err := a.Practice.Validate(cmd.Context(), learner, args[0], code, hints)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := outcome.Result
			if r.IsCorrect {
				fmt.Fprintf(out, "✓ %s\n", r.Message)
			} else {
				fmt.Fprintf(out, "✗ %s\n", r.Message)
			}
			for _, e := range r.Errors {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			for _, s := range r.Suggestions {
				fmt.Fprintf(out, "  → %s\n", s)
			}
			fmt.Fprintf(out, "Attempt %d\n", outcome.AttemptCount)
			for _, ach := range outcome.Achievements {
				fmt.Fprintf(out, "🏆 %s: %s\n", ach.Title, ach.Description)
			}

			if !r.IsCorrect {
				return errNotSolved
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&hints, "hints", 0, "Number of hints used before submitting")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run a snippet in the simulator ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Practice.Run(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Output)
			if !strings.HasSuffix(result.Output, "\n") && result.Output != "" {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if result.Error != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Error)
			}
			return nil
		},
	}
}

// readSource reads code from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}
