package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/app"
	"github.com/abhisek/adaptiq/internal/session"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start and take adaptive quizzes",
}

var quizStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a quiz session and print its first question",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := startInput(cmd)
		if err != nil {
			return err
		}

		a, _, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		id, err := a.StartSession(ctx, in)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session %s\n", id)

		q, err := a.NextQuestion(ctx, id)
		if err != nil {
			return err
		}
		if q != nil {
			fmt.Fprintln(out, renderQuestion(q))
		}
		return nil
	},
}

var quizNextCmd = &cobra.Command{
	Use:   "next <session>",
	Short: "Show the current question of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		q, err := a.NextQuestion(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if q == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "This quiz is finished. Run `adaptiq report` to see mastery.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderQuestion(q))
		return nil
	},
}

var quizAnswerCmd = &cobra.Command{
	Use:   "answer <session> <answer>",
	Short: "Answer the current question of a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeTaken, _ := cmd.Flags().GetFloat64("time")

		a, _, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		answer := strings.Join(args[1:], " ")
		res, err := a.SubmitAnswer(cmd.Context(), args[0], answer, timeTaken)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var quizPlayCmd = &cobra.Command{
	Use:   "play",
	Short: "Take a whole quiz interactively on the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := startInput(cmd)
		if err != nil {
			return err
		}

		a, _, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		return play(cmd.Context(), a, in, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// play runs the question/answer loop until the quiz completes or input
// ends. Answer time is measured from when the question is shown.
func play(ctx context.Context, a *app.App, in session.StartInput, r io.Reader, w io.Writer) error {
	id, err := a.StartSession(ctx, in)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	fmt.Fprintf(w, "Session %s. Type your answer and press enter; an empty line quits.\n\n", id)

	scanner := bufio.NewScanner(r)
	for {
		q, err := a.NextQuestion(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return nil
		}
		fmt.Fprintln(w, renderQuestion(q))
		fmt.Fprint(w, "> ")

		shown := time.Now()
		if !scanner.Scan() {
			fmt.Fprintf(w, "\nPaused. Resume with `adaptiq quiz next %s`.\n", id)
			return scanner.Err()
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintf(w, "Paused. Resume with `adaptiq quiz next %s`.\n", id)
			return nil
		}

		res, err := a.SubmitAnswer(ctx, id, answer, time.Since(shown).Seconds())
		if err != nil {
			return err
		}
		printResult(w, res)
		fmt.Fprintln(w)
		if res.QuizCompleted {
			return nil
		}
	}
}

func printResult(w io.Writer, res *session.AnswerResult) {
	fmt.Fprint(w, renderFeedback(res))
	if res.QuizCompleted && res.Report != nil {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderFinalReport(res.Report))
	}
}

func startInput(cmd *cobra.Command) (session.StartInput, error) {
	user, _ := cmd.Flags().GetString("user")
	concept, _ := cmd.Flags().GetString("concept")
	name, _ := cmd.Flags().GetString("name")
	count, _ := cmd.Flags().GetInt("count")
	contentFile, _ := cmd.Flags().GetString("content-file")

	in := session.StartInput{UserID: user, ConceptID: concept, ConceptName: name, Count: count}
	if contentFile != "" {
		data, err := os.ReadFile(contentFile)
		if err != nil {
			return in, fmt.Errorf("read content file: %w", err)
		}
		in.Content = string(data)
	}
	return in, nil
}

func addStartFlags(c *cobra.Command) {
	c.Flags().StringP("user", "u", "", "Learner id")
	c.Flags().StringP("concept", "c", "", "Concept id")
	c.Flags().String("name", "", "Concept display name (defaults to the concept id)")
	c.Flags().String("content-file", "", "File with source material for question generation")
	c.Flags().IntP("count", "n", 0, "Number of questions (default from ADAPTIQ_QUESTION_COUNT or 10)")
	_ = c.MarkFlagRequired("user")
	_ = c.MarkFlagRequired("concept")
}

func init() {
	addStartFlags(quizStartCmd)
	addStartFlags(quizPlayCmd)
	quizAnswerCmd.Flags().Float64P("time", "t", 0, "Seconds spent on the question")

	quizCmd.AddCommand(quizStartCmd)
	quizCmd.AddCommand(quizNextCmd)
	quizCmd.AddCommand(quizAnswerCmd)
	quizCmd.AddCommand(quizPlayCmd)
}
