package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"quizlens/internal/app"
	"quizlens/internal/config"
	"quizlens/internal/domain"
)

// NewPlayCmd runs an interactive quiz on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			return playQuiz(cmd.Context(), rt.service, uuid.NewString(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// askValid repeats the question until accept returns nil.
func (p *prompter) askValid(label string, accept func(string) error) error {
	for {
		answer, err := p.ask(label)
		if err != nil {
			return err
		}
		if err := accept(answer); err != nil {
			fmt.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return nil
	}
}

func playQuiz(ctx context.Context, service *app.QuizService, sessionID string, in io.Reader, out io.Writer) error {
	p := &prompter{scanner: bufio.NewScanner(in), out: out}

	var req app.GenerateRequest
	err := p.askValid("Your name", func(s string) error {
		if s == "" {
			return domain.ErrBlankName
		}
		req.Name = s
		return nil
	})
	if err != nil {
		return err
	}

	for {
		if err := askQuizSettings(ctx, p, &req); err != nil {
			return err
		}
		if req.Mode == domain.ModeTopic {
			prediction, err := service.Predict(ctx, sessionID, req.Topic, req.Difficulty)
			if err == nil {
				fmt.Fprintf(out, "Predicted score: %.1f\n", prediction)
			}
		}

		view, err := generateQuiz(ctx, p, service, sessionID, req)
		if err != nil {
			return err
		}
		if len(view.Questions) == 0 {
			continue
		}

		if err := answerQuestions(ctx, p, service, sessionID, view.Questions); err != nil {
			return err
		}
		result, err := service.Submit(ctx, sessionID)
		if err != nil {
			return err
		}
		printResult(out, result, service.State(ctx, sessionID))
		printWeakTopics(out, service.WeakTopics(ctx, sessionID))

		again, err := p.ask("Play again? [y/N]")
		if err != nil || !strings.EqualFold(again, "y") {
			return nil
		}
		service.Restart(ctx, sessionID)
	}
}

// generateQuiz shows the raw model output of a malformed quiz and offers to
// try again. An empty view means the user declined and wants new settings.
func generateQuiz(ctx context.Context, p *prompter, service *app.QuizService, sessionID string, req app.GenerateRequest) (domain.SessionView, error) {
	for {
		fmt.Fprintln(p.out, "Generating quiz...")
		view, err := service.Generate(ctx, sessionID, req)
		var malformed *domain.MalformedPayloadError
		if !errors.As(err, &malformed) {
			return view, err
		}
		fmt.Fprintf(p.out, "The model returned an unusable quiz:\n%s\n", malformed.Raw)

		retry, err := p.ask("Retry? [y/N]")
		if err != nil {
			return domain.SessionView{}, err
		}
		if !strings.EqualFold(retry, "y") {
			return domain.SessionView{}, nil
		}
	}
}

func askQuizSettings(ctx context.Context, p *prompter, req *app.GenerateRequest) error {
	err := p.askValid("Input mode (Topic, Text Notes, PDF)", func(s string) error {
		mode, err := domain.ParseInputMode(s)
		req.Mode = mode
		return err
	})
	if err != nil {
		return err
	}

	req.Topic, req.Text, req.PDF = "", "", nil
	switch req.Mode {
	case domain.ModeTopic:
		err = p.askValid("Topic", func(s string) error {
			if s == "" {
				return domain.ErrNoContent
			}
			req.Topic = s
			return nil
		})
	case domain.ModeTextNotes:
		err = p.askValid("Notes", func(s string) error {
			if s == "" {
				return domain.ErrNoContent
			}
			req.Text = s
			return nil
		})
	case domain.ModePDF:
		err = p.askValid("PDF path", func(s string) error {
			data, err := os.ReadFile(s)
			req.PDF = data
			return err
		})
	}
	if err != nil {
		return err
	}

	err = p.askValid("Number of questions (3, 5, 10)", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return domain.ErrInvalidCount
		}
		req.Count = n
		return domain.ValidateCount(n)
	})
	if err != nil {
		return err
	}

	return p.askValid("Difficulty (Easy, Medium, Hard)", func(s string) error {
		d, err := domain.ParseDifficulty(s)
		req.Difficulty = d
		return err
	})
}

func answerQuestions(ctx context.Context, p *prompter, service *app.QuizService, sessionID string, questions []domain.QuestionView) error {
	for _, q := range questions {
		fmt.Fprintf(p.out, "\nQ%d. %s\n", q.Index+1, q.Question)
		for i, o := range q.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
		}
		err := p.askValid("Answer", func(s string) error {
			choice := s
			if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(q.Options) {
				choice = q.Options[n-1]
			}
			_, err := service.SelectAnswer(ctx, sessionID, q.Index, choice)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, result domain.Result, view domain.SessionView) {
	fmt.Fprintf(out, "\nScore: %d/%d\n", result.Score, result.Total)
	for _, o := range result.Outcomes {
		mark := "x"
		if o.Correct {
			mark = "ok"
		}
		fmt.Fprintf(out, "  [%s] Q%d %s\n", mark, o.Index+1, o.Question)
		if !o.Correct {
			fmt.Fprintf(out, "       your answer: %s, correct: %s\n", o.UserAnswer, o.CorrectAnswer)
		}
	}
	if result.PersistError != "" {
		fmt.Fprintf(out, "Could not save to the leaderboard: %s\n", result.PersistError)
	}
	if view.RecommendedTopic != "" {
		fmt.Fprintf(out, "Try next: %s\n", view.RecommendedTopic)
	}
}

func printWeakTopics(out io.Writer, weak []domain.WeakTopic) {
	if len(weak) == 0 {
		return
	}
	fmt.Fprintln(out, "Weak topics:")
	for _, w := range weak {
		fmt.Fprintf(out, "  %s (%s): lowest %d\n", w.Topic, w.Difficulty, w.LowestScore)
	}
}
