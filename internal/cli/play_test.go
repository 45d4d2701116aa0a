package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"quizlens/internal/app"
	"quizlens/internal/domain"
	"quizlens/internal/infra/csvstore"
	"quizlens/internal/infra/memory"
	"quizlens/internal/llm"
	"quizlens/internal/quizgen"
	"quizlens/internal/source"
)

const threeQuestions = `[
  {"question": "Q1", "options": ["A", "B", "C", "D"], "answer": "A"},
  {"question": "Q2", "options": ["A", "B", "C", "D"], "answer": "B"},
  {"question": "Q3", "options": ["A", "B", "C", "D"], "answer": "C"}
]`

func newPlayService(t *testing.T, provider *llm.MockProvider) (*app.QuizService, *csvstore.Leaderboard) {
	t.Helper()
	lb := csvstore.NewLeaderboard(filepath.Join(t.TempDir(), "leaderboard.csv"))
	service := app.NewQuizService(
		memory.NewSessionStore(),
		source.NewResolver(nil),
		quizgen.New(provider, quizgen.DefaultConfig()),
		lb,
		memory.NewCatalogRepository(memory.NewStaticTopicLoader("Go", "Rust"), 0),
	)
	return service, lb
}

func TestPlayQuiz(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Text: threeQuestions},
		llm.MockResponse{Text: threeQuestions},
	)
	service, lb := newPlayService(t, provider)

	input := strings.Join([]string{
		"", // blank name is rejected
		"Ada",
		"Topic", "Go", "4", "3", "Easy",
		"1", "B", "9", "4", // 9 is out of range and re-asked
		"y",
		"topic", "go", "3", "easy",
		"1", "2", "3",
		"n",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := playQuiz(context.Background(), service, "sid", strings.NewReader(input), &out); err != nil {
		t.Fatalf("play: %v\n%s", err, out.String())
	}

	text := out.String()
	for _, want := range []string{
		"Predicted score: 3.0",
		"Score: 2/3",
		"your answer: D, correct: C",
		"Try next: Rust",
		"Predicted score: 2.0",
		"Score: 3/3",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	records, err := lb.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two leaderboard rows, got %d", len(records))
	}
}

func TestPlayQuizRetriesAfterMalformedQuiz(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Text: "not json"},
		llm.MockResponse{Text: "still not json"},
		llm.MockResponse{Text: threeQuestions},
	)
	service, _ := newPlayService(t, provider)

	input := strings.Join([]string{
		"Ada",
		"Topic", "Go", "3", "Easy",
		"y", // retry with the same settings
		"n", // decline, back to the settings prompt
		"Topic", "Rust", "3", "Medium",
		"1", "2", "3",
		"n",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := playQuiz(context.Background(), service, "sid", strings.NewReader(input), &out); err != nil {
		t.Fatalf("play: %v\n%s", err, out.String())
	}

	text := out.String()
	if strings.Count(text, "The model returned an unusable quiz") != 2 {
		t.Fatalf("expected both malformed replies to be shown:\n%s", text)
	}
	for _, want := range []string{"not json", "still not json", "Score: 3/3"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if provider.CallCount() != 3 {
		t.Fatalf("expected three model calls, got %d", provider.CallCount())
	}
}

func TestPlayQuizStopsOnEOF(t *testing.T) {
	service, _ := newPlayService(t, llm.NewMockProvider())

	var out bytes.Buffer
	if err := playQuiz(context.Background(), service, "sid", strings.NewReader("Ada\n"), &out); err == nil {
		t.Fatal("expected error when input ends early")
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var out bytes.Buffer
	if err := printLeaderboard(&out, []domain.AttemptRecord{{Name: "Ada", Score: "2/3", Topic: "Go", Difficulty: domain.DifficultyEasy, DateTime: "2024-05-04 10:11:12"}}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.HasPrefix(out.String(), "NAME") || !strings.Contains(out.String(), "Ada") {
		t.Fatalf("unexpected table: %q", out.String())
	}
}
