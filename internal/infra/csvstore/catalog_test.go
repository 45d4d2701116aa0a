package csvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quizlens/internal/domain"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestCatalogLoaderReadsTopicColumn(t *testing.T) {
	path := writeFile(t, "Topic_ID,Topic_Name,Level\n1,Decorators,2\n2,  Generators ,1\n3,,1\n4,\"Lists, Tuples\",1\n")

	topics, err := NewCatalogLoader(path).LoadTopics(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"Decorators", "Generators", "Lists, Tuples"}
	if len(topics) != len(want) {
		t.Fatalf("expected %d topics, got %+v", len(want), topics)
	}
	for i, name := range want {
		if topics[i].Name != name {
			t.Fatalf("topic %d: expected %q, got %q", i, name, topics[i].Name)
		}
	}
}

func TestCatalogLoaderErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")
	if _, err := NewCatalogLoader(missing).LoadTopics(context.Background()); !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable for missing file, got %v", err)
	}

	noColumn := writeFile(t, "Name\nDecorators\n")
	if _, err := NewCatalogLoader(noColumn).LoadTopics(context.Background()); !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable for missing column, got %v", err)
	}
}
