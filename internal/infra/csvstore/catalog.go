package csvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"quizlens/internal/domain"
)

// TopicColumn is the catalog column holding topic names.
const TopicColumn = "Topic_Name"

// CatalogLoader reads topic names from the Topic_Name column of a CSV file.
type CatalogLoader struct {
	path string
}

func NewCatalogLoader(path string) *CatalogLoader {
	return &CatalogLoader{path: path}
}

func (l *CatalogLoader) LoadTopics(ctx context.Context) ([]domain.CatalogTopic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := readAll(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if len(rows) == 0 {
		return []domain.CatalogTopic{}, nil
	}

	col, ok := columnIndex(rows[0])[TopicColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s column", domain.ErrCatalogUnavailable, l.path, TopicColumn)
	}

	named := lo.Filter(rows[1:], func(row []string, _ int) bool {
		return col < len(row) && strings.TrimSpace(row[col]) != ""
	})
	return lo.Map(named, func(row []string, _ int) domain.CatalogTopic {
		return domain.CatalogTopic{Name: strings.TrimSpace(row[col])}
	}), nil
}
