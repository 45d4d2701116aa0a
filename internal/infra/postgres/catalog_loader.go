package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizlens/internal/domain"
)

// CatalogLoader loads the topic catalog from the topics table.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadTopics(ctx context.Context) ([]domain.CatalogTopic, error) {
	rows, err := l.pool.Query(ctx, `SELECT topic_name FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load topics: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	topics := []domain.CatalogTopic{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan topic: %v", domain.ErrCatalogUnavailable, err)
		}
		topics = append(topics, domain.CatalogTopic{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load topics: %v", domain.ErrCatalogUnavailable, err)
	}
	return topics, nil
}

// ImportTopics inserts names that are not in the table yet and returns how
// many rows were added.
func (l *CatalogLoader) ImportTopics(ctx context.Context, topics []domain.CatalogTopic) (int, error) {
	added := 0
	for _, t := range topics {
		tag, err := l.pool.Exec(ctx, `INSERT INTO topics (topic_name) VALUES ($1) ON CONFLICT (topic_name) DO NOTHING`, t.Name)
		if err != nil {
			return added, fmt.Errorf("insert topic %q: %w", t.Name, err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}
