package insights

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"quizlens/internal/domain"
)

// SearchTopics ranks catalog entries that fuzzily contain query, closest
// first. An empty query returns the catalog head. limit <= 0 means no limit.
func SearchTopics(catalog []domain.CatalogTopic, query string, limit int) []domain.CatalogTopic {
	var out []domain.CatalogTopic
	if query == "" {
		out = catalog
	} else {
		names := lo.Map(catalog, func(t domain.CatalogTopic, _ int) string { return t.Name })
		ranks := fuzzy.RankFindFold(query, names)
		sort.Stable(ranks)
		out = lo.Map(ranks, func(r fuzzy.Rank, _ int) domain.CatalogTopic { return catalog[r.OriginalIndex] })
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]domain.CatalogTopic{}, out...)
}
