package aggregator

import (
	"sort"
	"strings"

	"github.com/fnilvuwu/newshub/pkg/domain"
	"github.com/fnilvuwu/newshub/pkg/keywords"
)

// regularPageSize is the uniform page size; browse page one carries one
// extra slot for the featured article
const regularPageSize = 18

// Dedupe keeps the first occurrence of each link, preserving input order.
// Earlier sources win ties on syndicated stories that share a URL.
func Dedupe(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	result := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.Link]; ok {
			continue
		}
		seen[a.Link] = struct{}{}
		result = append(result, a)
	}
	return result
}

// FilterRelevant drops articles that don't read as AI-related. Applied only
// to sources that are not already topic-scoped upstream.
func FilterRelevant(articles []domain.Article) []domain.Article {
	result := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if keywords.IsRelevant(a.Headline, a.Summary) {
			result = append(result, a)
		}
	}
	return result
}

// FilterSearch keeps articles whose headline or summary contains the query,
// case-insensitive
func FilterSearch(articles []domain.Article, query string) []domain.Article {
	q := strings.ToLower(query)
	result := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Headline), q) || strings.Contains(strings.ToLower(a.Summary), q) {
			result = append(result, a)
		}
	}
	return result
}

// SortAndPage orders articles newest first (stable, so merge order breaks
// timestamp ties) and slices out one page. In search mode every page holds
// 18 articles; in browse mode page one holds 19 to fit the featured slot and
// later pages start at offset 19+(page-2)*18. The returned total is the
// full collection size before slicing.
func SortAndPage(articles []domain.Article, page int, searchMode bool) (pageSlice []domain.Article, total int) {
	if page < 1 {
		page = 1
	}

	sorted := make([]domain.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	total = len(sorted)

	var offset, size int
	switch {
	case searchMode:
		size = regularPageSize
		offset = (page - 1) * regularPageSize
	case page == 1:
		size = regularPageSize + 1
		offset = 0
	default:
		size = regularPageSize
		offset = regularPageSize + 1 + (page-2)*regularPageSize
	}

	if offset >= total {
		return []domain.Article{}, total
	}
	end := offset + size
	if end > total {
		end = total
	}
	return sorted[offset:end], total
}
