// Package aggregator orchestrates the multi-source news pipeline: it fans
// out to the source adapters, filters for relevance, merges and
// deduplicates, and sorts and paginates the combined set.
package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/fnilvuwu/newshub/pkg/domain"
	"github.com/fnilvuwu/newshub/pkg/provider"
)

// Aggregator combines articles from all registered source adapters. Adapter
// calls run concurrently but results are always merged in registration
// order so deduplication tie-breaks are reproducible across runs.
type Aggregator struct {
	providers  []provider.Provider
	timeout    time.Duration
	maxWorkers int
}

// New creates an aggregator over the given providers. Timeout bounds each
// adapter call; maxWorkers limits the fan-out.
func New(providers []provider.Provider, timeout time.Duration, maxWorkers int) *Aggregator {
	if maxWorkers < 1 {
		maxWorkers = len(providers)
	}
	return &Aggregator{providers: providers, timeout: timeout, maxWorkers: maxWorkers}
}

// Sources returns the IDs of all registered providers
func (a *Aggregator) Sources() []string {
	ids := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		ids = append(ids, p.ID())
	}
	return ids
}

// Fetch runs the full pipeline for one page request. A failing adapter is
// treated as an empty contribution; an error is returned only when every
// enabled adapter fails.
func (a *Aggregator) Fetch(ctx context.Context, req domain.PageRequest) (domain.NewsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	searchMode := strings.TrimSpace(req.Search) != ""

	enabled := a.enabledProviders(req.Sources)
	if len(enabled) == 0 {
		lgr.Printf("[WARN] no sources enabled for request")
		return domain.NewsResponse{Articles: []domain.Article{}, Status: domain.StatusOK}, nil
	}

	// enough articles to cover the requested page from every source
	needed := page * regularPageSize

	results := make([][]domain.Article, len(enabled))
	errs := make([]error, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxWorkers)
	for i, p := range enabled {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			articles, err := p.Search(callCtx, strings.TrimSpace(req.Search), page, needed)
			if err != nil {
				lgr.Printf("[WARN] source %s failed: %v", p.ID(), err)
				errs[i] = err
				return nil // adapter failures never abort the whole request
			}

			if !p.Scoped() {
				before := len(articles)
				articles = FilterRelevant(articles)
				lgr.Printf("[DEBUG] source %s: %d of %d articles relevant", p.ID(), len(articles), before)
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait() // tasks return nil, errors collected per-source

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(enabled) {
		return domain.NewsResponse{}, fmt.Errorf("all %d sources failed, first error: %w", failed, firstError(errs))
	}

	// merge in fixed provider order, first seen link wins
	var combined []domain.Article
	for _, articles := range results {
		combined = append(combined, articles...)
	}
	merged := Dedupe(combined)
	lgr.Printf("[DEBUG] merged %d articles into %d after dedup", len(combined), len(merged))

	if searchMode {
		merged = FilterSearch(merged, strings.TrimSpace(req.Search))
	}

	pageSlice, total := SortAndPage(merged, page, searchMode)

	lgr.Printf("[INFO] page %d: %d of %d articles (search=%v, sources=%d/%d ok)",
		page, len(pageSlice), total, searchMode, len(enabled)-failed, len(enabled))

	return domain.NewsResponse{
		Articles:     pageSlice,
		TotalResults: total,
		Status:       domain.StatusOK,
	}, nil
}

// enabledProviders selects providers by ID, keeping registration order; an
// empty filter enables all
func (a *Aggregator) enabledProviders(ids []string) []provider.Provider {
	if len(ids) == 0 {
		return a.providers
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[strings.ToLower(strings.TrimSpace(id))] = struct{}{}
	}
	var result []provider.Provider
	for _, p := range a.providers {
		if _, ok := want[p.ID()]; ok {
			result = append(result, p)
		}
	}
	return result
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
