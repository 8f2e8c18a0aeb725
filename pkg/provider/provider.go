// Package provider implements source adapters for the upstream news APIs.
// Each adapter owns its authentication, query augmentation and pagination
// units, and normalizes the provider's native article format into
// domain.Article.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/fnilvuwu/newshub/pkg/domain"
)

// Provider is the contract every source adapter implements. Search returns
// normalized articles for the given query; pageSize is a cumulative hint the
// adapter maps onto its own pagination units. Adapters must fetch a
// consistent newest-first window regardless of the client page: page slicing
// happens downstream on the merged set, and an adapter that shifted its
// upstream window per client page would make consecutive pages skip or
// repeat articles.
type Provider interface {
	Name() string // human-readable, e.g. "The Guardian"
	ID() string   // machine identifier, e.g. "guardian"
	// Scoped reports whether results are already AI-scoped by the upstream
	// query; unscoped providers get the relevance filter applied downstream.
	Scoped() bool
	Search(ctx context.Context, query string, page, pageSize int) ([]domain.Article, error)
}

// UpstreamError describes a provider request failure. The aggregation
// endpoint recovers it locally, treating the source as an empty contribution.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

const userAgent = "newshub/1.0"

// errPermanent marks failures the retrier should not repeat
var errPermanent = errors.New("permanent failure")

// getBody fetches url, retrying transport errors and 5xx responses with
// backoff. Non-5xx statuses are returned to the caller for mapping to
// provider-specific errors.
func getBody(ctx context.Context, client *http.Client, url string) (status int, body []byte, err error) {
	retrier := repeater.NewBackoff(3, 100*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	err = retrier.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if reqErr != nil {
			return fmt.Errorf("create request: %w", errors.Join(errPermanent, reqErr))
		}
		req.Header.Set("User-Agent", userAgent)

		resp, doErr := client.Do(req)
		if doErr != nil {
			return fmt.Errorf("request: %w", doErr) // transport errors are retried
		}
		defer resp.Body.Close() //nolint:errcheck // read-only body

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("read body: %w", readErr)
		}

		status = resp.StatusCode
		body = data
		return nil
	}, errPermanent)

	return status, body, err
}

// stripPolicy removes all HTML from provider-supplied text, safe for
// concurrent use
var stripPolicy = bluemonday.StrictPolicy()

// plainText strips HTML tags from provider text
func plainText(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

// readTime estimates reading time from word count at 200 words per minute,
// minimum one minute
func readTime(text string) string {
	words := len(strings.Fields(plainText(text)))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// readTimeWords is readTime for providers that report a word count directly
func readTimeWords(words int) string {
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// syntheticViews fabricates a display-only view counter in [base, base+spread)
// since none of the providers expose real analytics
func syntheticViews(base, spread int) string {
	views := base + rand.Intn(spread) //nolint:gosec // display-only placeholder
	return fmt.Sprintf("%.1fK", float64(views)/1000)
}

// parseTime parses an ISO-8601 timestamp; unparseable dates yield the zero
// time so the article sorts last instead of failing the request
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
