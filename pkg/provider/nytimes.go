package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/fnilvuwu/newshub/pkg/domain"
)

// NYTimes adapts the New York Times Article Search API. The provider allows
// roughly 10 requests per minute, so outbound calls are serialized with a
// minimum inter-request delay and identical queries are served from a
// short-TTL cache. A rate-limit rejection yields an empty result set instead
// of an error so one overloaded provider does not fail the whole aggregation.
type NYTimes struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *RateLimiter
	cache   *ResultCache
	now     func() time.Time
}

// NewNYTimes creates a NYTimes adapter with the given throttle delay and
// cache TTL
func NewNYTimes(apiKey string, timeout, rateDelay, cacheTTL time.Duration) *NYTimes {
	return &NYTimes{
		apiKey:  apiKey,
		baseURL: "https://api.nytimes.com/svc/search/v2/articlesearch.json",
		client:  &http.Client{Timeout: timeout},
		limiter: NewRateLimiter(rateDelay),
		cache:   NewResultCache(cacheTTL),
		now:     time.Now,
	}
}

// Name returns the human-readable source name
func (n *NYTimes) Name() string { return "The New York Times" }

// ID returns the machine source identifier
func (n *NYTimes) ID() string { return "nytimes" }

// Scoped reports that the filter query already restricts results to AI topics
func (n *NYTimes) Scoped() bool { return true }

// nytimesResponse is the provider's native payload
type nytimesResponse struct {
	Status   string `json:"status"`
	Response struct {
		Docs []nytimesArticle `json:"docs"`
		Meta struct {
			Hits int `json:"hits"`
		} `json:"meta"`
	} `json:"response"`
}

type nytimesArticle struct {
	Abstract      string `json:"abstract"`
	WebURL        string `json:"web_url"`
	Snippet       string `json:"snippet"`
	LeadParagraph string `json:"lead_paragraph"`
	Multimedia    *struct {
		Default struct {
			URL string `json:"url"`
		} `json:"default"`
		Thumbnail struct {
			URL string `json:"url"`
		} `json:"thumbnail"`
	} `json:"multimedia"`
	Headline struct {
		Main string `json:"main"`
	} `json:"headline"`
	Keywords []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
		Major string `json:"major"`
	} `json:"keywords"`
	PubDate     string `json:"pub_date"`
	SectionName string `json:"section_name"`
	NewsDesk    string `json:"news_desk"`
	Byline      struct {
		Original string `json:"original"`
		Person   []struct {
			Firstname string `json:"firstname"`
			Lastname  string `json:"lastname"`
		} `json:"person"`
	} `json:"byline"`
	WordCount int `json:"word_count"`
}

// Search queries the provider with self-throttling; identical queries within
// the cache TTL are answered from cache without an outbound call. Every
// request fetches the same newest window; client pages are sliced downstream
// from the merged set, so consecutive pages always come from one consistent
// window.
func (n *NYTimes) Search(ctx context.Context, query string, _, _ int) ([]domain.Article, error) {
	cacheKey := "q=" + query
	if cached, ok := n.cache.Get(cacheKey); ok {
		lgr.Printf("[DEBUG] nytimes: cache hit for %q", cacheKey)
		return cached, nil
	}

	searchTerm := "artificial intelligence OR machine learning OR AI technology"
	filterQuery := `typeOfMaterials:("News" OR "Article") AND (section.name:("Technology" OR "Science" OR "Business") OR timesTag.subject:("Artificial Intelligence" OR "Machine Learning" OR "Technology" OR "Computer Science"))`
	if query != "" {
		searchTerm = query
		filterQuery = `section.name:("Technology" OR "Science" OR "Business") OR timesTag.subject:("Artificial Intelligence" OR "Machine Learning" OR "Technology")`
	}

	params := url.Values{}
	params.Set("api-key", n.apiKey)
	params.Set("q", searchTerm)
	params.Set("fq", filterQuery)
	params.Set("sort", "newest")
	params.Set("begin_date", n.now().AddDate(0, -6, 0).Format("20060102"))

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Provider: n.Name(), Err: err}
	}

	status, body, err := getBody(ctx, n.client, n.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, &UpstreamError{Provider: n.Name(), Err: err}
	}
	switch status {
	case http.StatusOK: // proceed
	case http.StatusTooManyRequests:
		// empty out gracefully so the other sources still serve the request
		lgr.Printf("[WARN] nytimes: rate limit hit, returning empty result")
		return []domain.Article{}, nil
	case http.StatusUnauthorized:
		return nil, &UpstreamError{Provider: n.Name(), StatusCode: status, Err: fmt.Errorf("invalid API key")}
	default:
		return nil, &UpstreamError{Provider: n.Name(), StatusCode: status, Err: fmt.Errorf("request rejected")}
	}

	var resp nytimesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &UpstreamError{Provider: n.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	articles := make([]domain.Article, 0, len(resp.Response.Docs))
	for _, doc := range resp.Response.Docs {
		articles = append(articles, n.transform(doc))
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// transform converts a provider article into the shared schema
func (n *NYTimes) transform(a nytimesArticle) domain.Article {
	summary := a.Abstract
	if summary == "" {
		summary = a.LeadParagraph
	}
	if summary == "" {
		summary = a.Snippet
	}
	if summary == "" {
		summary = "Read the full article for more details."
	}

	words := a.WordCount
	if words == 0 {
		words = len(strings.Fields(summary))
	}

	section := a.SectionName
	if section == "" {
		section = a.NewsDesk
	}

	var tags []string
	for _, kw := range a.Keywords {
		if kw.Major == "N" || kw.Name == "subject" {
			tags = append(tags, kw.Value)
		}
	}

	return domain.Article{
		ID:          uuid.New().String(),
		Headline:    a.Headline.Main,
		Summary:     summary,
		Link:        a.WebURL,
		Image:       n.imageURL(a),
		ReadTime:    readTimeWords(words),
		Views:       syntheticViews(2000, 8000),
		Author:      n.author(a),
		Source:      n.Name(),
		SourceID:    n.ID(),
		Section:     section,
		Tags:        tags,
		PublishedAt: parseTime(a.PubDate),
	}
}

// imageURL picks the best available image, prefixing relative paths with the
// NYT static host
func (n *NYTimes) imageURL(a nytimesArticle) string {
	if a.Multimedia == nil {
		return ""
	}
	for _, u := range []string{a.Multimedia.Default.URL, a.Multimedia.Thumbnail.URL} {
		if u == "" {
			continue
		}
		if strings.HasPrefix(u, "http") {
			return u
		}
		return "https://static01.nyt.com/" + u
	}
	return ""
}

// author extracts the byline, preferring the first credited person
func (n *NYTimes) author(a nytimesArticle) string {
	if len(a.Byline.Person) > 0 {
		p := a.Byline.Person[0]
		if name := strings.TrimSpace(p.Firstname + " " + p.Lastname); name != "" {
			return name
		}
	}
	if a.Byline.Original != "" {
		return strings.TrimSpace(strings.TrimPrefix(a.Byline.Original, "By "))
	}
	return n.Name()
}
