package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fnilvuwu/newshub/pkg/domain"
	"github.com/fnilvuwu/newshub/pkg/keywords"
)

const newsAPIPageSize = 50

// NewsAPI adapts the generic news search provider (newsapi.org). Results are
// loosely AI-related even with the augmented query, so Scoped is false and
// the relevance filter applies downstream.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNewsAPI creates a NewsAPI adapter
func NewNewsAPI(apiKey string, timeout time.Duration) *NewsAPI {
	return &NewsAPI{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2/everything",
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the human-readable source name
func (n *NewsAPI) Name() string { return "NewsAPI" }

// ID returns the machine source identifier
func (n *NewsAPI) ID() string { return "newsapi" }

// Scoped reports that results need downstream relevance filtering
func (n *NewsAPI) Scoped() bool { return false }

// newsAPIResponse is the provider's native payload
type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Search queries the provider, AND-ing the AI keyword disjunction onto the
// user's query. Every request fetches the same newest batch of 50; client
// pages are sliced downstream from the merged set, so consecutive pages
// always come from one consistent window.
func (n *NewsAPI) Search(ctx context.Context, query string, _, _ int) ([]domain.Article, error) {
	q := keywords.SearchDisjunction()
	if query != "" {
		q = fmt.Sprintf("(%s) AND (%s)", query, q)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))
	params.Set("apiKey", n.apiKey)

	status, body, err := getBody(ctx, n.client, n.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, &UpstreamError{Provider: n.Name(), Err: err}
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Provider: n.Name(), StatusCode: status, Err: fmt.Errorf("request rejected")}
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &UpstreamError{Provider: n.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	articles := make([]domain.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		// drop entries the provider redacted or left empty
		if a.Title == "" || a.Description == "" || a.Title == "[Removed]" || a.Description == "[Removed]" {
			continue
		}
		articles = append(articles, n.transform(a))
	}
	return articles, nil
}

// transform converts a provider article into the shared schema; entries
// without a title or description never reach here
func (n *NewsAPI) transform(a newsAPIArticle) domain.Article {
	readFrom := a.Content
	if readFrom == "" {
		readFrom = a.Description
	}

	return domain.Article{
		ID:          uuid.New().String(),
		Headline:    a.Title,
		Summary:     a.Description,
		Link:        a.URL,
		Image:       a.URLToImage,
		ReadTime:    readTime(readFrom),
		Views:       syntheticViews(1000, 50000),
		Author:      a.Author,
		Source:      n.Name(),
		SourceID:    n.ID(),
		Section:     keywords.Categorize(a.Title, a.Description),
		PublishedAt: parseTime(a.PublishedAt),
	}
}
