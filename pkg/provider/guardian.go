package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/fnilvuwu/newshub/pkg/domain"
	"github.com/fnilvuwu/newshub/pkg/keywords"
)

const (
	guardianBatchSize = 20 // articles fetched per upstream page
	guardianMaxPages  = 3  // upper bound on upstream pages per request
)

// Guardian adapts The Guardian Open Platform content API. The boolean query
// always carries the AI-term disjunction, so results arrive on-topic and
// Scoped is true.
type Guardian struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGuardian creates a Guardian adapter
func NewGuardian(apiKey string, timeout time.Duration) *Guardian {
	return &Guardian{
		apiKey:  apiKey,
		baseURL: "https://content.guardianapis.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the human-readable source name
func (g *Guardian) Name() string { return "The Guardian" }

// ID returns the machine source identifier
func (g *Guardian) ID() string { return "guardian" }

// Scoped reports that the augmented query already restricts results to AI topics
func (g *Guardian) Scoped() bool { return true }

// guardianResponse is the provider's native payload
type guardianResponse struct {
	Response struct {
		Status      string            `json:"status"`
		Total       int               `json:"total"`
		PageSize    int               `json:"pageSize"`
		CurrentPage int               `json:"currentPage"`
		Pages       int               `json:"pages"`
		Results     []guardianArticle `json:"results"`
	} `json:"response"`
}

type guardianArticle struct {
	ID                 string `json:"id"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	Fields             struct {
		Thumbnail  string `json:"thumbnail"`
		BodyText   string `json:"bodyText"`
		TrailText  string `json:"trailText"`
		Headline   string `json:"headline"`
		Standfirst string `json:"standfirst"`
		Byline     string `json:"byline"`
		Main       string `json:"main"`
	} `json:"fields"`
	Tags []struct {
		Type     string `json:"type"`
		WebTitle string `json:"webTitle"`
	} `json:"tags"`
}

// Search fetches enough upstream pages of 20 to cover pageSize articles,
// capped at three pages per request
func (g *Guardian) Search(ctx context.Context, query string, _, pageSize int) ([]domain.Article, error) {
	pages := (pageSize + guardianBatchSize - 1) / guardianBatchSize
	if pages < 1 {
		pages = 1
	}
	if pages > guardianMaxPages {
		pages = guardianMaxPages
	}

	var articles []domain.Article
	for upstreamPage := 1; upstreamPage <= pages; upstreamPage++ {
		batch, total, err := g.fetchPage(ctx, query, upstreamPage)
		if err != nil {
			if len(articles) > 0 {
				// keep what earlier pages produced
				lgr.Printf("[WARN] guardian page %d failed, returning partial results: %v", upstreamPage, err)
				return articles, nil
			}
			return nil, err
		}
		articles = append(articles, batch...)
		if len(articles) >= total {
			break
		}
	}
	return articles, nil
}

// fetchPage retrieves a single upstream page
func (g *Guardian) fetchPage(ctx context.Context, query string, page int) (articles []domain.Article, total int, err error) {
	aiQuery := keywords.SearchDisjunction()
	if query != "" {
		aiQuery = fmt.Sprintf("(%s) AND (%s)", query, aiQuery)
	}

	params := url.Values{}
	params.Set("api-key", g.apiKey)
	params.Set("q", aiQuery)
	params.Set("page", strconv.Itoa(page))
	params.Set("page-size", strconv.Itoa(guardianBatchSize))
	params.Set("order-by", "newest")
	params.Set("show-fields", "thumbnail,bodyText,trailText,headline,standfirst,byline")
	params.Set("show-tags", "keyword,contributor")

	status, body, err := getBody(ctx, g.client, g.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, 0, &UpstreamError{Provider: g.Name(), Err: err}
	}
	switch status {
	case http.StatusOK: // proceed
	case http.StatusForbidden:
		return nil, 0, &UpstreamError{Provider: g.Name(), StatusCode: status, Err: fmt.Errorf("invalid API key or quota exceeded")}
	case http.StatusTooManyRequests:
		return nil, 0, &UpstreamError{Provider: g.Name(), StatusCode: status, Err: fmt.Errorf("rate limit exceeded")}
	default:
		return nil, 0, &UpstreamError{Provider: g.Name(), StatusCode: status, Err: fmt.Errorf("request rejected")}
	}

	var resp guardianResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, &UpstreamError{Provider: g.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	articles = make([]domain.Article, 0, len(resp.Response.Results))
	for _, a := range resp.Response.Results {
		articles = append(articles, g.transform(a))
	}
	return articles, resp.Response.Total, nil
}

// transform converts a provider article into the shared schema
func (g *Guardian) transform(a guardianArticle) domain.Article {
	headline := a.Fields.Headline
	if headline == "" {
		headline = a.WebTitle
	}

	summary := plainText(a.Fields.TrailText)
	if summary == "" {
		summary = plainText(a.Fields.Standfirst)
	}
	if summary == "" {
		summary = "Read the full article for more details."
	}

	image := a.Fields.Thumbnail
	if image == "" {
		image = a.Fields.Main
	}

	author := a.Fields.Byline
	if author == "" {
		author = g.Name()
	}

	readFrom := a.Fields.BodyText
	if readFrom == "" {
		readFrom = a.Fields.TrailText
	}

	var tags []string
	for _, tag := range a.Tags {
		tags = append(tags, tag.WebTitle)
	}

	return domain.Article{
		ID:          uuid.New().String(),
		Headline:    headline,
		Summary:     summary,
		Link:        a.WebURL,
		Image:       image,
		ReadTime:    readTime(readFrom),
		Views:       syntheticViews(1000, 5000),
		Author:      author,
		Source:      g.Name(),
		SourceID:    g.ID(),
		Section:     a.SectionName,
		Tags:        tags,
		PublishedAt: parseTime(a.WebPublicationDate),
	}
}
