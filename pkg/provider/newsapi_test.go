package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsAPI_Search(t *testing.T) {
	t.Run("transforms and filters articles", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
			assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
			assert.Equal(t, "50", r.URL.Query().Get("pageSize"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"status": "ok",
				"totalResults": 4,
				"articles": [
					{
						"source": {"id": "wired", "name": "Wired"},
						"author": "Jane Doe",
						"title": "New neural network beats benchmark",
						"description": "A deep learning milestone",
						"url": "https://example.com/neural",
						"urlToImage": "https://example.com/neural.jpg",
						"publishedAt": "2025-05-30T10:00:00Z",
						"content": "lots of words about machine learning models"
					},
					{
						"source": {"id": null, "name": "Gone"},
						"author": null,
						"title": "[Removed]",
						"description": "[Removed]",
						"url": "https://example.com/removed",
						"urlToImage": null,
						"publishedAt": "2025-05-29T10:00:00Z",
						"content": null
					},
					{
						"source": {"id": null, "name": "Empty"},
						"author": null,
						"title": "No description here",
						"description": "",
						"url": "https://example.com/empty",
						"urlToImage": null,
						"publishedAt": "2025-05-28T10:00:00Z",
						"content": null
					},
					{
						"source": {"id": null, "name": "Odd"},
						"author": "Bob",
						"title": "Quantum chips and the GPU race",
						"description": "hardware news",
						"url": "https://example.com/chips",
						"urlToImage": "",
						"publishedAt": "not-a-date",
						"content": null
					}
				]
			}`))
		}))
		defer server.Close()

		api := NewNewsAPI("test-key", 5*time.Second)
		api.baseURL = server.URL

		articles, err := api.Search(context.Background(), "", 1, 18)
		require.NoError(t, err)
		require.Len(t, articles, 2) // redacted and empty entries dropped

		first := articles[0]
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, "New neural network beats benchmark", first.Headline)
		assert.Equal(t, "A deep learning milestone", first.Summary)
		assert.Equal(t, "https://example.com/neural", first.Link)
		assert.Equal(t, "https://example.com/neural.jpg", first.Image)
		assert.Equal(t, "Jane Doe", first.Author)
		assert.Equal(t, "NewsAPI", first.Source)
		assert.Equal(t, "newsapi", first.SourceID)
		assert.Equal(t, "AI Models", first.Section)
		assert.Equal(t, "1 min read", first.ReadTime)
		assert.NotEmpty(t, first.Views)
		assert.Equal(t, time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC), first.PublishedAt)

		// unparseable date falls back to zero time, never an error
		assert.True(t, articles[1].PublishedAt.IsZero())

		// query carries the AI disjunction
		assert.Contains(t, gotQuery, "artificial intelligence")
		assert.Contains(t, gotQuery, " OR ")
	})

	t.Run("client page never shifts the upstream window", func(t *testing.T) {
		var gotPages []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPages = append(gotPages, r.URL.Query().Get("page"))
			w.Write([]byte(`{
				"status": "ok",
				"totalResults": 1,
				"articles": [{
					"title": "Same window every time",
					"description": "machine learning news",
					"url": "https://example.com/window",
					"publishedAt": "2025-05-30T10:00:00Z"
				}]
			}`))
		}))
		defer server.Close()

		api := NewNewsAPI("test-key", 5*time.Second)
		api.baseURL = server.URL

		first, err := api.Search(context.Background(), "", 1, 18)
		require.NoError(t, err)
		second, err := api.Search(context.Background(), "", 2, 36)
		require.NoError(t, err)

		// later client pages slice the merged set downstream; the upstream
		// request must stay on the newest batch or pages would skip articles
		assert.Equal(t, []string{"", ""}, gotPages)
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].Link, second[0].Link)
	})

	t.Run("user query gets AND-ed onto the disjunction", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
		}))
		defer server.Close()

		api := NewNewsAPI("test-key", 5*time.Second)
		api.baseURL = server.URL

		_, err := api.Search(context.Background(), "robots", 1, 18)
		require.NoError(t, err)
		assert.Contains(t, gotQuery, "(robots) AND (")
	})

	t.Run("auth rejection becomes UpstreamError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		api := NewNewsAPI("bad-key", 5*time.Second)
		api.baseURL = server.URL

		articles, err := api.Search(context.Background(), "", 1, 18)
		require.Error(t, err)
		assert.Nil(t, articles)

		var upErr *UpstreamError
		require.True(t, errors.As(err, &upErr))
		assert.Equal(t, "NewsAPI", upErr.Provider)
		assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	})

	t.Run("malformed payload becomes UpstreamError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		api := NewNewsAPI("test-key", 5*time.Second)
		api.baseURL = server.URL

		_, err := api.Search(context.Background(), "", 1, 18)
		require.Error(t, err)

		var upErr *UpstreamError
		require.True(t, errors.As(err, &upErr))
		assert.Contains(t, upErr.Error(), "decode response")
	})

	t.Run("transient 5xx retried then succeeds", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
		}))
		defer server.Close()

		api := NewNewsAPI("test-key", 5*time.Second)
		api.baseURL = server.URL

		articles, err := api.Search(context.Background(), "", 1, 18)
		require.NoError(t, err)
		assert.Empty(t, articles)
		assert.Equal(t, 2, calls)
	})

	t.Run("network failure becomes UpstreamError", func(t *testing.T) {
		api := NewNewsAPI("test-key", time.Second)
		api.baseURL = "http://127.0.0.1:1" // nothing listens here

		_, err := api.Search(context.Background(), "", 1, 18)
		require.Error(t, err)

		var upErr *UpstreamError
		require.True(t, errors.As(err, &upErr))
	})
}

func TestNewsAPI_Identity(t *testing.T) {
	api := NewNewsAPI("key", time.Second)
	assert.Equal(t, "NewsAPI", api.Name())
	assert.Equal(t, "newsapi", api.ID())
	assert.False(t, api.Scoped())
}
