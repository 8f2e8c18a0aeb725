package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fnilvuwu/newshub/pkg/domain"
)

// newsHandler serves the aggregated article listing.
// GET /api/news?search=<string>&page=<int>&sources=<comma-separated ids>
func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// malformed parameters fall back to safe defaults instead of rejecting
	page := 1
	if pageStr := q.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	req := domain.PageRequest{
		Search:  strings.TrimSpace(q.Get("search")),
		Page:    page,
		Sources: parseSources(q.Get("sources")),
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")

	resp, err := s.news.Fetch(r.Context(), req)
	if err != nil {
		log.Printf("[ERROR] news aggregation failed: %v", err)
		renderJSON(w, r, http.StatusInternalServerError, domain.NewsResponse{
			Articles: []domain.Article{},
			Status:   domain.StatusError,
			Error:    "Failed to fetch news",
			Message:  err.Error(),
		})
		return
	}

	renderJSON(w, r, http.StatusOK, resp)
}

// newsOptionsHandler answers CORS preflight requests
func (s *Server) newsOptionsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

// parseSources splits a comma-separated source list, dropping empty entries
func parseSources(raw string) []string {
	if raw == "" {
		return nil
	}
	var sources []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			sources = append(sources, id)
		}
	}
	return sources
}
