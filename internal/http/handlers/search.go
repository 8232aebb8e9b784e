package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/webseeker/server/internal/model"
)

// Searcher is the slice of the search client this handler needs
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]model.Source, error)
}

// SearchHandler handles POST /api/search
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// searchRequest is the request body for POST /api/search
type searchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults,omitempty"`
}

// HandleSearch proxies a search query to the retrieval provider and returns
// {title, content} source records for the suggestion endpoint.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Query is required.")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		respondMessage(w, http.StatusBadRequest, "Query is required.")
		return
	}

	sources, err := h.searcher.Search(r.Context(), req.Query, req.NumResults)
	if err != nil {
		log.Printf("search failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to search",
			"details": err.Error(),
		})
		return
	}
	if sources == nil {
		sources = []model.Source{}
	}

	respondJSON(w, http.StatusOK, sources)
}
