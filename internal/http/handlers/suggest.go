package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/webseeker/server/internal/model"
	"github.com/webseeker/server/internal/suggest"
)

// SuggestHandler handles POST /api/getSimilarQuestions
type SuggestHandler struct {
	service *suggest.Service
}

// NewSuggestHandler creates a new suggestion handler
func NewSuggestHandler(service *suggest.Service) *SuggestHandler {
	return &SuggestHandler{service: service}
}

// HandleSimilarQuestions generates follow-up questions for a query.
// This endpoint never fails the caller: any error degrades to an empty array.
func (h *SuggestHandler) HandleSimilarQuestions(w http.ResponseWriter, r *http.Request) {
	var req model.SuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("similar questions: invalid request body: %v", err)
		respondJSON(w, http.StatusOK, []string{})
		return
	}

	questions, err := h.service.Generate(r.Context(), req.Question, req.Sources)
	if err != nil {
		log.Printf("error generating similar questions: %v", err)
		respondJSON(w, http.StatusOK, []string{})
		return
	}
	if questions == nil {
		questions = []string{}
	}

	respondJSON(w, http.StatusOK, questions)
}
