package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
)

// SuggestionHandler serves ticker suggestions for the add box.
type SuggestionHandler struct {
	suggestionService *service.SuggestionService
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(suggestionService *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// SuggestionsResponse lists suggested tickers.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggestions returns autocomplete results for q, or trending/recommended tickers without it.
//
// Endpoint: GET /api/suggestions?q=ms
// Response: 200 OK with SuggestionsResponse
// Error: 502 Bad Gateway if the lookup failed
func (h *SuggestionHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.suggestionService.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.RespondServiceError(w, err, "failed to load suggestions")
		return
	}

	response.RespondJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: symbols})
}
