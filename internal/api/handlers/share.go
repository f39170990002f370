package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
)

// ShareHandler handles share link requests
type ShareHandler struct {
	shareService *service.ShareService
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// ShareLinkResponse carries a new share handle.
type ShareLinkResponse struct {
	Handle string `json:"handle"`
}

// SharedAllocationsResponse lists the allocations behind a handle.
type SharedAllocationsResponse struct {
	Handle      string                  `json:"handle"`
	Allocations []model.AllocationEntry `json:"allocations"`
}

// Create encodes the current allocations into a share handle.
//
// Endpoint: POST /api/share
// Response: 201 Created with ShareLinkResponse
// Error: 500 Internal Server Error if the handle could not be stored
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	handle, err := h.shareService.Create(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, "failed to create share link")
		return
	}

	response.RespondJSON(w, http.StatusCreated, ShareLinkResponse{Handle: handle})
}

// Resolve returns the allocations behind a handle without importing them.
//
// Endpoint: GET /api/share/{handle}
// Response: 200 OK with SharedAllocationsResponse
// Error: 404 Not Found if the handle is unknown, invalid or expired
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	entries, err := h.shareService.Resolve(r.Context(), handle)
	if err != nil {
		response.RespondServiceError(w, err, "failed to resolve share link")
		return
	}

	response.RespondJSON(w, http.StatusOK, SharedAllocationsResponse{Handle: handle, Allocations: entries})
}

// Import adds every allocation behind a handle to the portfolio.
//
// Endpoint: POST /api/share/{handle}/import
// Response: 200 OK with RefreshResult
// Error: 404 Not Found if the handle is unknown, invalid or expired
func (h *ShareHandler) Import(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	result, err := h.shareService.Import(r.Context(), handle)
	if err != nil {
		response.RespondServiceError(w, err, "failed to import share link")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
