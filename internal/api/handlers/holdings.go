package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/validation"
)

// HoldingHandler handles HTTP requests for holding endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the quote and allocation services.
type HoldingHandler struct {
	quoteService      *service.QuoteService
	allocationService *service.AllocationService
}

// NewHoldingHandler creates a new HoldingHandler with the provided service dependencies.
func NewHoldingHandler(quoteService *service.QuoteService, allocationService *service.AllocationService) *HoldingHandler {
	return &HoldingHandler{
		quoteService:      quoteService,
		allocationService: allocationService,
	}
}

// AvailablePercentageResponse is the advisory input cap of a ticker.
type AvailablePercentageResponse struct {
	Ticker              string  `json:"ticker"`
	AvailablePercentage float64 `json:"availablePercentage"`
}

// Holdings handles GET requests to list every holding with its derived metrics.
//
// Endpoint: GET /api/holdings?portfolioValue=10000
// Response: 200 OK with PortfolioOverview
// Error: 400 Bad Request if portfolioValue is not a non-negative number
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	value, err := validation.ParsePortfolioValue(r.URL.Query().Get("portfolioValue"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.allocationService.Overview(value))
}

// AddHolding handles POST requests to add a ticker to the portfolio.
// The quote is fetched first; history follows before the response is written.
//
// Endpoint: POST /api/holdings
// Request Body: AddHoldingRequest (ticker, portfolioPercentage, upsert)
// Response: 201 Created with Holding
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the quote source does not know the ticker
// Error: 409 Conflict if the ticker is already held and upsert is false
func (h *HoldingHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ticker, err := validation.ValidateAddHolding(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding, err := h.quoteService.AddQuote(r.Context(), ticker, req.PortfolioPercentage, req.Upsert)
	if err != nil {
		response.RespondServiceError(w, err, "failed to add holding")
		return
	}

	response.RespondJSON(w, http.StatusCreated, holding)
}

// ImportAllocations handles POST requests to restore a list of ticker + percentage pairs.
// Each entry is added as an upsert; failures are reported per ticker.
//
// Endpoint: POST /api/holdings/import
// Request Body: ImportAllocationsRequest
// Response: 200 OK with RefreshResult
// Error: 400 Bad Request if the list is empty or holds an invalid ticker
func (h *HoldingHandler) ImportAllocations(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ImportAllocationsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	items, err := validation.ValidateImportAllocations(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entries := make([]model.AllocationEntry, len(items))
	for i, item := range items {
		entries[i] = model.AllocationEntry{Ticker: item.Ticker, PortfolioPercentage: item.PortfolioPercentage}
	}

	response.RespondJSON(w, http.StatusOK, h.quoteService.ImportAllocations(r.Context(), entries))
}

// RefreshQuotes handles POST requests to refresh the prices of every holding.
//
// Endpoint: POST /api/holdings/refresh
// Response: 200 OK with RefreshResult
func (h *HoldingHandler) RefreshQuotes(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.quoteService.UpdateAllQuotes(r.Context()))
}

// GetHolding handles GET requests to retrieve a single holding.
//
// Endpoint: GET /api/holdings/{ticker}?portfolioValue=10000
// Response: 200 OK with HoldingView
// Error: 400 Bad Request if ticker is invalid (validated by middleware)
// Error: 404 Not Found if the ticker is not held
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	value, err := validation.ParsePortfolioValue(r.URL.Query().Get("portfolioValue"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	view, ok := h.allocationService.View(ticker, value)
	if !ok {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), ticker)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// DeleteHolding handles DELETE requests to remove a holding.
// With refresh=true the history of the remaining holdings is refetched afterwards.
//
// Endpoint: DELETE /api/holdings/{ticker}?refresh=true
// Response: 204 No Content, or 200 OK with RefreshResult when refresh is requested
// Error: 400 Bad Request if refresh is not a boolean
// Error: 404 Not Found if the ticker is not held
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	refresh := false
	if raw := strings.TrimSpace(r.URL.Query().Get("refresh")); raw != "" {
		var err error
		if refresh, err = strconv.ParseBool(raw); err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", "refresh must be a boolean")
			return
		}
	}

	if !h.quoteService.DeleteHolding(r.Context(), ticker) {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), ticker)
		return
	}

	if !refresh {
		response.RespondJSON(w, http.StatusNoContent, nil)
		return
	}

	result := h.quoteService.RefreshAllHistory(r.Context(), h.quoteService.Window(), ticker)
	response.RespondJSON(w, http.StatusOK, result)
}

// UpdateQuote handles POST requests to refresh the price of one holding.
//
// Endpoint: POST /api/holdings/{ticker}/quote
// Response: 200 OK with HoldingView
// Error: 404 Not Found if the ticker is not held
// Error: 502 Bad Gateway if the quote could not be fetched
func (h *HoldingHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	if _, err := h.quoteService.UpdateQuote(r.Context(), ticker); err != nil {
		response.RespondServiceError(w, err, "failed to update quote")
		return
	}

	view, ok := h.allocationService.View(ticker, 0)
	if !ok {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), ticker)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// UpdatePercentage handles PUT requests to change the allocation of one holding.
// The raw entry may be a number or the text of the input box; commit marks the end of the edit.
//
// Endpoint: PUT /api/holdings/{ticker}/percentage
// Request Body: UpdatePercentageRequest (portfolioPercentage, commit)
// Response: 200 OK with HoldingView
// Error: 400 Bad Request if the entry is not a number while editing
// Error: 404 Not Found if the ticker is not held
func (h *HoldingHandler) UpdatePercentage(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	req, err := parseJSON[request.UpdatePercentageRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	raw := strings.TrimSpace(string(req.PortfolioPercentage))
	if raw == "null" {
		raw = ""
	}

	percent, err := validation.ParsePercentage(raw, req.Commit)
	if err != nil {
		response.RespondServiceError(w, err, "failed to update percentage")
		return
	}

	updated, err := h.allocationService.UpdatePercentage(r.Context(), ticker, percent, req.Commit)
	if err != nil {
		response.RespondServiceError(w, err, "failed to update percentage")
		return
	}
	if !updated {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), ticker)
		return
	}

	view, _ := h.allocationService.View(ticker, 0)
	response.RespondJSON(w, http.StatusOK, view)
}

// AvailablePercentage handles GET requests for the input cap of a ticker.
// A ticker that is not held gets the unallocated remainder.
//
// Endpoint: GET /api/holdings/{ticker}/available
// Response: 200 OK with AvailablePercentageResponse
func (h *HoldingHandler) AvailablePercentage(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	response.RespondJSON(w, http.StatusOK, AvailablePercentageResponse{
		Ticker:              ticker,
		AvailablePercentage: h.allocationService.AvailablePercentage(ticker),
	})
}
