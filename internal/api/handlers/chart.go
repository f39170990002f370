package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/validation"
)

// ChartHandler handles chart-related HTTP requests
type ChartHandler struct {
	chartService      *service.ChartService
	allocationService *service.AllocationService
	quoteService      *service.QuoteService
}

// NewChartHandler creates a new ChartHandler
func NewChartHandler(
	chartService *service.ChartService,
	allocationService *service.AllocationService,
	quoteService *service.QuoteService,
) *ChartHandler {
	return &ChartHandler{
		chartService:      chartService,
		allocationService: allocationService,
		quoteService:      quoteService,
	}
}

// WindowResponse is returned after the history window changed.
type WindowResponse struct {
	Window  model.HistoryWindow `json:"window"`
	Refresh model.RefreshResult `json:"refresh"`
}

// Chart returns the aligned price series and their weighted average.
//
// Endpoint: GET /api/chart
// Response: 200 OK with PortfolioChart
func (h *ChartHandler) Chart(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.chartService.PortfolioChart())
}

// Breakdown returns the allocation slices of the portfolio.
//
// Endpoint: GET /api/chart/breakdown
// Response: 200 OK with array of BreakdownSlice
func (h *ChartHandler) Breakdown(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.allocationService.Breakdown())
}

// Window returns the current history window.
//
// Endpoint: GET /api/chart/window
// Response: 200 OK with HistoryWindow
func (h *ChartHandler) Window(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.quoteService.Window())
}

// UpdateWindow changes the history window and refetches history for every holding.
// An omitted part keeps its current value.
//
// Endpoint: PUT /api/chart/window
// Request Body: UpdateWindowRequest (period, interval)
// Response: 200 OK with WindowResponse
// Error: 400 Bad Request if the combination is not supported
func (h *ChartHandler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateWindowRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	window, err := validation.ParseWindow(req.Period, req.Interval, h.quoteService.Window())
	if err != nil {
		response.RespondServiceError(w, err, "failed to update window")
		return
	}

	result, err := h.quoteService.SetWindow(r.Context(), window)
	if err != nil {
		response.RespondServiceError(w, err, "failed to update window")
		return
	}

	response.RespondJSON(w, http.StatusOK, WindowResponse{Window: window, Refresh: result})
}
