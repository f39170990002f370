package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/config"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
)

// Services are the engine services exposed over HTTP.
type Services struct {
	System      *service.SystemService
	Quotes      *service.QuoteService
	Allocation  *service.AllocationService
	Charts      *service.ChartService
	Suggestions *service.SuggestionService
	Share       *service.ShareService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/holdings", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(svc.Quotes, svc.Allocation)
			r.Get("/", holdingHandler.Holdings)
			r.Post("/", holdingHandler.AddHolding)
			r.Post("/refresh", holdingHandler.RefreshQuotes)
			r.Post("/import", holdingHandler.ImportAllocations)

			r.Route("/{ticker}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateTickerMiddleware)
				r.Get("/", holdingHandler.GetHolding)
				r.Delete("/", holdingHandler.DeleteHolding)
				r.Post("/quote", holdingHandler.UpdateQuote)
				r.Put("/percentage", holdingHandler.UpdatePercentage)
				r.Get("/available", holdingHandler.AvailablePercentage)
			})
		})

		r.Route("/chart", func(r chi.Router) {
			chartHandler := handlers.NewChartHandler(svc.Charts, svc.Allocation, svc.Quotes)
			r.Get("/", chartHandler.Chart)
			r.Get("/breakdown", chartHandler.Breakdown)
			r.Get("/window", chartHandler.Window)
			r.Put("/window", chartHandler.UpdateWindow)
		})

		r.Get("/suggestions", handlers.NewSuggestionHandler(svc.Suggestions).Suggestions)

		r.Route("/share", func(r chi.Router) {
			shareHandler := handlers.NewShareHandler(svc.Share)
			r.Post("/", shareHandler.Create)
			r.Get("/{handle}", shareHandler.Resolve)
			r.Post("/{handle}/import", shareHandler.Import)
		})
	})

	return r
}
