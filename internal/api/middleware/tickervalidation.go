// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/validation"
)

// ValidateTickerMiddleware validates the ticker URL parameter and replaces it with its
// normalised, upper-cased form so handlers can use chi.URLParam directly.
// Returns 400 Bad Request if the ticker is missing or malformed.
//
// Example usage in router:
//
//	r.Route("/{ticker}", func(r chi.Router) {
//	    r.Use(middleware.ValidateTickerMiddleware)
//	    r.Get("/", handler.GetHolding)
//	    r.Delete("/", handler.DeleteHolding)
//	})
func ValidateTickerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "ticker")

		if raw == "" {
			response.RespondError(w, http.StatusBadRequest, "valid ticker is required", "")
			return
		}

		ticker, err := validation.NormalizeTicker(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
			return
		}

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if key == "ticker" {
					rctx.URLParams.Values[i] = ticker
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}
