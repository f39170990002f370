package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/middleware"
)

func TestValidateTickerMiddleware(t *testing.T) {
	run := func(ticker string) (*httptest.ResponseRecorder, string, bool) {
		var seen string
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			seen = chi.URLParam(r, "ticker")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/holdings/x", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("ticker", ticker)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		w := httptest.NewRecorder()
		middleware.ValidateTickerMiddleware(next).ServeHTTP(w, req)
		return w, seen, called
	}

	t.Run("normalises a valid ticker", func(t *testing.T) {
		w, seen, called := run("brk-b")

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "BRK-B", seen)
	})

	t.Run("rejects a malformed ticker", func(t *testing.T) {
		w, _, called := run("not a ticker")

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "invalid ticker", body["error"])
	})

	t.Run("rejects a missing ticker", func(t *testing.T) {
		w, _, called := run("")

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	req.URL.Path = "/api/holdings\r\nforged"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.NotContains(t, entry["path"], "\n")
}

func TestCORS(t *testing.T) {
	handler := middleware.NewCORS([]string{"http://localhost:3000"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
