package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/testutil"
)

func TestSuggestionHandler(t *testing.T) {
	t.Run("search results", func(t *testing.T) {
		mock := testutil.NewMockYahooClient()
		mock.SearchResults = []string{"MSFT", "MSTR"}
		svc := testutil.NewTestServices(t, nil, mock)
		handler := NewSuggestionHandler(svc.Suggestions)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/suggestions", map[string]string{"q": "ms"})
		w := httptest.NewRecorder()
		handler.Suggestions(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got SuggestionsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, []string{"MSFT", "MSTR"}, got.Suggestions)
	})

	t.Run("empty results encode as an empty array", func(t *testing.T) {
		svc := testutil.NewTestServices(t, nil, nil)
		handler := NewSuggestionHandler(svc.Suggestions)

		w := httptest.NewRecorder()
		handler.Suggestions(w, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())
	})

	t.Run("lookup failure is 502", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithError(errors.New("timeout"))
		svc := testutil.NewTestServices(t, nil, mock)
		handler := NewSuggestionHandler(svc.Suggestions)

		w := httptest.NewRecorder()
		handler.Suggestions(w, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
