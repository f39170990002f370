package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/testutil"
)

func TestShareHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mock := testutil.NewMockYahooClient().WithQuote("VTI", 250, 248).WithQuote("BND", 72, 72)

	source := testutil.NewTestServices(t, db, mock)
	addHolding(t, source, "VTI", 60)
	addHolding(t, source, "BND", 40)
	sourceHandler := NewShareHandler(source.Share)

	w := httptest.NewRecorder()
	sourceHandler.Create(w, httptest.NewRequest(http.MethodPost, "/api/share", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var link ShareLinkResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&link))
	require.NotEmpty(t, link.Handle)

	t.Run("resolve", func(t *testing.T) {
		w := httptest.NewRecorder()
		sourceHandler.Resolve(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/share/"+link.Handle, map[string]string{"handle": link.Handle}))

		require.Equal(t, http.StatusOK, w.Code)
		var got SharedAllocationsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, []model.AllocationEntry{
			{Ticker: "VTI", PortfolioPercentage: 60},
			{Ticker: "BND", PortfolioPercentage: 40},
		}, got.Allocations)
	})

	t.Run("import into another session", func(t *testing.T) {
		target := testutil.NewTestServices(t, db, mock)
		handler := NewShareHandler(target.Share)

		w := httptest.NewRecorder()
		handler.Import(w, testutil.NewRequestWithURLParams(http.MethodPost, "/api/share/"+link.Handle+"/import", map[string]string{"handle": link.Handle}))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"VTI", "BND"}, target.Store.Tickers())
	})

	t.Run("unknown handle is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		handle := testutil.MakeID()
		sourceHandler.Resolve(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/share/"+handle, map[string]string{"handle": handle}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
