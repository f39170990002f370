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

func TestChartHandler(t *testing.T) {
	d1 := testutil.Day(2024, 1, 1)
	setup := func(t *testing.T) (*ChartHandler, *testutil.Services) {
		t.Helper()
		mock := testutil.NewMockYahooClient().
			WithQuote("AAA", 110, 100).
			WithQuote("BBB", 50, 50).
			WithHistory("AAA", testutil.HistoryPoints(d1, 100, 110)...).
			WithHistory("BBB", testutil.HistoryPoints(d1, 50)...)
		svc := testutil.NewTestServices(t, nil, mock)
		addHolding(t, svc, "AAA", 60)
		addHolding(t, svc, "BBB", 40)
		return NewChartHandler(svc.Charts, svc.Allocation, svc.Quotes), svc
	}

	t.Run("chart includes the weighted series", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		handler.Chart(w, httptest.NewRequest(http.MethodGet, "/api/chart", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got model.PortfolioChart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, []string{"2024/01/01", "2024/01/02"}, got.Labels)
		assert.Len(t, got.Datasets, 2)
		assert.Equal(t, []model.SeriesPoint{
			{Label: "2024/01/01", Value: 80},
			{Label: "2024/01/02", Value: 66},
		}, got.Weighted.Points)
	})

	t.Run("breakdown", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		handler.Breakdown(w, httptest.NewRequest(http.MethodGet, "/api/chart/breakdown", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got []model.BreakdownSlice
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "AAA", got[0].Ticker)
		assert.Equal(t, 40.0, got[1].PortfolioPercentage)
	})

	t.Run("get window", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		handler.Window(w, httptest.NewRequest(http.MethodGet, "/api/chart/window", nil))

		var got model.HistoryWindow
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, testutil.DefaultWindow, got)
	})

	t.Run("update window refetches history", func(t *testing.T) {
		handler, svc := setup(t)
		before := len(svc.Yahoo.Calls())

		w := httptest.NewRecorder()
		handler.UpdateWindow(w, testutil.NewJSONRequest(http.MethodPut, "/api/chart/window", `{"period":"M","interval":"1d"}`, nil))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got WindowResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, model.HistoryWindow{Period: model.PeriodMonth, Interval: model.IntervalDay}, got.Window)
		assert.ElementsMatch(t, []string{"AAA", "BBB"}, got.Refresh.Updated)
		assert.Len(t, svc.Yahoo.Calls(), before+2)
	})

	t.Run("unsupported window is 400", func(t *testing.T) {
		handler, svc := setup(t)

		w := httptest.NewRecorder()
		handler.UpdateWindow(w, testutil.NewJSONRequest(http.MethodPut, "/api/chart/window", `{"period":"w","interval":"1mo"}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, testutil.DefaultWindow, svc.Quotes.Window())
	})
}
