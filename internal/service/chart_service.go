package service

import (
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// ChartService builds chart payloads from the current store contents on demand.
type ChartService struct {
	store  *HoldingStore
	window func() model.HistoryWindow
}

// NewChartService creates a new ChartService. window reports the history window the
// series were fetched for; it is echoed in the payload.
func NewChartService(store *HoldingStore, window func() model.HistoryWindow) *ChartService {
	return &ChartService{
		store:  store,
		window: window,
	}
}

// PortfolioChart returns one series per holding with history plus the weighted blend.
func (s *ChartService) PortfolioChart() model.PortfolioChart {
	holdings := s.store.Values()
	aligned := AlignSeries(holdings)

	chart := model.PortfolioChart{
		Labels:   aligned.Labels,
		Datasets: aligned.Series,
		Weighted: model.TickerSeries{
			Ticker: WeightedSeriesLabel,
			Points: WeightedAverage(aligned.Series, percentagesByTicker(holdings)),
		},
	}
	if s.window != nil {
		chart.Window = s.window()
	}
	return chart
}
