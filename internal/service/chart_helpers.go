package service

import (
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// ChartLabelLayout is the day-precision label format shared by every series.
const ChartLabelLayout = "2006/01/02"

// WeightedSeriesLabel names the blended series in chart payloads.
const WeightedSeriesLabel = "Weighted Avg"

// AlignSeries converts the history of each holding into a chart series and picks the label axis.
//
// Holdings without history are left out. Every point is labelled by its UTC date and its close is
// rounded to two decimals. The axis is the label sequence of the longest series, the first one
// winning a tie; shorter series are not padded. With no history at all the axis is empty.
func AlignSeries(holdings []model.Holding) model.AlignedSeries {
	aligned := model.AlignedSeries{
		Labels: []string{},
		Series: []model.TickerSeries{},
	}

	longest := -1
	for _, h := range holdings {
		if !h.HasHistory() {
			continue
		}

		points := make([]model.SeriesPoint, len(h.HistoricalData))
		for i, p := range h.HistoricalData {
			points[i] = model.SeriesPoint{
				Label: p.Date.UTC().Format(ChartLabelLayout),
				Value: round2(p.Close),
			}
		}

		aligned.Series = append(aligned.Series, model.TickerSeries{
			Ticker:       h.Ticker,
			DisplayColor: h.DisplayColor,
			Points:       points,
		})

		if len(points) > longest {
			longest = len(points)
			labels := make([]string, len(points))
			for i, p := range points {
				labels[i] = p.Label
			}
			aligned.Labels = labels
		}
	}

	return aligned
}

// WeightedAverage blends the series into one by summing value * pct / 100 per label.
//
// Each series contributes only at its own labels. Labels missing from some series are not
// renormalised, so the blend dips at the edges of short series. Series whose ticker has no
// weight are skipped. Points come out in first-seen label order, rounded to two decimals.
func WeightedAverage(series []model.TickerSeries, weights map[string]float64) []model.SeriesPoint {
	sums := make(map[string]float64)
	order := []string{}

	for _, s := range series {
		pct, ok := weights[s.Ticker]
		if !ok {
			continue
		}
		for _, p := range s.Points {
			if _, seen := sums[p.Label]; !seen {
				order = append(order, p.Label)
			}
			sums[p.Label] += p.Value * pct / 100
		}
	}

	out := make([]model.SeriesPoint, len(order))
	for i, label := range order {
		out[i] = model.SeriesPoint{Label: label, Value: round2(sums[label])}
	}
	return out
}

// percentagesByTicker maps each holding to its allocation.
func percentagesByTicker(holdings []model.Holding) map[string]float64 {
	weights := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		weights[h.Ticker] = h.PortfolioPercentage
	}
	return weights
}
