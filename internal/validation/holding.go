package validation

import (
	"math"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/request"
)

const percentageRangeMessage = "portfolioPercentage must be between 0 and 100"

func validPercentage(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// ValidateAddHolding checks the add request and returns the normalised ticker.
func ValidateAddHolding(req request.AddHoldingRequest) (string, error) {
	errors := make(map[string]string)

	ticker, err := NormalizeTicker(req.Ticker)
	if err != nil {
		errors["ticker"] = err.Error()
	}

	if !validPercentage(req.PortfolioPercentage) {
		errors["portfolioPercentage"] = percentageRangeMessage
	}

	if len(errors) > 0 {
		return "", &Error{Fields: errors}
	}
	return ticker, nil
}

// ValidateImportAllocations checks every entry of an import and returns them with normalised tickers.
func ValidateImportAllocations(req request.ImportAllocationsRequest) ([]request.AllocationItem, error) {
	if len(req.Allocations) == 0 {
		return nil, &Error{Fields: map[string]string{"allocations": "allocations cannot be empty"}}
	}

	errors := make(map[string]string)
	out := make([]request.AllocationItem, 0, len(req.Allocations))
	for _, item := range req.Allocations {
		ticker, err := NormalizeTicker(item.Ticker)
		if err != nil {
			errors[item.Ticker] = err.Error()
			continue
		}
		if !validPercentage(item.PortfolioPercentage) {
			errors[ticker] = percentageRangeMessage
			continue
		}
		out = append(out, request.AllocationItem{Ticker: ticker, PortfolioPercentage: item.PortfolioPercentage})
	}

	if len(errors) > 0 {
		return nil, &Error{Fields: errors}
	}
	return out, nil
}
