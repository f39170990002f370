package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
)

// tickerPattern accepts exchange suffixes, share classes and index/currency symbols (BRK-B, ASML.AS, ^GSPC, EURUSD=X).
var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// NormalizeTicker trims and upper-cases raw and checks it against the ticker pattern.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return "", fmt.Errorf("%w: ticker is required", apperrors.ErrInvalidTicker)
	}
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrInvalidTicker, raw)
	}
	return ticker, nil
}

// ParsePercentage reads an allocation entry typed by the user.
//
// Surrounding quotes and whitespace are ignored; an empty entry is 0. Non-numeric text is
// rejected with apperrors.ErrInvalidAllocationInput while editing, and read as 0 on commit.
// Range clamping is left to the allocation service.
func ParsePercentage(raw string, commit bool) (float64, error) {
	text := strings.Trim(strings.TrimSpace(raw), `"`)
	if text == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		if commit {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidAllocationInput, raw)
	}
	return value, nil
}

// ParsePortfolioValue reads the total portfolio value from a query parameter.
// An empty value is 0.
func ParsePortfolioValue(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, &Error{Fields: map[string]string{"portfolioValue": "must be a non-negative number"}}
	}
	return value, nil
}

// ParseWindow builds a history window from raw period and interval values.
// An empty part falls back to the matching part of current.
func ParseWindow(period, interval string, current model.HistoryWindow) (model.HistoryWindow, error) {
	window := current
	if p := strings.TrimSpace(period); p != "" {
		window.Period = model.Period(p)
	}
	if i := strings.TrimSpace(interval); i != "" {
		window.Interval = model.Interval(i)
	}

	if err := window.Validate(); err != nil {
		return model.HistoryWindow{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidWindow, err)
	}
	return window, nil
}
