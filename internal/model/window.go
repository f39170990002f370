package model

import (
	"fmt"
	"time"
)

// Period is how far back the history window reaches.
type Period string

// Interval is the spacing between historical points.
type Interval string

const (
	PeriodWeek  Period = "w"
	PeriodMonth Period = "M"
	PeriodYear  Period = "y"

	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1wk"
	IntervalMonth Interval = "1mo"
)

// HistoryWindow selects the start date and interval of history fetches.
type HistoryWindow struct {
	Period   Period   `json:"period"`
	Interval Interval `json:"interval"`
}

// Validate checks both parts of the window. A one-week period with monthly points is rejected
// because it can never yield more than one point.
func (w HistoryWindow) Validate() error {
	switch w.Period {
	case PeriodWeek, PeriodMonth, PeriodYear:
	default:
		return fmt.Errorf("unsupported period %q", w.Period)
	}

	switch w.Interval {
	case IntervalDay, IntervalWeek, IntervalMonth:
	default:
		return fmt.Errorf("unsupported interval %q", w.Interval)
	}

	if w.Period == PeriodWeek && w.Interval == IntervalMonth {
		return fmt.Errorf("interval %q is not available for period %q", w.Interval, w.Period)
	}
	return nil
}

// StartDate returns now minus one period.
func (w HistoryWindow) StartDate(now time.Time) time.Time {
	switch w.Period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}
