package models

import (
	"fmt"
	"time"
)

// ForecastRequest is the body of POST /forecast.
// Each entry of Values is one weekly record keyed by the configured field names;
// records stay raw here so the forecast package can validate them field by field.
type ForecastRequest struct {
	Values []map[string]RawValue `json:"values"`
}

// WeeklySalesRecord is one validated input row.
type WeeklySalesRecord struct {
	WeekLabel string
	Sales     float64
}

// TimeSeriesPoint is a dated observation, either observed or predicted.
type TimeSeriesPoint struct {
	Date  time.Time
	Value float64
}

// Quarter identifies a calendar quarter.
type Quarter struct {
	Year int
	Q    int // 1..4
}

// QuarterOf returns the calendar quarter containing t.
func QuarterOf(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Q: (int(t.Month())-1)/3 + 1}
}

// Start returns the first day of the quarter (UTC midnight).
func (q Quarter) Start() time.Time {
	return time.Date(q.Year, time.Month((q.Q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the quarter (UTC midnight).
func (q Quarter) End() time.Time {
	return q.Next().Start().AddDate(0, 0, -1)
}

// Next returns the following quarter.
func (q Quarter) Next() Quarter {
	if q.Q == 4 {
		return Quarter{Year: q.Year + 1, Q: 1}
	}
	return Quarter{Year: q.Year, Q: q.Q + 1}
}

// Before reports whether q is earlier than o.
func (q Quarter) Before(o Quarter) bool {
	if q.Year != o.Year {
		return q.Year < o.Year
	}
	return q.Q < o.Q
}

// String formats the quarter as 2024Q1.
func (q Quarter) String() string {
	return fmt.Sprintf("%dQ%d", q.Year, q.Q)
}

// MarshalText lets Quarter serialize as "2024Q1" in JSON.
func (q Quarter) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText parses the "2024Q1" form.
func (q *Quarter) UnmarshalText(b []byte) error {
	var year, n int
	if _, err := fmt.Sscanf(string(b), "%dQ%d", &year, &n); err != nil || n < 1 || n > 4 {
		return fmt.Errorf("invalid quarter %q", string(b))
	}
	q.Year, q.Q = year, n
	return nil
}

// QuarterlyAggregate is the summed historical sales of one quarter.
type QuarterlyAggregate struct {
	Quarter    Quarter `json:"quarter"`
	TotalSales float64 `json:"total_sales"`
}

// ForecastPoint is the summed predicted sales of one future quarter.
type ForecastPoint struct {
	QuarterStartDate Date    `json:"quarter_start_date"`
	PredictedSales   float64 `json:"predicted_sales"`
}

// ForecastResponse is the successful response of POST /forecast.
type ForecastResponse struct {
	Historical        []QuarterlyAggregate `json:"historical"`
	QuarterlyForecast []ForecastPoint      `json:"quarterly_forecast"`
}

// Date is a calendar date serialized as 2006-01-02.
type Date time.Time

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

func (d Date) MarshalText() ([]byte, error) {
	return []byte(time.Time(d).Format(DateLayout)), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(DateLayout, string(b))
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

// Time returns d as a time.Time.
func (d Date) Time() time.Time {
	return time.Time(d)
}
