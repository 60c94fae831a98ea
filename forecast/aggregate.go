package forecast

import (
	"sort"
	"time"

	"salesforecast/models"
)

// Step is the spacing of the weekly series.
const Step = 7 * 24 * time.Hour

// AggregateQuarterly sums points per calendar quarter, ascending by quarter.
func AggregateQuarterly(points []models.TimeSeriesPoint) []models.QuarterlyAggregate {
	sums := sumByQuarter(points)
	out := make([]models.QuarterlyAggregate, 0, len(sums))
	for _, q := range sortedQuarters(sums) {
		out = append(out, models.QuarterlyAggregate{Quarter: q, TotalSales: sums[q]})
	}
	return out
}

// ResampleQuarterly sums predicted points per quarter, keyed by quarter start
// date. Quarters that are not after observed are left out, so a bucket only
// holds a complete quarter of weekly predictions.
func ResampleQuarterly(points []models.TimeSeriesPoint, observed models.Quarter) []models.ForecastPoint {
	sums := sumByQuarter(points)
	out := make([]models.ForecastPoint, 0, len(sums))
	for _, q := range sortedQuarters(sums) {
		if !observed.Before(q) {
			continue
		}
		out = append(out, models.ForecastPoint{
			QuarterStartDate: models.Date(q.Start()),
			PredictedSales:   sums[q],
		})
	}
	return out
}

// HorizonEnd returns the last day of the forecast horizon: the nth quarter
// after the quarter holding last.
func HorizonEnd(last time.Time, n int) time.Time {
	q := models.QuarterOf(last).Next()
	for i := 1; i < n; i++ {
		q = q.Next()
	}
	return q.End()
}

// FutureDates lists the weekly dates after last up to and including HorizonEnd.
// The model needs every step, so dates left in the quarter of last come first;
// the rest cover exactly n full quarters.
func FutureDates(last time.Time, n int) []time.Time {
	if n < 1 {
		return nil
	}
	end := HorizonEnd(last, n)
	var dates []time.Time
	for d := last.Add(Step); !d.After(end); d = d.Add(Step) {
		dates = append(dates, d)
	}
	return dates
}

// MergeByDate sums values of points that share a date. Input must be sorted.
func MergeByDate(points []models.TimeSeriesPoint) []models.TimeSeriesPoint {
	out := make([]models.TimeSeriesPoint, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1].Value += p.Value
			continue
		}
		out = append(out, p)
	}
	return out
}

func sumByQuarter(points []models.TimeSeriesPoint) map[models.Quarter]float64 {
	sums := make(map[models.Quarter]float64)
	for _, p := range points {
		sums[models.QuarterOf(p.Date)] += p.Value
	}
	return sums
}

func sortedQuarters(sums map[models.Quarter]float64) []models.Quarter {
	qs := make([]models.Quarter, 0, len(sums))
	for q := range sums {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].Before(qs[j]) })
	return qs
}
