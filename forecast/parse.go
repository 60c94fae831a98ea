package forecast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"salesforecast/models"
)

// WeekPrefix precedes every week label ("week commencing").
const WeekPrefix = "W/C "

// weekLayout accepts one or two digit day and month and a two digit year.
const weekLayout = "2/1/06"

// Schema names the two fields every record must carry.
type Schema struct {
	WeekField  string
	SalesField string
}

// ParseWeekLabel turns "W/C 05/01/24" into 2024-01-05 UTC.
func ParseWeekLabel(label string) (time.Time, error) {
	rest, ok := strings.CutPrefix(label, WeekPrefix)
	if !ok {
		return time.Time{}, fmt.Errorf("label %q does not start with %q", label, WeekPrefix)
	}
	t, err := time.Parse(weekLayout, rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("label %q is not a DD/MM/YY date", label)
	}
	return t, nil
}

// ParseSales coerces a raw JSON value to a finite float.
// JSON numbers and strings holding a decimal number are accepted.
func ParseSales(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, errors.New("empty value")
	}

	var v float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", s)
		}
		v = f
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%s is not a number", raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v is not a finite number", v)
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// DecodeRecords validates raw records against the schema.
// A record must hold exactly the two schema fields, both non-null.
func DecodeRecords(values []map[string]models.RawValue, schema Schema) ([]models.WeeklySalesRecord, error) {
	if len(values) == 0 {
		return nil, &Error{Kind: ErrInputShape, Index: -1, Err: errors.New("values must contain at least one record")}
	}

	records := make([]models.WeeklySalesRecord, 0, len(values))
	for i, rec := range values {
		for _, key := range sortedKeys(rec) {
			if key != schema.WeekField && key != schema.SalesField {
				return nil, recordError(ErrInputShape, i, key, errors.New("unrecognized field"))
			}
		}

		rawWeek, ok := rec[schema.WeekField]
		if !ok || isNull(rawWeek) {
			return nil, recordError(ErrInputShape, i, schema.WeekField, errors.New("missing value"))
		}
		rawSales, ok := rec[schema.SalesField]
		if !ok || isNull(rawSales) {
			return nil, recordError(ErrInputShape, i, schema.SalesField, errors.New("missing value"))
		}

		var label string
		if err := json.Unmarshal(rawWeek, &label); err != nil {
			return nil, recordError(ErrInputShape, i, schema.WeekField, errors.New("week label must be a string"))
		}
		sales, err := ParseSales(rawSales)
		if err != nil {
			return nil, recordError(ErrNumeric, i, schema.SalesField, err)
		}

		records = append(records, models.WeeklySalesRecord{WeekLabel: label, Sales: sales})
	}
	return records, nil
}

// BuildSeries parses every label and returns the points sorted by date.
// Points sharing a date are kept; callers that need unique dates merge them.
func BuildSeries(records []models.WeeklySalesRecord, weekField string) ([]models.TimeSeriesPoint, error) {
	points := make([]models.TimeSeriesPoint, 0, len(records))
	for i, r := range records {
		date, err := ParseWeekLabel(r.WeekLabel)
		if err != nil {
			return nil, recordError(ErrDateParse, i, weekField, err)
		}
		points = append(points, models.TimeSeriesPoint{Date: date, Value: r.Sales})
	}
	sort.SliceStable(points, func(a, b int) bool {
		return points[a].Date.Before(points[b].Date)
	})
	return points, nil
}

// sortedKeys gives deterministic error reporting over map iteration.
func sortedKeys(m map[string]models.RawValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
