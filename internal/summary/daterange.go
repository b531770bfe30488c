// Package summary derives the date range and per-date series published next
// to the normalized records.
package summary

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Date range errors.
var (
	ErrEmptyRecords = errors.New("no records to build a date range from")
	ErrUnsorted     = errors.New("records are not in ascending date order")
)

const (
	dayLayout   = "2006-01-02"
	labelLayout = "2006/01/02 15:04"
)

// DateRange is the gap-free run of days from the first to the last record.
type DateRange struct {
	Dates       []time.Time
	Suffix      string
	LastUpdated string
}

// BuildDateRange spans the first and last element of dates by position. The
// caller guarantees ascending order; use CheckSorted to verify it. The label
// combines the last date with the clock time of now.
func BuildDateRange(dates []time.Time, now time.Time, suffix string) (DateRange, error) {
	if len(dates) == 0 {
		return DateRange{}, ErrEmptyRecords
	}

	start := truncateDay(dates[0])
	end := truncateDay(dates[len(dates)-1])

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	last := end
	if len(days) > 0 {
		last = days[len(days)-1]
	}

	stamp := time.Date(last.Year(), last.Month(), last.Day(), now.Hour(), now.Minute(), 0, 0, time.UTC)

	return DateRange{
		Dates:       days,
		Suffix:      suffix,
		LastUpdated: stamp.Format(labelLayout),
	}, nil
}

// CheckSorted returns ErrUnsorted naming the first element that precedes its
// predecessor.
func CheckSorted(dates []time.Time) error {
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			return fmt.Errorf("%w: index %d (%s) precedes index %d (%s)", ErrUnsorted,
				i, dates[i].Format(dayLayout), i-1, dates[i-1].Format(dayLayout))
		}
	}

	return nil
}

// ParseDates parses YYYY-MM-DD values.
func ParseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))

	for i, v := range values {
		d, err := time.Parse(dayLayout, v)
		if err != nil {
			return nil, fmt.Errorf("date %d: %w", i, err)
		}

		dates = append(dates, d)
	}

	return dates, nil
}

// Len returns the number of days in the range.
func (r DateRange) Len() int {
	return len(r.Dates)
}

// Strings renders each day as YYYY-MM-DD followed by the suffix.
func (r DateRange) Strings() []string {
	return lo.Map(r.Dates, func(d time.Time, _ int) string {
		return d.Format(dayLayout) + r.Suffix
	})
}

// Days renders each day as YYYY-MM-DD.
func (r DateRange) Days() []string {
	return lo.Map(r.Dates, func(d time.Time, _ int) string {
		return d.Format(dayLayout)
	})
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
