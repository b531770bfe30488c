package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDate is returned for a cell that does not hold a month/day date.
var ErrInvalidDate = errors.New("invalid date")

var (
	monthDayPattern  = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日`)
	testedDayPattern = regexp.MustCompile(`(\d+月\d+日)\(\S+\)$`)
	weekdayNames     = [...]string{"日", "月", "火", "水", "木", "金", "土"}
)

// ParseMonthDay parses "<m>月<d>日" (optionally followed by a weekday) as a
// date in year. Input must already be width-folded.
func ParseMonthDay(s string, year int) (time.Time, error) {
	m := monthDayPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, s)
	}

	return d, nil
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}

// FormatReleaseDate renders d as YYYY-MM-DD followed by suffix.
func FormatReleaseDate(d time.Time, suffix string) string {
	return FormatDate(d) + suffix
}

// FormatShortDate renders d as MM/DD.
func FormatShortDate(d time.Time) string {
	return d.Format("01/02")
}

// Weekday returns the one-character Japanese weekday of d.
func Weekday(d time.Time) string {
	return weekdayNames[d.Weekday()]
}
