package summary

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/samber/lo"

	"covidfeed/internal/models"
)

// FillPolicy decides what CountByDate emits for days without records.
type FillPolicy int

const (
	// Sparse omits days without records.
	Sparse FillPolicy = iota
	// Dense emits a zero bucket for days without records.
	Dense
)

// Summary errors.
var (
	ErrInvalidFillPolicy = errors.New("invalid summary fill policy")
	ErrDuplicateDate     = errors.New("duplicate date")
)

var labelPattern = regexp.MustCompile(`(\d+)-(\d+)-(\d+)`)

// ParseFillPolicy maps "sparse" (or "") and "dense" to a FillPolicy.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch s {
	case "", "sparse":
		return Sparse, nil
	case "dense":
		return Dense, nil
	}

	return Sparse, fmt.Errorf("%w: %q", ErrInvalidFillPolicy, s)
}

func (p FillPolicy) String() string {
	if p == Dense {
		return "dense"
	}

	return "sparse"
}

// CountByDate counts the records falling on each day of rng.
func CountByDate(dates []time.Time, rng DateRange, policy FillPolicy) []models.SummaryBucket {
	counts := lo.CountValuesBy(dates, func(d time.Time) string {
		return d.Format(dayLayout)
	})

	buckets := make([]models.SummaryBucket, 0, rng.Len())

	for _, day := range rng.Days() {
		n, ok := counts[day]
		if !ok && policy == Sparse {
			continue
		}

		buckets = append(buckets, models.SummaryBucket{
			Date:  day + rng.Suffix,
			Count: n,
		})
	}

	return buckets
}

// SummarizeInspections builds the parallel inspection series and their MM/DD
// labels for every day of rng present in records.
func SummarizeInspections(records []models.InspectionRecord, rng DateRange) (models.InspectionSeries, []string, error) {
	byDate := make(map[string]models.InspectionRecord, len(records))

	for _, r := range records {
		if _, ok := byDate[r.Date]; ok {
			return models.InspectionSeries{}, nil, fmt.Errorf("%w: %s", ErrDuplicateDate, r.Date)
		}

		byDate[r.Date] = r
	}

	series := models.InspectionSeries{Inspections: []int{}, Positives: []int{}}
	labels := []string{}

	for _, day := range rng.Days() {
		r, ok := byDate[day]
		if !ok {
			continue
		}

		m := labelPattern.FindStringSubmatch(r.Date)
		if m == nil {
			return models.InspectionSeries{}, nil, fmt.Errorf("label for %q: unexpected date format", r.Date)
		}

		series.Inspections = append(series.Inspections, r.Inspections)
		series.Positives = append(series.Positives, r.Positives)
		labels = append(labels, m[2]+"/"+m[3])
	}

	return series, labels, nil
}
