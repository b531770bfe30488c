package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidfeed/internal/models"
)

const jst = "T00:00:00+09:00"

func day(s string) time.Time {
	d, err := time.Parse(dayLayout, s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestBuildDateRange(t *testing.T) {
	now := time.Date(2020, 3, 5, 18, 42, 7, 0, time.UTC)

	rng, err := BuildDateRange([]time.Time{day("2020-01-10"), day("2020-01-12")}, now, jst)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2020-01-10T00:00:00+09:00",
		"2020-01-11T00:00:00+09:00",
		"2020-01-12T00:00:00+09:00",
	}, rng.Strings())
	assert.Equal(t, "2020/01/12 18:42", rng.LastUpdated)
}

func TestBuildDateRange_GapFree(t *testing.T) {
	dates := []time.Time{day("2020-02-27"), day("2020-02-28"), day("2020-03-02")}

	rng, err := BuildDateRange(dates, time.Now(), jst)
	require.NoError(t, err)

	days := int(dates[2].Sub(dates[0]).Hours()/24) + 1
	require.Equal(t, days, rng.Len())

	for i := 1; i < rng.Len(); i++ {
		assert.Equal(t, rng.Dates[i-1].AddDate(0, 0, 1), rng.Dates[i])
	}

	assert.Contains(t, rng.Days(), "2020-02-29")
}

func TestBuildDateRange_UsesPosition(t *testing.T) {
	// Middle elements do not widen the range.
	dates := []time.Time{day("2020-01-10"), day("2020-01-01"), day("2020-01-11")}

	rng, err := BuildDateRange(dates, time.Now(), jst)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-01-10", "2020-01-11"}, rng.Days())
}

func TestBuildDateRange_Empty(t *testing.T) {
	_, err := BuildDateRange(nil, time.Now(), jst)
	assert.ErrorIs(t, err, ErrEmptyRecords)
}

func TestCheckSorted(t *testing.T) {
	assert.NoError(t, CheckSorted([]time.Time{day("2020-01-01"), day("2020-01-01"), day("2020-01-02")}))

	err := CheckSorted([]time.Time{day("2020-01-02"), day("2020-01-01")})
	require.ErrorIs(t, err, ErrUnsorted)
	assert.Contains(t, err.Error(), "index 1")
}

func TestParseDates(t *testing.T) {
	dates, err := ParseDates([]string{"2020-01-10", "2020-01-12"})
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	_, err = ParseDates([]string{"2020-01-10", "01/12"})
	assert.Error(t, err)
}

func TestCountByDate(t *testing.T) {
	dates := []time.Time{day("2020-01-10"), day("2020-01-12")}

	rng, err := BuildDateRange(dates, time.Now(), jst)
	require.NoError(t, err)

	t.Run("sparse", func(t *testing.T) {
		got := CountByDate(dates, rng, Sparse)
		assert.Equal(t, []models.SummaryBucket{
			{Date: "2020-01-10T00:00:00+09:00", Count: 1},
			{Date: "2020-01-12T00:00:00+09:00", Count: 1},
		}, got)
	})

	t.Run("dense", func(t *testing.T) {
		got := CountByDate(dates, rng, Dense)
		assert.Equal(t, []models.SummaryBucket{
			{Date: "2020-01-10T00:00:00+09:00", Count: 1},
			{Date: "2020-01-11T00:00:00+09:00", Count: 0},
			{Date: "2020-01-12T00:00:00+09:00", Count: 1},
		}, got)
	})
}

func TestCountByDate_Grouped(t *testing.T) {
	dates := []time.Time{day("2020-02-01"), day("2020-02-01"), day("2020-02-01"), day("2020-02-02")}

	rng, err := BuildDateRange(dates, time.Now(), "T08:00:00.000Z")
	require.NoError(t, err)

	got := CountByDate(dates, rng, Sparse)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, "2020-02-02T08:00:00.000Z", got[1].Date)
}

func TestParseFillPolicy(t *testing.T) {
	p, err := ParseFillPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Sparse, p)

	p, err = ParseFillPolicy("dense")
	require.NoError(t, err)
	assert.Equal(t, "dense", p.String())

	_, err = ParseFillPolicy("zero")
	assert.ErrorIs(t, err, ErrInvalidFillPolicy)
}

func inspection(date string, n, pos int) models.InspectionRecord {
	return models.InspectionRecord{ReleaseDate: date + jst, Date: date, Inspections: n, Positives: pos}
}

func TestSummarizeInspections(t *testing.T) {
	records := []models.InspectionRecord{
		inspection("2020-02-29", 618, 27),
		inspection("2020-03-01", 35, 0),
		inspection("2020-03-03", 41, 3),
	}

	rng, err := BuildDateRange([]time.Time{day("2020-02-29"), day("2020-03-03")}, time.Now(), jst)
	require.NoError(t, err)

	series, labels, err := SummarizeInspections(records, rng)
	require.NoError(t, err)

	assert.Equal(t, []int{618, 35, 41}, series.Inspections)
	assert.Equal(t, []int{27, 0, 3}, series.Positives)
	assert.Equal(t, []string{"02/29", "03/01", "03/03"}, labels)

	for _, n := range append(series.Inspections, series.Positives...) {
		assert.GreaterOrEqual(t, n, 0)
	}
}

func TestSummarizeInspections_OutsideRange(t *testing.T) {
	records := []models.InspectionRecord{inspection("2020-03-01", 1, 0), inspection("2020-04-01", 9, 9)}

	rng, err := BuildDateRange([]time.Time{day("2020-03-01")}, time.Now(), jst)
	require.NoError(t, err)

	series, labels, err := SummarizeInspections(records, rng)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, series.Inspections)
	assert.Equal(t, []string{"03/01"}, labels)
}

func TestSummarizeInspections_Duplicate(t *testing.T) {
	records := []models.InspectionRecord{inspection("2020-03-01", 1, 0), inspection("2020-03-01", 2, 0)}

	rng, err := BuildDateRange([]time.Time{day("2020-03-01")}, time.Now(), jst)
	require.NoError(t, err)

	_, _, err = SummarizeInspections(records, rng)
	assert.ErrorIs(t, err, ErrDuplicateDate)
}
