package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"covidfeed/internal/models"
	"covidfeed/internal/table"
	"covidfeed/pkg/utils"
)

// ErrMissingValue is returned when a required cell is empty.
var ErrMissingValue = errors.New("missing value")

// RowError pinpoints the row and column of an input-shape failure.
type RowError struct {
	Err    error
	Column string
	Value  string
	Row    int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q (value %q): %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

var (
	ageSexPattern        = regexp.MustCompile(`(.*)(男性|女性)`)
	trailingDigitPattern = regexp.MustCompile(`^(.*?)[0-9０-９]+$`)
)

// PatientTransformer reshapes a patient extract of any known schema into the
// fixed PatientRecord layout.
type PatientTransformer struct {
	strings   *utils.StringHelper
	schema    Schema
	suffix    string
	epochYear int
}

// NewPatientTransformer creates a transformer for schema. Release dates are
// serialized with suffix and month/day cells are placed in epochYear.
func NewPatientTransformer(schema Schema, suffix string, epochYear int) *PatientTransformer {
	return &PatientTransformer{
		strings:   utils.NewStringHelper(),
		schema:    schema,
		suffix:    suffix,
		epochYear: epochYear,
	}
}

// Transform converts every row of tbl. Row order is preserved.
func (t *PatientTransformer) Transform(tbl *table.Table) ([]models.PatientRecord, error) {
	records := make([]models.PatientRecord, 0, tbl.Len())

	for row := range tbl.Rows {
		rec, err := t.transformRow(tbl, row)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

func (t *PatientTransformer) transformRow(tbl *table.Table, row int) (models.PatientRecord, error) {
	s := t.schema

	raw := tbl.Cell(row, s.ReleaseDate)
	if raw == "" {
		return models.PatientRecord{}, &RowError{Row: row, Column: s.ReleaseDate, Err: ErrMissingValue}
	}

	d, err := ParseMonthDay(t.strings.FoldWidth(raw), t.epochYear)
	if err != nil {
		return models.PatientRecord{}, &RowError{Row: row, Column: s.ReleaseDate, Value: raw, Err: err}
	}

	age, sex := t.ageAndSex(tbl, row)

	rec := models.PatientRecord{
		ReleaseDate: FormatReleaseDate(d, t.suffix),
		Residence:   tbl.Cell(row, s.Residence),
		Weekday:     Weekday(d),
		Age:         age,
		Sex:         sex,
		Date:        FormatDate(d),
		ShortDate:   FormatShortDate(d),
		Nationality: tbl.Cell(row, s.Nationality),
		Contact:     tbl.Cell(row, s.Contact),
		Notes:       StripTrailingNumber(tbl.Cell(row, s.Notes)),
	}
	rec.FillMissing()

	return rec, nil
}

func (t *PatientTransformer) ageAndSex(tbl *table.Table, row int) (string, string) {
	if t.schema.AgeSex == "" {
		return tbl.Cell(row, t.schema.Age), tbl.Cell(row, t.schema.Sex)
	}

	return SplitAgeSex(t.strings.FoldWidth(tbl.Cell(row, t.schema.AgeSex)))
}

// SplitAgeSex splits a combined "<age bracket><sex>" cell such as "30代男性".
// A cell without a recognised sex yields two empty values.
func SplitAgeSex(s string) (string, string) {
	m := ageSexPattern.FindStringSubmatch(s)
	if m == nil {
		return "", ""
	}

	return strings.TrimSpace(m[1]), m[2]
}

// StripTrailingNumber removes a trailing run of digits from a notes cell.
// Notes that do not end in digits are returned unchanged.
func StripTrailingNumber(s string) string {
	m := trailingDigitPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	return strings.TrimSpace(m[1])
}
