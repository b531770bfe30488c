package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"covidfeed/internal/models"
	"covidfeed/internal/table"
	"covidfeed/pkg/utils"
)

// Inspection extract columns.
const (
	ColTestedOn    = "検査日"
	ColInspections = "検査件数(件)"
	ColPositives   = "陽性者数(人)"
)

// ErrInvalidCount is returned for a count cell that is not a non-negative integer.
var ErrInvalidCount = errors.New("invalid count")

// zeroMarker stands for a count of zero in the published tables.
const zeroMarker = "-"

// InspectionColumns lists the columns of the inspection extract.
func InspectionColumns() []string {
	return []string{ColTestedOn, ColInspections, ColPositives}
}

// InspectionTransformer normalizes the inspection status extract.
type InspectionTransformer struct {
	strings   *utils.StringHelper
	suffix    string
	epochYear int
}

// NewInspectionTransformer creates an inspection transformer.
func NewInspectionTransformer(suffix string, epochYear int) *InspectionTransformer {
	return &InspectionTransformer{
		strings:   utils.NewStringHelper(),
		suffix:    suffix,
		epochYear: epochYear,
	}
}

// PrepareInspections merges the leading period block and drops rows whose
// 検査日 is not a date.
func PrepareInspections(tbl *table.Table) *table.Table {
	merged := mergeLeadingPeriod(tbl)

	return merged.Filter(func(row int) bool {
		return strings.Contains(merged.Cell(row, ColTestedOn), "月")
	})
}

// TestedOn parses a 検査日 cell such as "3月1日(日)".
func TestedOn(cell string, year int) (time.Time, error) {
	m := testedDayPattern.FindStringSubmatch(utils.NewStringHelper().FoldWidth(cell))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, cell)
	}

	return ParseMonthDay(m[1], year)
}

// Transform prepares tbl, coerces "-" counts to zero and parses the
// remaining rows.
func (t *InspectionTransformer) Transform(tbl *table.Table) ([]models.InspectionRecord, error) {
	dated := PrepareInspections(tbl)

	records := make([]models.InspectionRecord, 0, dated.Len())

	for row := range dated.Rows {
		rec, err := t.transformRow(dated, row)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

func (t *InspectionTransformer) transformRow(tbl *table.Table, row int) (models.InspectionRecord, error) {
	raw := tbl.Cell(row, ColTestedOn)

	d, err := TestedOn(raw, t.epochYear)
	if err != nil {
		return models.InspectionRecord{}, &RowError{Row: row, Column: ColTestedOn, Value: raw, Err: err}
	}

	inspections, err := t.count(tbl, row, ColInspections)
	if err != nil {
		return models.InspectionRecord{}, err
	}

	positives, err := t.count(tbl, row, ColPositives)
	if err != nil {
		return models.InspectionRecord{}, err
	}

	return models.InspectionRecord{
		ReleaseDate: FormatReleaseDate(d, t.suffix),
		Date:        FormatDate(d),
		TestedOn:    raw,
		Inspections: inspections,
		Positives:   positives,
	}, nil
}

func (t *InspectionTransformer) count(tbl *table.Table, row int, col string) (int, error) {
	raw := tbl.Cell(row, col)

	n, err := ParseCount(t.strings.FoldWidth(raw))
	if err != nil {
		return 0, &RowError{Row: row, Column: col, Value: raw, Err: err}
	}

	return n, nil
}

// ParseCount parses a count cell. "-" reads as zero and thousands separators
// are ignored.
func ParseCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == zeroMarker {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidCount
	}

	return n, nil
}

// mergeLeadingPeriod folds the three-row block the report opens with:
//
//	1月30日(木)
//	            618  27
//	~2月29日(土)
//
// into one row dated by its last line. Tables without the block are returned
// as is.
func mergeLeadingPeriod(tbl *table.Table) *table.Table {
	col := tbl.Index(ColTestedOn)
	if col < 0 ||
		tbl.Len() < 3 ||
		tbl.Cell(0, ColTestedOn) == "" ||
		tbl.Cell(0, ColInspections) != "" ||
		tbl.Cell(1, ColTestedOn) != "" ||
		tbl.Cell(1, ColInspections) == "" ||
		tbl.Cell(2, ColInspections) != "" {
		return tbl
	}

	first := append([]string{}, tbl.Rows[1]...)
	for len(first) <= col {
		first = append(first, "")
	}

	first[col] = tbl.Cell(2, ColTestedOn)

	out := &table.Table{Columns: tbl.Columns, Rows: [][]string{first}}
	out.Rows = append(out.Rows, tbl.Rows[3:]...)

	return out
}
