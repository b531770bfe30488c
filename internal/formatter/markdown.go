// Package formatter renders extracts and normalized records as aligned
// Markdown tables for operators checking a new report layout.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"covidfeed/internal/models"
	"covidfeed/internal/table"
)

// minCellWidth is the width of the shortest valid separator, "---".
const minCellWidth = 3

// RenderTable renders an extract with its header. maxRows <= 0 renders every
// row.
func RenderTable(tbl *table.Table, maxRows int) string {
	rows := tbl.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	cells := make([][]string, 0, len(rows)+2)
	cells = append(cells, tbl.Columns, nil)

	for _, r := range rows {
		cells = append(cells, escapeRow(r))
	}

	return strings.Join(align(cells, 1), "\n")
}

// patientColumns follows the data.json key order.
var patientColumns = []string{
	"リリース日", "居住地", "曜日", "年代", "性別", "退院", "date", "short_date", "国籍", "接触状況", "備考",
}

// RenderPatients renders normalized patient records.
func RenderPatients(records []models.PatientRecord) string {
	cells := [][]string{patientColumns, nil}

	for _, r := range records {
		cells = append(cells, escapeRow([]string{
			r.ReleaseDate, r.Residence, r.Weekday, r.Age, r.Sex, r.Discharged,
			r.Date, r.ShortDate, r.Nationality, r.Contact, r.Notes,
		}))
	}

	return strings.Join(align(cells, 1), "\n")
}

func escapeRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ReplaceAll(strings.Join(strings.Fields(c), " "), "|", `\|`)
	}

	return out
}

// align pads every cell to its column's display width. Row sepIdx, if any, is
// rendered as a dash separator.
func align(rows [][]string, sepIdx int) []string {
	colCount := 0
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)
	for i := range colWidths {
		colWidths[i] = minCellWidth
	}

	for rIdx, row := range rows {
		if rIdx == sepIdx {
			continue
		}

		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	result := make([]string, 0, len(rows))

	for i, row := range rows {
		var sb strings.Builder

		sb.WriteString("|")

		for j := range colCount {
			sb.WriteString(" ")

			if i == sepIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(runewidth.FillRight(content, colWidths[j]))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}
