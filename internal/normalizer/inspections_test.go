package normalizer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"covidfeed/internal/config"
	"covidfeed/internal/models"
	"covidfeed/internal/table"
)

func inspectionTable() *table.Table {
	return table.New(
		[]string{"検査日", "検査件数(件)", "陽性者数(人)"},
		[][]string{
			{"1月30日(木)", "", ""},
			{"", "618", "27"},
			{"~2月29日(土)", "", ""},
			{"3月1日(日)", "35", "-"},
			{"合計", "1,200", "40"},
			{"3月2日(月)", "41", "3"},
		},
	)
}

func TestInspectionTransformer_Transform(t *testing.T) {
	records, err := NewInspectionTransformer(config.SuffixJST, 2020).Transform(inspectionTable())
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Date != "2020-02-29" || first.Inspections != 618 || first.Positives != 27 {
		t.Errorf("Leading period not merged: %+v", first)
	}

	if first.TestedOn != "~2月29日(土)" {
		t.Errorf("TestedOn = %s", first.TestedOn)
	}

	if records[1].Positives != 0 || records[1].Inspections != 35 {
		t.Errorf("'-' not coerced to zero: %+v", records[1])
	}

	want := models.InspectionRecord{
		ReleaseDate: "2020-03-02T00:00:00+09:00",
		Date:        "2020-03-02",
		TestedOn:    "3月2日(月)",
		Inspections: 41,
		Positives:   3,
	}

	if diff := cmp.Diff(want, records[2]); diff != "" {
		t.Errorf("records[2] mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectionTransformer_NoLeadingBlock(t *testing.T) {
	tbl := table.New(
		[]string{"検査日", "検査件数(件)", "陽性者数(人)"},
		[][]string{
			{"3月1日(日)", "35", "1"},
			{"3月2日(月)", "41", "3"},
			{"3月3日(火)", "20", "0"},
		},
	)

	records, err := NewInspectionTransformer(config.SuffixJST, 2020).Transform(tbl)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(records) != 3 || records[0].Date != "2020-03-01" {
		t.Errorf("Rows altered without a leading block: %+v", records)
	}
}

func TestInspectionTransformer_BadCount(t *testing.T) {
	tbl := table.New(
		[]string{"検査日", "検査件数(件)", "陽性者数(人)"},
		[][]string{{"3月1日(日)", "n/a", "1"}},
	)

	_, err := NewInspectionTransformer(config.SuffixJST, 2020).Transform(tbl)
	if !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("Expected ErrInvalidCount, got %v", err)
	}

	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Column != ColInspections {
		t.Errorf("Expected RowError on %s, got %v", ColInspections, err)
	}
}

func TestInspectionTransformer_UndatedMonthRow(t *testing.T) {
	tbl := table.New(
		[]string{"検査日", "検査件数(件)", "陽性者数(人)"},
		[][]string{{"3月分", "10", "1"}},
	)

	_, err := NewInspectionTransformer(config.SuffixJST, 2020).Transform(tbl)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("Expected ErrInvalidDate, got %v", err)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"-", 0, false},
		{" 12 ", 12, false},
		{"1,234", 1234, false},
		{"0", 0, false},
		{"", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)

			continue
		}

		if got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPrepareInspections(t *testing.T) {
	prepared := PrepareInspections(inspectionTable())

	if prepared.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", prepared.Len())
	}

	if got := prepared.Cell(0, ColTestedOn); got != "~2月29日(土)" {
		t.Errorf("Merged row date = %q", got)
	}

	if got := prepared.Cell(0, ColInspections); got != "618" {
		t.Errorf("Merged row count = %q", got)
	}
}

func TestPrepareInspections_ShortMergedRow(t *testing.T) {
	src := table.New(
		[]string{"検査件数(件)", "陽性者数(人)", "検査日"},
		[][]string{
			{"", "", "1月30日(木)"},
			{"618", "27"},
			{"", "", "~2月29日(土)"},
			{"35", "-", "3月1日(日)"},
		},
	)

	prepared := PrepareInspections(src)

	if prepared.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", prepared.Len())
	}

	if got := prepared.Cell(0, ColTestedOn); got != "~2月29日(土)" {
		t.Errorf("Merged row date = %q", got)
	}

	if got := prepared.Cell(0, ColPositives); got != "27" {
		t.Errorf("Merged row positives = %q", got)
	}

	if len(src.Rows[1]) != 2 {
		t.Errorf("Source row modified: %q", src.Rows[1])
	}
}

func TestPrepareInspections_NoDateColumn(t *testing.T) {
	src := table.New([]string{"検査件数(件)"}, [][]string{{""}, {"618"}, {""}})

	if got := PrepareInspections(src).Len(); got != 0 {
		t.Errorf("Expected no dated rows, got %d", got)
	}
}

func TestTestedOn(t *testing.T) {
	d, err := TestedOn("３月１日(日)", 2020)
	if err != nil {
		t.Fatalf("TestedOn failed: %v", err)
	}

	if FormatDate(d) != "2020-03-01" {
		t.Errorf("TestedOn = %s", FormatDate(d))
	}

	if _, err := TestedOn("3月1日", 2020); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate without weekday, got %v", err)
	}
}
