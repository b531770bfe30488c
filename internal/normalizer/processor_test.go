package normalizer

import (
	"errors"
	"testing"

	"covidfeed/internal/config"
	"covidfeed/internal/table"
)

func TestProcessor_ProcessPatients(t *testing.T) {
	p := NewProcessor(Options{Schema: aichiSchema(t), DateSuffix: config.SuffixJST, EpochYear: 2020})

	records, err := p.ProcessPatients(aichiTable())
	if err != nil {
		t.Fatalf("ProcessPatients returned unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestProcessor_ProcessPatients_ValidationError(t *testing.T) {
	p := NewProcessor(Options{Schema: aichiSchema(t), DateSuffix: config.SuffixJST, EpochYear: 2020})

	tbl := table.New([]string{"発表日", "年代", "性別"}, [][]string{{"1月10日", "30代", "男性"}})

	records, err := p.ProcessPatients(tbl)
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}

	if records != nil {
		t.Error("Expected nil records for invalid input")
	}
}

func TestProcessor_ProcessInspections(t *testing.T) {
	p := NewProcessor(Options{Schema: aichiSchema(t), DateSuffix: config.SuffixUTC, EpochYear: 2020})

	records, err := p.ProcessInspections(inspectionTable())
	if err != nil {
		t.Fatalf("ProcessInspections failed: %v", err)
	}

	if records[0].ReleaseDate != "2020-02-29T08:00:00.000Z" {
		t.Errorf("ReleaseDate = %s", records[0].ReleaseDate)
	}
}

func TestProcessor_ProcessInspections_NoDatedRows(t *testing.T) {
	p := NewProcessor(Options{Schema: aichiSchema(t), DateSuffix: config.SuffixJST, EpochYear: 2020})

	tbl := table.New(InspectionColumns(), [][]string{{"合計", "10", "1"}})

	if _, err := p.ProcessInspections(tbl); !errors.Is(err, ErrNoRows) {
		t.Errorf("Expected ErrNoRows, got %v", err)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(map[string]config.SchemaConfig{
		"city":   {ReleaseDate: "公表日", Residence: "居住地", AgeSex: "年代・性別"},
		"broken": {Residence: "居住地"},
	})

	s, err := r.Lookup("city")
	if err != nil {
		t.Fatalf("Lookup(city) failed: %v", err)
	}

	if got := s.Columns(); len(got) != 3 || got[0] != "公表日" {
		t.Errorf("Columns() = %v", got)
	}

	if _, err := r.Lookup(config.SchemaAichi); err != nil {
		t.Errorf("Built-in schema lost: %v", err)
	}

	if _, err := r.Lookup("broken"); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("Expected ErrUnknownSchema for schema without date, got %v", err)
	}

	if _, err := r.Lookup("tokyo"); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("Expected ErrUnknownSchema, got %v", err)
	}
}

func TestParseMonthDay(t *testing.T) {
	d, err := ParseMonthDay("2月29日(土)", 2020)
	if err != nil {
		t.Fatalf("ParseMonthDay failed: %v", err)
	}

	if FormatDate(d) != "2020-02-29" || Weekday(d) != "土" || FormatShortDate(d) != "02/29" {
		t.Errorf("Unexpected date %v", d)
	}

	if _, err := ParseMonthDay("2月29日", 2021); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate for 2021-02-29, got %v", err)
	}
}
