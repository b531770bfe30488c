package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVExtractor reads an existing CSV extract.
type CSVExtractor struct{}

// NewCSVExtractor creates a CSV extractor.
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

// Extract reads the CSV file at path.
func (e *CSVExtractor) Extract(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open extract %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read extract %s: %w", path, err)
	}

	return t, nil
}

// ReadCSV parses r as a CSV table whose first record is the header. Rows may
// have differing lengths, which tabula emits for merged cells.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}

	if err != nil {
		return nil, err
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	return New(header, records), nil
}

// WriteCSV writes t as CSV, header first.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}

	return cw.Error()
}
