// Package validator reports on the shape of a tabular extract before it is
// normalized, collecting every problem instead of stopping at the first.
package validator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"covidfeed/internal/normalizer"
	"covidfeed/internal/table"
	"covidfeed/pkg/utils"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Row     int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	TotalRows           int
	ValidRows           int
	InvalidRows         int
	RowsWithMissing     int
	RowsWithInvalidDate int
	RowsOutOfOrder      int
}

// ExtractValidator checks patient and inspection extracts.
type ExtractValidator struct {
	strings   *utils.StringHelper
	schema    normalizer.Schema
	epochYear int
	minRows   int
}

// NewExtractValidator creates a validator for extracts laid out per schema.
func NewExtractValidator(schema normalizer.Schema, epochYear int) *ExtractValidator {
	return &ExtractValidator{
		strings:   utils.NewStringHelper(),
		schema:    schema,
		epochYear: epochYear,
		minRows:   1,
	}
}

func newResult() *ValidationResult {
	return &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}
}

func (r *ValidationResult) fail(e ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, e)
}

// ValidatePatients checks a patient extract.
func (v *ExtractValidator) ValidatePatients(tbl *table.Table) *ValidationResult {
	result := newResult()

	if !v.checkColumns(tbl, v.schema.Columns(), result) {
		return result
	}

	var prev time.Time

	for row := range tbl.Rows {
		result.Stats.TotalRows++

		d, errs := v.validatePatientRow(tbl, row)

		if hasMissing(tbl, row, v.schema.Columns()) {
			result.Stats.RowsWithMissing++
		}

		if len(errs) > 0 {
			result.Stats.InvalidRows++
			result.Stats.RowsWithInvalidDate++

			for _, e := range errs {
				result.fail(e)
			}

			continue
		}

		result.Stats.ValidRows++

		if !prev.IsZero() && d.Before(prev) {
			result.Stats.RowsOutOfOrder++
		}

		prev = d
	}

	v.finish(result)

	return result
}

func (v *ExtractValidator) validatePatientRow(tbl *table.Table, row int) (time.Time, []ValidationError) {
	var errs []ValidationError

	col := v.schema.ReleaseDate
	raw := tbl.Cell(row, col)

	if raw == "" {
		return time.Time{}, append(errs, ValidationError{Row: row, Field: col, Message: "release date is empty"})
	}

	d, err := normalizer.ParseMonthDay(v.strings.FoldWidth(raw), v.epochYear)
	if err != nil {
		return time.Time{}, append(errs, ValidationError{Row: row, Field: col, Value: raw, Message: err.Error()})
	}

	return d, nil
}

// ValidateInspections checks an inspection extract after the leading period
// block is merged.
func (v *ExtractValidator) ValidateInspections(tbl *table.Table) *ValidationResult {
	result := newResult()

	if !v.checkColumns(tbl, normalizer.InspectionColumns(), result) {
		return result
	}

	prepared := normalizer.PrepareInspections(tbl)
	seen := make(map[string]int)

	var prev time.Time

	for row := range prepared.Rows {
		result.Stats.TotalRows++

		var errs []ValidationError

		raw := prepared.Cell(row, normalizer.ColTestedOn)

		d, err := normalizer.TestedOn(raw, v.epochYear)
		if err != nil {
			result.Stats.RowsWithInvalidDate++
			errs = append(errs, ValidationError{Row: row, Field: normalizer.ColTestedOn, Value: raw, Message: err.Error()})
		}

		for _, col := range []string{normalizer.ColInspections, normalizer.ColPositives} {
			cell := prepared.Cell(row, col)
			if _, err := normalizer.ParseCount(v.strings.FoldWidth(cell)); err != nil {
				errs = append(errs, ValidationError{Row: row, Field: col, Value: cell, Message: err.Error()})
			}
		}

		if err == nil {
			key := normalizer.FormatDate(d)
			if first, ok := seen[key]; ok {
				errs = append(errs, ValidationError{
					Row:     row,
					Field:   normalizer.ColTestedOn,
					Value:   raw,
					Message: fmt.Sprintf("duplicate date, first seen at row %d", first),
				})
			} else {
				seen[key] = row
			}

			if !prev.IsZero() && d.Before(prev) {
				result.Stats.RowsOutOfOrder++
			}

			prev = d
		}

		if len(errs) > 0 {
			result.Stats.InvalidRows++

			for _, e := range errs {
				result.fail(e)
			}

			continue
		}

		result.Stats.ValidRows++
	}

	if dropped := tbl.Len() - prepared.Len(); dropped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d undated rows ignored (totals, period markers)", dropped))
	}

	v.finish(result)

	return result
}

func (v *ExtractValidator) checkColumns(tbl *table.Table, required []string, result *ValidationResult) bool {
	if tbl == nil {
		result.fail(ValidationError{Row: -1, Message: "no table"})

		return false
	}

	missing := tbl.Missing(required...)
	if len(missing) == 0 {
		return true
	}

	for _, col := range missing {
		result.fail(ValidationError{
			Row:     -1,
			Field:   col,
			Message: fmt.Sprintf("column missing (have %s)", strings.Join(tbl.Columns, ", ")),
		})
	}

	return false
}

func (v *ExtractValidator) finish(result *ValidationResult) {
	if result.Stats.ValidRows < v.minRows {
		result.fail(ValidationError{
			Row: -1,
			Message: fmt.Sprintf("minimum rows not met: got %d, expected at least %d",
				result.Stats.ValidRows, v.minRows),
		})
	}

	if result.Stats.RowsOutOfOrder > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d rows are earlier than the row before them; the date range assumes ascending order",
			result.Stats.RowsOutOfOrder))
	}
}

func hasMissing(tbl *table.Table, row int, cols []string) bool {
	for _, c := range cols {
		if tbl.Cell(row, c) == "" {
			return true
		}
	}

	return false
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Total: %d | Valid: %d | Invalid: %d | Missing: %d | Warnings: %d",
		status,
		r.Stats.TotalRows,
		r.Stats.ValidRows,
		r.Stats.InvalidRows,
		r.Stats.RowsWithMissing,
		len(r.Warnings),
	)
}

// WriteErrors writes validation errors in readable format.
func (r *ValidationResult) WriteErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Row < 0 {
			if err.Field != "" {
				fmt.Fprintf(w, "  [%s] %s\n", err.Field, err.Message)
			} else {
				fmt.Fprintf(w, "  %s\n", err.Message)
			}

			continue
		}

		fmt.Fprintf(w, "  Row %d", err.Row)

		if err.Field != "" {
			fmt.Fprintf(w, " [%s]", err.Field)
		}

		fmt.Fprintf(w, ": %s\n", err.Message)

		if err.Value != "" {
			fmt.Fprintf(w, "    Found: %q\n", err.Value)
		}
	}
}

// WriteWarnings writes validation warnings.
func (r *ValidationResult) WriteWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}
