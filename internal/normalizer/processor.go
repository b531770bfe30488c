// Package normalizer reshapes tabular disclosure extracts into the records
// published in data.json.
package normalizer

import (
	"fmt"

	"covidfeed/internal/models"
	"covidfeed/internal/table"
)

// Options fixes the run-wide settings a Processor needs.
type Options struct {
	Schema     Schema
	DateSuffix string
	EpochYear  int
}

// Processor handles validation and transformation of extracts.
type Processor struct {
	validator   *Validator
	patients    *PatientTransformer
	inspections *InspectionTransformer
	schema      Schema
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		validator:   NewValidator(),
		patients:    NewPatientTransformer(opts.Schema, opts.DateSuffix, opts.EpochYear),
		inspections: NewInspectionTransformer(opts.DateSuffix, opts.EpochYear),
		schema:      opts.Schema,
	}
}

// ProcessPatients validates and reshapes a patient extract.
func (p *Processor) ProcessPatients(tbl *table.Table) ([]models.PatientRecord, error) {
	if err := p.validator.Validate(tbl, p.schema.Columns()); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	records, err := p.patients.Transform(tbl)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	return records, nil
}

// ProcessInspections validates and normalizes an inspection extract.
func (p *Processor) ProcessInspections(tbl *table.Table) ([]models.InspectionRecord, error) {
	if err := p.validator.Validate(tbl, InspectionColumns()); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	records, err := p.inspections.Transform(tbl)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("transformation failed: %w", ErrNoRows)
	}

	return records, nil
}
