package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"covidfeed/internal/table"
)

// Validation errors.
var (
	ErrNilTable      = errors.New("no table to normalize")
	ErrNoRows        = errors.New("table contains no rows")
	ErrMissingColumn = errors.New("expected column missing")
)

// Validator checks that an extract has the shape a transformer expects.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks that tbl is non-empty and has every column in required.
func (v *Validator) Validate(tbl *table.Table, required []string) error {
	if tbl == nil {
		return ErrNilTable
	}

	if missing := tbl.Missing(required...); len(missing) > 0 {
		return fmt.Errorf("%w: %s (have %s)", ErrMissingColumn,
			strings.Join(missing, ", "), strings.Join(tbl.Columns, ", "))
	}

	if tbl.Len() == 0 {
		return ErrNoRows
	}

	return nil
}
