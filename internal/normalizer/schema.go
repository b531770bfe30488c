package normalizer

import (
	"errors"
	"fmt"

	"covidfeed/internal/config"
)

// ErrUnknownSchema is returned when a schema name is neither built in nor
// configured.
var ErrUnknownSchema = errors.New("unknown schema")

// Schema names the source columns of one patient report variant. A variant
// either carries age bracket and sex in one combined column (AgeSex) or in two
// separate columns (Age, Sex).
type Schema struct {
	Name        string
	ReleaseDate string
	Residence   string
	AgeSex      string
	Age         string
	Sex         string
	Nationality string
	Contact     string
	Notes       string
}

// Columns returns every source column the schema reads.
func (s Schema) Columns() []string {
	cols := []string{s.ReleaseDate, s.Residence}
	if s.AgeSex != "" {
		cols = append(cols, s.AgeSex)
	} else {
		cols = append(cols, s.Age, s.Sex)
	}

	cols = append(cols, s.Nationality, s.Contact, s.Notes)

	var out []string

	for _, c := range cols {
		if c != "" {
			out = append(out, c)
		}
	}

	return out
}

// Registry maps schema names to schemas.
type Registry map[string]Schema

// DefaultSchemas returns the built-in report variants.
func DefaultSchemas() Registry {
	return Registry{
		config.SchemaAichi: {
			Name:        config.SchemaAichi,
			ReleaseDate: "発表日",
			Residence:   "住居地",
			AgeSex:      "年代・性別",
			Nationality: "国籍",
			Contact:     "接触状況",
			Notes:       "備考",
		},
		config.SchemaNagoya: {
			Name:        config.SchemaNagoya,
			ReleaseDate: "発表日",
			Residence:   "居住地",
			Age:         "年代",
			Sex:         "性別",
			Nationality: "国籍",
			Contact:     "接触状況",
			Notes:       "備考",
		},
	}
}

// NewRegistry returns the built-in schemas with configured ones layered on top.
func NewRegistry(overrides map[string]config.SchemaConfig) Registry {
	r := DefaultSchemas()

	for name, sc := range overrides {
		r[name] = Schema{
			Name:        name,
			ReleaseDate: sc.ReleaseDate,
			Residence:   sc.Residence,
			AgeSex:      sc.AgeSex,
			Age:         sc.Age,
			Sex:         sc.Sex,
			Nationality: sc.Nationality,
			Contact:     sc.Contact,
			Notes:       sc.Notes,
		}
	}

	return r
}

// Lookup returns the schema called name.
func (r Registry) Lookup(name string) (Schema, error) {
	s, ok := r[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	if s.ReleaseDate == "" {
		return Schema{}, fmt.Errorf("%w: %s has no release date column", ErrUnknownSchema, name)
	}

	return s, nil
}
