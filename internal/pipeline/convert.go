package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"covidfeed/internal/config"
	"covidfeed/internal/logger"
	"covidfeed/internal/models"
	"covidfeed/internal/normalizer"
	"covidfeed/internal/output"
	"covidfeed/internal/summary"
	"covidfeed/internal/table"
	"covidfeed/internal/validator"
)

// ErrInvalidExtract is returned when --validate finds problems.
var ErrInvalidExtract = errors.New("extract failed validation")

// NewExtractor builds the configured table extractor.
func NewExtractor(cfg config.ExtractorConfig) (table.Extractor, error) {
	switch cfg.Kind {
	case "csv":
		return table.NewCSVExtractor(), nil
	case "tabula":
		return table.NewTabulaExtractor(cfg.Command), nil
	}

	return nil, fmt.Errorf("%w: %s", config.ErrInvalidExtractorKind, cfg.Kind)
}

// Converter turns the latest patient and inspection documents into data.json.
type Converter struct {
	cfg       *config.Config
	log       *logger.Logger
	extractor table.Extractor
	now       Clock
}

// NewConverter creates a converter.
func NewConverter(cfg *config.Config, log *logger.Logger, extractor table.Extractor, now Clock) *Converter {
	return &Converter{cfg: cfg, log: log, extractor: extractor, now: now}
}

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	Path        string
	Patients    int
	Inspections int
	Profile     config.Profile
}

// Run builds the feed and writes it atomically.
func (c *Converter) Run(ctx context.Context) (*ConvertResult, error) {
	done := c.log.Phase("convert")

	feed, err := c.Build(ctx)
	if err != nil {
		return nil, err
	}

	path := c.cfg.OutputPath(c.cfg.Converter.OutputFile)
	if err := output.WriteJSON(path, feed); err != nil {
		return nil, err
	}

	result := &ConvertResult{
		Path:        path,
		Patients:    len(feed.Patients.Data),
		Inspections: len(feed.Inspections.Data),
		Profile:     c.cfg.Profile(),
	}

	done("path", path, "patients", result.Patients, "inspections", result.Inspections, "profile", result.Profile.Name)

	return result, nil
}

func (c *Converter) processor() (*normalizer.Processor, normalizer.Schema, error) {
	profile := c.cfg.Profile()

	schema, err := normalizer.NewRegistry(c.cfg.Schemas).Lookup(profile.Schema)
	if err != nil {
		return nil, normalizer.Schema{}, err
	}

	return normalizer.NewProcessor(normalizer.Options{
		Schema:     schema,
		DateSuffix: profile.DateSuffix,
		EpochYear:  c.cfg.Converter.EpochYear,
	}), schema, nil
}

// Build produces the data.json document without writing it.
func (c *Converter) Build(ctx context.Context) (*models.DataFeed, error) {
	now := c.now()
	profile := c.cfg.Profile()

	policy, err := summary.ParseFillPolicy(c.cfg.Converter.SummaryFill)
	if err != nil {
		return nil, err
	}

	proc, _, err := c.processor()
	if err != nil {
		return nil, err
	}

	feed := models.NewDataFeed(now.Format(stampLayout))

	patientTable, err := c.extract(ctx, c.cfg.Converter.PatientsGlob)
	if err != nil {
		return nil, fmt.Errorf("patients: %w", err)
	}

	patients, err := proc.ProcessPatients(patientTable)
	if err != nil {
		return nil, fmt.Errorf("patients: %w", err)
	}

	patientDates, rng, err := c.dateRange(lo.Map(patients, func(r models.PatientRecord, _ int) string {
		return r.Date
	}), now, profile.DateSuffix)
	if err != nil {
		return nil, fmt.Errorf("patients: %w", err)
	}

	feed.Patients = models.Section[[]models.PatientRecord]{Date: rng.LastUpdated, Data: patients}
	feed.PatientsSummary = models.Section[[]models.SummaryBucket]{
		Date: rng.LastUpdated,
		Data: summary.CountByDate(patientDates, rng, policy),
	}

	c.log.Info("patients normalized", "rows", len(patients), "days", rng.Len(), "fill", policy.String())

	inspectionTable, err := c.extract(ctx, c.cfg.Converter.InspectionsGlob)
	if err != nil {
		return nil, fmt.Errorf("inspections: %w", err)
	}

	inspections, err := proc.ProcessInspections(inspectionTable)
	if err != nil {
		return nil, fmt.Errorf("inspections: %w", err)
	}

	_, rng, err = c.dateRange(lo.Map(inspections, func(r models.InspectionRecord, _ int) string {
		return r.Date
	}), now, profile.DateSuffix)
	if err != nil {
		return nil, fmt.Errorf("inspections: %w", err)
	}

	series, labels, err := summary.SummarizeInspections(inspections, rng)
	if err != nil {
		return nil, fmt.Errorf("inspections: %w", err)
	}

	feed.Inspections = models.Section[[]models.InspectionRecord]{Date: rng.LastUpdated, Data: inspections}
	feed.InspectionsSummary = models.LabeledSection[models.InspectionSeries]{
		Date:   rng.LastUpdated,
		Data:   series,
		Labels: labels,
	}

	c.log.Info("inspections normalized", "rows", len(inspections), "days", rng.Len())

	return feed, nil
}

func (c *Converter) dateRange(values []string, now time.Time, suffix string) ([]time.Time, summary.DateRange, error) {
	dates, err := summary.ParseDates(values)
	if err != nil {
		return nil, summary.DateRange{}, err
	}

	if c.cfg.Converter.Strict {
		if err := summary.CheckSorted(dates); err != nil {
			return nil, summary.DateRange{}, err
		}
	}

	rng, err := summary.BuildDateRange(dates, now, suffix)
	if err != nil {
		return nil, summary.DateRange{}, err
	}

	return dates, rng, nil
}

func (c *Converter) extract(ctx context.Context, pattern string) (*table.Table, error) {
	path, err := table.LatestFile(pattern)
	if err != nil {
		return nil, err
	}

	c.log.Debug("extracting", "path", path)

	return c.extractor.Extract(ctx, path)
}

// Validate checks the latest extracts without converting them. It returns
// ErrInvalidExtract when either report is invalid.
func (c *Converter) Validate(ctx context.Context) (*validator.ValidationResult, *validator.ValidationResult, error) {
	_, schema, err := c.processor()
	if err != nil {
		return nil, nil, err
	}

	v := validator.NewExtractValidator(schema, c.cfg.Converter.EpochYear)

	patientTable, err := c.extract(ctx, c.cfg.Converter.PatientsGlob)
	if err != nil {
		return nil, nil, fmt.Errorf("patients: %w", err)
	}

	inspectionTable, err := c.extract(ctx, c.cfg.Converter.InspectionsGlob)
	if err != nil {
		return nil, nil, fmt.Errorf("inspections: %w", err)
	}

	patients := v.ValidatePatients(patientTable)
	inspections := v.ValidateInspections(inspectionTable)

	if !patients.IsValid || !inspections.IsValid {
		return patients, inspections, ErrInvalidExtract
	}

	return patients, inspections, nil
}
