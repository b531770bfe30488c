// Package config provides configuration management for the feed pipelines.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingPageURL           = errors.New("fetcher.page_url is required")
	ErrTargetMissingDir         = errors.New("fetcher target dir is required")
	ErrTargetMissingLinkTitle   = errors.New("fetcher target link_title is required")
	ErrMissingPatientsGlob      = errors.New("converter.patients_glob is required")
	ErrMissingInspectionsGlob   = errors.New("converter.inspections_glob is required")
	ErrInvalidExtractorKind     = errors.New("converter.extractor.kind must be 'tabula' or 'csv'")
	ErrMissingExtractorCommand  = errors.New("converter.extractor.command is required for tabula")
	ErrInvalidEpochYear         = errors.New("converter.epoch_year must be a four digit year")
	ErrInvalidSummaryFill       = errors.New("converter.summary_fill must be 'sparse' or 'dense'")
	ErrNoListings               = errors.New("at least one news listing is required")
	ErrListingMissingURL        = errors.New("news listing url is required")
	ErrInvalidListingKind       = errors.New("news listing kind must be 'html' or 'rss'")
	ErrInvalidMaxItems          = errors.New("news.max_items must be at least 1")
	ErrInvalidTranslator        = errors.New("news.translator.provider must be one of: none, openai, ollama")
	ErrMissingTranslatorKey     = errors.New("news.translator.api_key is required for openai")
	ErrMissingTranslatorBaseURL = errors.New("news.translator.base_url is required for ollama")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingOutputDir         = errors.New("output.dir is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Date suffixes appended to every serialized calendar date.
const (
	SuffixJST = "T00:00:00+09:00"
	SuffixUTC = "T08:00:00.000Z"
)

// Built-in schema names.
const (
	SchemaAichi  = "aichi"
	SchemaNagoya = "nagoya"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Schemas     map[string]SchemaConfig `yaml:"schemas"`
	Fetcher     FetcherConfig           `yaml:"fetcher"`
	Converter   ConverterConfig         `yaml:"converter"`
	News        NewsConfig              `yaml:"news"`
	Output      OutputConfig            `yaml:"output"`
	Logging     LoggingConfig           `yaml:"logging"`
	Retry       RetryPolicy             `yaml:"retry"`
	Code4Nagoya bool                    `yaml:"code4nagoya"`
}

// FetcherConfig describes where source documents are downloaded from.
type FetcherConfig struct {
	PageURL string         `yaml:"page_url"`
	Targets []TargetConfig `yaml:"targets"`
}

// TargetConfig maps a link title on the source page to a download directory.
type TargetConfig struct {
	Dir       string `yaml:"dir"`
	LinkTitle string `yaml:"link_title"`
}

// ConverterConfig controls the PDF to data.json conversion.
type ConverterConfig struct {
	PatientsGlob    string          `yaml:"patients_glob"`
	InspectionsGlob string          `yaml:"inspections_glob"`
	OutputFile      string          `yaml:"output_file"`
	Schema          string          `yaml:"schema"`
	SummaryFill     string          `yaml:"summary_fill"`
	Extractor       ExtractorConfig `yaml:"extractor"`
	EpochYear       int             `yaml:"epoch_year"`
	Strict          bool            `yaml:"strict"`
}

// ExtractorConfig selects how tabular extracts are obtained from PDFs.
type ExtractorConfig struct {
	Kind    string   `yaml:"kind"`
	Command []string `yaml:"command"`
}

// SchemaConfig names the source columns of one report variant. Either AgeSex
// or Age and Sex are set.
type SchemaConfig struct {
	ReleaseDate string `yaml:"release_date"`
	Residence   string `yaml:"residence"`
	AgeSex      string `yaml:"age_sex"`
	Age         string `yaml:"age"`
	Sex         string `yaml:"sex"`
	Nationality string `yaml:"nationality"`
	Contact     string `yaml:"contact"`
	Notes       string `yaml:"notes"`
}

// NewsConfig controls the news aggregation pipeline.
type NewsConfig struct {
	OutputFile string           `yaml:"output_file"`
	I18nFile   string           `yaml:"i18n_file"`
	Listings   []ListingConfig  `yaml:"listings"`
	Translator TranslatorConfig `yaml:"translator"`
	MaxItems   int              `yaml:"max_items"`
}

// ListingConfig is one news listing page or feed.
type ListingConfig struct {
	URL     string `yaml:"url"`
	Keyword string `yaml:"keyword"`
	Kind    string `yaml:"kind"`
}

// TranslatorConfig selects the translation provider.
type TranslatorConfig struct {
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	SourceLang string `yaml:"source_lang"`
	TargetLang string `yaml:"target_lang"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	BufferSizeKb      int     `yaml:"buffer_size_kb"`
}

// OutputConfig defines where feeds are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Profile is the run-wide mode resolved once from Code4Nagoya. It is passed
// explicitly to the normalizer and summary code. Both modes read the
// prefectural report layout; only the date suffix differs.
type Profile struct {
	Name       string
	DateSuffix string
	Schema     string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			PageURL: "https://www.pref.aichi.jp/soshiki/kenkotaisaku/novel-coronavirus.html",
			Targets: []TargetConfig{
				{Dir: "patients", LinkTitle: "県内発生事例一覧表"},
				{Dir: "inspections", LinkTitle: "愛知県内検査状況"},
				{Dir: "main", LinkTitle: "愛知県内感染者内訳"},
			},
		},
		Converter: ConverterConfig{
			PatientsGlob:    "patients/*.pdf",
			InspectionsGlob: "inspections/*.pdf",
			OutputFile:      "data.json",
			SummaryFill:     "sparse",
			EpochYear:       2020,
			Extractor: ExtractorConfig{
				Kind:    "tabula",
				Command: []string{"java", "-jar", "tabula.jar", "--pages", "all", "--format", "CSV"},
			},
		},
		News: NewsConfig{
			OutputFile: "news.json",
			I18nFile:   "WhatsNew.i18n.json",
			MaxItems:   5,
			Listings: []ListingConfig{
				{URL: "https://www.pref.aichi.jp/soshiki/list1-1.html", Keyword: "コロナ", Kind: "html"},
				{URL: "https://www.pref.aichi.jp/soshiki/list7-1.html", Keyword: "コロナ", Kind: "html"},
			},
			Translator: TranslatorConfig{
				Provider:   "none",
				SourceLang: "ja",
				TargetLang: "en",
				TimeoutSec: 60,
			},
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
			BufferSizeKb:      32 * 1024,
		},
		Output:  OutputConfig{Dir: "/data"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default, then
// applies environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Fetcher.PageURL == "" {
		return ErrMissingPageURL
	}

	for i, t := range c.Fetcher.Targets {
		if t.Dir == "" {
			return fmt.Errorf("%w: target[%d]", ErrTargetMissingDir, i)
		}

		if t.LinkTitle == "" {
			return fmt.Errorf("%w: target[%d]", ErrTargetMissingLinkTitle, i)
		}
	}

	if err := c.validateConverter(); err != nil {
		return err
	}

	if err := c.validateNews(); err != nil {
		return err
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

func (c *Config) validateConverter() error {
	cv := c.Converter

	if cv.PatientsGlob == "" {
		return ErrMissingPatientsGlob
	}

	if cv.InspectionsGlob == "" {
		return ErrMissingInspectionsGlob
	}

	switch cv.Extractor.Kind {
	case "tabula":
		if len(cv.Extractor.Command) == 0 {
			return ErrMissingExtractorCommand
		}
	case "csv":
	default:
		return ErrInvalidExtractorKind
	}

	if cv.EpochYear < 1000 || cv.EpochYear > 9999 {
		return ErrInvalidEpochYear
	}

	if cv.SummaryFill != "sparse" && cv.SummaryFill != "dense" {
		return ErrInvalidSummaryFill
	}

	return nil
}

func (c *Config) validateNews() error {
	n := c.News

	if len(n.Listings) == 0 {
		return ErrNoListings
	}

	for i, l := range n.Listings {
		if l.URL == "" {
			return fmt.Errorf("%w: listing[%d]", ErrListingMissingURL, i)
		}

		if l.Kind != "html" && l.Kind != "rss" {
			return fmt.Errorf("%w: listing[%d]", ErrInvalidListingKind, i)
		}
	}

	if n.MaxItems < 1 {
		return ErrInvalidMaxItems
	}

	switch n.Translator.Provider {
	case "none":
	case "openai":
		if n.Translator.APIKey == "" {
			return ErrMissingTranslatorKey
		}
	case "ollama":
		if n.Translator.BaseURL == "" {
			return ErrMissingTranslatorBaseURL
		}
	default:
		return ErrInvalidTranslator
	}

	return nil
}

// Profile resolves the run mode. Code4Nagoya switches the date suffix only;
// converter.schema selects another column layout such as SchemaNagoya.
func (c *Config) Profile() Profile {
	p := Profile{Name: "aichi", DateSuffix: SuffixJST, Schema: SchemaAichi}
	if c.Code4Nagoya {
		p = Profile{Name: "code4nagoya", DateSuffix: SuffixUTC, Schema: SchemaAichi}
	}

	if c.Converter.Schema != "" {
		p.Schema = c.Converter.Schema
	}

	return p
}

// OutputPath joins name onto the output directory.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(c.Output.Dir, name)
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// GetTimeout returns the translator request timeout.
func (tc *TranslatorConfig) GetTimeout() time.Duration {
	return time.Duration(tc.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Profile: %s, Targets: %d, Listings: %d, Output: %s}",
		c.Profile().Name,
		len(c.Fetcher.Targets),
		len(c.News.Listings),
		c.Output.Dir,
	)
}
