package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cristalhq/aconfig"
)

// ErrInvalidBool is returned for an unrecognised boolean spelling.
var ErrInvalidBool = errors.New("invalid truth value")

// envOverrides lists the variables the deployment sets. Values are strings so
// that an unset variable can be told apart from an explicit false.
type envOverrides struct {
	Code4Nagoya string `env:"CODE4NAGOYA"`
	OutputDir   string `env:"FEED_OUTPUT_DIR"`
	LogLevel    string `env:"FEED_LOG_LEVEL"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() error {
	var env envOverrides

	loader := aconfig.LoaderFor(&env, aconfig.Config{
		SkipDefaults:     true,
		SkipFiles:        true,
		SkipFlags:        true,
		AllowUnknownEnvs: true,
	})

	if err := loader.Load(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if env.Code4Nagoya != "" {
		v, err := ParseBool(env.Code4Nagoya)
		if err != nil {
			return fmt.Errorf("CODE4NAGOYA: %w", err)
		}

		c.Code4Nagoya = v
	}

	if env.OutputDir != "" {
		c.Output.Dir = env.OutputDir
	}

	if env.LogLevel != "" {
		c.Logging.Level = strings.ToLower(env.LogLevel)
	}

	if env.OpenAIKey != "" && c.News.Translator.APIKey == "" {
		c.News.Translator.APIKey = env.OpenAIKey
	}

	return nil
}

// ParseBool accepts the spellings deployments historically used for the mode
// flag: y, yes, t, true, on, 1 and n, no, f, false, off, 0.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}

	return false, fmt.Errorf("%w: %q", ErrInvalidBool, s)
}
