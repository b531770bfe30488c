// Package translate turns Japanese news titles into the secondary locale of
// the i18n lookup.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"covidfeed/internal/config"
)

// ErrUnknownProvider is returned for an unsupported translator provider.
var ErrUnknownProvider = errors.New("unknown translator provider")

// ErrEmptyTranslation is returned when a backend answers with no text.
var ErrEmptyTranslation = errors.New("empty translation")

// Provider names accepted in news.translator.provider.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Translator translates text from the source to the target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// New builds the translator selected by cfg.
func New(cfg config.TranslatorConfig) (Translator, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return Identity{}, nil
	case ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.GetTimeout()), nil
	case ProviderOllama:
		o, err := NewOllama(cfg.BaseURL, cfg.Model, cfg.GetTimeout())
		if err != nil {
			return nil, err
		}

		return o, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
}

// Identity returns its input unchanged.
type Identity struct{}

func (Identity) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

func systemPrompt(source, target string) string {
	return fmt.Sprintf("Translate the user's text from %s to %s. "+
		"It is the title of a public health announcement. "+
		"Reply with the translation only, on one line, without quotes.", source, target)
}

func clean(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"「」")

	if s == "" {
		return "", ErrEmptyTranslation
	}

	return s, nil
}
