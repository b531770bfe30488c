package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"covidfeed/internal/models"
	"covidfeed/internal/translate"
)

// Heading is the fixed first key of the i18n lookup.
const (
	Heading            = "最新のお知らせ"
	HeadingTranslation = "What's new"
)

// I18n is the WhatsNew.i18n.json document: the primary locale maps each text
// to itself and the secondary locale maps it to its translation.
type I18n struct {
	Ja *orderedmap.OrderedMap[string, string] `json:"ja"`
	En *orderedmap.OrderedMap[string, string] `json:"en"`
}

// BuildI18n builds the lookup for the heading followed by every item title,
// in item order. Each distinct title is translated once.
func BuildI18n(ctx context.Context, items []models.NewsItem, tr translate.Translator, source, target string) (*I18n, error) {
	doc := &I18n{
		Ja: orderedmap.New[string, string](),
		En: orderedmap.New[string, string](),
	}

	doc.Ja.Set(Heading, Heading)
	doc.En.Set(Heading, HeadingTranslation)

	for _, it := range items {
		if _, ok := doc.Ja.Get(it.Title); ok {
			continue
		}

		translated, err := tr.Translate(ctx, it.Title, source, target)
		if err != nil {
			return nil, fmt.Errorf("translate %q: %w", it.Title, err)
		}

		doc.Ja.Set(it.Title, it.Title)
		doc.En.Set(it.Title, translated)
	}

	return doc, nil
}

// MarshalJSON writes both locales in insertion order. Keys and values are
// encoded without HTML escaping, matching the rest of the published feeds.
func (d *I18n) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"ja":`)

	if err := writePairs(&buf, d.Ja); err != nil {
		return nil, fmt.Errorf("ja: %w", err)
	}

	buf.WriteString(`,"en":`)

	if err := writePairs(&buf, d.En); err != nil {
		return nil, fmt.Errorf("en: %w", err)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writePairs(buf *bytes.Buffer, m *orderedmap.OrderedMap[string, string]) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')

	if m != nil {
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			if pair != m.Oldest() {
				buf.WriteByte(',')
			}

			if err := enc.Encode(pair.Key); err != nil {
				return err
			}

			buf.Truncate(buf.Len() - 1) // Encode appends a newline.
			buf.WriteByte(':')

			if err := enc.Encode(pair.Value); err != nil {
				return err
			}

			buf.Truncate(buf.Len() - 1)
		}
	}

	buf.WriteByte('}')

	return nil
}
