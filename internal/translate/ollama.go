package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama translates with a local Ollama server.
type Ollama struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// NewOllama creates a translator for the server at baseURL
// (for example http://localhost:11434).
func NewOllama(baseURL, model string, timeout time.Duration) (*Ollama, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("ollama base url %q: invalid", baseURL)
	}

	return &Ollama{
		client:  api.NewClient(u, &http.Client{}),
		model:   model,
		timeout: timeout,
	}, nil
}

func (o *Ollama) Translate(ctx context.Context, text, source, target string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	req := &api.GenerateRequest{
		Model:  o.model,
		System: systemPrompt(source, target),
		Prompt: text,
	}

	var b strings.Builder

	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return clean(b.String())
}
