// Package gemini implements reasoning.Backend with Google Gemini through
// the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/reasoning"
)

const defaultModel = "gemini-2.0-flash-001"

// Backend sends prompts to the Gemini generateContent API.
// The SDK client is created on first use.
type Backend struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	once    sync.Once
	client  *genai.Client
	initErr error
}

// New creates a Gemini backend. baseURL overrides the API endpoint and is
// empty in production.
func New(cfg config.GeminiConfig, baseURL string, httpClient *http.Client) *Backend {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Backend{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "gemini" }

func (b *Backend) init(ctx context.Context) error {
	b.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:     b.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: b.httpClient,
		}
		if b.baseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: b.baseURL}
		}
		b.client, b.initErr = genai.NewClient(ctx, cc)
		if b.initErr == nil {
			slog.Debug("gemini client initialized", "model", b.model)
		}
	})
	return b.initErr
}

// Generate sends the prompt and concatenates the text parts of the first
// candidate.
func (b *Backend) Generate(ctx context.Context, p reasoning.Prompt) (string, error) {
	if err := b.init(ctx); err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	parts := []*genai.Part{genai.NewPartFromText(p.Text)}
	if p.Attachment != nil {
		parts = append(parts, genai.NewPartFromBytes(p.Attachment.Data, p.Attachment.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	gc := &genai.GenerateContentConfig{}
	if p.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.Search {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	slog.Debug("gemini request", "model", b.model, "attachment", p.Attachment != nil, "search", p.Search)
	result, err := b.client.Models.GenerateContent(ctx, b.model, contents, gc)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", reasoning.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	var sb strings.Builder
	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		break
	}
	return sb.String(), nil
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && (apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}
