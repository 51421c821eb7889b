// Package openai implements reasoning.Backend with the OpenAI chat
// completions API. Any OpenAI-compatible endpoint (Ollama, vLLM) works
// through base_url.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/reasoning"
)

const defaultModel = "gpt-4o-mini"

// Backend sends prompts as chat completions.
type Backend struct {
	client *openai.Client
	model  string
}

// New creates an OpenAI backend. Extra request options are appended after
// the configured key and base URL.
func New(cfg config.OpenAIConfig, opts ...option.RequestOption) *Backend {
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	options = append(options, opts...)

	client := openai.NewClient(options...)
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Backend{client: &client, model: model}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "openai" }

// Generate sends the prompt and returns the first choice's content.
// Images are sent as data-URI content parts; other attachments are rejected.
func (b *Backend) Generate(ctx context.Context, p reasoning.Prompt) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}

	switch {
	case p.Attachment == nil:
		messages = append(messages, openai.UserMessage(p.Text))
	case p.Attachment.IsImage():
		messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(p.Text),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: p.Attachment.DataURI(),
			}),
		}))
	default:
		return "", fmt.Errorf("openai backend: unsupported attachment type %q", p.Attachment.MIMEType)
	}

	slog.Debug("openai request", "model", b.model, "messages", len(messages))
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", reasoning.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
