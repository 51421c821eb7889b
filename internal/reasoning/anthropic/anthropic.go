// Package anthropic implements reasoning.Backend with the Anthropic
// messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/reasoning"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Backend sends prompts as single-message conversations.
type Backend struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// New creates an Anthropic backend. Extra request options are appended
// after the configured key.
func New(cfg config.AnthropicConfig, opts ...option.RequestOption) *Backend {
	options := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client := anthropic.NewClient(options...)

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Backend{client: &client, model: model, maxTokens: maxTokens}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "anthropic" }

// Generate sends the prompt and concatenates the returned text blocks.
func (b *Backend) Generate(ctx context.Context, p reasoning.Prompt) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(p.Text)}
	if p.Attachment != nil {
		if !p.Attachment.IsImage() {
			return "", fmt.Errorf("anthropic backend: unsupported attachment type %q", p.Attachment.MIMEType)
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			p.Attachment.MIMEType,
			base64.StdEncoding.EncodeToString(p.Attachment.Data),
		))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: b.maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	slog.Debug("anthropic request", "model", b.model, "attachment", p.Attachment != nil)
	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", reasoning.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}
