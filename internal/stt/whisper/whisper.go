// Package whisper implements stt.Recognizer against any OpenAI-compatible
// transcription endpoint: OpenAI itself, whisper.cpp server or
// faster-whisper.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/stt"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"
	defaultModel    = "whisper-1"
)

// Recognizer posts audio as multipart form data.
type Recognizer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// New creates a Whisper recognizer from config.
func New(cfg config.WhisperConfig, client *http.Client) *Recognizer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Recognizer{endpoint: endpoint, apiKey: cfg.APIKey, model: model, client: client}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "whisper" }

// Transcribe sends audio to the endpoint. Whisper expects bare ISO-639-1
// codes, so region suffixes are dropped and "unknown" lets it auto-detect.
func (r *Recognizer) Transcribe(ctx context.Context, audio []byte, opts stt.TranscribeOpts) (*stt.TranscribeResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+stt.ExtFromContentType(opts.ContentType))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = r.model
	}
	_ = writer.WriteField("model", model)

	lang, _, _ := strings.Cut(strings.ToLower(opts.Language), "-")
	if lang != "" && lang != "unknown" {
		_ = writer.WriteField("language", lang)
	}
	_ = writer.WriteField("response_format", "verbose_json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	detected := normalizeLanguage(result.Language)
	slog.Debug("whisper transcription complete", "text_length", len(result.Text), "language", detected)
	return &stt.TranscribeResult{Text: result.Text, Language: detected}, nil
}

// normalizeLanguage converts the full language names some servers return
// ("hindi") to ISO-639-1 codes.
func normalizeLanguage(lang string) string {
	if len(lang) == 2 {
		return strings.ToLower(lang)
	}
	known := map[string]string{
		"english":   "en",
		"hindi":     "hi",
		"tamil":     "ta",
		"bengali":   "bn",
		"gujarati":  "gu",
		"marathi":   "mr",
		"telugu":    "te",
		"kannada":   "kn",
		"malayalam": "ml",
		"punjabi":   "pa",
		"urdu":      "ur",
		"nepali":    "ne",
	}
	if code, ok := known[strings.ToLower(lang)]; ok {
		return code
	}
	return strings.ToLower(lang)
}
