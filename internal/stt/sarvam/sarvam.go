// Package sarvam implements stt.Recognizer with the Sarvam AI
// speech-to-text API.
//
//	POST https://api.sarvam.ai/speech-to-text
//	multipart: file, model=saarika:v1, language_code=hi-IN
//	-> {"transcript": "..."}
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/stt"
)

const (
	defaultURL   = "https://api.sarvam.ai/speech-to-text"
	defaultModel = "saarika:v1"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("sarvam stt: api key not configured")

// Recognizer calls the Sarvam STT endpoint.
type Recognizer struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// New creates a Sarvam recognizer from config.
func New(cfg config.SarvamConfig, client *http.Client) *Recognizer {
	url := cfg.STTURL
	if url == "" {
		url = defaultURL
	}
	model := cfg.STTModel
	if model == "" {
		model = defaultModel
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Recognizer{apiKey: cfg.APIKey, url: url, model: model, client: client}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "sarvam" }

// Transcribe uploads the audio and returns the transcript.
func (r *Recognizer) Transcribe(ctx context.Context, audio []byte, opts stt.TranscribeOpts) (*stt.TranscribeResult, error) {
	if r.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+stt.ExtFromContentType(opts.ContentType))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = r.model
	}
	lang := stt.NormalizeLanguage(opts.Language)
	_ = writer.WriteField("model", model)
	_ = writer.WriteField("language_code", lang)
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("api-subscription-key", r.apiKey)

	slog.Debug("sarvam stt request", "model", model, "language", lang, "audio_bytes", len(audio))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("stt failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Transcript   string `json:"transcript"`
		LanguageCode string `json:"language_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding stt response: %w", err)
	}

	detected := result.LanguageCode
	if detected == "" {
		detected = lang
	}
	return &stt.TranscribeResult{Text: result.Transcript, Language: detected}, nil
}
