// Package sarvam implements tts.SegmentSynthesizer with the Sarvam AI
// text-to-speech API.
//
// The API accepts at most 500 characters per input and answers with
// base64-encoded WAV audio:
//
//	POST https://api.sarvam.ai/text-to-speech
//	{"inputs": ["..."], "target_language_code": "hi-IN", "speaker": "meera", ...}
//	-> {"audios": ["<base64 wav>"]}
package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/tts"
)

const (
	defaultURL   = "https://api.sarvam.ai/text-to-speech"
	defaultModel = "bulbul:v1"

	// maxInputChars is the provider's per-input ceiling.
	maxInputChars = 500
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("sarvam tts: api key not configured")

// Synthesizer calls the Sarvam TTS endpoint once per chunk.
type Synthesizer struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// New creates a Sarvam segment synthesizer from config.
func New(cfg config.SarvamConfig, client *http.Client) *Synthesizer {
	url := cfg.TTSURL
	if url == "" {
		url = defaultURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Synthesizer{
		apiKey: cfg.APIKey,
		url:    url,
		model:  cfg.TTSModel,
		client: client,
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "sarvam" }

// SynthesizeSegment sends one chunk to the API and returns the decoded WAV bytes.
func (s *Synthesizer) SynthesizeSegment(ctx context.Context, text string, opts tts.SynthesizeOpts) ([]byte, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	runes := []rune(text)
	if len(runes) > maxInputChars {
		text = string(runes[:maxInputChars-3]) + "..."
		slog.Warn("truncating chunk to provider limit", "length", len(runes), "limit", maxInputChars)
	}

	model := opts.Model
	if model == "" {
		model = s.model
	}
	if model == "" {
		model = defaultModel
	}
	speaker := opts.Speaker
	if speaker == "" {
		speaker = tts.DefaultSpeaker(opts.Language)
	}

	reqBody := ttsRequest{
		Inputs:              []string{text},
		TargetLanguageCode:  tts.RegionCode(opts.Language),
		Speaker:             speaker,
		Model:               model,
		Pitch:               opts.Pitch,
		Pace:                orDefault(opts.Pace, 1.0),
		Loudness:            orDefault(opts.Loudness, 1.0),
		EnablePreprocessing: opts.Preprocess,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, respBody)
	}

	var out ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding tts response: %w", err)
	}
	if len(out.Audios) == 0 || out.Audios[0] == "" {
		return nil, fmt.Errorf("no audio data in tts response")
	}

	audio, err := base64.StdEncoding.DecodeString(out.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("decoding tts audio: %w", err)
	}
	slog.Debug("sarvam segment synthesized", "text_length", len([]rune(text)), "audio_bytes", len(audio))
	return audio, nil
}

// Close is a no-op; requests are independent.
func (s *Synthesizer) Close() error { return nil }

type ttsRequest struct {
	Inputs              []string `json:"inputs"`
	TargetLanguageCode  string   `json:"target_language_code"`
	Speaker             string   `json:"speaker"`
	Model               string   `json:"model"`
	Pitch               float64  `json:"pitch"`
	Pace                float64  `json:"pace"`
	Loudness            float64  `json:"loudness"`
	EnablePreprocessing bool     `json:"enable_preprocessing"`
}

type ttsResponse struct {
	Audios []string `json:"audios"`
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
