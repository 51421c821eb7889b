// Package stt converts recorded speech into text.
//
// Recognizer backends perform the provider call; the Adapter wraps one and
// reports failures as data so callers on a live connection never have to
// unwind errors.
package stt

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is reported when no recognizer is available.
var ErrNotConfigured = errors.New("stt: speech recognition not configured")

// TranscribeOpts controls transcription behavior.
type TranscribeOpts struct {
	// Language is a provider region code such as "hi-IN".
	Language string

	// Model overrides the backend's default transcription model.
	Model string

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string
}

// TranscribeResult holds the output of a transcription.
type TranscribeResult struct {
	Text     string
	Language string
}

// Recognizer is a speech-to-text provider.
type Recognizer interface {
	// Name returns the backend identifier (e.g., "sarvam", "whisper").
	Name() string

	// Transcribe converts audio bytes to text.
	Transcribe(ctx context.Context, audio []byte, opts TranscribeOpts) (*TranscribeResult, error)
}

// allowedLanguages are the language codes accepted by the recognition API.
var allowedLanguages = map[string]bool{
	"unknown": true,
	"hi-IN":   true,
	"bn-IN":   true,
	"kn-IN":   true,
	"ml-IN":   true,
	"mr-IN":   true,
	"od-IN":   true,
	"pa-IN":   true,
	"ta-IN":   true,
	"te-IN":   true,
	"en-IN":   true,
	"gu-IN":   true,
}

const fallbackLanguage = "hi-IN"

// NormalizeLanguage maps a bare or qualified language code to one the
// recognition API accepts. Bare codes get the "-IN" region; anything
// outside the allowlist becomes hi-IN.
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return fallbackLanguage
	}
	if strings.EqualFold(code, "unknown") {
		return "unknown"
	}
	if base, region, ok := strings.Cut(code, "-"); ok {
		code = strings.ToLower(base) + "-" + strings.ToUpper(region)
	} else {
		code = strings.ToLower(code) + "-IN"
	}
	if !allowedLanguages[code] {
		return fallbackLanguage
	}
	return code
}
