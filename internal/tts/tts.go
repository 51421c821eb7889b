// Package tts defines text-to-speech synthesis for parley.
//
// Providers accept only a bounded amount of text per request, so the
// package splits synthesis in two layers: a SegmentSynthesizer performs one
// provider call for one chunk, and Chunked turns any text into a single WAV
// stream by chunking, synthesizing and re-assembling the PCM data.
package tts

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyText is returned when there is nothing left to speak after cleanup.
	ErrEmptyText = errors.New("tts: empty text")

	// ErrNoAudio is returned when not a single chunk could be synthesized.
	ErrNoAudio = errors.New("tts: no chunk produced audio")
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is a bare ISO-639-1 code ("hi") or a region code ("hi-IN").
	Language string

	// Speaker overrides the default speaker for the language.
	Speaker string

	// Model overrides the provider's default synthesis model.
	Model string

	// Pitch, Pace and Loudness are forwarded to providers that support them.
	Pitch    float64
	Pace     float64
	Loudness float64

	// Preprocess enables digit grouping and provider-side normalization.
	Preprocess bool
}

// Synthesizer converts text of any length to audio.
type Synthesizer interface {
	// Synthesize generates a WAV stream from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SegmentSynthesizer performs one provider call for one chunk of text.
// Implementations must return a complete WAV file.
type SegmentSynthesizer interface {
	// Name returns the backend identifier (e.g., "sarvam", "piper").
	Name() string

	// SynthesizeSegment converts a chunk of at most the provider's ceiling to WAV.
	SynthesizeSegment(ctx context.Context, text string, opts SynthesizeOpts) ([]byte, error)

	// Close releases any resources held by the backend.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (always "audio/wav").
	ContentType string

	// SampleRate, Channels and BitDepth describe the PCM data in Audio.
	SampleRate int
	Channels   int
	BitDepth   int

	// Frames is the number of sample frames in Audio.
	Frames int

	// Chunks is the number of chunks the text was split into.
	Chunks int

	// FailedChunks is the number of chunks whose audio is missing from Audio.
	FailedChunks int

	// TextLength is the length in characters of the text that was spoken.
	TextLength int
}

// regionCodes maps bare language codes to the provider's region codes.
var regionCodes = map[string]string{
	"hi": "hi-IN",
	"en": "en-IN",
	"ta": "ta-IN",
	"bn": "bn-IN",
	"gu": "gu-IN",
	"mr": "mr-IN",
	"te": "te-IN",
	"kn": "kn-IN",
	"ml": "ml-IN",
	"pa": "pa-IN",
	"od": "od-IN",
}

// defaultSpeakers maps bare language codes to a default speaker voice.
var defaultSpeakers = map[string]string{
	"hi": "meera",
	"en": "arjun",
	"ta": "maitreyi",
	"bn": "amartya",
	"gu": "meera",
	"mr": "amol",
	"te": "arvind",
	"kn": "maya",
	"ml": "diya",
	"pa": "neel",
}

const (
	fallbackRegion  = "hi-IN"
	fallbackSpeaker = "meera"
)

// BaseLanguage returns the bare language part of a code ("hi-IN" -> "hi").
func BaseLanguage(code string) string {
	code = strings.TrimSpace(strings.ToLower(code))
	if i := strings.IndexByte(code, '-'); i >= 0 {
		return code[:i]
	}
	return code
}

// RegionCode resolves a bare or qualified code to the provider region code.
// Qualified codes are passed through; unknown bare codes fall back to hi-IN.
func RegionCode(code string) string {
	code = strings.TrimSpace(code)
	if strings.Contains(code, "-") {
		base, region, _ := strings.Cut(code, "-")
		return strings.ToLower(base) + "-" + strings.ToUpper(region)
	}
	if rc, ok := regionCodes[strings.ToLower(code)]; ok {
		return rc
	}
	return fallbackRegion
}

// DefaultSpeaker returns the default voice for a language.
func DefaultSpeaker(code string) string {
	if s, ok := defaultSpeakers[BaseLanguage(code)]; ok {
		return s
	}
	return fallbackSpeaker
}
