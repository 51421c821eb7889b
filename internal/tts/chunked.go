package tts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/parley/internal/textnorm"
)

// DefaultChunkChars is the per-request character ceiling of the Sarvam API.
const DefaultChunkChars = 500

// Chunked is a Synthesizer that splits text into provider-sized chunks and
// re-assembles the per-chunk audio into one WAV stream.
//
// Chunks are synthesized sequentially so that the audio keeps text order.
// A chunk that fails is skipped; synthesis fails only when no chunk
// produced audio.
type Chunked struct {
	backend   SegmentSynthesizer
	chunkSize int
	defaults  SynthesizeOpts
}

// NewChunked wraps a segment backend. A chunkSize <= 0 uses DefaultChunkChars.
// Zero-valued fields of opts are filled from defaults on every call.
func NewChunked(backend SegmentSynthesizer, chunkSize int, defaults SynthesizeOpts) *Chunked {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkChars
	}
	return &Chunked{backend: backend, chunkSize: chunkSize, defaults: defaults}
}

// Synthesize cleans, chunks and synthesizes text, returning one WAV stream.
func (c *Chunked) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error) {
	opts = c.withDefaults(opts)

	text = textnorm.Strip(text)
	if opts.Preprocess {
		text = textnorm.GroupDigits(text)
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	chunks := SplitChunks(text, c.chunkSize)
	logger := slog.With("backend", c.backend.Name(), "language", opts.Language, "speaker", opts.Speaker)
	logger.Debug("synthesizing", "text_length", len([]rune(text)), "chunks", len(chunks))

	var (
		first  *pcmFormat
		pcm    bytes.Buffer
		frames int
		failed int
	)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("synthesis cancelled: %w", err)
		}

		wavBytes, err := c.backend.SynthesizeSegment(ctx, chunk, opts)
		if err != nil {
			failed++
			logger.Warn("chunk synthesis failed", "chunk", i+1, "error", err)
			continue
		}
		seg, err := decodeSegment(wavBytes)
		if err != nil {
			failed++
			logger.Warn("chunk audio undecodable", "chunk", i+1, "error", err)
			continue
		}
		if first == nil {
			f := seg.format
			first = &f
		} else if seg.format != *first {
			failed++
			logger.Warn("chunk audio format mismatch", "chunk", i+1, "want", *first, "got", seg.format)
			continue
		}

		pcm.Write(seg.pcm)
		frames += seg.frames
		logger.Debug("chunk synthesized", "chunk", i+1, "frames", seg.frames)
	}

	if first == nil {
		return nil, fmt.Errorf("%w (%d chunks attempted)", ErrNoAudio, len(chunks))
	}
	if failed > 0 {
		logger.Warn("partial synthesis", "chunks", len(chunks), "failed", failed)
	}

	return &SynthesizeResult{
		Audio:        pcmToWAV(pcm.Bytes(), *first),
		ContentType:  "audio/wav",
		SampleRate:   first.SampleRate,
		Channels:     first.Channels,
		BitDepth:     first.BitDepth,
		Frames:       frames,
		Chunks:       len(chunks),
		FailedChunks: failed,
		TextLength:   len([]rune(text)),
	}, nil
}

// Close closes the segment backend.
func (c *Chunked) Close() error { return c.backend.Close() }

func (c *Chunked) withDefaults(opts SynthesizeOpts) SynthesizeOpts {
	if opts.Language == "" {
		opts.Language = c.defaults.Language
	}
	if opts.Speaker == "" {
		opts.Speaker = c.defaults.Speaker
	}
	if opts.Speaker == "" {
		opts.Speaker = DefaultSpeaker(opts.Language)
	}
	if opts.Model == "" {
		opts.Model = c.defaults.Model
	}
	if opts.Pace == 0 {
		opts.Pace = c.defaults.Pace
	}
	if opts.Loudness == 0 {
		opts.Loudness = c.defaults.Loudness
	}
	if opts.Pitch == 0 {
		opts.Pitch = c.defaults.Pitch
	}
	return opts
}

// SplitChunks splits text into consecutive pieces of at most size runes.
func SplitChunks(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkChars
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
