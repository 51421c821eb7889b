package stt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/parley/internal/message"
	"github.com/nadzzz/parley/internal/reasoning"
)

// NoSpeechReply is the reply sent when a recording contains no words.
const NoSpeechReply = "I couldn't hear what you said. Please try again."

// Result is the outcome of Adapter.Recognize. On failure Transcript is
// empty and Err is set.
type Result struct {
	Transcript string
	Language   string
	Err        error
}

// Replier answers a transcribed utterance.
type Replier interface {
	Reply(ctx context.Context, req reasoning.Request) reasoning.Result
}

// Adapter wraps a Recognizer. A nil recognizer reports ErrNotConfigured.
type Adapter struct {
	rec     Recognizer
	timeout time.Duration
}

// NewAdapter creates an adapter around rec.
func NewAdapter(rec Recognizer, timeout time.Duration) *Adapter {
	return &Adapter{rec: rec, timeout: timeout}
}

// Configured reports whether a recognizer is available.
func (a *Adapter) Configured() bool { return a.rec != nil }

// Recognize transcribes audio in the given language. It never panics and
// never returns an error value; failures are carried in Result.Err.
func (a *Adapter) Recognize(ctx context.Context, audio []byte, lang string) (res Result) {
	res.Language = NormalizeLanguage(lang)
	if a.rec == nil {
		res.Err = ErrNotConfigured
		return res
	}
	if len(audio) == 0 {
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("recognizer panicked", "backend", a.rec.Name(), "panic", r)
			res = Result{Language: res.Language, Err: fmt.Errorf("stt: recognizer failed: %v", r)}
		}
	}()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := a.rec.Transcribe(ctx, audio, TranscribeOpts{Language: res.Language, ContentType: "audio/wav"})
	if err != nil {
		slog.Error("transcription failed", "backend", a.rec.Name(), "error", err)
		res.Err = err
		return res
	}

	res.Transcript = strings.TrimSpace(out.Text)
	slog.Debug("transcription complete",
		"backend", a.rec.Name(),
		"language", res.Language,
		"transcript_length", len(res.Transcript),
		"duration", time.Since(start),
	)
	return res
}

// RecognizeAndReply transcribes audio and immediately answers it. An empty
// transcript yields NoSpeechReply as the bot text.
func (a *Adapter) RecognizeAndReply(ctx context.Context, audio []byte, lang string, r Replier) message.VoiceReply {
	res := a.Recognize(ctx, audio, lang)
	if res.Err != nil {
		return message.VoiceReply{Error: res.Err.Error()}
	}
	if res.Transcript == "" {
		return message.VoiceReply{Bot: NoSpeechReply}
	}

	reply := r.Reply(ctx, reasoning.Request{Text: res.Transcript, Language: lang})
	return message.VoiceReply{Text: res.Transcript, Bot: reply.Text}
}
