// Package dispatch implements the request/response side of parley.
//
// The dispatcher answers REST chat messages, voice notes, speech requests
// and document questions by running them through the reasoning, recognition
// and synthesis adapters. Every call returns a reply for the caller; only
// malformed input and unknown files are reported as errors.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/parley/internal/filestore"
	"github.com/nadzzz/parley/internal/message"
	"github.com/nadzzz/parley/internal/reasoning"
	"github.com/nadzzz/parley/internal/stt"
	"github.com/nadzzz/parley/internal/textnorm"
	"github.com/nadzzz/parley/internal/tts"
)

const (
	// Greeting seeds the message log.
	Greeting = "नमस्ते! मैं आपकी कैसे मदद कर सकता हूँ?"

	senderUser = "user"
	senderBot  = "bot"

	defaultLanguage = "hi"
	defaultLogSize  = 200
)

var (
	// ErrBadRequest is returned for requests missing required fields.
	ErrBadRequest = errors.New("dispatch: bad request")

	// ErrSpeechDisabled is returned by Speak when no synthesizer is configured.
	ErrSpeechDisabled = errors.New("dispatch: speech synthesis disabled")
)

// Replier produces assistant replies. *reasoning.Adapter implements it.
type Replier interface {
	Reply(ctx context.Context, req reasoning.Request) reasoning.Result
}

// Options tune the dispatcher.
type Options struct {
	// LogSize bounds the message log. Zero selects 200.
	LogSize int

	// Speech holds synthesis defaults applied to every /tts request.
	Speech tts.SynthesizeOpts
}

// Dispatcher is the REST chat engine.
type Dispatcher struct {
	replier    Replier
	recognizer *stt.Adapter
	synth      tts.Synthesizer // nil if TTS is disabled
	files      filestore.Store
	opts       Options

	mu  sync.Mutex
	log []message.ChatMessage
	now func() time.Time
}

// New creates a dispatcher. synth may be nil to disable /tts.
func New(replier Replier, recognizer *stt.Adapter, synth tts.Synthesizer, files filestore.Store, opts Options) *Dispatcher {
	if opts.LogSize <= 0 {
		opts.LogSize = defaultLogSize
	}
	if recognizer == nil {
		recognizer = stt.NewAdapter(nil, 0)
	}
	d := &Dispatcher{
		replier:    replier,
		recognizer: recognizer,
		synth:      synth,
		files:      files,
		opts:       opts,
		now:        time.Now,
	}
	d.record(message.ChatMessage{Sender: senderBot, Text: Greeting, Timestamp: d.now()})
	return d
}

// Messages returns a copy of the message log, oldest first.
func (d *Dispatcher) Messages() []message.ChatMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]message.ChatMessage, len(d.log))
	copy(out, d.log)
	return out
}

func (d *Dispatcher) record(msgs ...message.ChatMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = append(d.log, msgs...)
	if over := len(d.log) - d.opts.LogSize; over > 0 {
		d.log = append(d.log[:0:0], d.log[over:]...)
	}
}

// Chat answers one REST chat message and appends both sides to the log.
func (d *Dispatcher) Chat(ctx context.Context, req message.ChatRequest) (message.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return message.ChatMessage{}, fmt.Errorf("%w: text is required", ErrBadRequest)
	}
	lang := req.Language
	if lang == "" {
		lang = defaultLanguage
	}
	mode := req.Mode
	if mode == "" {
		mode = message.ChatModeStandard
	}

	logger := slog.With("mode", mode, "language", lang)

	rreq := reasoning.Request{Text: text, Language: lang}
	switch mode {
	case message.ChatModeStandard:
	case message.ChatModeSearch:
		rreq.Search = true
	case message.ChatModeFile:
		att, err := d.attachment(ctx, req.FileID)
		if err != nil {
			return message.ChatMessage{}, err
		}
		rreq.Image = att
	default:
		return message.ChatMessage{}, fmt.Errorf("%w: unknown mode %q", ErrBadRequest, mode)
	}

	user := message.ChatMessage{
		Sender:    senderUser,
		Text:      text,
		Timestamp: d.now(),
		Language:  lang,
		Mode:      mode,
	}

	res := d.replier.Reply(ctx, rreq)
	reply := message.ChatMessage{Sender: senderBot, Language: lang, Mode: mode}

	if res.Reason == reasoning.ReasonQuotaExceeded {
		reply.QuotaExceeded = true
		if mode == message.ChatModeSearch {
			logger.Warn("search quota exceeded, retrying without search")
			rreq.Search = false
			reply.FallbackFromSearch = true
			reply.Mode = message.ChatModeStandard
			res = d.replier.Reply(ctx, rreq)
		}
	}
	if !res.Success {
		reply.Error = string(res.Reason)
	}

	reply.Text = textnorm.Strip(res.Text)
	if reply.Text == "" {
		reply.Text = res.Text
	}
	reply.Timestamp = d.now()

	d.record(user, reply)
	logger.Info("chat answered", "reason", res.Reason, "reply_length", len(reply.Text))
	return reply, nil
}

// QueryDocument answers a question about an uploaded document.
func (d *Dispatcher) QueryDocument(ctx context.Context, q message.DocumentQuery) (message.ChatMessage, error) {
	return d.Chat(ctx, message.ChatRequest{
		Sender:   senderUser,
		Text:     q.Query,
		Language: q.Language,
		Mode:     message.ChatModeFile,
		FileID:   q.FileID,
	})
}

func (d *Dispatcher) attachment(ctx context.Context, id string) (*reasoning.Attachment, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: file_id is required", ErrBadRequest)
	}
	if d.files == nil {
		return nil, fmt.Errorf("file %s: %w", id, filestore.ErrNotFound)
	}
	f, err := d.files.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", id, err)
	}
	return &reasoning.Attachment{Data: f.Data, MIMEType: f.ContentType}, nil
}

// Transcribe recognizes a voice note and answers it.
func (d *Dispatcher) Transcribe(ctx context.Context, audio []byte, lang string) message.VoiceReply {
	if lang == "" {
		lang = "hi-IN"
	}
	out := d.recognizer.RecognizeAndReply(ctx, audio, lang, d.replier)
	if out.Bot != "" {
		if s := textnorm.Strip(out.Bot); s != "" {
			out.Bot = s
		}
	}
	slog.Info("voice note answered", "language", lang, "transcript_length", len(out.Text), "error", out.Error)
	return out
}

// Speak synthesizes text with per-request overrides of the configured
// voice parameters. Synthesis failures are reported in the result.
func (d *Dispatcher) Speak(ctx context.Context, req message.SpeechRequest) (message.SpeechResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return message.SpeechResult{Error: "Missing text"}, fmt.Errorf("%w: text is required", ErrBadRequest)
	}
	if d.synth == nil {
		return message.SpeechResult{Error: "TTS service is disabled"}, ErrSpeechDisabled
	}

	opts := d.speechOpts(req)
	res, err := d.synth.Synthesize(ctx, req.Text, opts)
	if err != nil {
		slog.Error("speech synthesis failed", "language", opts.Language, "error", err)
		return message.SpeechResult{Error: "TTS service failed: " + err.Error()}, nil
	}

	out := message.SpeechResult{
		Success:         true,
		ContentType:     res.ContentType,
		TextLength:      res.TextLength,
		ChunksProcessed: res.Chunks - res.FailedChunks,
		ChunksFailed:    res.FailedChunks,
	}
	out.SetAudioBytes(res.Audio)
	return out, nil
}

func (d *Dispatcher) speechOpts(req message.SpeechRequest) tts.SynthesizeOpts {
	opts := d.opts.Speech

	lang := req.TargetLanguageCode
	if lang == "" {
		lang = req.Language
	}
	if lang == "" {
		lang = defaultLanguage
	}
	opts.Language = lang

	if req.Speaker != "" {
		opts.Speaker = req.Speaker
	}
	if req.Model != "" {
		opts.Model = req.Model
	}
	if req.Preprocess != nil {
		opts.Preprocess = *req.Preprocess
	}
	if req.Pitch != nil {
		opts.Pitch = *req.Pitch
	}
	if req.Pace != nil {
		opts.Pace = *req.Pace
	}
	if req.Loudness != nil {
		opts.Loudness = *req.Loudness
	}
	return opts
}

// Upload stores a file for later file-mode chats and document queries.
func (d *Dispatcher) Upload(ctx context.Context, u filestore.Upload) (message.UploadInfo, error) {
	if d.files == nil {
		return message.UploadInfo{}, fmt.Errorf("%w: file storage is not configured", ErrBadRequest)
	}
	f, err := d.files.Put(ctx, u)
	if err != nil {
		return message.UploadInfo{}, err
	}
	slog.Info("file uploaded", "file_id", f.ID, "content_type", f.ContentType, "size", f.Size)
	return message.UploadInfo{ID: f.ID, Name: f.Name, ContentType: f.ContentType, Size: f.Size}, nil
}
