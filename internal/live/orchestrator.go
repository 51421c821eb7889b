package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/parley/internal/message"
	"github.com/nadzzz/parley/internal/reasoning"
	"github.com/nadzzz/parley/internal/stt"
	"github.com/nadzzz/parley/internal/textnorm"
	"github.com/nadzzz/parley/internal/tts"
)

const (
	welcomeText          = "System: Connected to live chat with screen sharing support."
	processingText       = "System: Processing your message..."
	processingScreenText = "System: Processing your screenshot and message..."
	processingAudioText  = "System: Processing audio..."
	invalidScreenText    = "System: The screenshot could not be read. Please share your screen again."
	shutdownText         = "System: Server is shutting down."
	emptyTextText        = "System: Message text is empty."
	missingTypeText      = "System: Message has no type. Expected text, screenshot or end_turn."
	unknownTypeText      = "System: Unsupported message type %q. Expected text, screenshot or end_turn."
)

// Replier produces assistant replies. *reasoning.Adapter implements it.
type Replier interface {
	Reply(ctx context.Context, req reasoning.Request) reasoning.Result
}

// Options tune the orchestrator.
type Options struct {
	// IdleTimeout closes connections that send nothing for this long.
	// Zero disables it.
	IdleTimeout time.Duration

	// MaxMessageBytes limits the size of a single inbound frame.
	MaxMessageBytes int64

	// SpoolDir holds temporary audio files; empty uses os.TempDir().
	SpoolDir string

	// Speech holds synthesis defaults; Language is taken from the session.
	Speech tts.SynthesizeOpts
}

// Orchestrator runs the frame loop of live connections.
type Orchestrator struct {
	registry   *Registry
	replier    Replier
	recognizer *stt.Adapter
	synth      tts.Synthesizer
	spool      spool
	opts       Options
}

// NewOrchestrator wires the live pipeline. synth may be nil to disable
// spoken replies.
func NewOrchestrator(registry *Registry, replier Replier, recognizer *stt.Adapter, synth tts.Synthesizer, opts Options) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		replier:    replier,
		recognizer: recognizer,
		synth:      synth,
		spool:      spool{dir: opts.SpoolDir},
		opts:       opts,
	}
}

// Serve runs one connection until the client disconnects, the idle
// timeout expires or ctx is cancelled. Frames are handled one at a time
// in arrival order. The session is removed when Serve returns.
func (o *Orchestrator) Serve(ctx context.Context, conn Conn) {
	id := o.registry.Create()
	log := slog.With("session_id", id)
	out := &sender{conn: conn, log: log}

	defer func() {
		o.registry.Remove(id)
		_ = conn.Close()
		log.Info("live session closed")
	}()

	stop := context.AfterFunc(ctx, func() {
		out.error(shutdownText)
		_ = conn.Close()
	})
	defer stop()

	if o.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(o.opts.MaxMessageBytes)
	}

	log.Info("live session opened")
	out.text(welcomeText)

	for {
		if o.opts.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(o.opts.IdleTimeout))
		}
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn("live connection lost", "error", err)
			} else {
				log.Debug("live connection ended", "error", err)
			}
			return
		}
		o.registry.Touch(id)

		switch messageType {
		case websocket.TextMessage:
			o.handleText(ctx, id, out, data)
		case websocket.BinaryMessage:
			o.handleAudio(ctx, id, out, data)
		default:
			log.Debug("ignoring live frame", "message_type", messageType)
		}
	}
}

func (o *Orchestrator) handleText(ctx context.Context, id string, out *sender, data []byte) {
	switch f := DecodeFrame(data).(type) {
	case TextFrame:
		o.handleChat(ctx, id, out, f)
	case RawTextFrame:
		o.handleChat(ctx, id, out, TextFrame{Data: f.Data})
	case ScreenshotFrame:
		o.handleScreenshot(ctx, id, out, f)
	case EndTurnFrame:
		o.registry.Update(id, Patch{Recording: Bool(false)})
		out.log.Debug("end of user turn")
	case UnknownFrame:
		out.log.Warn("unknown live frame type", "type", f.Type)
		if strings.TrimSpace(f.Type) == "" {
			out.text(missingTypeText)
			return
		}
		out.text(fmt.Sprintf(unknownTypeText, f.Type))
	}
}

func (o *Orchestrator) handleChat(ctx context.Context, id string, out *sender, f TextFrame) {
	if strings.TrimSpace(f.Data) == "" {
		out.log.Warn("empty live text frame")
		out.text(emptyTextText)
		return
	}

	sess, ok := o.registry.Get(id)
	if !ok {
		return
	}

	patch := Patch{AppendTurns: []message.Turn{message.UserTurn(f.Data)}}
	switch {
	case f.Language != nil:
		patch.Language = f.Language
	default:
		if lang, ok := DetectLanguage(f.Data); ok {
			patch.Language = String(lang)
		}
	}
	if f.HasScreenshot {
		patch.PendingScreenshot = Bool(true)
	}
	o.registry.Update(id, patch)

	if f.HasScreenshot {
		out.log.Info("text received, awaiting screenshot")
		return
	}

	defer o.busy(id)()
	out.text(processingText)
	out.text(o.reply(ctx, id, f.Data, nil, sess.History))
}

func (o *Orchestrator) handleScreenshot(ctx context.Context, id string, out *sender, f ScreenshotFrame) {
	img, err := reasoning.ParseDataURI(f.Data)
	if err != nil || !img.IsImage() {
		out.log.Warn("invalid screenshot data", "error", err)
		out.text(invalidScreenText)
		return
	}

	sess, ok := o.registry.Get(id)
	if !ok {
		return
	}

	text, history := "", sess.History
	if sess.PendingScreenshot {
		if i, t, ok := sess.LastUserTurn(); ok {
			text, history = t, sess.History[:i]
		}
		o.registry.Update(id, Patch{PendingScreenshot: Bool(false)})
	}

	defer o.busy(id)()
	out.text(processingScreenText)
	out.text(o.reply(ctx, id, text, img, history))
}

// busy marks the session as processing until the returned func is called.
func (o *Orchestrator) busy(id string) func() {
	o.registry.Update(id, Patch{Processing: Bool(true)})
	return func() { o.registry.Update(id, Patch{Processing: Bool(false)}) }
}

// reply asks the replier for an answer, normalizes it and records it as
// an assistant turn.
func (o *Orchestrator) reply(ctx context.Context, id, text string, img *reasoning.Attachment, history []message.Turn) string {
	sess, _ := o.registry.Get(id)

	res := o.replier.Reply(ctx, reasoning.Request{
		Text:     text,
		Language: sess.Language,
		History:  history,
		Image:    img,
	})

	reply := textnorm.Strip(res.Text)
	if reply == "" {
		reply = res.Text
	}
	o.registry.Update(id, Patch{AppendTurns: []message.Turn{message.AssistantTurn(reply)}})
	return reply
}

func (o *Orchestrator) handleAudio(ctx context.Context, id string, out *sender, data []byte) {
	sess, ok := o.registry.Get(id)
	if !ok {
		return
	}
	if !sess.Recording {
		o.registry.Update(id, Patch{Recording: Bool(true)})
		out.text(processingAudioText)
	}
	defer o.registry.Update(id, Patch{Recording: Bool(false)})
	defer o.busy(id)()

	err := o.spool.with(data, func(path string) error {
		audio, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading audio spool file: %w", err)
		}

		res := o.recognizer.Recognize(ctx, audio, sess.Language)
		if res.Err != nil {
			return res.Err
		}
		if res.Transcript == "" {
			out.text("System: " + stt.NoSpeechReply)
			return nil
		}

		before, _ := o.registry.Get(id)
		o.registry.Update(id, Patch{AppendTurns: []message.Turn{message.UserTurn(res.Transcript)}})
		out.text("You: " + res.Transcript)

		reply := o.reply(ctx, id, res.Transcript, nil, before.History)
		out.text(reply)
		o.speak(ctx, out, reply, sess.Language)
		return nil
	})
	if err != nil {
		out.log.Error("processing audio", "error", err)
		out.text("System: Error processing audio: " + err.Error())
	}
}

func (o *Orchestrator) speak(ctx context.Context, out *sender, text, lang string) {
	if o.synth == nil {
		return
	}
	opts := o.opts.Speech
	opts.Language = lang

	res, err := o.synth.Synthesize(ctx, text, opts)
	if err != nil {
		if errors.Is(err, tts.ErrEmptyText) {
			return
		}
		out.log.Warn("no audio for reply", "error", err)
		return
	}
	if res.FailedChunks > 0 {
		out.log.Warn("reply audio is incomplete", "chunks", res.Chunks, "failed_chunks", res.FailedChunks)
	}
	out.binary(res.Audio)
}
