package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/dispatch"
	"github.com/nadzzz/parley/internal/filestore"
	"github.com/nadzzz/parley/internal/health"
	"github.com/nadzzz/parley/internal/live"
	"github.com/nadzzz/parley/internal/reasoning"
	anthropicbackend "github.com/nadzzz/parley/internal/reasoning/anthropic"
	geminibackend "github.com/nadzzz/parley/internal/reasoning/gemini"
	openaibackend "github.com/nadzzz/parley/internal/reasoning/openai"
	"github.com/nadzzz/parley/internal/stt"
	sarvamstt "github.com/nadzzz/parley/internal/stt/sarvam"
	"github.com/nadzzz/parley/internal/stt/whisper"
	"github.com/nadzzz/parley/internal/transport"
	grpctransport "github.com/nadzzz/parley/internal/transport/grpc"
	httptransport "github.com/nadzzz/parley/internal/transport/http"
	"github.com/nadzzz/parley/internal/tts"
	"github.com/nadzzz/parley/internal/tts/piper"
	sarvamtts "github.com/nadzzz/parley/internal/tts/sarvam"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway daemon",
		Long:  "Starts the HTTP/WebSocket API, the health endpoints and (optionally) the gRPC health server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (e.g. configs/parley.yaml)")
	return cmd
}

func runServe(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("parley starting", "version", Version)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	replier := reasoning.NewAdapter(newReasoningBackend(cfg.Reasoning), nil, cfg.Reasoning.Timeout)
	recognizer := stt.NewAdapter(newRecognizer(cfg), cfg.STT.Timeout)
	synth := newSynthesizer(cfg)
	if synth != nil {
		defer synth.Close()
	}

	files, err := filestore.Open(ctx, cfg.Files, cfg.HTTP.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("opening file store: %w", err)
	}
	defer files.Close()
	slog.Info("file store ready", "backend", cfg.Files.Backend)

	speech := speechDefaults(cfg.TTS)
	dispatcher := dispatch.New(replier, recognizer, synth, files, dispatch.Options{Speech: speech})
	orchestrator := live.NewOrchestrator(live.NewRegistry(cfg.Live.DefaultLanguage), replier, recognizer, synth, live.Options{
		IdleTimeout:     cfg.Live.IdleTimeout,
		MaxMessageBytes: cfg.Live.MaxMessageBytes,
		SpoolDir:        cfg.Live.SpoolDir,
		Speech:          speech,
	})

	transports := []transport.Transport{
		httptransport.New(cfg.HTTP.Port, dispatcher, orchestrator, httptransport.Options{
			MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		}),
	}

	healthServer := health.New(cfg.Server.HealthPort)
	if cfg.Server.GRPCEnabled {
		grpcT := grpctransport.New(cfg.Server.GRPCPort)
		healthServer.OnChange(grpcT.SetServing)
		transports = append(transports, grpcT)
	}

	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				cancel()
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("parley ready",
		"http_port", cfg.HTTP.Port,
		"health_port", cfg.Server.HealthPort,
		"reasoning", cfg.Reasoning.Backend,
		"reasoning_configured", replier.Configured(),
		"stt_configured", recognizer.Configured(),
		"tts_enabled", synth != nil,
	)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("parley stopped")
	return nil
}

// newReasoningBackend returns nil when the selected backend has no API
// key, which runs the reasoning adapter in echo mode.
func newReasoningBackend(cfg config.ReasoningConfig) reasoning.Backend {
	switch cfg.Backend {
	case "openai":
		if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
			break
		}
		slog.Info("using OpenAI reasoning", "model", cfg.OpenAI.Model)
		return openaibackend.New(cfg.OpenAI)
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			break
		}
		slog.Info("using Anthropic reasoning", "model", cfg.Anthropic.Model)
		return anthropicbackend.New(cfg.Anthropic)
	default:
		if cfg.Gemini.APIKey == "" {
			break
		}
		slog.Info("using Gemini reasoning", "model", cfg.Gemini.Model)
		return geminibackend.New(cfg.Gemini, "", nil)
	}
	slog.Warn("reasoning backend not configured, replies will echo the user", "backend", cfg.Backend)
	return nil
}

func newRecognizer(cfg *config.Config) stt.Recognizer {
	client := &http.Client{Timeout: cfg.STT.Timeout}
	switch cfg.STT.Backend {
	case "whisper":
		slog.Info("using Whisper speech recognition", "endpoint", cfg.STT.Whisper.Endpoint)
		return whisper.New(cfg.STT.Whisper, client)
	default:
		if cfg.Sarvam.APIKey == "" {
			slog.Warn("speech recognition not configured")
			return nil
		}
		slog.Info("using Sarvam speech recognition", "model", cfg.Sarvam.STTModel)
		return sarvamstt.New(cfg.Sarvam, client)
	}
}

func newSynthesizer(cfg *config.Config) tts.Synthesizer {
	if !cfg.TTS.Enabled {
		slog.Info("speech synthesis disabled")
		return nil
	}

	var backend tts.SegmentSynthesizer
	switch cfg.TTS.Backend {
	case "piper":
		backend = piper.New(cfg.TTS.Piper)
	default:
		if cfg.Sarvam.APIKey == "" {
			slog.Warn("speech synthesis not configured")
			return nil
		}
		backend = sarvamtts.New(cfg.Sarvam, &http.Client{Timeout: cfg.TTS.Timeout})
	}
	slog.Info("using speech synthesis", "backend", backend.Name(), "chunk_chars", cfg.TTS.ChunkChars)
	return tts.NewChunked(backend, cfg.TTS.ChunkChars, speechDefaults(cfg.TTS))
}

func speechDefaults(cfg config.TTSConfig) tts.SynthesizeOpts {
	return tts.SynthesizeOpts{
		Speaker:    cfg.Speaker,
		Pitch:      cfg.Pitch,
		Pace:       cfg.Pace,
		Loudness:   cfg.Loudness,
		Preprocess: cfg.Preprocess,
	}
}
