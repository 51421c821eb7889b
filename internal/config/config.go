// Package config handles loading and validating the parley configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the parley daemon.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Live      LiveConfig      `mapstructure:"live"`
	Reasoning ReasoningConfig `mapstructure:"reasoning"`
	STT       STTConfig       `mapstructure:"stt"`
	TTS       TTSConfig       `mapstructure:"tts"`
	Sarvam    SarvamConfig    `mapstructure:"sarvam"`
	Files     FilesConfig     `mapstructure:"files"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the health check servers' settings.
type ServerConfig struct {
	HealthPort  int  `mapstructure:"health_port"`
	GRPCEnabled bool `mapstructure:"grpc_enabled"`
	GRPCPort    int  `mapstructure:"grpc_port"`
}

// HTTPConfig configures the REST and WebSocket listener.
type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // empty allows any origin
}

// LiveConfig configures live audio/screen-sharing sessions.
type LiveConfig struct {
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"` // 0 disables the idle timeout
	MaxMessageBytes int64         `mapstructure:"max_message_bytes"`
	DefaultLanguage string        `mapstructure:"default_language"`
	SpoolDir        string        `mapstructure:"spool_dir"` // empty uses os.TempDir()
}

// ReasoningConfig selects and configures the language-model backend.
// An empty API key for the selected backend runs the adapter in fallback mode.
type ReasoningConfig struct {
	Backend   string          `mapstructure:"backend"` // "gemini", "openai" or "anthropic"
	Timeout   time.Duration   `mapstructure:"timeout"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// GeminiConfig holds Google Gemini settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI chat completion settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // optional OpenAI-compatible endpoint
}

// AnthropicConfig holds Anthropic messages API settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// STTConfig selects and configures the speech-to-text backend.
type STTConfig struct {
	Backend string        `mapstructure:"backend"` // "sarvam" or "whisper"
	Timeout time.Duration `mapstructure:"timeout"`
	Whisper WhisperConfig `mapstructure:"whisper"`
}

// WhisperConfig configures an OpenAI-compatible transcription endpoint
// (whisper.cpp server, faster-whisper, OpenAI itself).
type WhisperConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Backend    string        `mapstructure:"backend"` // "sarvam" or "piper"
	Timeout    time.Duration `mapstructure:"timeout"`
	ChunkChars int           `mapstructure:"chunk_chars"`
	Speaker    string        `mapstructure:"speaker"` // empty selects a speaker per language
	Pitch      float64       `mapstructure:"pitch"`
	Pace       float64       `mapstructure:"pace"`
	Loudness   float64       `mapstructure:"loudness"`
	Preprocess bool          `mapstructure:"preprocess"`
	Piper      PiperConfig   `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// SarvamConfig holds Sarvam AI settings shared by its STT and TTS APIs.
type SarvamConfig struct {
	APIKey   string `mapstructure:"api_key"`
	STTURL   string `mapstructure:"stt_url"`
	TTSURL   string `mapstructure:"tts_url"`
	STTModel string `mapstructure:"stt_model"`
	TTSModel string `mapstructure:"tts_model"`
}

// FilesConfig selects the upload store.
type FilesConfig struct {
	Backend    string        `mapstructure:"backend"` // "disk", "memory", "redis" or "sqlite"
	Dir        string        `mapstructure:"dir"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	RedisDB    int           `mapstructure:"redis_db"`
	RedisPass  string        `mapstructure:"redis_password"`
	TTL        time.Duration `mapstructure:"ttl"`
	SQLitePath string        `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text, pretty
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./parley.yaml, ./configs/parley.yaml, /etc/parley/parley.yaml.
// A .env file in the working directory is loaded first when present, so
// "${VAR}" references in the config can point at it.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("parley")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/parley")
	}

	// Environment variables: PARLEY_HTTP_PORT, PARLEY_REASONING_BACKEND, etc.
	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}").
	cfg.Reasoning.Gemini.APIKey = resolveEnvRef(cfg.Reasoning.Gemini.APIKey)
	cfg.Reasoning.OpenAI.APIKey = resolveEnvRef(cfg.Reasoning.OpenAI.APIKey)
	cfg.Reasoning.Anthropic.APIKey = resolveEnvRef(cfg.Reasoning.Anthropic.APIKey)
	cfg.STT.Whisper.APIKey = resolveEnvRef(cfg.STT.Whisper.APIKey)
	cfg.Sarvam.APIKey = resolveEnvRef(cfg.Sarvam.APIKey)
	cfg.Files.RedisPass = resolveEnvRef(cfg.Files.RedisPass)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_enabled", false)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("http.port", 8000)
	v.SetDefault("http.max_upload_bytes", 25<<20)
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("live.idle_timeout", "0s")
	v.SetDefault("live.max_message_bytes", 16<<20)
	v.SetDefault("live.default_language", "en")
	v.SetDefault("live.spool_dir", "")
	v.SetDefault("reasoning.backend", "gemini")
	v.SetDefault("reasoning.timeout", "60s")
	v.SetDefault("reasoning.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("reasoning.gemini.model", "gemini-2.0-flash-001")
	v.SetDefault("reasoning.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("reasoning.openai.model", "gpt-4o")
	v.SetDefault("reasoning.anthropic.api_key", "${ANTHROPIC_API_KEY}")
	v.SetDefault("reasoning.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("reasoning.anthropic.max_tokens", 1024)
	v.SetDefault("stt.backend", "sarvam")
	v.SetDefault("stt.timeout", "30s")
	v.SetDefault("stt.whisper.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("stt.whisper.model", "whisper-1")
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.backend", "sarvam")
	v.SetDefault("tts.timeout", "30s")
	v.SetDefault("tts.chunk_chars", 500)
	v.SetDefault("tts.pitch", 0)
	v.SetDefault("tts.pace", 1.0)
	v.SetDefault("tts.loudness", 1.0)
	v.SetDefault("tts.preprocess", true)
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("sarvam.api_key", "${SARVAM_AI_API_KEY}")
	v.SetDefault("sarvam.stt_url", "https://api.sarvam.ai/speech-to-text")
	v.SetDefault("sarvam.tts_url", "https://api.sarvam.ai/text-to-speech")
	v.SetDefault("sarvam.stt_model", "saarika:v1")
	v.SetDefault("sarvam.tts_model", "bulbul:v1")
	v.SetDefault("files.backend", "disk")
	v.SetDefault("files.dir", "./uploads")
	v.SetDefault("files.redis_addr", "localhost:6379")
	v.SetDefault("files.redis_db", 0)
	v.SetDefault("files.ttl", "24h")
	v.SetDefault("files.sqlite_path", "./uploads/files.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects unknown backends and nonsensical limits.
func (c *Config) Validate() error {
	if !oneOf(c.Reasoning.Backend, "gemini", "openai", "anthropic") {
		return fmt.Errorf("config: unknown reasoning backend %q", c.Reasoning.Backend)
	}
	if !oneOf(c.STT.Backend, "sarvam", "whisper") {
		return fmt.Errorf("config: unknown stt backend %q", c.STT.Backend)
	}
	if !oneOf(c.TTS.Backend, "sarvam", "piper") {
		return fmt.Errorf("config: unknown tts backend %q", c.TTS.Backend)
	}
	if !oneOf(c.Files.Backend, "disk", "memory", "redis", "sqlite") {
		return fmt.Errorf("config: unknown files backend %q", c.Files.Backend)
	}
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("config: http.port must be positive")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: http.max_upload_bytes must be positive")
	}
	if c.Live.MaxMessageBytes <= 0 {
		return fmt.Errorf("config: live.max_message_bytes must be positive")
	}
	if c.TTS.ChunkChars <= 0 {
		return fmt.Errorf("config: tts.chunk_chars must be positive")
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string, which leaves the service unconfigured.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}
