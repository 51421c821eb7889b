package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("SARVAM_AI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, "gemini", cfg.Reasoning.Backend)
	assert.Equal(t, "gemini-2.0-flash-001", cfg.Reasoning.Gemini.Model)
	assert.Equal(t, "gem-key", cfg.Reasoning.Gemini.APIKey)
	assert.Equal(t, "", cfg.Sarvam.APIKey)
	assert.Equal(t, "saarika:v1", cfg.Sarvam.STTModel)
	assert.Equal(t, "bulbul:v1", cfg.Sarvam.TTSModel)
	assert.Equal(t, 500, cfg.TTS.ChunkChars)
	assert.Equal(t, 60*time.Second, cfg.Reasoning.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Live.IdleTimeout)
	assert.Equal(t, "en", cfg.Live.DefaultLanguage)
	assert.Equal(t, "disk", cfg.Files.Backend)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "parley.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 9000
reasoning:
  backend: openai
  openai:
    api_key: ${MY_OPENAI_KEY}
live:
  idle_timeout: 90s
tts:
  backend: piper
  piper:
    endpoints:
      fr: piper-fr:10200
`), 0o600))
	t.Setenv("MY_OPENAI_KEY", "sk-test")
	t.Setenv("PARLEY_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "openai", cfg.Reasoning.Backend)
	assert.Equal(t, "sk-test", cfg.Reasoning.OpenAI.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Live.IdleTimeout)
	assert.Equal(t, "piper", cfg.TTS.Backend)
	assert.Equal(t, "piper-fr:10200", cfg.TTS.Piper.Endpoints["fr"])
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PARLEY_TEST_SARVAM=from-dotenv\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parley.yaml"), []byte("sarvam:\n  api_key: ${PARLEY_TEST_SARVAM}\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PARLEY_TEST_SARVAM") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Sarvam.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTP:      HTTPConfig{Port: 8000, MaxUploadBytes: 1},
			Live:      LiveConfig{MaxMessageBytes: 1},
			Reasoning: ReasoningConfig{Backend: "gemini"},
			STT:       STTConfig{Backend: "sarvam"},
			TTS:       TTSConfig{Backend: "sarvam", ChunkChars: 500},
			Files:     FilesConfig{Backend: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad reasoning", mutate: func(c *Config) { c.Reasoning.Backend = "llama" }, wantErr: "reasoning backend"},
		{name: "bad stt", mutate: func(c *Config) { c.STT.Backend = "x" }, wantErr: "stt backend"},
		{name: "bad tts", mutate: func(c *Config) { c.TTS.Backend = "x" }, wantErr: "tts backend"},
		{name: "bad files", mutate: func(c *Config) { c.Files.Backend = "s3" }, wantErr: "files backend"},
		{name: "zero port", mutate: func(c *Config) { c.HTTP.Port = 0 }, wantErr: "http.port"},
		{name: "zero chunk", mutate: func(c *Config) { c.TTS.ChunkChars = 0 }, wantErr: "chunk_chars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogHandler(t *testing.T) {
	for _, format := range []string{"json", "text", "pretty", ""} {
		h := NewLogHandler(LoggingConfig{Level: "warn", Format: format})
		require.NotNil(t, h, format)
		assert.False(t, h.Enabled(t.Context(), slog.LevelInfo), format)
		assert.True(t, h.Enabled(t.Context(), slog.LevelError), format)
	}
}
