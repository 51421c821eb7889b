package whisper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/stt"
)

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name     string
		lang     string
		wantLang string
	}{
		{name: "region code", lang: "hi-IN", wantLang: "hi"},
		{name: "auto detect", lang: "unknown", wantLang: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
				require.NoError(t, r.ParseMultipartForm(1<<20))
				assert.Equal(t, defaultModel, r.FormValue("model"))
				assert.Equal(t, tt.wantLang, r.FormValue("language"))
				assert.Equal(t, "verbose_json", r.FormValue("response_format"))
				_, _ = w.Write([]byte(`{"text":"namaste","language":"hindi"}`))
			}))
			defer srv.Close()

			r := New(config.WhisperConfig{Endpoint: srv.URL, APIKey: "k"}, nil)
			out, err := r.Transcribe(t.Context(), []byte("audio"), stt.TranscribeOpts{Language: tt.lang})
			require.NoError(t, err)
			assert.Equal(t, "namaste", out.Text)
			assert.Equal(t, "hi", out.Language)
		})
	}
}

func TestTranscribe_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(config.WhisperConfig{Endpoint: srv.URL}, nil).Transcribe(t.Context(), []byte("audio"), stt.TranscribeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
