package sarvam

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/stt"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-subscription-key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "saarika:v1", r.FormValue("model"))
		assert.Equal(t, "ta-IN", r.FormValue("language_code"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFFDATA", string(data))
		assert.Equal(t, "audio.wav", hdr.Filename)

		_, _ = w.Write([]byte(`{"transcript":"வணக்கம்"}`))
	}))
	defer srv.Close()

	r := New(config.SarvamConfig{APIKey: "secret", STTURL: srv.URL}, nil)
	out, err := r.Transcribe(t.Context(), []byte("RIFFDATA"), stt.TranscribeOpts{Language: "ta", ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "வணக்கம்", out.Text)
	assert.Equal(t, "ta-IN", out.Language)
}

func TestTranscribe_Errors(t *testing.T) {
	_, err := New(config.SarvamConfig{}, nil).Transcribe(t.Context(), []byte("x"), stt.TranscribeOpts{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad language"}`))
	}))
	defer srv.Close()

	_, err = New(config.SarvamConfig{APIKey: "k", STTURL: srv.URL}, nil).Transcribe(t.Context(), []byte("x"), stt.TranscribeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}
