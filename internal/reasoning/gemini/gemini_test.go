package gemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/reasoning"
)

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+defaultModel+":generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"नमस्ते"},{"text":"!"}]}}]}`))
	}))
	defer srv.Close()

	b := New(config.GeminiConfig{APIKey: "key"}, srv.URL, srv.Client())
	out, err := b.Generate(t.Context(), reasoning.Prompt{
		System:     "be nice",
		Text:       "hello",
		Attachment: &reasoning.Attachment{Data: []byte("%PDF"), MIMEType: "application/pdf"},
		Search:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "नमस्ते!", out)

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Contains(t, tools[0].(map[string]any), "googleSearch")

	contents := body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "application/pdf", inline["mimeType"])
}

func TestGenerate_Quota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	b := New(config.GeminiConfig{APIKey: "key"}, srv.URL, srv.Client())
	_, err := b.Generate(t.Context(), reasoning.Prompt{Text: "hi"})
	assert.ErrorIs(t, err, reasoning.ErrQuotaExceeded)
}
