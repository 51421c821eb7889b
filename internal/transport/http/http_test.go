package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/parley/internal/dispatch"
	"github.com/nadzzz/parley/internal/filestore"
	"github.com/nadzzz/parley/internal/live"
	"github.com/nadzzz/parley/internal/message"
	"github.com/nadzzz/parley/internal/reasoning"
	"github.com/nadzzz/parley/internal/stt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	store, err := filestore.NewStore(filestore.StoreTypeMemory, filestore.WithMaxBytes(64))
	require.NoError(t, err)

	replier := reasoning.NewAdapter(nil, nil, 0)
	d := dispatch.New(replier, nil, nil, store, dispatch.Options{})
	o := live.NewOrchestrator(live.NewRegistry("en"), replier, stt.NewAdapter(nil, 0), nil, live.Options{})

	srv := httptest.NewServer(New(0, d, o, opts).Handler(t.Context()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func postFile(t *testing.T, url, field, name string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestMessages_PostThenList(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/messages", message.ChatRequest{Sender: "user", Text: "hello", Language: "en"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decode[message.ChatMessage](t, resp)
	assert.Equal(t, "bot", reply.Sender)
	assert.Equal(t, "You said: hello", reply.Text)

	list, err := http.Get(srv.URL + "/messages")
	require.NoError(t, err)
	defer list.Body.Close()
	msgs := decode[[]message.ChatMessage](t, list)
	require.Len(t, msgs, 3)
	assert.Equal(t, dispatch.Greeting, msgs[0].Text)
	assert.Equal(t, "hello", msgs[1].Text)
}

func TestMessages_Errors(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string
	}{
		{name: "empty text", body: message.ChatRequest{}, status: http.StatusBadRequest, errMsg: "text is required"},
		{name: "unknown file", body: message.ChatRequest{Text: "x", Mode: message.ChatModeFile, FileID: "nope"}, status: http.StatusNotFound, errMsg: "File not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/messages", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, decode[errorResponse](t, resp).Error, tt.errMsg)
		})
	}

	resp, err := http.Post(srv.URL+"/messages", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadAndQuery(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := postFile(t, srv.URL+"/upload", "file", "notes.pdf", []byte("%PDF-1.4 tiny"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[message.UploadInfo](t, resp)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "notes.pdf", info.Name)

	resp = postJSON(t, srv.URL+"/pdf_query", message.DocumentQuery{Query: "summary?", FileID: info.ID, Language: "en"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You said: summary?", decode[message.ChatMessage](t, resp).Text)

	resp = postJSON(t, srv.URL+"/pdf_query", message.DocumentQuery{Query: "summary?", FileID: "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpload_TooLarge(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := postFile(t, srv.URL+"/upload", "file", "big.bin", bytes.Repeat([]byte("x"), 100))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestWhisper(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := postFile(t, srv.URL+"/whisper?language=en-IN", "audio", "note.wav", []byte("RIFF"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[message.VoiceReply](t, resp)
	assert.Empty(t, got.Text)
	assert.Equal(t, stt.ErrNotConfigured.Error(), got.Error)

	resp = postFile(t, srv.URL+"/whisper", "wrong", "note.wav", []byte("RIFF"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSpeech_Disabled(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/tts", message.SpeechRequest{Text: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, decode[message.SpeechResult](t, resp).Success)

	resp = postJSON(t, srv.URL+"/tts", message.SpeechRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing text", decode[message.SpeechResult](t, resp).Error)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"https://app.example"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/messages", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestSwaggerDoc(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/messages")
	assert.Contains(t, paths, "/ws/live")
}

func TestLive_WebSocket(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"https://app.example"}})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://app.example"}})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome message.ServerFrame
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, message.ServerFrameText, welcome.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "text", "data": "hello"}))

	var frames []message.ServerFrame
	for len(frames) < 2 {
		var f message.ServerFrame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
	}
	assert.Equal(t, "You said: hello", frames[1].Data)
}

func TestLive_ShutdownNotice(t *testing.T) {
	store, err := filestore.NewStore(filestore.StoreTypeMemory)
	require.NoError(t, err)
	replier := reasoning.NewAdapter(nil, nil, 0)
	d := dispatch.New(replier, nil, nil, store, dispatch.Options{})
	o := live.NewOrchestrator(live.NewRegistry("en"), replier, stt.NewAdapter(nil, 0), nil, live.Options{})

	ctx, cancel := context.WithCancel(t.Context())
	srv := httptest.NewServer(New(0, d, o, Options{}).Handler(ctx))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/live", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome message.ServerFrame
	require.NoError(t, conn.ReadJSON(&welcome))

	cancel()

	var notice message.ServerFrame
	require.NoError(t, conn.ReadJSON(&notice))
	assert.Equal(t, message.ServerFrameError, notice.Type)
}
