// Package http implements the HTTP/WebSocket transport for parley.
//
// This transport exposes the REST chat API (messages, voice notes, speech,
// uploads and document questions) on a gin router, and the live
// conversation endpoint as a WebSocket at /ws/live.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/parley/docs"
	"github.com/nadzzz/parley/internal/dispatch"
	"github.com/nadzzz/parley/internal/filestore"
	"github.com/nadzzz/parley/internal/live"
	"github.com/nadzzz/parley/internal/message"
)

// Options tune the HTTP transport.
type Options struct {
	// MaxUploadBytes limits multipart request bodies (/whisper, /upload).
	MaxUploadBytes int64

	// AllowedOrigins lists the browser origins allowed to call the API and
	// open live connections. Empty or "*" allows any origin.
	AllowedOrigins []string
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port       int
	dispatcher *dispatch.Dispatcher
	live       *live.Orchestrator
	opts       Options
	upgrader   websocket.Upgrader
	server     *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int, d *dispatch.Dispatcher, o *live.Orchestrator, opts Options) *Transport {
	t := &Transport{port: port, dispatcher: d, live: o, opts: opts}
	t.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return t.originAllowed(r.Header.Get("Origin")) },
	}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the router. Live sessions run under ctx and receive a
// shutdown notice when it is cancelled.
func (t *Transport) Handler(ctx context.Context) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), t.cors())

	router.GET("/", t.handleRoot)
	router.GET("/messages", t.handleListMessages)
	router.POST("/messages", t.handlePostMessage)
	router.POST("/whisper", t.limitBody(), t.handleWhisper)
	router.POST("/tts", t.handleSpeech)
	router.POST("/upload", t.limitBody(), t.handleUpload)
	router.POST("/pdf_query", t.handleDocumentQuery)
	router.GET("/ws/live", func(c *gin.Context) { t.handleLive(ctx, c) })

	// Swagger UI serves the registered OpenAPI document.
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)))

	return router
}

// Listen starts the HTTP server and blocks until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func (t *Transport) originAllowed(origin string) bool {
	if origin == "" || len(t.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(t.opts.AllowedOrigins, "*") || slices.Contains(t.opts.AllowedOrigins, origin)
}

// cors answers preflight requests and echoes allowed origins.
func (t *Transport) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && t.originAllowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (t *Transport) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if t.opts.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, t.opts.MaxUploadBytes)
		}
		c.Next()
	}
}

// errorResponse is the body of every 4xx/5xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps dispatcher errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, dispatch.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, filestore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, filestore.ErrTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dispatch.ErrSpeechDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusNotFound {
		msg = "File not found"
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// handleRoot reports that the service is up.
//
// @Summary  Service status
// @Tags     status
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   / [get]
func (t *Transport) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListMessages returns the chat log.
//
// @Summary  List chat messages
// @Tags     chat
// @Produce  json
// @Success  200  {array}  message.ChatMessage
// @Router   /messages [get]
func (t *Transport) handleListMessages(c *gin.Context) {
	c.JSON(http.StatusOK, t.dispatcher.Messages())
}

// handlePostMessage answers a chat message.
//
// @Summary     Send a chat message
// @Description Answers in standard, search (web-grounded) or file mode (with an uploaded PDF or image).
// @Description When search quota is exhausted the answer falls back to standard mode.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       message  body      message.ChatRequest  true  "Chat message"
// @Success     200      {object}  message.ChatMessage
// @Failure     400      {object}  errorResponse
// @Failure     404      {object}  errorResponse  "Unknown file_id"
// @Router      /messages [post]
func (t *Transport) handlePostMessage(c *gin.Context) {
	var req message.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}
	reply, err := t.dispatcher.Chat(c.Request.Context(), req)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// handleWhisper transcribes a voice note and answers it.
//
// @Summary  Transcribe and answer a voice note
// @Tags     voice
// @Accept   multipart/form-data
// @Produce  json
// @Param    audio     formData  file    true   "Recorded audio"
// @Param    language  query     string  false  "Language code (default hi-IN)"
// @Success  200  {object}  message.VoiceReply
// @Failure  400  {object}  message.VoiceReply
// @Router   /whisper [post]
func (t *Transport) handleWhisper(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		c.AbortWithStatusJSON(statusForForm(err), message.VoiceReply{Error: "missing audio file: " + err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, message.VoiceReply{Error: err.Error()})
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, message.VoiceReply{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, t.dispatcher.Transcribe(c.Request.Context(), audio, c.DefaultQuery("language", "hi-IN")))
}

func statusForForm(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// handleSpeech synthesizes speech.
//
// @Summary     Synthesize speech
// @Description Long text is split into chunks, synthesized and re-assembled into one WAV file.
// @Tags        voice
// @Accept      json
// @Produce     json
// @Param       request  body      message.SpeechRequest  true  "Text and voice parameters"
// @Success     200      {object}  message.SpeechResult
// @Failure     400      {object}  message.SpeechResult
// @Failure     503      {object}  message.SpeechResult  "Speech synthesis disabled"
// @Router      /tts [post]
func (t *Transport) handleSpeech(c *gin.Context) {
	var req message.SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, message.SpeechResult{Error: "invalid json: " + err.Error()})
		return
	}
	res, err := t.dispatcher.Speak(c.Request.Context(), req)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleUpload stores a file for file-mode chats.
//
// @Summary  Upload a file
// @Tags     files
// @Accept   multipart/form-data
// @Produce  json
// @Param    file  formData  file  true  "PDF or image"
// @Success  200  {object}  message.UploadInfo
// @Failure  400  {object}  errorResponse
// @Failure  413  {object}  errorResponse
// @Router   /upload [post]
func (t *Transport) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(statusForForm(err), errorResponse{Error: "missing file: " + err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	defer f.Close()

	info, err := t.dispatcher.Upload(c.Request.Context(), filestore.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleDocumentQuery answers a question about an uploaded document.
//
// @Summary  Ask about an uploaded document
// @Tags     files
// @Accept   json
// @Produce  json
// @Param    query  body      message.DocumentQuery  true  "Question and file id"
// @Success  200    {object}  message.ChatMessage
// @Failure  400    {object}  errorResponse
// @Failure  404    {object}  errorResponse  "Unknown file_id"
// @Router   /pdf_query [post]
func (t *Transport) handleDocumentQuery(c *gin.Context) {
	var q message.DocumentQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}
	reply, err := t.dispatcher.QueryDocument(c.Request.Context(), q)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// handleLive upgrades to a WebSocket and runs a live session on it.
//
// @Summary     Live conversation
// @Description WebSocket. Client frames: {"type":"text","data":...,"hasScreenshot":bool,"language":...},
// @Description {"type":"screenshot","data":"data:image/...;base64,..."}, {"type":"end_turn"} and binary WAV audio.
// @Description Server frames: JSON text frames {"type":"text"|"error","data":...} and binary WAV replies.
// @Tags        live
// @Success     101
// @Router      /ws/live [get]
func (t *Transport) handleLive(ctx context.Context, c *gin.Context) {
	conn, err := t.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Warn("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}
	t.live.Serve(ctx, conn)
}
