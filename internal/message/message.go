// Package message defines the data types that flow between parley's
// transports, the dispatcher and the live session orchestrator.
package message

import (
	"encoding/base64"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation history. Turns are values and are
// never mutated once appended to a history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn builds a user turn.
func UserTurn(content string) Turn { return Turn{Role: RoleUser, Content: content} }

// AssistantTurn builds an assistant turn.
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// ChatMode selects how a REST chat message is answered.
type ChatMode string

const (
	// ChatModeStandard answers from the model's own knowledge.
	ChatModeStandard ChatMode = "standard"

	// ChatModeFile attaches a previously uploaded file (PDF or image).
	ChatModeFile ChatMode = "file"

	// ChatModeSearch augments the answer with web search results.
	ChatModeSearch ChatMode = "search"
)

// ChatRequest is the body of POST /messages.
type ChatRequest struct {
	// Sender is informational; the web client always sends "user".
	Sender string `json:"sender"`

	// Text is the user's message.
	Text string `json:"text"`

	// Language is the ISO-639-1 code the reply should be written in (e.g., "hi", "en").
	Language string `json:"language,omitempty"`

	// Mode is "standard", "file" or "search". Empty means standard.
	Mode ChatMode `json:"mode,omitempty"`

	// FileID references an upload returned by POST /upload. Required for file mode.
	FileID string `json:"file_id,omitempty"`
}

// ChatMessage is one entry of the REST message log and the reply to POST /messages.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language,omitempty"`
	Mode      ChatMode  `json:"mode,omitempty"`

	// QuotaExceeded is set when the provider reported quota exhaustion.
	QuotaExceeded bool `json:"quotaExceeded,omitempty"`

	// FallbackFromSearch is set when a search-mode request was answered in standard mode.
	FallbackFromSearch bool `json:"fallbackFromSearch,omitempty"`

	// Error is set when the reply is a fallback produced after a failure.
	Error string `json:"error,omitempty"`
}

// DocumentQuery is the body of POST /pdf_query.
type DocumentQuery struct {
	Query    string `json:"query"`
	FileID   string `json:"file_id"`
	Language string `json:"language,omitempty"`
}

// VoiceReply is the outcome of POST /whisper: a transcript and the
// generated reply, or an error with an empty transcript.
type VoiceReply struct {
	Text  string `json:"text"`
	Bot   string `json:"bot,omitempty"`
	Error string `json:"error,omitempty"`
}

// SpeechRequest is the body of POST /tts.
type SpeechRequest struct {
	Text               string   `json:"text"`
	Language           string   `json:"language,omitempty"`
	TargetLanguageCode string   `json:"target_language_code,omitempty"`
	Speaker            string   `json:"speaker,omitempty"`
	Model              string   `json:"model,omitempty"`
	Preprocess         *bool    `json:"enable_preprocessing,omitempty"`
	Pitch              *float64 `json:"pitch,omitempty"`
	Pace               *float64 `json:"pace,omitempty"`
	Loudness           *float64 `json:"loudness,omitempty"`
}

// SpeechResult is the response of POST /tts.
type SpeechResult struct {
	Success         bool   `json:"success"`
	AudioBase64     string `json:"audio_base64,omitempty"`
	ContentType     string `json:"content_type,omitempty"`
	TextLength      int    `json:"text_length,omitempty"`
	ChunksProcessed int    `json:"chunks_processed,omitempty"`
	ChunksFailed    int    `json:"chunks_failed,omitempty"`
	Error           string `json:"error,omitempty"`
}

// SetAudioBytes base64-encodes raw audio bytes into AudioBase64.
func (r *SpeechResult) SetAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
	}
}

// UploadInfo describes a stored upload.
type UploadInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ServerFrameType tags the JSON frames the live endpoint sends to clients.
type ServerFrameType string

const (
	ServerFrameText  ServerFrameType = "text"
	ServerFrameError ServerFrameType = "error"
)

// ServerFrame is a structured text frame sent over the live connection.
type ServerFrame struct {
	Type ServerFrameType `json:"type"`
	Data string          `json:"data"`
}
