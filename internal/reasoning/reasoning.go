// Package reasoning turns user text, conversation history and optional
// attachments into an assistant reply through a language-model backend.
//
// The Adapter never fails: missing configuration, provider errors and
// empty answers are all converted into deterministic user-facing text, and
// the Result's Reason tells callers which path was taken.
package reasoning

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded is returned by backends when the provider reports
	// rate limiting or exhausted quota.
	ErrQuotaExceeded = errors.New("reasoning: quota exceeded")

	// ErrInvalidDataURI is returned by ParseDataURI for malformed input.
	ErrInvalidDataURI = errors.New("reasoning: invalid data uri")
)

// Attachment is an inline binary input such as a screenshot or a PDF.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Prompt is one fully composed request to a backend.
type Prompt struct {
	// System is the fixed behavior instruction.
	System string

	// Text carries history, language directive and the user message.
	Text string

	// Attachment is sent inline next to Text when set.
	Attachment *Attachment

	// Search asks the backend to ground the answer with web search.
	// Backends without a search tool ignore it.
	Search bool
}

// Backend is a language-model provider.
type Backend interface {
	// Name returns the backend identifier (e.g., "gemini", "openai").
	Name() string

	// Generate returns the model's text answer for the prompt.
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Reason classifies how a Result was produced.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonNotConfigured Reason = "not_configured"
	ReasonAPIError      Reason = "api_error"
	ReasonQuotaExceeded Reason = "quota_exceeded"
	ReasonEmptyResponse Reason = "empty_response"
)

// Result is the outcome of Adapter.Reply. Text is never empty.
type Result struct {
	Text    string
	Success bool
	Reason  Reason
}
