package reasoning

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const (
	emptyResponseText = "API did not return a valid response."
	quotaText         = "The AI service is receiving too many requests right now. Please try again in a minute."
)

// Adapter produces replies through a Backend with deterministic fallbacks.
// A nil backend runs the adapter in echo mode.
type Adapter struct {
	backend Backend
	policy  Policy
	timeout time.Duration
}

// NewAdapter creates an adapter. A nil policy selects DefaultPolicy; a zero
// timeout leaves deadlines to the caller's context.
func NewAdapter(backend Backend, policy Policy, timeout time.Duration) *Adapter {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Adapter{backend: backend, policy: policy, timeout: timeout}
}

// Configured reports whether a backend is available.
func (a *Adapter) Configured() bool { return a.backend != nil }

// Reply answers a request. It never returns an empty text.
func (a *Adapter) Reply(ctx context.Context, req Request) Result {
	if a.backend == nil {
		return Result{
			Text:   strings.TrimSpace(echoPrefix(req.Language) + ": " + req.Text),
			Reason: ReasonNotConfigured,
		}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(req, a.policy)
	start := time.Now()
	text, err := a.backend.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			slog.Warn("reasoning quota exceeded", "backend", a.backend.Name(), "search", req.Search)
			return Result{Text: quotaText, Reason: ReasonQuotaExceeded}
		}
		slog.Error("reasoning failed", "backend", a.backend.Name(), "error", err)
		return Result{Text: "API error: " + err.Error(), Reason: ReasonAPIError}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		slog.Warn("reasoning returned empty text", "backend", a.backend.Name())
		return Result{Text: emptyResponseText, Reason: ReasonEmptyResponse}
	}

	slog.Debug("reasoning complete",
		"backend", a.backend.Name(),
		"reply_length", len(text),
		"history", len(req.History),
		"attachment", req.Image != nil,
		"duration", time.Since(start),
	)
	return Result{Text: text, Success: true, Reason: ReasonOK}
}
