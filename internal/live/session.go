// Package live implements the bidirectional live chat endpoint: a
// per-connection state machine that interleaves text, screenshots and
// recorded audio, and a registry holding the conversational state of every
// open connection.
package live

import (
	"slices"
	"time"

	"github.com/nadzzz/parley/internal/message"
)

// State is the observable phase of a live session.
type State string

const (
	StateIdle               State = "IDLE"
	StateAwaitingScreenshot State = "AWAITING_SCREENSHOT"
	StateProcessing         State = "PROCESSING"
	StateClosed             State = "CLOSED"
)

// Session is the conversational state of one live connection.
type Session struct {
	ID       string
	History  []message.Turn
	Language string

	// Recording is set by the first audio frame of an utterance and
	// cleared by end_turn or when that utterance has been answered.
	Recording bool

	// PendingScreenshot is set by a text frame announcing a screenshot;
	// the next screenshot frame is paired with that text.
	PendingScreenshot bool

	// Processing is set while a turn is being answered, from recognition
	// through synthesis of the spoken reply.
	Processing bool

	CreatedAt    time.Time
	LastActivity time.Time
}

// State derives the session phase from its flags.
func (s Session) State() State {
	switch {
	case s.Processing:
		return StateProcessing
	case s.PendingScreenshot:
		return StateAwaitingScreenshot
	default:
		return StateIdle
	}
}

// LastUserTurn returns the index and text of the most recent user turn.
func (s Session) LastUserTurn() (int, string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == message.RoleUser {
			return i, s.History[i].Content, true
		}
	}
	return -1, "", false
}

func (s Session) clone() Session {
	s.History = slices.Clone(s.History)
	return s
}

// Patch describes a partial session update. Nil fields are left unchanged;
// AppendTurns are appended in order.
type Patch struct {
	AppendTurns       []message.Turn
	Recording         *bool
	PendingScreenshot *bool
	Processing        *bool
	Language          *string
}

func (s *Session) apply(p Patch) {
	s.History = append(s.History, p.AppendTurns...)
	if p.Recording != nil {
		s.Recording = *p.Recording
	}
	if p.PendingScreenshot != nil {
		s.PendingScreenshot = *p.PendingScreenshot
	}
	if p.Processing != nil {
		s.Processing = *p.Processing
	}
	if p.Language != nil && *p.Language != "" {
		s.Language = *p.Language
	}
}

// Bool returns a pointer to v, for building patches.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for building patches.
func String(v string) *string { return &v }
