package live

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Frame is a decoded client text frame. It is one of TextFrame,
// ScreenshotFrame, EndTurnFrame, RawTextFrame or UnknownFrame.
type Frame interface {
	frame()
}

// TextFrame is a typed chat message.
type TextFrame struct {
	Data          string
	HasScreenshot bool
	Language      *string
}

// ScreenshotFrame carries a data-URI encoded screen capture.
type ScreenshotFrame struct {
	Data string
}

// EndTurnFrame marks the end of a spoken utterance.
type EndTurnFrame struct{}

// RawTextFrame is a text frame that is not JSON; it is treated as chat.
type RawTextFrame struct {
	Data string
}

// UnknownFrame is JSON with a missing or unrecognized type, including a
// literal null.
type UnknownFrame struct {
	Type string
}

func (TextFrame) frame()       {}
func (ScreenshotFrame) frame() {}
func (EndTurnFrame) frame()    {}
func (RawTextFrame) frame()    {}
func (UnknownFrame) frame()    {}

type clientFrame struct {
	Type          string  `json:"type"`
	Data          string  `json:"data"`
	HasScreenshot bool    `json:"hasScreenshot"`
	Language      *string `json:"language"`
}

// DecodeFrame classifies a client text frame.
func DecodeFrame(data []byte) Frame {
	var f clientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return RawTextFrame{Data: string(data)}
	}

	switch strings.TrimSpace(f.Type) {
	case "text":
		return TextFrame{Data: f.Data, HasScreenshot: f.HasScreenshot, Language: f.Language}
	case "screenshot":
		return ScreenshotFrame{Data: f.Data}
	case "end_turn":
		return EndTurnFrame{}
	default:
		return UnknownFrame{Type: f.Type}
	}
}

// DetectLanguage guesses the language of text from its script. It
// recognizes Devanagari (hi) and Tamil (ta).
func DetectLanguage(text string) (string, bool) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			return "hi", true
		case unicode.Is(unicode.Tamil, r):
			return "ta", true
		}
	}
	return "", false
}
