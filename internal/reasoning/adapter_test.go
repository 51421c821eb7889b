package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/parley/internal/message"
)

type fakeBackend struct {
	reply   string
	err     error
	prompts []Prompt
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func TestReply_NotConfiguredEchoes(t *testing.T) {
	a := NewAdapter(nil, nil, 0)
	assert.False(t, a.Configured())

	tests := []struct {
		lang string
		text string
		want string
	}{
		{lang: "hi", text: "नमस्ते", want: "आपने कहा: नमस्ते"},
		{lang: "en-IN", text: "hello", want: "You said: hello"},
		{lang: "ta", text: "வணக்கம்", want: "நீங்கள் சொன்னது: வணக்கம்"},
		{lang: "xx", text: "abc", want: "आपने कहा: abc"},
		{lang: "en", text: "", want: "You said:"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.text, func(t *testing.T) {
			res := a.Reply(t.Context(), Request{Text: tt.text, Language: tt.lang})
			assert.Equal(t, tt.want, res.Text)
			assert.NotEmpty(t, res.Text)
			assert.False(t, res.Success)
			assert.Equal(t, ReasonNotConfigured, res.Reason)
		})
	}
}

func TestReply_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeBackend
		wantText   string
		wantReason Reason
		wantOK     bool
	}{
		{
			name:       "ok",
			backend:    &fakeBackend{reply: "  Namaste!  "},
			wantText:   "Namaste!",
			wantReason: ReasonOK,
			wantOK:     true,
		},
		{
			name:       "api error",
			backend:    &fakeBackend{err: errors.New("connection refused")},
			wantText:   "API error: connection refused",
			wantReason: ReasonAPIError,
		},
		{
			name:       "quota",
			backend:    &fakeBackend{err: fmt.Errorf("%w: 429", ErrQuotaExceeded)},
			wantText:   quotaText,
			wantReason: ReasonQuotaExceeded,
		},
		{
			name:       "empty",
			backend:    &fakeBackend{reply: " \n "},
			wantText:   emptyResponseText,
			wantReason: ReasonEmptyResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.backend, nil, 0)
			res := a.Reply(t.Context(), Request{Text: "hello", Language: "en"})
			assert.Equal(t, tt.wantText, res.Text)
			assert.Equal(t, tt.wantReason, res.Reason)
			assert.Equal(t, tt.wantOK, res.Success)
			require.Len(t, tt.backend.prompts, 1)
		})
	}
}

func TestReply_PassesHistoryAndAttachment(t *testing.T) {
	fb := &fakeBackend{reply: "ok"}
	a := NewAdapter(fb, nil, 0)

	img := &Attachment{Data: []byte{1, 2}, MIMEType: "image/png"}
	a.Reply(t.Context(), Request{
		Text:     "what is this button?",
		Language: "en",
		History:  []message.Turn{message.UserTurn("my name is Ravi"), message.AssistantTurn("Hi Ravi")},
		Image:    img,
		Search:   true,
	})

	require.Len(t, fb.prompts, 1)
	p := fb.prompts[0]
	assert.Same(t, img, p.Attachment)
	assert.True(t, p.Search)
	assert.Contains(t, p.Text, "user: my name is Ravi")
	assert.Contains(t, p.Text, "assistant: Hi Ravi")
	assert.Contains(t, p.Text, "User said: what is this button?")
	assert.NotEmpty(t, p.System)
}

func TestBuildPrompt_Blocks(t *testing.T) {
	policy := DefaultPolicy()
	img := &Attachment{Data: []byte{1}, MIMEType: "image/jpeg"}
	pdf := &Attachment{Data: []byte{1}, MIMEType: "application/pdf"}

	tests := []struct {
		name    string
		req     Request
		want    string
		notWant []string
	}{
		{
			name:    "how-to english",
			req:     Request{Text: "How to apply for a passport?", Language: "en"},
			want:    "step-by-step guide",
			notWant: []string{"shared their screen"},
		},
		{
			name: "how-to hindi",
			req:  Request{Text: "पासपोर्ट के लिए आवेदन कैसे करें?", Language: "hi"},
			want: "step-by-step guide",
		},
		{
			name:    "plain chat",
			req:     Request{Text: "tell me a joke", Language: "en"},
			want:    "Reply in English",
			notWant: []string{"step-by-step guide", "shared their screen"},
		},
		{
			name:    "screenshot only",
			req:     Request{Text: "", Language: "en", Image: img},
			want:    "without text",
			notWant: []string{"step-by-step guide"},
		},
		{
			name: "screenshot short text",
			req:  Request{Text: "hm?", Language: "en", Image: img},
			want: "without text",
		},
		{
			name: "screenshot help",
			req:  Request{Text: "please explain this form", Language: "en", Image: img},
			want: "is asking for help",
		},
		{
			name:    "screenshot message",
			req:     Request{Text: "this looks nice", Language: "en", Image: img},
			want:    "Analyze the screenshot",
			notWant: []string{"is asking for help"},
		},
		{
			name: "document",
			req:  Request{Text: "summarize", Language: "hi", Image: pdf},
			want: "shared a document",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt(tt.req, policy)
			assert.Contains(t, p.Text, tt.want)
			for _, s := range tt.notWant {
				assert.NotContains(t, p.Text, s)
			}
		})
	}
}

type alwaysProcess struct{}

func (alwaysProcess) IsProcess(string, string) bool    { return true }
func (alwaysProcess) IsScreenHelp(string, string) bool { return false }

func TestBuildPrompt_CustomPolicy(t *testing.T) {
	p := BuildPrompt(Request{Text: "hello", Language: "en"}, alwaysProcess{})
	assert.Contains(t, p.Text, "step-by-step guide")
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "हिंदी", LanguageName("hi-IN"))
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "English", LanguageName("zz"))
	assert.True(t, strings.HasPrefix(BuildPrompt(Request{Language: "ta"}, DefaultPolicy()).Text, "Reply in தமிழ்"))
}
