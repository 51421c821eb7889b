package reasoning

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/parley/internal/message"
)

// systemInstruction is sent with every prompt.
const systemInstruction = `You are a helpful multilingual assistant in an ongoing conversation.
Remember everything the user has told you earlier in this conversation and use it without asking again.
Be proactive: anticipate the user's next need and offer the next useful step.
Answer in plain conversational sentences; the reply may be read aloud.`

const processBlock = `The user is asking how to get something done.
Reply with a numbered, step-by-step guide. Keep each step short and actionable,
mention documents or prerequisites up front, and end by asking which step they are on.`

const (
	screenHelpBlock = "The user has shared their screen and is asking for help: %q. " +
		"Provide step-by-step guidance on what they're seeing and how to proceed next."
	screenMessageBlock = "The user has shared their screen and says: %q. " +
		"Analyze the screenshot and respond to the user's message, including any relevant guidance for what's visible on screen."
	screenOnlyBlock = "The user has shared their screen without text. " +
		"Analyze what's visible, explain key elements, and provide step-by-step guidance on possible next actions based on what you see."
	documentBlock = "The user has shared a document. Answer using its content: %q"
)

// minScreenTextChars is the length below which a screenshot submission is
// treated as image-only.
const minScreenTextChars = 5

// Request is one conversational turn to answer.
type Request struct {
	Text     string
	Language string
	History  []message.Turn

	// Image is a screenshot or document sent with the message.
	Image *Attachment

	// Search enables web-search grounding when the backend supports it.
	Search bool
}

// BuildPrompt composes the backend prompt for a request.
func BuildPrompt(req Request, policy Policy) Prompt {
	var b strings.Builder

	text := strings.TrimSpace(req.Text)
	switch {
	case req.Image != nil && !req.Image.IsImage():
		fmt.Fprintf(&b, documentBlock, text)
		b.WriteString("\n\n")
	case req.Image != nil:
		switch {
		case utf8.RuneCountInString(text) < minScreenTextChars:
			b.WriteString(screenOnlyBlock)
		case policy.IsScreenHelp(text, req.Language):
			fmt.Fprintf(&b, screenHelpBlock, text)
		default:
			fmt.Fprintf(&b, screenMessageBlock, text)
		}
		b.WriteString("\n\n")
	case policy.IsProcess(text, req.Language):
		b.WriteString(processBlock)
		b.WriteString("\n\n")
	}

	if len(req.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Reply in %s and help the user.", LanguageName(req.Language))
	if text != "" {
		fmt.Fprintf(&b, " User said: %s", text)
	}

	return Prompt{
		System:     systemInstruction,
		Text:       b.String(),
		Attachment: req.Image,
		Search:     req.Search,
	}
}
