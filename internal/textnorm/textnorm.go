// Package textnorm cleans generated text before it is spoken or displayed.
//
// Language models answer in Markdown. Neither the chat bubbles nor the
// speech synthesizer want the markers, so everything that leaves the
// reasoning adapter goes through Strip.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.*?)\*`)
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`(.*?)`")
	linkRe       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	headerRe     = regexp.MustCompile(`(?m)^#+\s+(.*)`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[\*\-+]\s+`)
	numberedRe   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	quoteRe      = regexp.MustCompile(`(?m)^\s*>\s+(.*)`)
	ruleRe       = regexp.MustCompile(`(?m)^\s*---+\s*$`)

	digitRunRe = regexp.MustCompile(`[0-9]{5,}`)
)

// Strip removes Markdown markers and collapses whitespace to single spaces.
// It is idempotent: Strip(Strip(s)) == Strip(s).
func Strip(text string) string {
	if text == "" {
		return ""
	}
	// A single pass can expose new markers ("# # title" leaves "# title"),
	// so run to a fixpoint. Every pass either shrinks the text or leaves it
	// unchanged, which bounds the loop.
	for {
		next := stripOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func stripOnce(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = codeBlockRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	text = headerRe.ReplaceAllString(text, "$1")
	text = bulletRe.ReplaceAllString(text, "")
	text = numberedRe.ReplaceAllString(text, "")
	text = quoteRe.ReplaceAllString(text, "$1")
	text = ruleRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// GroupDigits inserts thousands separators into runs of five or more digits
// so that synthesizers read "1,234,567" instead of a digit string.
func GroupDigits(text string) string {
	return digitRunRe.ReplaceAllStringFunc(text, groupRun)
}

func groupRun(run string) string {
	run = strings.TrimLeft(run, "0")
	if run == "" {
		return "0"
	}
	if len(run) <= 3 {
		return run
	}

	var sb strings.Builder
	sb.Grow(len(run) + len(run)/3)
	lead := len(run) % 3
	if lead > 0 {
		sb.WriteString(run[:lead])
	}
	for i := lead; i < len(run); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(run[i : i+3])
	}
	return sb.String()
}
