package reasoning

import "strings"

// Policy decides which guidance block a prompt gets.
type Policy interface {
	// IsProcess reports whether the user asks how to accomplish a task.
	IsProcess(text, lang string) bool

	// IsScreenHelp reports whether a message sent with a screenshot asks
	// for guidance about what is on screen.
	IsScreenHelp(text, lang string) bool
}

// KeywordPolicy classifies messages by substring match against
// per-language keyword lists. English keywords apply to every language
// since users mix scripts freely.
type KeywordPolicy struct {
	Process    map[string][]string
	ScreenHelp map[string][]string
}

// DefaultPolicy returns the built-in keyword lists.
func DefaultPolicy() *KeywordPolicy {
	return &KeywordPolicy{
		Process: map[string][]string{
			"en": {"how to", "how do i", "how can i", "steps", "step by step", "process", "procedure", "guide me", "apply for", "register"},
			"hi": {"कैसे", "तरीका", "प्रक्रिया", "चरण", "आवेदन"},
			"ta": {"எப்படி", "வழிமுறை", "செயல்முறை", "படிகள்"},
			"bn": {"কিভাবে", "কীভাবে", "প্রক্রিয়া", "ধাপ"},
			"mr": {"कसे", "प्रक्रिया", "पायऱ्या"},
			"te": {"ఎలా", "ప్రక్రియ", "దశలు"},
		},
		ScreenHelp: map[string][]string{
			"en": {"help", "guide", "how to", "what should", "next step", "explain"},
			"hi": {"मदद", "समझाओ", "समझाइए", "आगे क्या", "अगला कदम"},
			"ta": {"உதவி", "விளக்கு", "அடுத்து"},
		},
	}
}

func (p *KeywordPolicy) IsProcess(text, lang string) bool {
	return matchAny(p.Process, text, lang)
}

func (p *KeywordPolicy) IsScreenHelp(text, lang string) bool {
	return matchAny(p.ScreenHelp, text, lang)
}

func matchAny(lists map[string][]string, text, lang string) bool {
	lower := strings.ToLower(text)
	check := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	if check(lists["en"]) {
		return true
	}
	base := baseLanguage(lang)
	return base != "en" && check(lists[base])
}
