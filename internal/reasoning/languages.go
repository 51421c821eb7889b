package reasoning

import "strings"

// languageNames maps bare language codes to the name used in the
// reply-language directive.
var languageNames = map[string]string{
	"hi": "हिंदी",
	"en": "English",
	"ta": "தமிழ்",
	"bn": "বাংলা",
	"gu": "ગુજરાતી",
	"mr": "मराठी",
	"te": "తెలుగు",
	"kn": "ಕನ್ನಡ",
	"ml": "മലയാളം",
	"pa": "ਪੰਜਾਬੀ",
	"od": "ଓଡ଼ିଆ",
}

// youSaid is the echo prefix used when no backend is configured.
var youSaid = map[string]string{
	"hi": "आपने कहा",
	"en": "You said",
	"ta": "நீங்கள் சொன்னது",
	"bn": "আপনি বলেছেন",
	"gu": "તમે કહ્યું",
	"mr": "तुम्ही म्हणालात",
	"te": "మీరు చెప్పారు",
	"kn": "ನೀವು ಹೇಳಿದ್ದು",
	"ml": "നിങ്ങൾ പറഞ്ഞത്",
	"pa": "ਤੁਸੀਂ ਕਿਹਾ",
}

func baseLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexByte(code, '-'); i >= 0 {
		return code[:i]
	}
	return code
}

// LanguageName returns the display name of a language code, falling back
// to English for unknown codes.
func LanguageName(code string) string {
	if name, ok := languageNames[baseLanguage(code)]; ok {
		return name
	}
	return languageNames["en"]
}

func echoPrefix(code string) string {
	if p, ok := youSaid[baseLanguage(code)]; ok {
		return p
	}
	return youSaid["hi"]
}
