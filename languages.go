package mtbridge

import "strings"

// LanguageNames maps ISO 639-1 codes to human-readable names for engine prompts.
var LanguageNames = map[string]string{
	"ar": "Arabic",
	"bg": "Bulgarian",
	"ca": "Catalan",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"id": "Indonesian",
	"is": "Icelandic",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"ms": "Malay",
	"nb": "Norwegian Bokmål",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sq": "Albanian",
	"sr": "Serbian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// GetLanguageName returns the human-readable name for a language code or tag.
// Falls back to the input if the code is unknown.
func GetLanguageName(lang string) string {
	if name, ok := LanguageNames[NormalizeLangCode(lang)]; ok {
		return name
	}
	return strings.TrimSpace(lang)
}

// NormalizeLangTag lowercases a language tag and uses "-" separators
// (e.g., "pt_BR" -> "pt-br"). Returns "" for blank or non-alphanumeric tags.
func NormalizeLangTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(strings.ReplaceAll(trimmed, "_", "-"), "-")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		for _, r := range part {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return ""
			}
		}
		normalized = append(normalized, part)
	}
	return strings.Join(normalized, "-")
}

// NormalizeLangCode returns the primary subtag of a language tag (e.g., "en" from "en_US").
func NormalizeLangCode(raw string) string {
	tag := NormalizeLangTag(raw)
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}
