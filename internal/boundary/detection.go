package boundary

import "github.com/ZaguanLabs/mtbridge"

// LanguageFieldSize is the width of the language field in the C record,
// including the terminating NUL.
const LanguageFieldSize = mtbridge.MaxLanguageCodeLen + 1

// EncodeDetection lays out res as the fixed-width C record. The language
// code is truncated to fit and always NUL-terminated.
func EncodeDetection(res mtbridge.DetectionResult) (lang [LanguageFieldSize]byte, reliable bool, confidence int) {
	code := res.Language
	if code == "" {
		code = mtbridge.UnknownLanguage
	}
	copy(lang[:mtbridge.MaxLanguageCodeLen], code)

	confidence = res.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return lang, res.Reliable, confidence
}
