package mtbridge

import "context"

// DefaultResultCacheSize is the number of translations the engine keeps in
// its in-memory result cache unless configured otherwise.
const DefaultResultCacheSize = 256

// UnknownLanguage is the code reported when detection finds no candidate.
const UnknownLanguage = "un"

// MaxLanguageCodeLen is the number of usable bytes in a reported language code.
// The C record reserves one more byte for the terminator.
const MaxLanguageCodeLen = 7

// ResponseOptions controls what the engine produces for one input.
type ResponseOptions struct {
	HTML             bool // Input is HTML; translate text nodes only
	QualityScores    bool // Attach quality estimates (unused by bundled engines)
	Alignment        bool // Attach word alignments (unused by bundled engines)
	SentenceMappings bool // Attach sentence mappings (unused by bundled engines)
}

// PlainText returns the options the dispatcher uses for every input.
func PlainText() ResponseOptions {
	return ResponseOptions{}
}

// Response is the engine's answer for one input.
type Response struct {
	Source string
	Target string
}

// Model is a loaded, ready-to-use translation artifact for one language pair.
// Models that hold native resources implement io.Closer.
type Model interface {
	// SourceLanguage returns the language the model translates from.
	SourceLanguage() string
	// TargetLanguage returns the language the model translates to.
	TargetLanguage() string
}

// TranslationEngine is the external translation collaborator.
type TranslationEngine interface {
	// CreateModel builds a model from a parsed configuration.
	CreateModel(ctx context.Context, cfg *ModelConfig) (Model, error)

	// Translate runs one batch through the given models. A single model is a
	// direct translation; two or more are chained source -> pivot -> target.
	// The result must have one Response per text, in input order.
	Translate(ctx context.Context, models []Model, texts []string, opts []ResponseOptions) ([]Response, error)
}

// LanguageCandidate is one ranked guess from a detector.
type LanguageCandidate struct {
	Code    string // Language code (e.g., "fr")
	Percent int    // Confidence in [0, 100]
}

// Detection is the raw output of a LanguageDetector.
type Detection struct {
	Candidates []LanguageCandidate // Best first, at most three
	Reliable   bool
}

// LanguageDetector is the external language-identification collaborator.
type LanguageDetector interface {
	// ResolveLanguage maps a caller-supplied hint to an identifier the
	// detector understands. It returns false when the hint is unknown.
	ResolveLanguage(name string) (string, bool)

	// DetectLanguage identifies the language of text. An empty hint means
	// no bias.
	DetectLanguage(text, hint string) (Detection, error)
}

// DetectionResult is the fixed-shape record returned to callers.
type DetectionResult struct {
	Language   string // At most MaxLanguageCodeLen bytes
	Reliable   bool
	Confidence int // 0-100
}

// TranslationCache is the interface for the engine's result cache.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// BatchGetter is implemented by caches that can look up many keys at once.
// The returned slice is aligned with keys; missing entries are empty with ok false.
type BatchGetter interface {
	GetMany(keys []string) ([]string, []bool)
}

// Purger is implemented by caches that can drop all entries.
type Purger interface {
	Clear()
}
