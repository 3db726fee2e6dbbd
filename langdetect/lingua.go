// Package langdetect identifies the language of text with lingua-go.
package langdetect

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/ZaguanLabs/mtbridge"
)

const (
	// minLetters is the shortest input worth classifying.
	minLetters = 3

	// maxCandidates is how many ranked guesses are reported.
	maxCandidates = 3

	// hintBoost is added to a hinted language's score before re-ranking.
	hintBoost = 0.15

	// A reliable top candidate clears a low floor and dominates the
	// runner-up by both ratio and margin.
	reliableScore  = 0.2
	reliableRatio  = 2.0
	reliableMargin = 0.1
)

// Config selects the languages the detector chooses between.
type Config struct {
	// Languages are ISO 639-1/639-3 codes or English names. Empty means all
	// languages lingua knows.
	Languages []string

	// Preload loads every language model on first use instead of lazily.
	Preload bool
}

// Detector implements mtbridge.LanguageDetector. The lingua detector is
// built on first use and shared afterwards.
type Detector struct {
	languages []lingua.Language
	preload   bool
	index     map[string]lingua.Language

	once     sync.Once
	detector lingua.LanguageDetector
}

// New creates a detector over the configured languages.
func New(cfg Config) (*Detector, error) {
	all := lingua.AllLanguages()
	byName := buildIndex(all)

	var selected []lingua.Language
	if len(cfg.Languages) > 0 {
		seen := make(map[lingua.Language]bool)
		for _, name := range cfg.Languages {
			lang, ok := lookup(byName, name)
			if !ok {
				return nil, fmt.Errorf("langdetect: unknown language %q", name)
			}
			if !seen[lang] {
				seen[lang] = true
				selected = append(selected, lang)
			}
		}
		if len(selected) < 2 {
			return nil, fmt.Errorf("langdetect: need at least 2 languages, got %d", len(selected))
		}
	}

	index := byName
	if selected != nil {
		index = buildIndex(selected)
	}

	return &Detector{
		languages: selected,
		preload:   cfg.Preload,
		index:     index,
	}, nil
}

// MustNew is New for fixed configurations; it panics on error.
func MustNew(cfg Config) *Detector {
	d, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

func buildIndex(langs []lingua.Language) map[string]lingua.Language {
	index := make(map[string]lingua.Language, len(langs)*3)
	for _, lang := range langs {
		if lang == lingua.Unknown {
			continue
		}
		index[strings.ToLower(lang.IsoCode639_1().String())] = lang
		index[strings.ToLower(lang.IsoCode639_3().String())] = lang
		index[strings.ToLower(lang.String())] = lang
	}
	return index
}

func lookup(index map[string]lingua.Language, name string) (lingua.Language, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if lang, ok := index[key]; ok {
		return lang, true
	}
	if code := mtbridge.NormalizeLangCode(name); code != "" {
		if lang, ok := index[code]; ok {
			return lang, true
		}
	}
	return lingua.Unknown, false
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		builder := lingua.NewLanguageDetectorBuilder()
		var b lingua.LanguageDetectorBuilder
		if len(d.languages) > 0 {
			b = builder.FromLanguages(d.languages...)
		} else {
			b = builder.FromAllLanguages()
		}
		if d.preload {
			b = b.WithPreloadedLanguageModels()
		}
		d.detector = b.Build()
	})
	return d.detector
}

// ResolveLanguage maps a code, tag ("fr-CA") or English name to the
// detector's identifier for that language. Languages outside the configured
// set do not resolve.
func (d *Detector) ResolveLanguage(name string) (string, bool) {
	lang, ok := lookup(d.index, name)
	if !ok {
		return "", false
	}
	return code(lang), true
}

// DetectLanguage ranks the most likely languages of text.
func (d *Detector) DetectLanguage(text, hint string) (mtbridge.Detection, error) {
	if countLetters(text) < minLetters {
		return mtbridge.Detection{}, nil
	}

	values := d.get().ComputeLanguageConfidenceValues(text)
	scores := make([]score, 0, len(values))
	for _, v := range values {
		scores = append(scores, score{code: code(v.Language()), value: v.Value()})
	}
	return rank(scores, hint), nil
}

type score struct {
	code  string
	value float64
}

// rank keeps the top candidates, boosts the hinted one if present, and
// decides reliability from the unboosted scores.
func rank(scores []score, hint string) mtbridge.Detection {
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].value > scores[j].value })

	top := make([]score, 0, maxCandidates)
	for _, s := range scores {
		if len(top) == maxCandidates {
			break
		}
		if s.value <= 0 {
			break
		}
		top = append(top, s)
	}
	if len(top) == 0 {
		return mtbridge.Detection{}
	}

	if hint != "" {
		boosted := func(s score) float64 {
			if s.code == hint {
				return s.value + hintBoost
			}
			return s.value
		}
		sort.SliceStable(top, func(i, j int) bool { return boosted(top[i]) > boosted(top[j]) })
	}

	det := mtbridge.Detection{Candidates: make([]mtbridge.LanguageCandidate, len(top))}
	for i, s := range top {
		det.Candidates[i] = mtbridge.LanguageCandidate{
			Code:    s.code,
			Percent: int(math.Round(s.value * 100)),
		}
	}

	det.Reliable = reliable(top)
	return det
}

// reliable judges the ranked candidates on their unboosted scores.
func reliable(top []score) bool {
	best := top[0].value
	runnerUp := 0.0
	if len(top) > 1 {
		runnerUp = top[1].value
	}
	return best >= reliableScore &&
		best-runnerUp >= reliableMargin &&
		best >= reliableRatio*runnerUp
}

func code(lang lingua.Language) string {
	if c := strings.ToLower(lang.IsoCode639_1().String()); len(c) == 2 {
		return c
	}
	return strings.ToLower(lang.IsoCode639_3().String())
}

func countLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

var _ mtbridge.LanguageDetector = (*Detector)(nil)
