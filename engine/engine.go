// Package engine provides translation engines for the mtbridge service.
package engine

import (
	"strings"

	"github.com/ZaguanLabs/mtbridge"
)

// model is the state both bundled engines keep per loaded configuration.
type model struct {
	name    string
	source  string
	target  string
	lexicon map[string]string
}

func (m *model) SourceLanguage() string { return m.source }
func (m *model) TargetLanguage() string { return m.target }

func newModel(cfg *mtbridge.ModelConfig, defaultName string) (*model, error) {
	if cfg == nil {
		return nil, &mtbridge.ModelConstructionError{Message: "nil config"}
	}
	if cfg.TargetLanguage == "" {
		return nil, &mtbridge.ModelConstructionError{Message: "target-language is required"}
	}

	name := defaultName
	if remote, ok := cfg.Extra["remote-model"].(string); ok && strings.TrimSpace(remote) != "" {
		name = strings.TrimSpace(remote)
	} else if len(cfg.Models) > 0 && cfg.Models[0] != "" {
		name = cfg.Models[0]
	}

	return &model{
		name:    name,
		source:  cfg.SourceLanguage,
		target:  cfg.TargetLanguage,
		lexicon: cfg.Lexicon,
	}, nil
}

func asModel(m mtbridge.Model) (*model, bool) {
	mm, ok := m.(*model)
	return mm, ok
}
