package mtbridge

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed modelconfig.schema.json
var modelConfigSchemaJSON string

// ModelConfig is a parsed model configuration blob.
//
// The layout follows Marian/Bergamot YAML configs. Keys the struct does not
// name are kept in Extra so engines can read their own settings.
type ModelConfig struct {
	Models         []string          `yaml:"models"`
	Vocabs         []string          `yaml:"vocabs"`
	Shortlist      []any             `yaml:"shortlist"`
	SourceLanguage string            `yaml:"source-language"`
	TargetLanguage string            `yaml:"target-language"`
	BeamSize       int               `yaml:"beam-size"`
	MaxLengthBreak int               `yaml:"max-length-break"`
	MiniBatchWords int               `yaml:"mini-batch-words"`
	CPUThreads     int               `yaml:"cpu-threads"`
	Quiet          bool              `yaml:"quiet"`
	Lexicon        map[string]string `yaml:"lexicon"`

	Extra       map[string]any `yaml:"-"`
	Fingerprint string         `yaml:"-"` // SHA-256 of the raw blob
}

var knownConfigKeys = map[string]bool{
	"models":           true,
	"vocabs":           true,
	"shortlist":        true,
	"source-language":  true,
	"target-language":  true,
	"beam-size":        true,
	"max-length-break": true,
	"mini-batch-words": true,
	"cpu-threads":      true,
	"quiet":            true,
	"lexicon":          true,
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// ParseModelConfig decodes a YAML (or JSON) configuration blob. When validate
// is true the document must also satisfy the embedded JSON Schema.
func ParseModelConfig(blob []byte, validate bool) (*ModelConfig, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return nil, &ConfigParseError{Message: "config is empty"}
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, &ConfigParseError{Message: "invalid YAML", Cause: err}
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return nil, &ConfigParseError{Message: fmt.Sprintf("config must be a mapping, got %T", doc)}
	}

	if validate {
		if err := validateConfigDocument(fields); err != nil {
			return nil, err
		}
	}

	var cfg ModelConfig
	if err := yaml.Unmarshal(trimmed, &cfg); err != nil {
		return nil, &ConfigParseError{Message: "decode config fields", Cause: err}
	}

	for key, value := range fields {
		if knownConfigKeys[key] {
			continue
		}
		if cfg.Extra == nil {
			cfg.Extra = make(map[string]any)
		}
		cfg.Extra[key] = value
	}

	sum := sha256.Sum256(trimmed)
	cfg.Fingerprint = hex.EncodeToString(sum[:])
	cfg.SourceLanguage = strings.TrimSpace(cfg.SourceLanguage)
	cfg.TargetLanguage = strings.TrimSpace(cfg.TargetLanguage)

	return &cfg, nil
}

// PairName returns "src-trg" for the configured languages, or "" when either is unset.
func (c *ModelConfig) PairName() string {
	if c == nil || c.SourceLanguage == "" || c.TargetLanguage == "" {
		return ""
	}
	return NormalizeLangCode(c.SourceLanguage) + "-" + NormalizeLangCode(c.TargetLanguage)
}

func validateConfigDocument(fields map[string]any) error {
	s, err := loadModelConfigSchema()
	if err != nil {
		return &ConfigParseError{Message: "load schema", Cause: err}
	}

	// Round-trip through JSON so the validator sees JSON types only.
	raw, err := json.Marshal(fields)
	if err != nil {
		return &ConfigParseError{Message: "config is not JSON-compatible", Cause: err}
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return &ConfigParseError{Message: "normalize config", Cause: err}
	}

	if err := s.Validate(value); err != nil {
		return &ConfigParseError{Message: "schema validation failed", Cause: err}
	}
	return nil
}

func loadModelConfigSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("modelconfig.schema.json", strings.NewReader(modelConfigSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		compiled, err := compiler.Compile("modelconfig.schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		schema = compiled
	})

	if schemaErr != nil {
		return nil, schemaErr
	}
	if schema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return schema, nil
}
