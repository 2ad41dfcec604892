// Package config provides loading and parsing of covergraph.yaml
// configuration files. The configuration covers every tunable of the
// ingestion pipeline: parsing, extraction thresholds, entity linking,
// embeddings, distributed locking and the acceptance policy.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a covergraph.yaml configuration file.
type Config struct {
	Parser     *ParserConfig     `yaml:"parser,omitempty"`
	Extraction *ExtractionConfig `yaml:"extraction,omitempty"`
	Linker     *LinkerConfig     `yaml:"linker,omitempty"`
	Ontology   *OntologyConfig   `yaml:"ontology,omitempty"`
	Embeddings *EmbeddingsConfig `yaml:"embeddings,omitempty"`
	Lock       *LockConfig       `yaml:"lock,omitempty"`
	Accept     *AcceptConfig     `yaml:"accept,omitempty"`
}

// ParserConfig tunes legal structure parsing.
type ParserConfig struct {
	// CharsPerPage calibrates page estimation for plain-text input.
	// Default: 1800.
	CharsPerPage int `yaml:"chars_per_page,omitempty"`
}

// GetCharsPerPage returns the configured page size or the default.
func (p *ParserConfig) GetCharsPerPage() int {
	if p == nil || p.CharsPerPage <= 0 {
		return 1800
	}
	return p.CharsPerPage
}

// ExtractionConfig tunes the tiered relation extraction cascade.
type ExtractionConfig struct {
	// EscalationThreshold is the confidence below which the low-cost
	// tier's answer is discarded and the clause retried on the
	// high-accuracy tier. Default: 0.70.
	EscalationThreshold float64 `yaml:"escalation_threshold,omitempty"`

	// AmountTolerance is the maximum relative deviation between a model
	// amount and the closest rule-extracted amount before the deviation
	// becomes a validation error. Default: 0.10.
	AmountTolerance float64 `yaml:"amount_tolerance,omitempty"`

	// Temperature for extraction completions. Default: 0.1.
	Temperature float64 `yaml:"temperature,omitempty"`

	// MaxTokens per extraction completion. Default: 2048.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Concurrency is the number of clauses extracted in parallel.
	// Default: 4.
	Concurrency int `yaml:"concurrency,omitempty"`

	// CallTimeout bounds a single model call.
	// Format: Go duration string (e.g., "45s"). Default: 60s.
	CallTimeout string `yaml:"call_timeout,omitempty"`

	// LowCostModel and HighAccuracyModel name the models for the two
	// cascade tiers. Empty values fall back to provider defaults.
	LowCostModel      string `yaml:"low_cost_model,omitempty"`
	HighAccuracyModel string `yaml:"high_accuracy_model,omitempty"`
}

// GetEscalationThreshold returns the threshold or the default.
func (e *ExtractionConfig) GetEscalationThreshold() float64 {
	if e == nil || e.EscalationThreshold <= 0 || e.EscalationThreshold > 1 {
		return 0.70
	}
	return e.EscalationThreshold
}

// GetAmountTolerance returns the tolerance or the default.
func (e *ExtractionConfig) GetAmountTolerance() float64 {
	if e == nil || e.AmountTolerance <= 0 {
		return 0.10
	}
	return e.AmountTolerance
}

// GetTemperature returns the sampling temperature or the default.
func (e *ExtractionConfig) GetTemperature() float64 {
	if e == nil || e.Temperature <= 0 {
		return 0.1
	}
	return e.Temperature
}

// GetMaxTokens returns the completion budget or the default.
func (e *ExtractionConfig) GetMaxTokens() int {
	if e == nil || e.MaxTokens <= 0 {
		return 2048
	}
	return e.MaxTokens
}

// GetConcurrency returns the clause-level parallelism or the default.
func (e *ExtractionConfig) GetConcurrency() int {
	if e == nil || e.Concurrency <= 0 {
		return 4
	}
	return e.Concurrency
}

// GetCallTimeout parses the call timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (e *ExtractionConfig) GetCallTimeout() time.Duration {
	if e == nil || e.CallTimeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(e.CallTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// LinkerConfig tunes entity linking.
type LinkerConfig struct {
	// FuzzyThreshold is the minimum normalized similarity for a fuzzy
	// match. Default: 0.7.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold,omitempty"`
}

// GetFuzzyThreshold returns the threshold or the default.
func (l *LinkerConfig) GetFuzzyThreshold() float64 {
	if l == nil || l.FuzzyThreshold <= 0 || l.FuzzyThreshold > 1 {
		return 0.7
	}
	return l.FuzzyThreshold
}

// OntologyConfig locates the disease catalog.
type OntologyConfig struct {
	// Path to the YAML disease catalog.
	Path string `yaml:"path"`
}

// EmbeddingsConfig tunes clause embeddings.
type EmbeddingsConfig struct {
	// Enabled turns clause-vector generation on. Default: false.
	Enabled bool `yaml:"enabled,omitempty"`

	// Model is the embedding model name. Empty uses the provider default.
	Model string `yaml:"model,omitempty"`

	// Dimensions is the requested output dimensionality. Default: 768.
	Dimensions int `yaml:"dimensions,omitempty"`

	// CacheAddr is an optional Redis address for the embedding cache.
	// Empty disables caching.
	CacheAddr string `yaml:"cache_addr,omitempty"`

	// CacheTTL is the cache entry lifetime.
	// Format: Go duration string (e.g., "168h"). Default: 168h.
	CacheTTL string `yaml:"cache_ttl,omitempty"`
}

// GetDimensions returns the dimensionality or the default.
func (e *EmbeddingsConfig) GetDimensions() int {
	if e == nil || e.Dimensions <= 0 {
		return 768
	}
	return e.Dimensions
}

// GetCacheTTL parses the cache TTL string and returns a duration.
func (e *EmbeddingsConfig) GetCacheTTL() time.Duration {
	if e == nil || e.CacheTTL == "" {
		return 168 * time.Hour
	}
	d, err := time.ParseDuration(e.CacheTTL)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}

// LockConfig configures distributed locking around persistence.
type LockConfig struct {
	// Endpoints is the etcd cluster. Empty means in-process locking.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace prefixes lock keys. Default: "covergraph".
	Namespace string `yaml:"namespace,omitempty"`

	// TTL is the lock session lease in seconds. Default: 30.
	TTL int `yaml:"ttl,omitempty"`
}

// AcceptConfig configures the clause acceptance policy.
type AcceptConfig struct {
	// Policy is a CEL expression over the extraction result's quality
	// signals. Empty uses the built-in default.
	Policy string `yaml:"policy,omitempty"`
}

// Load reads and parses a covergraph.yaml file from the given path.
// If the path is a directory, it looks for covergraph.yaml or
// covergraph.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var configPath string
	if info.IsDir() {
		yamlPath := filepath.Join(path, "covergraph.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "covergraph.yml")
			if _, err := os.Stat(ymlPath); err == nil {
				configPath = ymlPath
			} else {
				return nil, fmt.Errorf("no covergraph.yaml or covergraph.yml found in %s", path)
			}
		}
	} else {
		configPath = path
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}
