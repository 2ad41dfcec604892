package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
parser:
  chars_per_page: 2000
extraction:
  escalation_threshold: 0.75
  amount_tolerance: 0.05
  temperature: 0.2
  max_tokens: 4096
  concurrency: 8
  call_timeout: 45s
  low_cost_model: gemini-2.0-flash
  high_accuracy_model: claude-sonnet-4-20250514
linker:
  fuzzy_threshold: 0.8
ontology:
  path: /etc/covergraph/diseases.yaml
embeddings:
  enabled: true
  dimensions: 1536
  cache_addr: localhost:6379
  cache_ttl: 24h
lock:
  endpoints:
    - localhost:2379
  namespace: covergraph-prod
  ttl: 60
accept:
  policy: 'validation_passed && confidence >= 0.6'
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "covergraph.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Parser.GetCharsPerPage(); got != 2000 {
		t.Errorf("chars_per_page: expected 2000, got %d", got)
	}
	if got := cfg.Extraction.GetEscalationThreshold(); got != 0.75 {
		t.Errorf("escalation_threshold: expected 0.75, got %v", got)
	}
	if got := cfg.Extraction.GetAmountTolerance(); got != 0.05 {
		t.Errorf("amount_tolerance: expected 0.05, got %v", got)
	}
	if got := cfg.Extraction.GetCallTimeout(); got != 45*time.Second {
		t.Errorf("call_timeout: expected 45s, got %v", got)
	}
	if got := cfg.Extraction.GetConcurrency(); got != 8 {
		t.Errorf("concurrency: expected 8, got %d", got)
	}
	if cfg.Extraction.LowCostModel != "gemini-2.0-flash" {
		t.Errorf("unexpected low-cost model %q", cfg.Extraction.LowCostModel)
	}
	if got := cfg.Linker.GetFuzzyThreshold(); got != 0.8 {
		t.Errorf("fuzzy_threshold: expected 0.8, got %v", got)
	}
	if cfg.Ontology.Path != "/etc/covergraph/diseases.yaml" {
		t.Errorf("unexpected ontology path %q", cfg.Ontology.Path)
	}
	if !cfg.Embeddings.Enabled {
		t.Error("embeddings should be enabled")
	}
	if got := cfg.Embeddings.GetCacheTTL(); got != 24*time.Hour {
		t.Errorf("cache_ttl: expected 24h, got %v", got)
	}
	if len(cfg.Lock.Endpoints) != 1 || cfg.Lock.Endpoints[0] != "localhost:2379" {
		t.Errorf("unexpected lock endpoints %v", cfg.Lock.Endpoints)
	}
	if cfg.Accept.Policy == "" {
		t.Error("accept policy missing")
	}
}

func TestDefaultsOnEmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "covergraph.yaml", "{}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Parser.GetCharsPerPage(); got != 1800 {
		t.Errorf("default chars_per_page: expected 1800, got %d", got)
	}
	if got := cfg.Extraction.GetEscalationThreshold(); got != 0.70 {
		t.Errorf("default escalation_threshold: expected 0.70, got %v", got)
	}
	if got := cfg.Extraction.GetAmountTolerance(); got != 0.10 {
		t.Errorf("default amount_tolerance: expected 0.10, got %v", got)
	}
	if got := cfg.Extraction.GetCallTimeout(); got != 60*time.Second {
		t.Errorf("default call_timeout: expected 60s, got %v", got)
	}
	if got := cfg.Linker.GetFuzzyThreshold(); got != 0.7 {
		t.Errorf("default fuzzy_threshold: expected 0.7, got %v", got)
	}
	if got := cfg.Embeddings.GetDimensions(); got != 768 {
		t.Errorf("default dimensions: expected 768, got %d", got)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "covergraph.yml"), []byte("parser:\n  chars_per_page: 900\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Parser.GetCharsPerPage(); got != 900 {
		t.Errorf("expected 900, got %d", got)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "covergraph.yaml", "parser: [not a map")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected stat error")
	}
}
