package assembler

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestConfig_InitKeepsExplicitThresholds(t *testing.T) {
	cfg := Config{DocumentThreshold: Threshold(0), MessageThreshold: Threshold(-0.2)}
	cfg.Init()
	if got := cfg.DocumentMinSimilarity(); got != 0 {
		t.Fatalf("document threshold = %v, want 0", got)
	}
	if got := cfg.MessageMinSimilarity(); got != -0.2 {
		t.Fatalf("message threshold = %v, want -0.2", got)
	}
	if cfg.DocumentLimit != DefaultLimit || cfg.MessageLimit != DefaultLimit || cfg.Scope != ScopeWorkspace {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestConfig_YAMLThresholds(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte("documentThreshold: 0\ndocumentLimit: 3\n"), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg.Init()
	if got := cfg.DocumentMinSimilarity(); got != 0 {
		t.Fatalf("explicit zero threshold replaced: %v", got)
	}
	if got := cfg.MessageMinSimilarity(); got != DefaultMessageThreshold {
		t.Fatalf("absent threshold = %v, want default", got)
	}
	if cfg.DocumentLimit != 3 {
		t.Fatalf("document limit = %d", cfg.DocumentLimit)
	}
}

func TestConfig_UnsetThresholdAccessors(t *testing.T) {
	var cfg Config
	if cfg.DocumentMinSimilarity() != DefaultDocumentThreshold || cfg.MessageMinSimilarity() != DefaultMessageThreshold {
		t.Fatalf("unset thresholds must report defaults")
	}
}
