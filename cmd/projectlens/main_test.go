package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/viant/projectlens/service"
)

func TestResolveMCPAddr(t *testing.T) {
	if got := resolveMCPAddr("0.0.0.0:9000", nil); got != "0.0.0.0:9000" {
		t.Fatalf("flag address ignored: %s", got)
	}
	if got := resolveMCPAddr("", &service.Config{MCPServer: service.MCPServerConfig{Port: 7000}}); got != "127.0.0.1:7000" {
		t.Fatalf("port not used: %s", got)
	}
	if got := resolveMCPAddr("", nil); got != defaultMCPAddr {
		t.Fatalf("unexpected default: %s", got)
	}
}

func TestResolveConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PROJECTLENS_CONFIG", "")
	if got := resolveConfigPath(""); got != "" {
		t.Fatalf("expected no config, got %s", got)
	}
	path := filepath.Join(home, ".projectlens", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("store:\n  driver: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := resolveConfigPath(""); got != path {
		t.Fatalf("expected %s, got %s", path, got)
	}
	if got := resolveConfigPath("custom.yaml"); got != "custom.yaml" {
		t.Fatalf("flag path ignored: %s", got)
	}
}

func TestClip(t *testing.T) {
	if got := clip("héllo world", 5); got != "héllo..." {
		t.Fatalf("unexpected clip: %q", got)
	}
	if got := clip("short", 10); got != "short" {
		t.Fatalf("unexpected clip: %q", got)
	}
}

func TestParseCSV(t *testing.T) {
	got := parseCSV(" *.pdf, ,*.docx,")
	if len(got) != 2 || got[0] != "*.pdf" || got[1] != "*.docx" {
		t.Fatalf("unexpected: %v", got)
	}
	if parseCSV("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
