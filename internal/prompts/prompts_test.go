package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	tpl, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tpl != Default() {
		t.Fatalf("empty path must return the compiled-in defaults")
	}
	if !strings.Contains(tpl.System, CompletionSentinel) {
		t.Fatalf("system prompt must mention the completion sentinel")
	}
}

func TestLoadOverlaysOnlyProvidedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("system: custom interviewer persona\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	tpl, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tpl.System != "custom interviewer persona" {
		t.Fatalf("overlay not applied: %q", tpl.System)
	}
	if tpl.Conclude != Default().Conclude {
		t.Fatalf("unset fields must keep their defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/prompts.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
