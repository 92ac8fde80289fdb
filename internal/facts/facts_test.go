package facts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFactDisabledReturnsCheer(t *testing.T) {
	p := NewProvider("Pirates", "🏴‍☠️", false, "", zap.NewNop())
	got := p.Fact()
	if !strings.Contains(got, "Let's go team") {
		t.Fatalf("disabled provider returned %q, want the fixed cheer", got)
	}
}

func TestFactBuiltinNeverEmpty(t *testing.T) {
	for _, team := range []string{"Pirates", "Yankees", "Red Sox", "Cubs", "Totally Unknown Team"} {
		p := NewProvider(team, "⚾", true, "", zap.NewNop())
		for i := 0; i < 20; i++ {
			if p.Fact() == "" {
				t.Fatalf("empty fact for team %q", team)
			}
		}
	}
}

func TestFactCustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	content := `{"team_name": "Pirates", "facts": ["custom fact one", "custom fact two"]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}

	p := NewProvider("Pirates", "🏴‍☠️", true, path, zap.NewNop())
	got := p.Fact()
	if !strings.HasPrefix(got, "custom fact") {
		t.Fatalf("custom facts not used: %q", got)
	}
}

func TestFactMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}

	p := NewProvider("Pirates", "🏴‍☠️", true, path, zap.NewNop())
	if p.Fact() == "" {
		t.Fatalf("malformed file should fall back to builtin facts")
	}
}
