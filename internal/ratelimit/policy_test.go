package ratelimit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicies(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		p, err := LoadPolicies("")
		if err != nil {
			t.Fatal(err)
		}
		if p.For(ActionGenerateComments).Ceiling != 10 {
			t.Fatalf("default generate ceiling = %d, want 10", p.For(ActionGenerateComments).Ceiling)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "limits.yaml")
		data := []byte("default:\n  window_seconds: 30\n  ceiling: 100\nactions:\n  generate_comments:\n    window_seconds: 120\n    ceiling: 3\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}
		p, err := LoadPolicies(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := p.For(ActionGenerateComments); got.WindowSeconds != 120 || got.Ceiling != 3 {
			t.Fatalf("generate policy = %+v", got)
		}
		if got := p.For("anything"); got.WindowSeconds != 30 || got.Ceiling != 100 {
			t.Fatalf("default policy = %+v", got)
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := LoadPolicies(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
