package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := `
components:
  - Inmovilizador
synonyms:
  inmovilizador magnetico: Inmovilizador
  rastreador satelital: GPS
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := table.NormalizeComponent("inmovilizador magnetico"); got != "Inmovilizador" {
		t.Fatalf("override synonym not applied, got %q", got)
	}
	if got := table.NormalizeComponent("rastreador satelital"); got != "GPS" {
		t.Fatalf("override onto builtin component failed, got %q", got)
	}
	// Builtin entries survive the merge.
	if got := table.NormalizeComponent("cortacorriente"); got != "Paro de Motor" {
		t.Fatalf("builtin synonym lost, got %q", got)
	}
}

func TestLoadFile_RejectsUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := "synonyms:\n  foo: NoSuchComponent\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for synonym mapping to unknown component")
	}
}

func TestKeysByLength_LongestFirst(t *testing.T) {
	table := Default()
	for i := 1; i < len(table.keysByLength); i++ {
		if len(table.keysByLength[i-1]) < len(table.keysByLength[i]) {
			t.Fatalf("keysByLength not sorted longest first at %d: %q before %q",
				i, table.keysByLength[i-1], table.keysByLength[i])
		}
	}
}
