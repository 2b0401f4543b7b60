package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMissingFile(t *testing.T) {
	if got := Read(filepath.Join(t.TempDir(), "nope.json")); got != 0 {
		t.Fatalf("Read on missing file = %d, want 0", got)
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := Write(path, 1756250000); err != nil {
		t.Fatal(err)
	}
	if got := Read(path); got != 1756250000 {
		t.Fatalf("Read = %d, want 1756250000", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"last_upload":1756250000}` {
		t.Fatalf("file contents = %s", raw)
	}
}

func TestReadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := Read(path); got != 0 {
		t.Fatalf("Read on malformed file = %d, want 0", got)
	}
}
