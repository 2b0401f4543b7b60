package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDir(t *testing.T, root, key, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if name != "" {
		if err := os.WriteFile(filepath.Join(dir, "encounter.txt"), []byte(name+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	for f, content := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func touch(t *testing.T, root, key string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(filepath.Join(root, key), mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestReadFullDirectory(t *testing.T) {
	root := t.TempDir()
	writeDir(t, root, "log-a", "Slothasor", map[string]string{
		"accounts.json": `["abc.1234","def.5678"]`,
		"dpsreport.txt": "https://dps.report/abcd\n",
	})

	s := &Store{Root: root}
	enc, ok := s.Read("log-a")
	if !ok {
		t.Fatal("expected directory to be found")
	}
	if enc.Name != "Slothasor" {
		t.Fatalf("Name = %q", enc.Name)
	}
	if len(enc.Accounts) != 2 || enc.Accounts[0] != "abc.1234" {
		t.Fatalf("Accounts = %v", enc.Accounts)
	}
	if enc.Permalink != "https://dps.report/abcd" {
		t.Fatalf("Permalink = %q", enc.Permalink)
	}
}

func TestReadMissingOptionalRecords(t *testing.T) {
	root := t.TempDir()
	writeDir(t, root, "log-b", "Xera", nil)

	s := &Store{Root: root}
	enc, ok := s.Read("log-b")
	if !ok {
		t.Fatal("expected directory to be found")
	}
	if len(enc.Accounts) != 0 || enc.Permalink != "" {
		t.Fatalf("expected empty optional fields, got %v / %q", enc.Accounts, enc.Permalink)
	}
}

func TestReadAbsent(t *testing.T) {
	s := &Store{Root: t.TempDir()}
	if _, ok := s.Read("nope"); ok {
		t.Fatal("expected absent key to report not found")
	}
}

func TestReadMissingNameRecordIsNotFound(t *testing.T) {
	root := t.TempDir()
	writeDir(t, root, "log-c", "", map[string]string{"accounts.json": `[]`})

	s := &Store{Root: root}
	if _, ok := s.Read("log-c"); ok {
		t.Fatal("directory without an encounter-name record must be absent")
	}
}

func TestKeysForStart(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "starts", "1000", "log-a"), 0755); err != nil {
		t.Fatal(err)
	}

	s := &Store{Root: root}
	keys := s.KeysForStart(1000)
	if len(keys) != 1 || keys[0] != "log-a" {
		t.Fatalf("KeysForStart = %v", keys)
	}
	if got := s.KeysForStart(2000); len(got) != 0 {
		t.Fatalf("expected empty keys for unknown start, got %v", got)
	}
}

func TestScanSinceNewestFirstAndCutoff(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeDir(t, root, "old", "Slothasor", nil)
	writeDir(t, root, "mid", "Slothasor", nil)
	writeDir(t, root, "new", "Xera", nil)
	if err := os.MkdirAll(filepath.Join(root, "starts", "1000"), 0755); err != nil {
		t.Fatal(err)
	}

	touch(t, root, "old", base)
	touch(t, root, "mid", base.Add(10*time.Minute))
	touch(t, root, "new", base.Add(20*time.Minute))

	s := &Store{Root: root}

	all, err := s.ScanSince(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 encounters (starts index excluded), got %d", len(all))
	}
	if all[0].Key != "new" || all[1].Key != "mid" || all[2].Key != "old" {
		t.Fatalf("unexpected order: %s %s %s", all[0].Key, all[1].Key, all[2].Key)
	}

	recent, err := s.ScanSince(base.Add(5 * time.Minute).Unix())
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected cutoff to drop the oldest directory, got %d", len(recent))
	}
}

func TestDisplayName(t *testing.T) {
	s := &Store{Identities: map[string]string{"abc.1234": "<@999>"}}

	if got := s.DisplayName("abc.1234"); got != "<@999>" {
		t.Fatalf("mapped DisplayName = %q", got)
	}
	if got := s.DisplayName("Abc.1234"); got != "<@999>" {
		t.Fatalf("case-insensitive DisplayName = %q", got)
	}
	if got := s.DisplayName("ghost.0001"); got != "*ghost.0001*" {
		t.Fatalf("unmapped DisplayName = %q", got)
	}
}
