package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsage(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, body string) {
		t.Helper()
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.mdx", "hello")
	write("sub/b.md", "abc")
	write("sub/ignored.txt", "zzzzzzzz")
	write(".drafts/c.mdx", "zzzzzzzz")
	write("sub/.note-1.tmp", "zzzz")

	got, err := NewFileStore(dir).DiskUsage()
	if err != nil {
		t.Fatal(err)
	}
	if got.Files != 3 || got.Bytes != 16 {
		t.Errorf("DiskUsage = %+v, want 3 files / 16 bytes", got)
	}
}

func TestDiskUsage_missingRoot(t *testing.T) {
	got, err := NewFileStore(filepath.Join(t.TempDir(), "nope")).DiskUsage()
	if err != nil {
		t.Fatal(err)
	}
	if got != (Usage{}) {
		t.Errorf("DiskUsage = %+v, want zero", got)
	}
}
