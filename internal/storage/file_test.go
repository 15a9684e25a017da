package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/models"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_layout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if _, err := s.Create(context.Background(), models.NoteInput{Slug: "proj/name", Title: "Name", Content: "body"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "proj", "name.mdx"))
	if err != nil {
		t.Fatalf("note file not at slug path: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\ntitle: Name\nslug: proj/name\n") {
		t.Errorf("unexpected file:\n%s", data)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "proj"))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestFileStore_mdExtension(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, WithExtension(ExtMD))
	if _, err := s.Create(context.Background(), models.NoteInput{Slug: "plain", Title: "P"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plain.md")); err != nil {
		t.Fatalf("expected plain.md: %v", err)
	}
}

func TestFileStore_readsMarkdownFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "legacy.md"), "# just a body\n")
	s := NewFileStore(dir)

	n, err := s.Get(context.Background(), "legacy")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n.Title != "legacy" || n.Content != "# just a body\n" || n.CreatedAt != nil {
		t.Errorf("note = %+v", n)
	}
	if _, err := s.Create(context.Background(), models.NoteInput{Slug: "legacy", Title: "x"}); !apperr.Is(err, apperr.KindAlreadyExists) {
		t.Errorf("Create over .md note err = %v, want AlreadyExists", err)
	}
}

func TestFileStore_prefersMDX(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "both.md"), "---\ntitle: From MD\n---\n")
	writeFile(t, filepath.Join(dir, "both.mdx"), "---\ntitle: From MDX\n---\n")
	s := NewFileStore(dir)
	n, err := s.Get(context.Background(), "both")
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "From MDX" {
		t.Errorf("title = %q", n.Title)
	}
	if got := List(context.Background(), s); len(got) != 1 {
		t.Errorf("duplicate listing for both extensions: %d", len(got))
	}
}

func TestFileStore_updatePreservesExtraKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.mdx")
	writeFile(t, path, "---\ntitle: E\nslug: extra\ntags: [x]\ncreatedAt: \"2025-01-01T00:00:00.000Z\"\nupdatedAt: \"2025-01-01T00:00:00.000Z\"\nauthor: ada\nrating: 5\n---\nbody")
	s := NewFileStore(dir)
	n, err := s.Update(context.Background(), models.NoteUpdate{Slug: "extra", Title: ptr("E2")})
	if err != nil {
		t.Fatal(err)
	}
	if n.Metadata["author"] != "ada" || n.Metadata["rating"] != 5 {
		t.Errorf("metadata = %v", n.Metadata)
	}
	data, _ := os.ReadFile(path)
	for _, want := range []string{"title: E2", "author: ada", "rating: 5", "createdAt: \"2025-01-01T00:00:00.000Z\""} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %q in\n%s", want, data)
		}
	}
}

func TestFileStore_updateKeepsMDExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.md"), "old body")
	s := NewFileStore(dir)
	if _, err := s.Update(context.Background(), models.NoteUpdate{Slug: "old", Content: ptr("new body")}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.mdx")); !os.IsNotExist(err) {
		t.Error("update should rewrite the existing .md file, not create .mdx")
	}
	data, _ := os.ReadFile(filepath.Join(dir, "old.md"))
	if !strings.HasSuffix(string(data), "---\nnew body") {
		t.Errorf("file = %q", data)
	}
}

func TestFileStore_allSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.mdx"), "---\ntitle: Good\n---\nok")
	writeFile(t, filepath.Join(dir, "bad.mdx"), "---\ntitle: [unclosed\n---\n")
	writeFile(t, filepath.Join(dir, "open.mdx"), "---\ntitle: never closed\n")
	writeFile(t, filepath.Join(dir, "nested", "fine.md"), "plain")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a note")
	writeFile(t, filepath.Join(dir, ".drafts", "wip.md"), "dot directory")

	got := List(context.Background(), NewFileStore(dir))
	var slugs []string
	for _, n := range got {
		slugs = append(slugs, n.Slug)
	}
	if strings.Join(slugs, ",") != ".drafts/wip,good,nested/fine" {
		t.Errorf("slugs = %v", slugs)
	}
}

func TestFileStore_allMissingRoot(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing"))
	if got := List(context.Background(), s); len(got) != 0 {
		t.Errorf("got %d notes", len(got))
	}
	n, err := s.Count(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestFileStore_allStopsEarly(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	for _, sl := range []string{"a", "b", "c"} {
		if _, err := s.Create(context.Background(), models.NoteInput{Slug: sl, Title: sl}); err != nil {
			t.Fatal(err)
		}
	}
	var seen int
	for range s.All(context.Background()) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("seen = %d", seen)
	}
}

func TestFileStore_deletePrunesEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()
	for _, sl := range []string{"p/q/r", "p/keep"} {
		if _, err := s.Create(ctx, models.NoteInput{Slug: sl, Title: sl}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Delete(ctx, "p/q/r"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "p", "q")); !os.IsNotExist(err) {
		t.Error("empty directory p/q not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "p")); err != nil {
		t.Error("non-empty directory p removed")
	}
}

func TestFileStore_concurrentCreate(t *testing.T) {
	s := NewFileStore(t.TempDir())
	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), models.NoteInput{Slug: "race", Title: "r"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	var ok, exists int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.KindAlreadyExists):
			exists++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || exists != workers-1 {
		t.Errorf("ok = %d, exists = %d", ok, exists)
	}
}

func TestFileStore_SlugFor(t *testing.T) {
	s := NewFileStore("/vault")
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/vault/a/b.mdx", "a/b", true},
		{"/vault/top.md", "top", true},
		{"/vault/a/b.txt", "", false},
		{"/vault/.git/x.md", ".git/x", true},
		{"/vault/..notes.md", "..notes", true},
		{"/vault/../a.md", "", false},
		{"/vault/a/.note-123.tmp", "", false},
		{"/elsewhere/a.md", "", false},
		{"/vault", "", false},
	}
	for _, tt := range tests {
		got, ok := s.SlugFor(filepath.FromSlash(tt.path))
		if got != tt.want || ok != tt.ok {
			t.Errorf("SlugFor(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFileStore_createGetProperty(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(t *rapid.T) {
		s := NewFileStore(filepath.Join(dir, rapid.StringMatching(`[a-z]{12}`).Draw(t, "root")))
		in := models.NoteInput{
			Slug:    rapid.StringMatching(`[a-z0-9-]{1,12}(/[a-z0-9-]{1,12}){0,2}`).Draw(t, "slug"),
			Title:   rapid.StringMatching(`[A-Za-z0-9 ]{1,30}`).Draw(t, "title"),
			Content: rapid.String().Draw(t, "content"),
			Tags:    rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{1,8}`), rapid.ID[string]).Draw(t, "tags"),
		}
		ctx := context.Background()
		if _, err := s.Create(ctx, in); err != nil {
			if apperr.Is(err, apperr.KindAlreadyExists) {
				return
			}
			t.Fatalf("Create: %v", err)
		}
		got, err := s.Get(ctx, in.Slug)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		wantTitle := strings.TrimSpace(in.Title)
		if wantTitle == "" {
			wantTitle = got.Slug
		}
		if got.Title != wantTitle {
			t.Fatalf("title = %q, want %q", got.Title, wantTitle)
		}
		if got.Content != in.Content {
			t.Fatalf("content = %q, want %q", got.Content, in.Content)
		}
		if len(got.Tags) != len(in.Tags) {
			t.Fatalf("tags = %v, want %v", got.Tags, in.Tags)
		}
		if !got.CreatedAt.Equal(*got.UpdatedAt) {
			t.Fatalf("createdAt %v != updatedAt %v", got.CreatedAt, got.UpdatedAt)
		}
	})
}
