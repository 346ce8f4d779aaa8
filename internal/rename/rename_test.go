package rename

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oxidian/engine/internal/metacache"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestWithLinkUpdateRewritesLinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "# B")
	writeFile(t, dir, "a.md", "see [[b]] and [[b|Beta]] and [[b#section]]")

	cache := metacache.New()
	if err := cache.Rebuild(dir); err != nil {
		t.Fatal(err)
	}

	result, err := WithLinkUpdate(dir, "b.md", "c.md", cache)
	if err != nil {
		t.Fatal(err)
	}
	if result.LinksUnchanged {
		t.Fatal("expected stem change")
	}
	if len(result.UpdatedFiles) != 1 || result.UpdatedFiles[0] != "a.md" {
		t.Errorf("UpdatedFiles = %v", result.UpdatedFiles)
	}

	got := readFile(t, dir, "a.md")
	want := "see [[c]] and [[c|Beta]] and [[c#section]]"
	if got != want {
		t.Errorf("a.md = %q, want %q", got, want)
	}

	if _, ok := cache.Get("b.md"); ok {
		t.Error("expected old entry removed from cache")
	}
	if _, ok := cache.Get("c.md"); !ok {
		t.Error("expected new entry present in cache")
	}
}

func TestWithLinkUpdateSameStemSkipsRewrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "folder1/note.md", "# Note")
	writeFile(t, dir, "a.md", "see [[note]]")

	result, err := WithLinkUpdate(dir, "folder1/note.md", "folder2/note.md", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.LinksUnchanged {
		t.Error("expected LinksUnchanged for identical stem")
	}
	if len(result.UpdatedFiles) != 0 {
		t.Errorf("expected no files updated, got %v", result.UpdatedFiles)
	}

	if _, err := os.Stat(filepath.Join(dir, "folder2/note.md")); err != nil {
		t.Errorf("expected file moved: %v", err)
	}
}

func TestWithLinkUpdateDoesNotMatchPrefixStem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "# B")
	writeFile(t, dir, "a.md", "see [[b-extra]] which should not change")

	_, err := WithLinkUpdate(dir, "b.md", "c.md", nil)
	if err != nil {
		t.Fatal(err)
	}

	got := readFile(t, dir, "a.md")
	if got != "see [[b-extra]] which should not change" {
		t.Errorf("a.md unexpectedly rewritten: %q", got)
	}
}

func TestWithLinkUpdateFailsCleanlyOnMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := WithLinkUpdate(dir, "missing.md", "new.md", nil)
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "new.md")); statErr == nil {
		t.Error("expected no new file created on failed rename")
	}
}

func TestWithLinkUpdateRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	_, err := WithLinkUpdate(dir, "a.md", "../outside.md", nil)
	if err == nil {
		t.Fatal("expected error for path escape")
	}
}
