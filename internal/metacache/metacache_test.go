package metacache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeNote(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRebuildExtractsTagsAndLinks(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "# A\n\nsee [[b]] #topic")
	writeNote(t, dir, "b.md", "# B\n\n#other")
	writeNote(t, dir, ".hidden/skip.md", "#ignored")
	writeNote(t, dir, "search_index/skip.md", "#ignored-too")

	c := New()
	if err := c.Rebuild(dir); err != nil {
		t.Fatal(err)
	}

	entry, ok := c.Get("a.md")
	if !ok {
		t.Fatal("expected entry for a.md")
	}
	if len(entry.Links) != 1 || entry.Links[0] != "b" {
		t.Errorf("Links = %v", entry.Links)
	}
	if len(entry.Tags) != 1 || entry.Tags[0] != "topic" {
		t.Errorf("Tags = %v", entry.Tags)
	}

	if _, ok := c.Get(".hidden/skip.md"); ok {
		t.Error("hidden directory should have been skipped")
	}
	if _, ok := c.Get("search_index/skip.md"); ok {
		t.Error("search_index directory should have been skipped")
	}
}

func TestUpdateAndRemoveFile(t *testing.T) {
	c := New()
	c.UpdateFile("n.md", "#tag1", 10, 100)
	if _, ok := c.Get("n.md"); !ok {
		t.Fatal("expected entry after UpdateFile")
	}
	c.RemoveFile("n.md")
	if _, ok := c.Get("n.md"); ok {
		t.Fatal("expected entry removed")
	}
}

func TestIsStale(t *testing.T) {
	c := New()
	if !c.IsStale(time.Minute) {
		t.Error("never-built cache should be stale")
	}
	dir := t.TempDir()
	if err := c.Rebuild(dir); err != nil {
		t.Fatal(err)
	}
	if c.IsStale(time.Hour) {
		t.Error("freshly built cache should not be stale")
	}
}

func TestFindBacklinksS1(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "# A\n\nsee [[b]] and [[b|Beta]]")
	writeNote(t, dir, "b.md", "# B")

	c := New()
	if err := c.Rebuild(dir); err != nil {
		t.Fatal(err)
	}

	backlinks := c.FindBacklinks("b.md")
	if len(backlinks) != 1 || backlinks[0] != "a.md" {
		t.Errorf("FindBacklinks = %v, want [a.md]", backlinks)
	}
}

func TestFindBacklinksFolderSuffix(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "see [[projects/plan]]")
	writeNote(t, dir, "projects/plan.md", "# Plan")

	c := New()
	if err := c.Rebuild(dir); err != nil {
		t.Fatal(err)
	}

	backlinks := c.FindBacklinks("projects/plan.md")
	if len(backlinks) != 1 || backlinks[0] != "a.md" {
		t.Errorf("FindBacklinks = %v", backlinks)
	}
}

func TestAllTagsEmptyVault(t *testing.T) {
	dir := t.TempDir()
	c := New()
	if err := c.Rebuild(dir); err != nil {
		t.Fatal(err)
	}
	if tags := c.AllTags(); len(tags) != 0 {
		t.Errorf("AllTags = %v, want empty", tags)
	}
}
