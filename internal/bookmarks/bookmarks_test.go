package bookmarks

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAddIsIdempotent(t *testing.T) {
	s := &Store{}
	now := time.Now()
	s.Add("a.md", "Alpha", now)
	s.Add("a.md", "Alpha again", now)

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(list))
	}
	if list[0].Label != "Alpha" {
		t.Errorf("expected first label to stick, got %q", list[0].Label)
	}
}

func TestRemoveAndRename(t *testing.T) {
	s := &Store{}
	now := time.Now()
	s.Add("a.md", "A", now)
	s.Add("b.md", "B", now)

	s.Rename("a.md", "c.md")
	if !s.Contains("c.md") || s.Contains("a.md") {
		t.Errorf("rename did not take effect: %+v", s.List())
	}

	s.Remove("b.md")
	if s.Contains("b.md") {
		t.Error("expected b.md removed")
	}
	if len(s.List()) != 1 {
		t.Errorf("expected 1 remaining bookmark, got %v", s.List())
	}
}

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.List()) != 0 {
		t.Errorf("expected empty store, got %v", s.List())
	}
}

func TestLoadLegacyBareArray(t *testing.T) {
	dir := t.TempDir()
	sidecar := filepath.Join(dir, ".oxidian")
	if err := os.MkdirAll(sidecar, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sidecar, "bookmarks.json"), []byte(`["a.md", "b.md"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	list := s.List()
	if len(list) != 2 || list[0].Path != "a.md" || list[1].Path != "b.md" {
		t.Errorf("List = %+v", list)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &Store{}
	s.Add("a.md", "Alpha", time.Now())

	if err := s.Save(dir); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Contains("a.md") {
		t.Errorf("expected a.md to survive round trip, got %v", reloaded.List())
	}
}
