package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveNoteExactFilename(t *testing.T) {
	v := newTestVault(t)
	if err := v.SaveNote("Folder/My Note.md", "# My Note"); err != nil {
		t.Fatal(err)
	}

	rel, err := v.ResolveNote("My Note")
	if err != nil {
		t.Fatal(err)
	}
	if rel != "Folder/My Note.md" {
		t.Errorf("ResolveNote = %q", rel)
	}
}

func TestResolveNoteByAlias(t *testing.T) {
	v := newTestVault(t)
	content := "---\naliases:\n  - Nickname\n---\n\n# Real Title"
	if err := v.SaveNote("note.md", content); err != nil {
		t.Fatal(err)
	}

	rel, err := v.ResolveNote("Nickname")
	if err != nil {
		t.Fatal(err)
	}
	if rel != "note.md" {
		t.Errorf("ResolveNote = %q", rel)
	}
}

func TestResolveNoteNotFound(t *testing.T) {
	v := newTestVault(t)
	if _, err := v.ResolveNote("Nonexistent"); err == nil {
		t.Errorf("expected error for nonexistent note")
	}
}

func TestResolveVaultDirAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveVaultDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("ResolveVaultDir = %q, want %q", got, dir)
	}
}

func TestResolveVaultDirRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveVaultDir(file); err == nil {
		t.Errorf("expected error for non-directory path")
	}
}
