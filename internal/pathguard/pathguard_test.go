package pathguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oxidian/engine/internal/errs"
)

func TestValidateRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	_, err := Validate(root, "../../etc/passwd")
	if !errs.Is(err, errs.PathEscape) {
		t.Fatalf("expected PathEscape, got %v", err)
	}
}

func TestValidateAcceptsNested(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Validate(root, "a/b/note.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "a", "b", "note.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidateAllowsNonexistentTarget(t *testing.T) {
	root := t.TempDir()
	_, err := Validate(root, "new/note.md")
	if err != nil {
		t.Fatalf("unexpected error for non-existing target: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{`my<note>:"bad/name\|?*.md`, "my_note___bad_name____.md"},
		{"  trim me  ", "trim me"},
		{"clean.md", "clean.md"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameStripsControlBytes(t *testing.T) {
	got := SanitizeFilename("a\x00b\x1fc")
	if strings.ContainsAny(got, "\x00\x1f") {
		t.Errorf("control bytes survived sanitize: %q", got)
	}
}
