package frontmatter

import (
	"strings"
	"testing"
)

func TestParseNoFrontmatter(t *testing.T) {
	text := "# Just a note\n\nbody text"
	fm, body, ok := Parse(text)
	if ok {
		t.Fatalf("expected no frontmatter, got %+v", fm)
	}
	if body != text {
		t.Errorf("body = %q, want unchanged original", body)
	}
}

func TestParseBasicFields(t *testing.T) {
	text := "---\ntitle: My Note\ntags:\n  - a\n  - b\naliases: [x, y]\ncreated: \"2024-01-01\"\n---\n\nHello world"
	fm, body, ok := Parse(text)
	if !ok {
		t.Fatal("expected frontmatter to be found")
	}
	if fm.Title != "My Note" {
		t.Errorf("Title = %q", fm.Title)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "a" || fm.Tags[1] != "b" {
		t.Errorf("Tags = %v", fm.Tags)
	}
	if len(fm.Aliases) != 2 || fm.Aliases[0] != "x" {
		t.Errorf("Aliases = %v", fm.Aliases)
	}
	if fm.Created != "2024-01-01" {
		t.Errorf("Created = %q", fm.Created)
	}
	if body != "Hello world" {
		t.Errorf("body = %q", body)
	}
}

func TestParsePreservesUnknownFields(t *testing.T) {
	text := "---\ntitle: T\nstatus: reading\nrating: 4\n---\nbody"
	fm, _, ok := Parse(text)
	if !ok {
		t.Fatal("expected frontmatter")
	}
	if fm.Extra["status"] != "reading" {
		t.Errorf("Extra[status] = %v", fm.Extra["status"])
	}
	if fm.Extra["rating"] != 4 {
		t.Errorf("Extra[rating] = %v", fm.Extra["rating"])
	}
}

func TestParseRequiresFenceWithNewline(t *testing.T) {
	// Closing fence at EOF with no trailing newline: this does
	// NOT count as frontmatter.
	text := "---\ntitle: x\n---"
	_, body, ok := Parse(text)
	if ok {
		t.Fatal("expected no frontmatter for EOF-only closing fence")
	}
	if body != text {
		t.Errorf("body changed for unmatched fence: %q", body)
	}
}

func TestRoundTrip(t *testing.T) {
	fm := Frontmatter{
		Title:    "Round Trip",
		Tags:     []string{"a", "b"},
		Aliases:  []string{"rt"},
		Created:  "2024-01-01",
		Modified: "2024-01-02",
		Extra:    map[string]interface{}{"custom": "value"},
	}
	body := "Some body content.\n"

	serialized, err := Serialize(fm, body)
	if err != nil {
		t.Fatal(err)
	}

	gotFM, gotBody, ok := Parse(serialized)
	if !ok {
		t.Fatal("expected reparse to find frontmatter")
	}
	if gotFM.Title != fm.Title || gotBody != body {
		t.Errorf("round trip mismatch: fm=%+v body=%q", gotFM, gotBody)
	}
	if gotFM.Extra["custom"] != "value" {
		t.Errorf("Extra not preserved: %v", gotFM.Extra)
	}
}

func TestReadAll(t *testing.T) {
	text := "---\ntitle: x\n---\n\nbody"
	raw := ReadAll(text)
	if !strings.HasPrefix(raw, "---") || !strings.HasSuffix(raw, "---") {
		t.Errorf("ReadAll = %q", raw)
	}
}

func TestReadAllNoFrontmatter(t *testing.T) {
	if got := ReadAll("no frontmatter here"); got != "" {
		t.Errorf("ReadAll = %q, want empty", got)
	}
}
