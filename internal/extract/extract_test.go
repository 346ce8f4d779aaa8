package extract

import (
	"reflect"
	"testing"
)

func TestTagsFrontmatterAndInline(t *testing.T) {
	text := "---\ntags: [project, work]\n---\n\nSee #project/backend and #work here."
	got := Tags(text)
	want := []string{"project", "project/backend", "work"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
}

func TestTagsExcludesFencedCode(t *testing.T) {
	text := "Normal #real-tag text.\n```\n#fake-tag should not count\n```\nMore #another.\n"
	got := Tags(text)
	for _, tag := range got {
		if tag == "fake-tag" {
			t.Errorf("tag extracted from fenced code block: %v", got)
		}
	}
}

func TestTagsExcludesInlineCode(t *testing.T) {
	text := "Talk about `#notatag` but #istag works."
	got := Tags(text)
	want := []string{"istag"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
}

func TestTagsRequiresLeadingLetter(t *testing.T) {
	text := "A #123 tag and a #2024review tag and a #real-one tag."
	got := Tags(text)
	want := []string{"real-one"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
}

func TestWikiLinks(t *testing.T) {
	text := "see [[b]] and [[b|Beta]] and [[folder/note#heading]]"
	got := WikiLinks(text)
	want := []string{"b", "b|Beta", "folder/note#heading"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WikiLinks = %v, want %v", got, want)
	}
}

func TestWikiLinksExcludesFencedCode(t *testing.T) {
	text := "See [[real]].\n```\n[[fake]]\n```\n"
	got := WikiLinks(text)
	if len(got) != 1 || got[0] != "real" {
		t.Errorf("WikiLinks = %v", got)
	}
}

func TestResolveLinkTarget(t *testing.T) {
	cases := map[string]string{
		"b|Beta":              "b",
		"folder/note#heading": "folder/note",
		"plain":                "plain",
	}
	for in, want := range cases {
		if got := ResolveLinkTarget(in); got != want {
			t.Errorf("ResolveLinkTarget(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBlockIDs(t *testing.T) {
	text := "# Heading ^heading-id\nSome text ^my-block\nAnother line\nTrailing no id"
	got := BlockIDs(text)
	want := []string{"my-block"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BlockIDs = %v, want %v", got, want)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  hello   world\nfoo  "); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(empty) = %d, want 0", got)
	}
}
