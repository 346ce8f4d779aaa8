package dailynote

import (
	"testing"
	"time"
)

func TestPathForFormatsTokens(t *testing.T) {
	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	got := PathFor(date, "Daily", "YYYY-MM-DD")
	if got != "Daily/2026-07-31.md" {
		t.Errorf("PathFor = %q", got)
	}
}

func TestPathForNoFolder(t *testing.T) {
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	got := PathFor(date, "", "YYYY/MM/DD")
	if got != "2026/01/05.md" {
		t.Errorf("PathFor = %q", got)
	}
}

func TestOpenReturnsExistingContent(t *testing.T) {
	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	read := func(path string) (string, bool) {
		if path == "Daily/2026-07-31.md" {
			return "already here", true
		}
		return "", false
	}
	substitute := func(template, title string, now time.Time) string {
		t.Fatal("substitute should not be called when note already exists")
		return ""
	}

	path, content, err := Open(date, "Daily", "YYYY-MM-DD", "# {{title}}", read, substitute)
	if err != nil {
		t.Fatal(err)
	}
	if path != "Daily/2026-07-31.md" || content != "already here" {
		t.Errorf("path=%q content=%q", path, content)
	}
}

func TestOpenSubstitutesTemplateWhenMissing(t *testing.T) {
	date := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	read := func(path string) (string, bool) { return "", false }
	substitute := func(template, title string, now time.Time) string {
		return "# " + title
	}

	_, content, err := Open(date, "Daily", "YYYY-MM-DD", "# {{title}}", read, substitute)
	if err != nil {
		t.Fatal(err)
	}
	if content != "# 2026-07-31" {
		t.Errorf("content = %q", content)
	}
}
