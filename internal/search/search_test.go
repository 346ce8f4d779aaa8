package search

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUpsertAndSearchRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	idx, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	body := "The quick brown fox jumps over the lazy dog. Brown is a color."
	if err := Upsert(idx, "doc.md", body); err != nil {
		t.Fatal(err)
	}

	results, err := Search(idx, "brown", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "doc.md" {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Score <= 0 {
		t.Errorf("expected positive score, got %v", results[0].Score)
	}
	if len(results[0].Snippet) == 0 || len(results[0].Snippet) > 160 {
		t.Errorf("snippet out of expected bounds: %q", results[0].Snippet)
	}
}

func TestUpsertReplacesPriorDocumentForSamePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	idx, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := Upsert(idx, "doc.md", "first version mentions apples"); err != nil {
		t.Fatal(err)
	}
	if err := Upsert(idx, "doc.md", "second version mentions oranges"); err != nil {
		t.Fatal(err)
	}

	results, err := Search(idx, "apples", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected stale content gone, got %v", results)
	}

	results, err = Search(idx, "oranges", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result for oranges, got %d", len(results))
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	idx, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := Upsert(idx, "doc.md", "some searchable content"); err != nil {
		t.Fatal(err)
	}
	if err := Delete(idx, "doc.md"); err != nil {
		t.Fatal(err)
	}

	results, err := Search(idx, "searchable", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after delete, got %v", results)
	}
}

func TestSearchEmptyAfterSanitizationReturnsNoResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	idx, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := Upsert(idx, "doc.md", "content"); err != nil {
		t.Fatal(err)
	}

	results, err := Search(idx, "#", 5)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results for all-operator query, got %v", results)
	}
}

func TestSanitizeQueryStripsHashAndOperators(t *testing.T) {
	got := sanitizeQuery(`#project (urgent) "quoted":foo`)
	want := "project  urgent   quoted  foo"
	if got != want {
		t.Errorf("sanitizeQuery = %q, want %q", got, want)
	}
}

func TestReindexBuildsFromScratch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	idx, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	idx.Close()

	idx, err = Reindex(dir, []Document{
		{Path: "a.md", Title: "a", Body: "alpha content"},
		{Path: "b.md", Title: "b", Body: "beta content"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	results, err := Search(idx, "alpha", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != "a.md" {
		t.Errorf("results = %+v", results)
	}
}

func TestSnippetCentersOnEarliestMatch(t *testing.T) {
	body := "The quick brown fox jumps over the lazy dog. Brown is a color."
	got := Snippet(body, "brown", 150)
	if len(got) > len(body) {
		t.Errorf("snippet longer than body: %q", got)
	}
	if !strings.Contains(strings.ToLower(got), "brown") {
		t.Errorf("expected snippet to contain match, got %q", got)
	}
}

func TestSnippetTruncatesWithEllipsis(t *testing.T) {
	body := ""
	for i := 0; i < 50; i++ {
		body += "padding words here, "
	}
	body += "findme"
	for i := 0; i < 50; i++ {
		body += " more padding words"
	}

	got := Snippet(body, "findme", 20)
	if got[:3] != "..." {
		t.Errorf("expected left ellipsis, got %q", got)
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("expected right ellipsis, got %q", got)
	}
}

func TestSnippetNoTruncationOnShortBody(t *testing.T) {
	body := "short findme body"
	got := Snippet(body, "findme", 150)
	if got != body {
		t.Errorf("Snippet = %q, want %q (no truncation expected)", got, body)
	}
}

func TestFileStem(t *testing.T) {
	if got := fileStem("folder/note.md"); got != "note" {
		t.Errorf("fileStem = %q", got)
	}
}
