package importer

import "testing"

func TestParseKindleClippings(t *testing.T) {
	text := `The Daily Stoic (Ryan Holiday)
- Your Highlight on Location 123-125 | Added on Monday, January 1, 2026

The impediment to action advances action.
==========
Some Book (Author)
- Your Bookmark on Location 50 | Added on Tuesday, January 2, 2026

==========
Another Book (Writer)
- Your Highlight on page 42 | Added on Wednesday, January 3, 2026

Knowledge is power.
==========`

	entries := ParseKindleClippings(text)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Title != "The Daily Stoic" || entries[0].Author != "Ryan Holiday" {
		t.Errorf("entry 0 title/author = %q/%q", entries[0].Title, entries[0].Author)
	}
	if entries[0].Highlight != "The impediment to action advances action." {
		t.Errorf("entry 0 highlight = %q", entries[0].Highlight)
	}
	if entries[0].Location != "123-125" {
		t.Errorf("entry 0 location = %q", entries[0].Location)
	}
	if entries[1].Location != "p.42" {
		t.Errorf("entry 1 location = %q", entries[1].Location)
	}
}

func TestParseMarkdownHighlights(t *testing.T) {
	text := "# My Notes\n\nSome text.\n\n> First highlight\n> continued\n\nMore text.\n\n> Second highlight\n"
	entries := ParseMarkdownHighlights(text, "notes.md")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Highlight != "First highlight\ncontinued" {
		t.Errorf("entry 0 highlight = %q", entries[0].Highlight)
	}
	if entries[1].Highlight != "Second highlight" {
		t.Errorf("entry 1 highlight = %q", entries[1].Highlight)
	}
	if entries[0].Title != "notes" {
		t.Errorf("title = %q", entries[0].Title)
	}
}

func TestParsePlainText(t *testing.T) {
	text := "Line one\nLine two\n\nLine three\n"
	entries := ParsePlainText(text)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
}

func TestParseReadwiseCSV(t *testing.T) {
	text := "Title,Author,Highlight,Note,Location\nThe Book,Author Name,Some highlight text,,42\nThe Book,Author Name,Another highlight,My note,55\n"
	entries, err := ParseReadwiseCSV(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Title != "The Book" || entries[0].Highlight != "Some highlight text" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Note != "My note" {
		t.Errorf("entry 1 note = %q", entries[1].Note)
	}
}

func TestGroupByTitle(t *testing.T) {
	entries := []Entry{
		{Title: "Book A", Author: "Auth A", Highlight: "one"},
		{Title: "", Highlight: "two"},
		{Title: "Book A", Highlight: "three"},
	}
	groups := GroupByTitle(entries, "")
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Title != "Book A" || len(groups[0].Entries) != 2 {
		t.Errorf("group 0 = %+v", groups[0])
	}
	if groups[1].Title != "Imported Notes" || len(groups[1].Entries) != 1 {
		t.Errorf("group 1 = %+v", groups[1])
	}
}
