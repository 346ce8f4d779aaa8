// Package importer turns external highlight exports (Kindle clippings,
// Readwise CSV, Markdown blockquotes, plain text) into the Entry shape
// that internal/vault's ImportHighlights groups into Source and Card
// records.
package importer

import (
	"encoding/csv"
	"strings"
)

// Entry is one imported highlight, regardless of source format.
type Entry struct {
	Title     string
	Author    string
	Highlight string
	Note      string
	Location  string
}

// Group is every entry sharing one source title, in original encounter
// order.
type Group struct {
	Title   string
	Author  string
	Entries []Entry
}

// Result tallies what an import run produced.
type Result struct {
	SourcesCreated int
	CardsCreated   int
	Errors         []string
}

// GroupByTitle buckets entries by title, falling back to defaultSource
// (or "Imported Notes" if that's empty too) for entries with no title,
// preserving first-seen order of both groups and entries within a
// group.
func GroupByTitle(entries []Entry, defaultSource string) []Group {
	if defaultSource == "" {
		defaultSource = "Imported Notes"
	}

	index := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		key := e.Title
		if key == "" {
			key = defaultSource
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Title: key, Author: e.Author})
		}
		if groups[i].Author == "" {
			groups[i].Author = e.Author
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Format selects which parser ParseContent dispatches to.
type Format string

const (
	FormatKindle    Format = "kindle"
	FormatReadwise  Format = "readwise"
	FormatMarkdown  Format = "markdown"
	FormatPlainText Format = "plain_text"
)

// ParseContent dispatches to the parser matching format. filename is
// only used by FormatMarkdown, to derive a title when the file has no
// other title signal.
func ParseContent(content string, format Format, filename string) []Entry {
	switch format {
	case FormatKindle:
		return ParseKindleClippings(content)
	case FormatReadwise:
		entries, _ := ParseReadwiseCSV(content)
		return entries
	case FormatMarkdown:
		return ParseMarkdownHighlights(content, filename)
	default:
		return ParsePlainText(content)
	}
}

// ParseKindleClippings parses Kindle's "My Clippings.txt" export: blocks
// separated by a line of ten '=' signs, each block's first line
// "Title (Author)", second line the metadata ("Your Highlight on
// Location 123-125 | ..." or "Your Bookmark on ..."), and the remaining
// lines the highlighted text. Bookmark entries (no highlighted text)
// are skipped.
func ParseKindleClippings(text string) []Entry {
	var entries []Entry

	for _, block := range strings.Split(text, "==========") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		var lines []string
		for _, l := range strings.Split(block, "\n") {
			l = strings.TrimSpace(l)
			if l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) < 2 {
			continue
		}

		titleLine := lines[0]
		title, author := titleLine, ""
		if idx := strings.LastIndex(titleLine, "("); idx >= 0 {
			title = strings.TrimSpace(titleLine[:idx])
			author = strings.TrimSpace(strings.TrimSuffix(titleLine[idx+1:], ")"))
		}

		metaLine := lines[1]
		if strings.Contains(metaLine, "Your Bookmark") {
			continue
		}
		location := extractKindleLocation(metaLine)

		highlight := strings.TrimSpace(strings.Join(lines[2:], "\n"))
		if highlight == "" {
			continue
		}

		entries = append(entries, Entry{
			Title:     title,
			Author:    author,
			Highlight: highlight,
			Location:  location,
		})
	}

	return entries
}

func extractKindleLocation(meta string) string {
	if idx := strings.Index(meta, "Location"); idx >= 0 {
		rest := strings.TrimSpace(meta[idx+len("Location"):])
		var loc strings.Builder
		for _, r := range rest {
			if (r >= '0' && r <= '9') || r == '-' {
				loc.WriteRune(r)
			} else {
				break
			}
		}
		if loc.Len() > 0 {
			return loc.String()
		}
	}
	lower := strings.ToLower(meta)
	if idx := strings.Index(lower, "page"); idx >= 0 {
		rest := strings.TrimSpace(meta[idx+len("page"):])
		var page strings.Builder
		for _, r := range rest {
			if r >= '0' && r <= '9' {
				page.WriteRune(r)
			} else {
				break
			}
		}
		if page.Len() > 0 {
			return "p." + page.String()
		}
	}
	return ""
}

// ParseReadwiseCSV parses a Readwise CSV export. Column names are
// matched case-insensitively; "title"/"book title", "author"/"book
// author", "highlight"/"text", "note", and "location" are recognized.
// Rows missing a highlight column value are skipped. Returns an error
// only if the CSV itself is malformed (ragged quoting); an export with
// no recognizable highlight column yields zero entries, not an error.
func ParseReadwiseCSV(text string) ([]Entry, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	col := func(names ...string) int {
		for i, h := range header {
			hl := strings.ToLower(strings.TrimSpace(h))
			for _, n := range names {
				if hl == n {
					return i
				}
			}
		}
		return -1
	}

	titleIdx := col("title", "book title")
	authorIdx := col("author", "book author")
	highlightIdx := col("highlight", "text")
	noteIdx := col("note")
	locationIdx := col("location")
	if highlightIdx < 0 {
		return nil, nil
	}

	get := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var entries []Entry
	for _, row := range rows[1:] {
		highlight := get(row, highlightIdx)
		if highlight == "" {
			continue
		}
		entries = append(entries, Entry{
			Title:     get(row, titleIdx),
			Author:    get(row, authorIdx),
			Highlight: highlight,
			Note:      get(row, noteIdx),
			Location:  get(row, locationIdx),
		})
	}
	return entries, nil
}

// ParseMarkdownHighlights collects blockquotes from a Markdown file as
// highlight candidates; consecutive '>' lines join into one highlight.
// filename (minus its .md suffix) becomes the title for every entry.
func ParseMarkdownHighlights(text, filename string) []Entry {
	title := strings.TrimSuffix(filename, ".md")
	var entries []Entry
	var quote []string

	flush := func() {
		if len(quote) == 0 {
			return
		}
		highlight := strings.TrimSpace(strings.Join(quote, "\n"))
		if highlight != "" {
			entries = append(entries, Entry{Title: title, Highlight: highlight})
		}
		quote = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, ">") {
			quote = append(quote, strings.TrimLeft(strings.TrimPrefix(trimmed, ">"), " \t"))
		} else {
			flush()
		}
	}
	flush()

	return entries
}

// ParsePlainText treats every non-blank line as its own highlight, with
// no title/author association.
func ParsePlainText(text string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, Entry{Highlight: line})
		}
	}
	return entries
}
