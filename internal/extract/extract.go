// Package extract implements the pure metadata extractors:
// tags, wiki-links, block ids, and word count. All functions are pure —
// no I/O, no shared state — so the Meta Cache (internal/metacache) and the
// rename engine (internal/rename) can call them directly per file.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/oxidian/engine/internal/frontmatter"
)

// tagPattern matches inline #tags: a '#' preceded by whitespace, '(', or
// start-of-line, followed by a leading letter then letters/digits/
// underscore/hyphen/slash. Slash nests tags (#project/backend). A tag
// must start with a letter; #123bad and #2024review are not tags.
var tagPattern = regexp.MustCompile(`(?:^|[\s(])#(\p{L}[\p{L}\p{N}_/-]*)`)

// Tags extracts all tags from text: frontmatter `tags:` list plus inline
// #tags in the body, excluding fenced/inline code. Results are deduped
// and sorted.
func Tags(text string) []string {
	fm, body, hasFM := frontmatter.Parse(text)
	seen := make(map[string]bool)
	var out []string

	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	if hasFM {
		for _, t := range fm.Tags {
			add(strings.TrimPrefix(t, "#"))
		}
	} else {
		body = text
	}

	masked := maskInertContent(body)
	for _, m := range tagPattern.FindAllStringSubmatch(masked, -1) {
		add(m[1])
	}

	sort.Strings(out)
	return out
}

// wikiLinkPattern captures the raw content between [[ and the next ]],
// ignoring a leading '!' (transclusion/embed marker).
var wikiLinkPattern = regexp.MustCompile(`!?\[\[([^\]]*)\]\]`)

// WikiLinks collects every [[target]] / [[target|display]] token in text,
// outside of code fences, deduped and sorted. Callers that need the
// resolved note name split on '|' (first segment is target) and then on
// '#' (first segment is the note).
func WikiLinks(text string) []string {
	masked := maskInertContent(text)
	seen := make(map[string]bool)
	var out []string
	for _, m := range wikiLinkPattern.FindAllStringSubmatch(masked, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// ResolveLinkTarget applies the canonical splitting rule to a raw wikilink
// token: split on '|' and take the first segment, then split on '#' and
// take the first segment.
func ResolveLinkTarget(raw string) string {
	if idx := strings.IndexByte(raw, '|'); idx >= 0 {
		raw = raw[:idx]
	}
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

// blockIDPattern matches a trailing block-id token on a line: a leading
// alphanumeric followed by alphanumerics/underscore/hyphen.
var blockIDPattern = regexp.MustCompile(`\^([A-Za-z0-9][A-Za-z0-9_-]*)$`)

// BlockIDs returns the block ids found as trailing tokens on non-heading
// lines.
func BlockIDs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue // heading line
		}
		if m := blockIDPattern.FindStringSubmatch(trimmed); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

// WordCount returns the whitespace-delimited token count of text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
