// Package frontmatter parses and serializes the YAML frontmatter block
// between "---" fences at the top of a note.
//
// Fence detection is line-oriented: the block runs from the opening
// "---" to the next line containing exactly three dashes. The captured
// block is parsed with a real YAML library so arbitrary nesting and
// types round-trip instead of only flat strings/lists.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oxidian/engine/internal/errs"
)

// Frontmatter is the recognized note metadata. Extra preserves any key not
// in the known set, round-tripping it verbatim via yaml.v3's inline-map
// mechanism — the Go-native expression of the "duck-typed frontmatter"
// design note (no inheritance hierarchy; a type: discriminator
// distinguishes Card/Source, see internal/cards).
type Frontmatter struct {
	Title    string                 `yaml:"title,omitempty"`
	Tags     []string               `yaml:"tags,omitempty"`
	Aliases  []string               `yaml:"aliases,omitempty"`
	Created  string                 `yaml:"created,omitempty"`
	Modified string                 `yaml:"modified,omitempty"`
	Extra    map[string]interface{} `yaml:",inline"`
}

// Parse splits text into (frontmatter, body). If no "---\n ... \n---" fence
// pair is found at the start of text, ok is false and body is the original
// text unchanged. A closing fence that sits at EOF without a trailing
// newline does not count (frontmatter detection requires a closing "\n---").
func Parse(text string) (fm Frontmatter, body string, ok bool) {
	stripped := text
	leading := ""
	if idx := strings.IndexFunc(stripped, func(r rune) bool { return r != ' ' && r != '\t' && r != '\n' && r != '\r' }); idx > 0 {
		leading = stripped[:idx]
		stripped = stripped[idx:]
	}
	if !strings.HasPrefix(stripped, "---\n") {
		return Frontmatter{}, text, false
	}

	rest := stripped[len("---\n"):]
	// The closing fence is a "---" line that ends in a line break; a
	// "---" at EOF, or a line with more after the dashes, does not count.
	closeIdx := -1
	for search := 0; ; {
		i := strings.Index(rest[search:], "\n---")
		if i == -1 {
			break
		}
		i += search
		tail := rest[i+len("\n---"):]
		if strings.HasPrefix(tail, "\n") || strings.HasPrefix(tail, "\r\n") {
			closeIdx = i
			break
		}
		search = i + 1
	}
	if closeIdx == -1 {
		return Frontmatter{}, text, false
	}

	yamlBlock := rest[:closeIdx]
	after := rest[closeIdx+len("\n---"):]
	// Drop the closing fence's own line break, then consume at most one
	// leading newline (the blank line Serialize writes) from the body.
	for i := 0; i < 2; i++ {
		if strings.HasPrefix(after, "\r\n") {
			after = after[2:]
		} else {
			after = strings.TrimPrefix(after, "\n")
		}
	}

	var parsed Frontmatter
	if strings.TrimSpace(yamlBlock) != "" {
		if err := yaml.Unmarshal([]byte(yamlBlock), &parsed); err != nil {
			return Frontmatter{}, text, false
		}
	}
	_ = leading

	return parsed, after, true
}

// Serialize renders fm as YAML between "---" fences followed by a blank
// line, then body — the inverse of Parse.
func Serialize(fm Frontmatter, body string) (string, error) {
	var buf strings.Builder
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", errs.Wrap(errs.InvalidInput, err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return "", errs.Wrap(errs.InvalidInput, err, "encoding frontmatter")
	}

	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// ReadAll returns the raw frontmatter block including "---" delimiters, or
// "" if none is present.
func ReadAll(text string) string {
	_, body, ok := Parse(text)
	if !ok {
		return ""
	}
	raw := strings.TrimSuffix(text, body)
	return strings.TrimRight(raw, "\n")
}
