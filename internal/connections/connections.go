// Package connections scores related cards, detects auto-link
// candidates, and discovers cross-source shared-tag pairs.
package connections

import (
	"sort"
	"strings"

	"github.com/oxidian/engine/internal/cards"
	"github.com/oxidian/engine/internal/errs"
)

// Related is one scored related-card result.
type Related struct {
	Path  string
	Score int
}

// FindRelated scores every other card against target: 2 points per
// shared tag, 3 points if both have the same non-empty source. Zero
// scores are dropped; results sort by score descending, ties broken by
// path, then truncated to limit (0 = unlimited).
func FindRelated(target cards.Card, others []cards.Card, limit int) []Related {
	targetTags := toSet(target.Tags)

	var out []Related
	for _, other := range others {
		if other.Path == target.Path {
			continue
		}
		score := 2*sharedCount(targetTags, other.Tags) + sameSourceBonus(target.Source, other.Source)
		if score <= 0 {
			continue
		}
		out = append(out, Related{Path: other.Path, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func toSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

func sharedCount(a map[string]bool, bTags []string) int {
	n := 0
	for _, t := range bTags {
		if a[t] {
			n++
		}
	}
	return n
}

func sameSourceBonus(a, b string) int {
	if a != "" && a == b {
		return 3
	}
	return 0
}

// AutoLink is a detected candidate occurrence of another card's front
// text within the scanned card's back.
type AutoLink struct {
	Title    string
	Position int
	Length   int
}

// FindAutoLinks scans target's back (lowercased) for the first occurrence
// of each other card's front (lowercased), requiring length >= 3.
func FindAutoLinks(target cards.Card, others []cards.Card) []AutoLink {
	lowerBack := strings.ToLower(target.Back)

	var out []AutoLink
	for _, other := range others {
		if other.Path == target.Path {
			continue
		}
		front := other.Front
		if len(front) < 3 {
			continue
		}
		idx := strings.Index(lowerBack, strings.ToLower(front))
		if idx < 0 {
			continue
		}
		out = append(out, AutoLink{Title: other.Front, Position: idx, Length: len(front)})
	}
	return out
}

// CrossSourcePair is a pair of cards from different sources sharing tags.
type CrossSourcePair struct {
	First       string
	Second      string
	SharedTags  []string
}

// DiscoverCrossSource emits every unordered pair of cards with different
// non-empty sources (or at least one empty source) whose shared-tag
// intersection is non-empty.
func DiscoverCrossSource(all []cards.Card) []CrossSourcePair {
	var out []CrossSourcePair
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.Source != "" && b.Source != "" && a.Source == b.Source {
				continue
			}
			shared := sharedTags(a.Tags, b.Tags)
			if len(shared) == 0 {
				continue
			}
			out = append(out, CrossSourcePair{First: a.Path, Second: b.Path, SharedTags: shared})
		}
	}
	return out
}

func sharedTags(a, b []string) []string {
	setA := toSet(a)
	var out []string
	for _, t := range b {
		if setA[t] {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// InsertLink splices "[[title]]" into content at the byte range
// [pos, pos+length), replacing the existing text there. Bounds-checked.
func InsertLink(content string, title string, pos, length int) (string, error) {
	if pos < 0 || length < 0 || pos+length > len(content) {
		return "", errs.New(errs.InvalidInput, "link insertion range [%d,%d) out of bounds for content of length %d", pos, pos+length, len(content))
	}
	return content[:pos] + "[[" + title + "]]" + content[pos+length:], nil
}
