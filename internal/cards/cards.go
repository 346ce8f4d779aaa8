// Package cards implements the spaced-repetition card and source file
// representation: Markdown files with structural frontmatter under
// Cards/ and Sources/.
package cards

import (
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/frontmatter"
	"github.com/oxidian/engine/internal/sm2"
)

// Card is the parsed structural content of a Cards/*.md file.
type Card struct {
	Source       string   `yaml:"source,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	Interval     int      `yaml:"interval"`
	Ease         float64  `yaml:"ease"`
	NextReview   string   `yaml:"next_review,omitempty"`
	LastReview   string   `yaml:"last_review,omitempty"`
	ReviewCount  int      `yaml:"review_count"`
	Repetitions  int      `yaml:"repetitions"`
	Created      string   `yaml:"created,omitempty"`
	Front        string   `yaml:"-"`
	Back         string   `yaml:"-"`
	Path         string   `yaml:"-"`
}

type cardFrontmatter struct {
	Type        string   `yaml:"type"`
	Source      string   `yaml:"source,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Interval    int      `yaml:"interval"`
	Ease        float64  `yaml:"ease"`
	NextReview  string   `yaml:"next_review,omitempty"`
	LastReview  string   `yaml:"last_review,omitempty"`
	ReviewCount int      `yaml:"review_count"`
	Repetitions int      `yaml:"repetitions"`
	Created     string   `yaml:"created,omitempty"`
}

// Parse reads a Cards/*.md file's content into a Card. Requires
// `type: card` frontmatter; any other type (or missing frontmatter) is
// rejected. Body must be "# {front}\n\n{back}".
func Parse(path, content string) (Card, error) {
	fm, body, ok := frontmatter.Parse(content)
	if !ok {
		return Card{}, errs.New(errs.InvalidInput, "card %s has no frontmatter", path)
	}

	raw, err := yaml.Marshal(fm.Extra)
	if err != nil {
		return Card{}, errs.Wrap(errs.InvalidInput, err, "re-encoding card frontmatter for %s", path)
	}
	var cfm cardFrontmatter
	if err := yaml.Unmarshal(raw, &cfm); err != nil {
		return Card{}, errs.Wrap(errs.InvalidInput, err, "decoding card frontmatter for %s", path)
	}
	if cfm.Type != "card" {
		return Card{}, errs.New(errs.InvalidInput, "%s is not a card (type=%q)", path, cfm.Type)
	}
	// tags and created are recognized Frontmatter fields, so they never
	// land in Extra.
	if len(cfm.Tags) == 0 {
		cfm.Tags = fm.Tags
	}
	if cfm.Created == "" {
		cfm.Created = fm.Created
	}

	front, back := splitFrontBack(body)

	return Card{
		Source:      cfm.Source,
		Tags:        cfm.Tags,
		Interval:    cfm.Interval,
		Ease:        cfm.Ease,
		NextReview:  cfm.NextReview,
		LastReview:  cfm.LastReview,
		ReviewCount: cfm.ReviewCount,
		Repetitions: cfm.Repetitions,
		Created:     cfm.Created,
		Front:       front,
		Back:        back,
		Path:        path,
	}, nil
}

func splitFrontBack(body string) (front, back string) {
	body = strings.TrimPrefix(body, "# ")
	parts := strings.SplitN(body, "\n\n", 2)
	front = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		back = strings.TrimRight(parts[1], "\n")
	}
	return front, back
}

// Serialize renders a Card back to its Markdown+frontmatter file content.
func Serialize(c Card) (string, error) {
	cfm := cardFrontmatter{
		Type:        "card",
		Source:      c.Source,
		Tags:        c.Tags,
		Interval:    c.Interval,
		Ease:        c.Ease,
		NextReview:  c.NextReview,
		LastReview:  c.LastReview,
		ReviewCount: c.ReviewCount,
		Repetitions: c.Repetitions,
		Created:     c.Created,
	}

	var buf strings.Builder
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfm); err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "encoding card frontmatter")
	}
	if err := enc.Close(); err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "closing card frontmatter encoder")
	}
	buf.WriteString("---\n\n")
	buf.WriteString("# ")
	buf.WriteString(c.Front)
	buf.WriteString("\n\n")
	buf.WriteString(c.Back)

	return buf.String(), nil
}

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, replaces runs of non-alphanumerics with '-', trims
// leading/trailing '-', and truncates to 80 characters.
func Slug(s string) string {
	s = strings.ToLower(s)
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = s[:80]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// PathForFront computes the vault-relative path a new card with the given
// front text would be created at.
func PathForFront(front string) string {
	return "Cards/" + Slug(front) + ".md"
}

// QualityLabel classes a raw SM-2 quality score into the stat-event
// label: 0,1 -> again; 2 -> hard; 3 -> okay (rolled up under good by the
// stats package); 4 -> good; 5 -> easy.
func QualityLabel(q int) string {
	switch {
	case q <= 1:
		return "again"
	case q == 2:
		return "hard"
	case q == 3:
		return "okay"
	case q == 4:
		return "good"
	default:
		return "easy"
	}
}

// NewCard builds a freshly created Card for front/back/source/tags, due
// for its first review tomorrow at the default SM-2 ease of 2.5.
func NewCard(front, back, source string, tags []string, now time.Time) Card {
	return Card{
		Front:      front,
		Back:       back,
		Source:     source,
		Tags:       tags,
		Ease:       2.5,
		NextReview: sm2.NextReviewDate(now, 1),
		Created:    now.Format("2006-01-02"),
		Path:       PathForFront(front),
	}
}

// Review runs SM-2 on c with quality q, mutating its scheduling fields in
// place, and returns the stat-event label to record.
func Review(c *Card, q int, now time.Time) string {
	result := sm2.Review(q, c.Repetitions, c.Interval, c.Ease)
	c.Interval = result.IntervalDays
	c.Ease = result.Ease
	c.Repetitions = result.Reps
	c.ReviewCount++
	c.LastReview = now.Format("2006-01-02")
	c.NextReview = sm2.NextReviewDate(now, result.IntervalDays)
	return QualityLabel(q)
}
