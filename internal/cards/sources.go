package cards

import (
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/frontmatter"
)

// Source is the parsed structural content of a Sources/*.md file: a book,
// article, video, or podcast being tracked for reading/review, plus
// freeform highlight/notes body text.
type Source struct {
	Title      string `yaml:"title"`
	Author     string `yaml:"author,omitempty"`
	SourceType string `yaml:"source_type"`
	Status     string `yaml:"status"`
	Rating     int    `yaml:"rating"`
	Started    string `yaml:"started,omitempty"`
	Finished   string `yaml:"finished,omitempty"`
	Body       string `yaml:"-"`
	Path       string `yaml:"-"`
}

type sourceFrontmatter struct {
	Type       string `yaml:"type"`
	Title      string `yaml:"title"`
	Author     string `yaml:"author,omitempty"`
	SourceType string `yaml:"source_type"`
	Status     string `yaml:"status"`
	Rating     int    `yaml:"rating"`
	Started    string `yaml:"started,omitempty"`
	Finished   string `yaml:"finished,omitempty"`
}

// validSourceTypes and validSourceStatuses are the recognized
// source_type/status enum values. An unrecognized value on read falls
// back to the default entry rather than erroring, matching a
// best-effort read of hand-edited frontmatter.
var validSourceTypes = map[string]bool{"book": true, "article": true, "video": true, "podcast": true}
var validSourceStatuses = map[string]bool{"want_to_read": true, "reading": true, "finished": true}

func normalizeSourceType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if validSourceTypes[s] {
		return s
	}
	return "book"
}

func normalizeSourceStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if validSourceStatuses[s] {
		return s
	}
	return "want_to_read"
}

// StatusSortOrder orders sources for listing: reading first, then
// want_to_read, then finished.
func StatusSortOrder(status string) int {
	switch status {
	case "reading":
		return 0
	case "want_to_read":
		return 1
	case "finished":
		return 2
	default:
		return 1
	}
}

// ParseSource reads a Sources/*.md file's content into a Source. Requires
// `type: source` frontmatter; any other type (or missing frontmatter) is
// rejected.
func ParseSource(path, content string) (Source, error) {
	fm, body, ok := frontmatter.Parse(content)
	if !ok {
		return Source{}, errs.New(errs.InvalidInput, "source %s has no frontmatter", path)
	}

	raw, err := yaml.Marshal(fm.Extra)
	if err != nil {
		return Source{}, errs.Wrap(errs.InvalidInput, err, "re-encoding source frontmatter for %s", path)
	}
	var sfm sourceFrontmatter
	if err := yaml.Unmarshal(raw, &sfm); err != nil {
		return Source{}, errs.Wrap(errs.InvalidInput, err, "decoding source frontmatter for %s", path)
	}
	if sfm.Type != "source" {
		return Source{}, errs.New(errs.InvalidInput, "%s is not a source (type=%q)", path, sfm.Type)
	}
	// title is a recognized Frontmatter field, so it never lands in Extra.
	if sfm.Title == "" {
		sfm.Title = fm.Title
	}

	return Source{
		Title:      sfm.Title,
		Author:     sfm.Author,
		SourceType: normalizeSourceType(sfm.SourceType),
		Status:     normalizeSourceStatus(sfm.Status),
		Rating:     sfm.Rating,
		Started:    sfm.Started,
		Finished:   sfm.Finished,
		Body:       body,
		Path:       path,
	}, nil
}

// SerializeSource renders a Source back to its Markdown+frontmatter file
// content. started/finished serialize as the bare word null when empty
// rather than an empty string, so a hand read of the file reads as an
// explicit absence instead of a blank field.
func SerializeSource(s Source) (string, error) {
	sfm := sourceFrontmatter{
		Type:       "source",
		Title:      s.Title,
		Author:     s.Author,
		SourceType: normalizeSourceType(s.SourceType),
		Status:     normalizeSourceStatus(s.Status),
		Rating:     s.Rating,
		Started:    nullIfEmpty(s.Started),
		Finished:   nullIfEmpty(s.Finished),
	}

	var buf strings.Builder
	buf.WriteString("---\n")
	buf.WriteString("type: " + sfm.Type + "\n")
	buf.WriteString("title: " + strconv.Quote(sfm.Title) + "\n")
	buf.WriteString("author: " + strconv.Quote(sfm.Author) + "\n")
	buf.WriteString("source_type: " + sfm.SourceType + "\n")
	buf.WriteString("status: " + sfm.Status + "\n")
	buf.WriteString("rating: " + strconv.Itoa(sfm.Rating) + "\n")
	buf.WriteString("started: " + sfm.Started + "\n")
	buf.WriteString("finished: " + sfm.Finished + "\n")
	buf.WriteString("---\n")
	buf.WriteString(s.Body)

	return buf.String(), nil
}

func nullIfEmpty(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

// SourcePathForTitle computes the vault-relative path a new source with
// the given title would be created at: any character that isn't
// alphanumeric, a space, or a hyphen is replaced with an underscore,
// and the result is trimmed.
func SourcePathForTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return "Sources/" + strings.TrimSpace(b.String()) + ".md"
}

// NewSource builds a freshly created Source for title/author/sourceType,
// defaulting status to want_to_read and stamping started/finished dates
// from now according to the initial status: reading or finished stamps
// started, finished alone stamps finished too.
func NewSource(title, author, sourceType, status string, rating int, notes string, now time.Time) Source {
	sourceType = normalizeSourceType(sourceType)
	status = normalizeSourceStatus(status)
	today := now.Format("2006-01-02")

	var started, finished string
	if status != "want_to_read" {
		started = today
	}
	if status == "finished" {
		finished = today
	}

	body := "\n# Highlights & Notes\n\n"
	if notes != "" {
		body = "\n# Highlights & Notes\n\n" + notes + "\n"
	}

	return Source{
		Title:      title,
		Author:     author,
		SourceType: sourceType,
		Status:     status,
		Rating:     rating,
		Started:    started,
		Finished:   finished,
		Body:       body,
		Path:       SourcePathForTitle(title),
	}
}
