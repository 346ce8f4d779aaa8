// Package dailynote derives the vault-relative path for a given date and
// opens or creates the corresponding daily note from a template.
package dailynote

import (
	"strings"
	"time"

	"github.com/oxidian/engine/internal/errs"
)

// tokenOrder rewrites moment.js-style date tokens into Go's
// reference-time layout. Longest tokens are replaced first so "YYYY"
// isn't partially consumed by a "YY" rule.
var tokenOrder = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// MomentToGoLayout translates a subset of moment.js date tokens
// (YYYY, YY, MM, DD, HH, mm, ss) into a Go time.Format layout string.
// Exported so other packages that substitute moment-style date tokens
// (template variables, for instance) share this one token grammar.
func MomentToGoLayout(format string) string {
	out := format
	for _, t := range tokenOrder {
		out = strings.ReplaceAll(out, t.token, t.layout)
	}
	return out
}

// PathFor computes the vault-relative path of the daily note for date,
// given the configured folder and moment-style date format.
func PathFor(date time.Time, folder, format string) string {
	layout := MomentToGoLayout(format)
	name := date.Format(layout) + ".md"
	if folder == "" {
		return name
	}
	return strings.TrimSuffix(folder, "/") + "/" + name
}

// Open returns the existing content of the daily note for date if read
// returns it, or a template-substituted new note body otherwise. read
// and substitute are supplied by the caller so this package stays free
// of direct filesystem and template-store dependencies.
func Open(date time.Time, folder, format, templateBody string, read func(path string) (string, bool), substitute func(template string, title string, now time.Time) string) (path string, content string, err error) {
	path = PathFor(date, folder, format)
	if path == "" {
		return "", "", errs.New(errs.InvalidInput, "empty daily note path")
	}

	if existing, ok := read(path); ok {
		return path, existing, nil
	}

	title := date.Format("2006-01-02")
	content = substitute(templateBody, title, date)
	return path, content, nil
}
