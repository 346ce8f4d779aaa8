// Package pathguard canonicalizes and validates paths against a vault root.
//
// Every filesystem entry point in the engine routes through Validate before
// touching disk, as an explicit, reusable guard against path escape.
package pathguard

import (
	"path/filepath"
	"strings"

	"github.com/oxidian/engine/internal/errs"
)

// forbiddenChars holds the characters SanitizeFilename replaces.
const forbiddenChars = `<>:"/\|?*`

// Validate turns a vault-relative path into an absolute path, rejecting
// anything that escapes root. rel must not contain ".." components; the
// joined path must resolve (symlinks included, when the target exists) or
// textually normalize (when it does not) to a location under root.
func Validate(root, rel string) (string, error) {
	if root == "" {
		return "", errs.New(errs.InvalidInput, "empty vault root")
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", errs.New(errs.PathEscape, "path %q escapes vault root", rel)
		}
	}

	canonRoot, err := canonicalize(root)
	if err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "cannot canonicalize vault root")
	}

	joined := filepath.Join(canonRoot, filepath.FromSlash(rel))

	if resolved, err := filepath.EvalSymlinks(joined); err == nil {
		if !withinRoot(canonRoot, resolved) {
			return "", errs.New(errs.PathEscape, "path %q escapes vault root", rel)
		}
		return resolved, nil
	}

	// Target doesn't exist yet (e.g. a note being created): fall back to
	// textual normalization, which is the best we can do without a real
	// file to stat.
	cleaned := filepath.Clean(joined)
	if !withinRoot(canonRoot, cleaned) {
		return "", errs.New(errs.PathEscape, "path %q escapes vault root", rel)
	}
	return cleaned, nil
}

func canonicalize(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

func withinRoot(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if candidate == root {
		return true
	}
	return strings.HasPrefix(candidate, root+string(filepath.Separator))
}

// SanitizeFilename replaces forbidden characters and control bytes with "_",
// then trims surrounding whitespace.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(forbiddenChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
