// Package rename moves a note and repairs every wiki-link that pointed at
// its old stem across the rest of the vault.
package rename

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/filetree"
	"github.com/oxidian/engine/internal/metacache"
	"github.com/oxidian/engine/internal/pathguard"
)

// Result reports what a rename actually touched.
type Result struct {
	OldPath        string
	NewPath        string
	LinksUnchanged bool
	UpdatedFiles   []string
	FailedFiles    []string
}

// WithLinkUpdate moves oldRel to newRel inside vaultDir and rewrites
// [[old_stem]] / [[old_stem|...]] occurrences in every other .md file.
// The move itself is a single os.Rename: if it fails, no state changes.
// Link rewriting is best-effort per file; a write failure is recorded in
// FailedFiles but does not fail the overall operation. cache (may be nil)
// is updated for the moved file and every rewritten file, and
// .oxidian/recent.json entries are rewritten when the stem changes; nav
// history and bookmarks are left to the caller.
func WithLinkUpdate(vaultDir, oldRel, newRel string, cache *metacache.Cache) (Result, error) {
	if _, err := pathguard.Validate(vaultDir, oldRel); err != nil {
		return Result{}, err
	}
	if _, err := pathguard.Validate(vaultDir, newRel); err != nil {
		return Result{}, err
	}

	oldFull := filepath.Join(vaultDir, filepath.FromSlash(oldRel))
	newFull := filepath.Join(vaultDir, filepath.FromSlash(newRel))

	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return Result{}, errs.Wrap(errs.IOFailure, err, "creating parent directory for %s", newRel)
	}

	if err := os.Rename(oldFull, newFull); err != nil {
		return Result{}, errs.Wrap(errs.IOFailure, err, "renaming %s to %s", oldRel, newRel)
	}

	result := Result{OldPath: oldRel, NewPath: newRel}

	oldStem := fileStem(oldRel)
	newStem := fileStem(newRel)

	if cache != nil {
		cache.RemoveFile(oldRel)
		if data, readErr := os.ReadFile(newFull); readErr == nil {
			if info, statErr := os.Stat(newFull); statErr == nil {
				cache.UpdateFile(newRel, string(data), info.Size(), info.ModTime().Unix())
			}
		}
	}

	if oldStem == newStem {
		result.LinksUnchanged = true
		return result, nil
	}

	err := filepath.WalkDir(vaultDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != vaultDir && (strings.HasPrefix(name, ".") || name == "search_index") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		rel, relErr := filepath.Rel(vaultDir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == newRel {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			result.FailedFiles = append(result.FailedFiles, rel)
			return nil
		}

		updated, changed := rewriteLinks(string(data), oldStem, newStem)
		if !changed {
			return nil
		}

		if writeErr := os.WriteFile(path, []byte(updated), 0o644); writeErr != nil {
			result.FailedFiles = append(result.FailedFiles, rel)
			return nil
		}

		result.UpdatedFiles = append(result.UpdatedFiles, rel)
		if cache != nil {
			info, statErr := d.Info()
			if statErr == nil {
				cache.UpdateFile(rel, updated, info.Size(), info.ModTime().Unix())
			}
		}
		return nil
	})
	if err != nil {
		return result, errs.Wrap(errs.IOFailure, err, "walking vault for link update")
	}

	if renameErr := filetree.RenameRecent(vaultDir, oldRel, newRel); renameErr != nil {
		result.FailedFiles = append(result.FailedFiles, ".oxidian/recent.json")
	}

	return result, nil
}

// rewriteLinks replaces every [[oldStem]], [[oldStem#anchor]] and
// [[oldStem|...]] occurrence with the new stem, keeping any anchor and
// display text. Matching is exact on the stem segment before '#', '|' or
// ']]', so "[[oldstem-extra]]" is left untouched.
func rewriteLinks(content, oldStem, newStem string) (string, bool) {
	changed := false
	var out strings.Builder
	i := 0
	for {
		idx := strings.Index(content[i:], "[[")
		if idx < 0 {
			out.WriteString(content[i:])
			break
		}
		start := i + idx
		out.WriteString(content[i:start])

		end := strings.Index(content[start:], "]]")
		if end < 0 {
			out.WriteString(content[start:])
			break
		}
		end = start + end

		inner := content[start+2 : end]
		target, rest, hasPipe := strings.Cut(inner, "|")
		bareTarget, anchor, hasAnchor := strings.Cut(target, "#")

		compare := target
		if hasAnchor {
			compare = bareTarget
		}

		if compare == oldStem {
			changed = true
			newInner := newStem
			if hasAnchor {
				newInner = newStem + "#" + anchor
			}
			if hasPipe {
				newInner = newInner + "|" + rest
			}
			out.WriteString("[[")
			out.WriteString(newInner)
			out.WriteString("]]")
		} else {
			out.WriteString(content[start : end+2])
		}

		i = end + 2
	}
	return out.String(), changed
}

func fileStem(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
