// Package snapshot implements pre-write copies of notes kept under
// .oxidian/snapshots/<rel_path>/, with retention pruning.
package snapshot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oxidian/engine/internal/errs"
)

// DefaultRetention is the number of snapshots kept per note before the
// oldest are pruned.
const DefaultRetention = 50

// Info describes one stored snapshot.
type Info struct {
	Timestamp string
	Path      string
}

func dirFor(vaultDir, rel string) string {
	return filepath.Join(vaultDir, ".oxidian", "snapshots", filepath.FromSlash(rel))
}

// formatTimestamp renders now as YYYYMMDD_HHMMSS.mmm, matching the
// lexicographic-equals-temporal ordering snapshot pruning relies on.
func formatTimestamp(now time.Time) string {
	return now.Format("20060102_150405.000")
}

// Create writes content into a new timestamped snapshot of rel, then
// prunes the oldest snapshots so at most retention remain. It does not
// check whether the note exists; content is written as given, even when
// empty.
func Create(vaultDir, rel, content string, now time.Time, retention int) (string, error) {
	dir := dirFor(vaultDir, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "creating snapshot directory for %s", rel)
	}

	ts := formatTimestamp(now)
	full := filepath.Join(dir, ts+".md")
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "writing snapshot for %s", rel)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := prune(dir, retention); err != nil {
		return ts, err
	}
	return ts, nil
}

func prune(dir string, retention int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "reading snapshot directory")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) <= retention {
		return nil
	}
	excess := names[:len(names)-retention]
	for _, name := range excess {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return errs.Wrap(errs.IOFailure, err, "pruning snapshot %s", name)
		}
	}
	return nil
}

// List enumerates snapshots for rel, newest first.
func List(vaultDir, rel string) ([]Info, error) {
	dir := dirFor(vaultDir, rel)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IOFailure, err, "listing snapshots for %s", rel)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts := strings.TrimSuffix(e.Name(), ".md")
		out = append(out, Info{Timestamp: ts, Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// validateTimestamp rejects any ts that could escape the snapshot directory.
func validateTimestamp(ts string) error {
	if strings.Contains(ts, "/") || strings.Contains(ts, "\\") || strings.Contains(ts, "..") {
		return errs.New(errs.InvalidInput, "invalid snapshot timestamp %q", ts)
	}
	return nil
}

// GetContent returns the raw content of the snapshot at ts.
func GetContent(vaultDir, rel, ts string) (string, error) {
	if err := validateTimestamp(ts); err != nil {
		return "", err
	}
	full := filepath.Join(dirFor(vaultDir, rel), ts+".md")
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.New(errs.NotFound, "no snapshot %q for %s", ts, rel)
		}
		return "", errs.Wrap(errs.IOFailure, err, "reading snapshot %s", ts)
	}
	return string(data), nil
}

// Restore snapshots currentContent first (so the restore itself is
// reversible), then returns the content of the snapshot at ts. It does
// not write the note; the caller writes the returned content.
func Restore(vaultDir, rel, ts, currentContent string, now time.Time, retention int) (string, error) {
	if err := validateTimestamp(ts); err != nil {
		return "", err
	}
	content, err := GetContent(vaultDir, rel, ts)
	if err != nil {
		return "", err
	}
	if _, err := Create(vaultDir, rel, currentContent, now, retention); err != nil {
		return "", err
	}
	return content, nil
}
