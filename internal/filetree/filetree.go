// Package filetree implements directory listing, the recent-files deque,
// and the trash.
package filetree

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oxidian/engine/internal/errs"
)

// Node is one entry in the file tree: a directory or a markdown leaf.
type Node struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsDir    bool   `json:"is_dir"`
	Children []Node `json:"children,omitempty"`
}

// BuildFileTree walks vaultDir and returns nested nodes: directories first,
// then alphabetical; hidden entries and search_index excluded; only .md
// files surface as leaves.
func BuildFileTree(vaultDir string) ([]Node, error) {
	return buildDir(vaultDir, "")
}

func buildDir(vaultDir, rel string) ([]Node, error) {
	full := vaultDir
	if rel != "" {
		full = filepath.Join(vaultDir, rel)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "reading directory %s", rel)
	}

	var dirs, files []Node
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || name == "search_index" {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if e.IsDir() {
			children, err := buildDir(vaultDir, childRel)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, Node{Name: name, Path: childRel, IsDir: true, Children: children})
			continue
		}

		if strings.HasSuffix(name, ".md") {
			files = append(files, Node{Name: name, Path: childRel})
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return append(dirs, files...), nil
}

// MaxRecent is the bound on the recent-files deque, per invariant 8.
const MaxRecent = 50

// RecentEntry is one item in the recent-files list.
type RecentEntry struct {
	Path     string `json:"path"`
	OpenedAt string `json:"opened_at"` // RFC3339
}

func recentPath(vaultDir string) string {
	return filepath.Join(vaultDir, ".oxidian", "recent.json")
}

// LoadRecent reads .oxidian/recent.json, returning an empty slice if the
// file does not exist.
func LoadRecent(vaultDir string) ([]RecentEntry, error) {
	data, err := os.ReadFile(recentPath(vaultDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []RecentEntry{}, nil
		}
		return nil, errs.Wrap(errs.IOFailure, err, "reading recent.json")
	}

	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "malformed recent.json")
	}
	return entries, nil
}

// PushRecent records path as opened at now, de-duplicating by path and
// moving it to the front. Truncates to MaxRecent and persists atomically.
func PushRecent(vaultDir, path string, now time.Time) ([]RecentEntry, error) {
	entries, err := LoadRecent(vaultDir)
	if err != nil {
		return nil, err
	}

	filtered := entries[:0:0]
	for _, e := range entries {
		if e.Path != path {
			filtered = append(filtered, e)
		}
	}

	fresh := append([]RecentEntry{{Path: path, OpenedAt: now.UTC().Format(time.RFC3339)}}, filtered...)
	if len(fresh) > MaxRecent {
		fresh = fresh[:MaxRecent]
	}

	if err := saveRecent(vaultDir, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// RenameRecent rewrites any entry whose path equals oldRel to newRel.
func RenameRecent(vaultDir, oldRel, newRel string) error {
	entries, err := LoadRecent(vaultDir)
	if err != nil {
		return err
	}
	changed := false
	for i := range entries {
		if entries[i].Path == oldRel {
			entries[i].Path = newRel
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return saveRecent(vaultDir, entries)
}

func saveRecent(vaultDir string, entries []RecentEntry) error {
	sidecar := filepath.Join(vaultDir, ".oxidian")
	if err := os.MkdirAll(sidecar, 0o755); err != nil {
		return errs.Wrap(errs.IOFailure, err, "creating .oxidian directory")
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "marshaling recent.json")
	}

	tmp := recentPath(vaultDir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "writing recent.json")
	}
	return os.Rename(tmp, recentPath(vaultDir))
}

// TrashManifest records where a trashed item came from and when.
type TrashManifest struct {
	OriginalPath string `json:"original_path"`
	TrashedAt    int64  `json:"trashed_at"`
	TrashName    string `json:"trash_name"`
}

// TrashEntry moves a file into <vault>/.trash/<collision-safe-name> and
// writes a sidecar manifest. rel is vault-relative.
func TrashEntry(vaultDir, rel string, now time.Time) (TrashManifest, error) {
	trashDir := filepath.Join(vaultDir, ".trash")
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return TrashManifest{}, errs.Wrap(errs.IOFailure, err, "creating trash directory")
	}

	base := filepath.Base(rel)
	trashName := base
	candidate := filepath.Join(trashDir, trashName)
	if _, err := os.Stat(candidate); err == nil {
		trashName = base + "_" + now.Format("20060102150405")
		candidate = filepath.Join(trashDir, trashName)
	}

	src := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.Rename(src, candidate); err != nil {
		return TrashManifest{}, errs.Wrap(errs.IOFailure, err, "moving %s to trash", rel)
	}

	manifest := TrashManifest{
		OriginalPath: rel,
		TrashedAt:    now.Unix(),
		TrashName:    trashName,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return TrashManifest{}, errs.Wrap(errs.IOFailure, err, "marshaling trash manifest")
	}
	if err := os.WriteFile(candidate+".meta.json", data, 0o644); err != nil {
		return TrashManifest{}, errs.Wrap(errs.IOFailure, err, "writing trash manifest")
	}

	return manifest, nil
}

// RestoreFromTrash moves a trashed item back to its original path,
// creating parent directories as needed, and deletes its manifest.
func RestoreFromTrash(vaultDir, trashName string) (TrashManifest, error) {
	trashDir := filepath.Join(vaultDir, ".trash")
	manifestPath := filepath.Join(trashDir, trashName+".meta.json")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return TrashManifest{}, errs.New(errs.NotFound, "no trash manifest for %q", trashName)
	}

	var manifest TrashManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return TrashManifest{}, errs.Wrap(errs.InvalidInput, err, "malformed trash manifest")
	}

	dest := filepath.Join(vaultDir, filepath.FromSlash(manifest.OriginalPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return TrashManifest{}, errs.Wrap(errs.IOFailure, err, "creating parent directories")
	}

	src := filepath.Join(trashDir, trashName)
	if err := os.Rename(src, dest); err != nil {
		return TrashManifest{}, errs.Wrap(errs.IOFailure, err, "restoring %s", trashName)
	}

	_ = os.Remove(manifestPath)
	return manifest, nil
}

// EmptyTrash removes everything under <vault>/.trash/.
func EmptyTrash(vaultDir string) error {
	trashDir := filepath.Join(vaultDir, ".trash")
	entries, err := os.ReadDir(trashDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.Wrap(errs.IOFailure, err, "reading trash directory")
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(trashDir, e.Name())); err != nil {
			return errs.Wrap(errs.IOFailure, err, "emptying trash")
		}
	}
	return nil
}

// ListTrash enumerates trash manifests.
func ListTrash(vaultDir string) ([]TrashManifest, error) {
	trashDir := filepath.Join(vaultDir, ".trash")
	var manifests []TrashManifest

	err := filepath.WalkDir(trashDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var m TrashManifest
		if err := json.Unmarshal(data, &m); err == nil {
			manifests = append(manifests, m)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "listing trash")
	}

	sort.Slice(manifests, func(i, j int) bool { return manifests[i].TrashedAt > manifests[j].TrashedAt })
	return manifests, nil
}
