// Package metacache implements the vault meta cache: an
// incrementally maintained, crash-safe mapping from note paths to
// extracted metadata (tags, outgoing links, size, mtime).
package metacache

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/extract"
)

// Entry holds the extracted metadata for a single note.
type Entry struct {
	Tags    []string
	Links   []string
	Size    int64
	MTime   int64
	Words   int
}

// Cache is the in-memory map: note path -> metadata. Safe for concurrent
// use; guarded by a single RWMutex (one mutex per cache, no
// global core lock).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	builtAt time.Time
	hasBuilt bool
}

// New returns an empty, unbuilt cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Rebuild walks vaultDir and replaces the entire entry set atomically.
// Skips any directory starting with '.' (other than the root) and the
// search_index directory.
func (c *Cache) Rebuild(vaultDir string) error {
	fresh := make(map[string]Entry)

	err := filepath.WalkDir(vaultDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != vaultDir && (strings.HasPrefix(name, ".") || name == "search_index" || name == ".search_index") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(vaultDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		fresh[rel] = entryFor(string(data), info)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "rebuilding meta cache")
	}

	c.mu.Lock()
	c.entries = fresh
	c.builtAt = time.Now()
	c.hasBuilt = true
	c.mu.Unlock()
	return nil
}

func entryFor(content string, info fs.FileInfo) Entry {
	return Entry{
		Tags:  extract.Tags(content),
		Links: extract.WikiLinks(content),
		Size:  info.Size(),
		MTime: info.ModTime().Unix(),
		Words: extract.WordCount(content),
	}
}

// UpdateFile re-extracts and overwrites the entry for rel, given its
// already-read content and current size/mtime. Callers must call this on
// every successful save.
func (c *Cache) UpdateFile(rel string, content string, size, mtime int64) {
	entry := Entry{
		Tags:  extract.Tags(content),
		Links: extract.WikiLinks(content),
		Size:  size,
		MTime: mtime,
		Words: extract.WordCount(content),
	}
	c.mu.Lock()
	c.entries[rel] = entry
	c.mu.Unlock()
}

// RemoveFile deletes the entry for rel. Callers must call this on
// delete/trash.
func (c *Cache) RemoveFile(rel string) {
	c.mu.Lock()
	delete(c.entries, rel)
	c.mu.Unlock()
}

// Get returns the entry for rel, if present.
func (c *Cache) Get(rel string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[rel]
	return e, ok
}

// IsStale reports whether the cache has never been built, or was built
// longer than maxAge ago.
func (c *Cache) IsStale(maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasBuilt {
		return true
	}
	return time.Since(c.builtAt) > maxAge
}

// AllTags returns the sorted, deduped union of tags across all entries.
func (c *Cache) AllTags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, e := range c.entries {
		for _, t := range e.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// FindBacklinks returns every path whose outgoing links resolve to
// targetRel's file stem: a link L matches if
// L.split('|').0.split('#').0 == stem, or ends with "/stem".
func (c *Cache) FindBacklinks(targetRel string) []string {
	stem := fileStem(targetRel)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	for path, e := range c.entries {
		if path == targetRel {
			continue
		}
		for _, raw := range e.Links {
			resolved := extract.ResolveLinkTarget(raw)
			if resolved == stem || strings.HasSuffix(resolved, "/"+stem) {
				out = append(out, path)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// fileStem returns the base filename without its extension.
func fileStem(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Entries returns a shallow snapshot of the cache for callers (like the
// Graph Builder) that need to iterate without holding the lock.
func (c *Cache) Entries() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
