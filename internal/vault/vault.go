// Package vault implements the Command Surface: a thin façade over every
// subsystem (Path Guard, Crypto, Frontmatter, Meta Cache, Search Index,
// Tag Index, Bookmarks, Nav History, Settings, Snapshot, Rename, Cards,
// Sources, Importer, Stats, Connections, Canvas, Markdown) that acquires
// short-lived locks in a fixed order, does filesystem I/O under Path
// Guard, mutates caches inline, and returns structured results or a
// tagged error.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blevesearch/bleve/v2"

	"github.com/oxidian/engine/internal/bookmarks"
	"github.com/oxidian/engine/internal/canvas"
	"github.com/oxidian/engine/internal/cards"
	"github.com/oxidian/engine/internal/connections"
	"github.com/oxidian/engine/internal/crypto"
	"github.com/oxidian/engine/internal/dailynote"
	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/extract"
	"github.com/oxidian/engine/internal/filetree"
	"github.com/oxidian/engine/internal/frontmatter"
	"github.com/oxidian/engine/internal/graph"
	"github.com/oxidian/engine/internal/importer"
	"github.com/oxidian/engine/internal/markdown"
	"github.com/oxidian/engine/internal/metacache"
	"github.com/oxidian/engine/internal/navhistory"
	"github.com/oxidian/engine/internal/pathguard"
	"github.com/oxidian/engine/internal/rename"
	"github.com/oxidian/engine/internal/search"
	"github.com/oxidian/engine/internal/settings"
	"github.com/oxidian/engine/internal/snapshot"
	"github.com/oxidian/engine/internal/stats"
	"github.com/oxidian/engine/internal/tagindex"
	"github.com/oxidian/engine/internal/watch"
)

// Lock-acquisition order, fixed vault-wide to prevent deadlock:
// Vault Path -> Settings -> Meta Cache -> Search Index -> Tag Index ->
// Bookmarks -> Nav History -> Password. Every method below that touches
// more than one of these acquires them in this order and never holds two
// locks across external I/O for unrelated caches.
type Vault struct {
	Dir string
	log zerolog.Logger

	pathMu sync.Mutex

	settingsMu sync.Mutex
	settings   settings.Settings

	meta *metacache.Cache

	searchMu  sync.Mutex
	searchIdx bleve.Index

	tags *tagindex.Index

	bookmarksMu sync.Mutex
	bookmarkSt  *bookmarks.Store

	nav *navhistory.History

	pwMu     sync.Mutex
	password []byte
	locked   bool

	watcher *watch.Watcher
}

// Open loads every sidecar and rebuilds the in-memory caches for an
// existing vault directory. The vault starts locked if its settings
// record encryption as enabled.
func Open(dir string, log zerolog.Logger) (*Vault, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errs.New(errs.NotFound, "vault directory %q not found", dir)
	}

	log = log.With().Str("session", uuid.NewString()).Logger()

	s, err := settings.Load(dir)
	if err != nil {
		return nil, err
	}

	meta := metacache.New()
	if err := meta.Rebuild(dir); err != nil {
		return nil, err
	}

	idx, err := search.Open(search.Dir(dir))
	if err != nil {
		return nil, err
	}

	tags := tagindex.New()
	for path, entry := range meta.Entries() {
		tags.UpdateFile(path, entry.Tags)
	}

	bm, err := bookmarks.Load(dir)
	if err != nil {
		idx.Close()
		return nil, err
	}

	v := &Vault{
		Dir:        dir,
		log:        log,
		settings:   s,
		meta:       meta,
		searchIdx:  idx,
		tags:       tags,
		bookmarkSt: bm,
		nav:        navhistory.New(50),
		locked:     s.Vault.EncryptionEnabled,
	}
	return v, nil
}

// Close releases the search index's file handles.
func (v *Vault) Close() error {
	v.StopWatching()
	v.searchMu.Lock()
	defer v.searchMu.Unlock()
	return v.searchIdx.Close()
}

// StartWatching begins live fsnotify-driven cache updates: edits made
// outside the Command Surface (another process, a sync client) are
// picked up and folded into the Search Index and Meta Cache without a
// manual Reindex. A no-op if already watching.
func (v *Vault) StartWatching() error {
	if v.watcher != nil {
		return nil
	}
	w, err := watch.New(v.Dir, watch.Callbacks{
		OnUpdate: func(rel, content string) {
			full := filepath.Join(v.Dir, filepath.FromSlash(rel))
			if err := v.admitFile(rel, full, content); err != nil {
				v.log.Warn().Err(err).Str("path", rel).Msg("failed to admit externally changed file")
			}
		},
		OnRemove: func(rel string) {
			if err := v.evictFile(rel); err != nil {
				v.log.Warn().Err(err).Str("path", rel).Msg("failed to evict externally removed file")
			}
		},
	}, 0, v.log)
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "starting file watcher")
	}
	if err := w.Start(); err != nil {
		return errs.Wrap(errs.IOFailure, err, "starting file watcher")
	}
	v.watcher = w
	return nil
}

// StopWatching stops live cache updates, if running. A no-op otherwise.
func (v *Vault) StopWatching() error {
	if v.watcher == nil {
		return nil
	}
	err := v.watcher.Close()
	v.watcher = nil
	return err
}

// --- locking & encryption ---------------------------------------------

// keyPath is where the encryption verification blob lives.
func (v *Vault) keyPath() string {
	return filepath.Join(v.Dir, ".oxidian", "vault.key")
}

// UnlockVault verifies pw against the stored verification blob and, on
// success, holds pw in memory for subsequent transparent decrypt/encrypt.
func (v *Vault) UnlockVault(pw string) (bool, error) {
	data, err := os.ReadFile(v.keyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, errs.New(errs.NotFound, "vault has no encryption configured")
		}
		return false, errs.Wrap(errs.IOFailure, err, "reading vault.key")
	}

	plaintext, err := crypto.DecryptFromFile(data, []byte(pw))
	if err != nil {
		return false, nil
	}
	if string(plaintext) != crypto.VerificationPlaintext {
		return false, nil
	}

	v.pwMu.Lock()
	v.password = []byte(pw)
	v.locked = false
	v.pwMu.Unlock()
	return true, nil
}

// LockVault discards the in-memory password; subsequent reads of
// encrypted notes fail until UnlockVault succeeds again.
func (v *Vault) LockVault() {
	v.pwMu.Lock()
	defer v.pwMu.Unlock()
	v.password = nil
	v.locked = true
}

// SetupEncryption derives a fresh key from pw, writes the verification
// blob, flips the encryption-enabled setting, and unlocks the vault.
func (v *Vault) SetupEncryption(pw string) error {
	blob, err := crypto.EncryptToFile([]byte(crypto.VerificationPlaintext), []byte(pw))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(v.keyPath()), 0o755); err != nil {
		return errs.Wrap(errs.IOFailure, err, "creating .oxidian directory")
	}
	if err := os.WriteFile(v.keyPath(), blob, 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "writing vault.key")
	}

	v.settingsMu.Lock()
	v.settings.Vault.EncryptionEnabled = true
	s := v.settings
	v.settingsMu.Unlock()
	if err := settings.Save(v.Dir, s); err != nil {
		return err
	}

	v.pwMu.Lock()
	v.password = []byte(pw)
	v.locked = false
	v.pwMu.Unlock()
	return nil
}

// ChangePassword verifies old, re-encrypts the verification blob under
// new, and re-encrypts every note currently stored encrypted. Per-file
// re-encryption failures are collected and returned as a summary rather
// than aborting the whole operation.
func (v *Vault) ChangePassword(oldPw, newPw string) ([]string, error) {
	ok, err := v.UnlockVault(oldPw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.DecryptFailure, "wrong password")
	}

	var failed []string
	for path := range v.meta.Entries() {
		full := filepath.Join(v.Dir, filepath.FromSlash(path))
		raw, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		if !crypto.LooksEncrypted(string(raw)) {
			continue
		}
		plaintext, err := crypto.DecryptFromFile(raw, []byte(oldPw))
		if err != nil {
			v.log.Warn().Err(err).Str("path", path).Msg("re-encrypt: failed to decrypt with old password")
			failed = append(failed, path)
			continue
		}
		reEncrypted, err := crypto.EncryptToFile(plaintext, []byte(newPw))
		if err != nil {
			v.log.Warn().Err(err).Str("path", path).Msg("re-encrypt: failed to encrypt with new password")
			failed = append(failed, path)
			continue
		}
		if err := os.WriteFile(full, reEncrypted, 0o644); err != nil {
			v.log.Warn().Err(err).Str("path", path).Msg("re-encrypt: failed to write re-encrypted note")
			failed = append(failed, path)
		}
	}

	blob, err := crypto.EncryptToFile([]byte(crypto.VerificationPlaintext), []byte(newPw))
	if err != nil {
		return failed, err
	}
	if err := os.WriteFile(v.keyPath(), blob, 0o644); err != nil {
		return failed, errs.Wrap(errs.IOFailure, err, "writing vault.key")
	}

	v.pwMu.Lock()
	v.password = []byte(newPw)
	v.locked = false
	v.pwMu.Unlock()
	return failed, nil
}

// DisableEncryption decrypts every encrypted note in place with pw, then
// removes the verification blob and flips the setting off.
func (v *Vault) DisableEncryption(pw string) error {
	for path := range v.meta.Entries() {
		full := filepath.Join(v.Dir, filepath.FromSlash(path))
		raw, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		if !crypto.LooksEncrypted(string(raw)) {
			continue
		}
		plaintext, err := crypto.DecryptFromFile(raw, []byte(pw))
		if err != nil {
			return errs.New(errs.DecryptFailure, "wrong password")
		}
		if err := os.WriteFile(full, plaintext, 0o644); err != nil {
			return errs.Wrap(errs.IOFailure, err, "rewriting %s", path)
		}
	}

	if err := os.Remove(v.keyPath()); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.IOFailure, err, "removing vault.key")
	}

	v.settingsMu.Lock()
	v.settings.Vault.EncryptionEnabled = false
	s := v.settings
	v.settingsMu.Unlock()
	if err := settings.Save(v.Dir, s); err != nil {
		return err
	}

	v.pwMu.Lock()
	v.password = nil
	v.locked = false
	v.pwMu.Unlock()
	return nil
}

// --- notes --------------------------------------------------------------

// ReadNote reads rel, transparently decrypting if the content looks
// encrypted and a password is currently held.
func (v *Vault) ReadNote(rel string) (string, error) {
	full, err := pathguard.Validate(v.Dir, rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.New(errs.NotFound, "note %q not found", rel)
		}
		return "", errs.Wrap(errs.IOFailure, err, "reading %s", rel)
	}

	raw := string(data)
	if !crypto.LooksEncrypted(raw) {
		return raw, nil
	}

	v.pwMu.Lock()
	pw := append([]byte(nil), v.password...)
	locked := v.locked
	v.pwMu.Unlock()
	if locked || pw == nil {
		return "", errs.New(errs.DecryptFailure, "vault is locked")
	}

	plaintext, err := crypto.DecryptFromFile(data, pw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// SaveNote writes content to rel (encrypting first if enabled and
// unlocked), then commits the Search Index and Meta Cache updates. The
// search write commits synchronously before this returns, so a
// subsequent search observes the new terms.
func (v *Vault) SaveNote(rel, content string) error {
	full, err := pathguard.Validate(v.Dir, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errs.Wrap(errs.IOFailure, err, "creating parent directory for %s", rel)
	}

	onDisk := content
	v.settingsMu.Lock()
	encEnabled := v.settings.Vault.EncryptionEnabled
	v.settingsMu.Unlock()
	if encEnabled {
		v.pwMu.Lock()
		pw := append([]byte(nil), v.password...)
		locked := v.locked
		v.pwMu.Unlock()
		if locked || pw == nil {
			return errs.New(errs.DecryptFailure, "vault is locked")
		}
		blob, err := crypto.EncryptToFile([]byte(content), pw)
		if err != nil {
			return err
		}
		onDisk = string(blob)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, []byte(onDisk), 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "writing %s", rel)
	}
	if err := os.Rename(tmp, full); err != nil {
		return errs.Wrap(errs.IOFailure, err, "committing %s", rel)
	}

	if err := v.admitFile(rel, full, content); err != nil {
		return err
	}
	return nil
}

// admitFile commits content to the search index and refreshes the meta
// and tag caches for rel, whose file at full is assumed already written.
// Shared by SaveNote and the live file watcher, which both need to bring
// an on-disk change into every in-memory cache the same way.
func (v *Vault) admitFile(rel, full, content string) error {
	v.searchMu.Lock()
	searchErr := search.Upsert(v.searchIdx, rel, content)
	v.searchMu.Unlock()
	if searchErr != nil {
		return searchErr
	}

	info, statErr := os.Stat(full)
	var size, mtime int64
	if statErr == nil {
		size, mtime = info.Size(), info.ModTime().Unix()
	}
	v.meta.UpdateFile(rel, content, size, mtime)
	if entry, ok := v.meta.Get(rel); ok {
		v.tags.UpdateFile(rel, entry.Tags)
	}
	return nil
}

// evictFile clears rel from every cache, without touching the file on
// disk. Shared by DeleteNote, TrashEntry, and the live file watcher.
func (v *Vault) evictFile(rel string) error {
	v.searchMu.Lock()
	searchErr := search.Delete(v.searchIdx, rel)
	v.searchMu.Unlock()

	v.meta.RemoveFile(rel)
	v.tags.RemoveFile(rel)
	v.nav.Remove(rel)
	return searchErr
}

// DeleteNote removes rel from disk and every cache.
func (v *Vault) DeleteNote(rel string) error {
	full, err := pathguard.Validate(v.Dir, rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return errs.New(errs.NotFound, "note %q not found", rel)
		}
		return errs.Wrap(errs.IOFailure, err, "deleting %s", rel)
	}

	searchErr := v.evictFile(rel)

	v.bookmarksMu.Lock()
	v.bookmarkSt.Remove(rel)
	bmErr := v.bookmarkSt.Save(v.Dir)
	v.bookmarksMu.Unlock()

	if searchErr != nil {
		return searchErr
	}
	return bmErr
}

// TrashEntry moves rel into .trash with a manifest, then clears it from
// every cache the same way DeleteNote does.
func (v *Vault) TrashEntry(rel string) (filetree.TrashManifest, error) {
	if _, err := pathguard.Validate(v.Dir, rel); err != nil {
		return filetree.TrashManifest{}, err
	}
	manifest, err := filetree.TrashEntry(v.Dir, rel, time.Now())
	if err != nil {
		return filetree.TrashManifest{}, err
	}

	_ = v.evictFile(rel)
	return manifest, nil
}

// RestoreFromTrash moves a trashed file back to its original location and
// re-admits it into the Meta Cache and Search Index.
func (v *Vault) RestoreFromTrash(trashName string) (filetree.TrashManifest, error) {
	manifest, err := filetree.RestoreFromTrash(v.Dir, trashName)
	if err != nil {
		return filetree.TrashManifest{}, err
	}

	full := filepath.Join(v.Dir, filepath.FromSlash(manifest.OriginalPath))
	if data, readErr := os.ReadFile(full); readErr == nil {
		v.searchMu.Lock()
		search.Upsert(v.searchIdx, manifest.OriginalPath, string(data))
		v.searchMu.Unlock()

		if info, statErr := os.Stat(full); statErr == nil {
			v.meta.UpdateFile(manifest.OriginalPath, string(data), info.Size(), info.ModTime().Unix())
		}
		if entry, ok := v.meta.Get(manifest.OriginalPath); ok {
			v.tags.UpdateFile(manifest.OriginalPath, entry.Tags)
		}
	}
	return manifest, nil
}

// RenameWithLinkUpdate moves old to new and rewrites wiki-links across the
// vault, then reconciles Nav History and Bookmarks. A partial link-rewrite
// failure is reported in the Result, not as an error.
func (v *Vault) RenameWithLinkUpdate(oldRel, newRel string) (rename.Result, error) {
	result, err := rename.WithLinkUpdate(v.Dir, oldRel, newRel, v.meta)
	if err != nil {
		return rename.Result{}, err
	}
	for _, failed := range result.FailedFiles {
		v.log.Warn().Str("path", failed).Str("old", oldRel).Str("new", newRel).Msg("rename: failed to rewrite links in file")
	}

	v.tags.RemoveFile(oldRel)
	if entry, ok := v.meta.Get(newRel); ok {
		v.tags.UpdateFile(newRel, entry.Tags)
	}

	v.searchMu.Lock()
	v.searchIdx.Delete(oldRel)
	if data, readErr := os.ReadFile(filepath.Join(v.Dir, filepath.FromSlash(newRel))); readErr == nil {
		search.Upsert(v.searchIdx, newRel, string(data))
	}
	v.searchMu.Unlock()

	v.nav.Rename(oldRel, newRel)

	v.bookmarksMu.Lock()
	v.bookmarkSt.Rename(oldRel, newRel)
	v.bookmarkSt.Save(v.Dir)
	v.bookmarksMu.Unlock()

	filetree.RenameRecent(v.Dir, oldRel, newRel)
	return result, nil
}

// --- search & tags --------------------------------------------------------

// SearchNotes runs a sanitized free-text search over the index.
func (v *Vault) SearchNotes(query string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	v.searchMu.Lock()
	defer v.searchMu.Unlock()
	return search.Search(v.searchIdx, query, limit)
}

// SearchSuggest returns up to 5 results, for live-typing suggestions.
func (v *Vault) SearchSuggest(query string) ([]search.Result, error) {
	return v.SearchNotes(query, 5)
}

// FuzzySearch runs query as a prefix match by appending bleve's wildcard.
func (v *Vault) FuzzySearch(query string) ([]search.Result, error) {
	return v.SearchNotes(query+"*", 20)
}

// GetTags returns every known tag, from the Tag Index.
func (v *Vault) GetTags() []string {
	return v.tags.AllTags()
}

// TagAutocomplete returns tags starting with prefix.
func (v *Vault) TagAutocomplete(prefix string) []string {
	return v.tags.Autocomplete(prefix)
}

// GetBacklinks returns every note that links to path, from the Meta Cache.
func (v *Vault) GetBacklinks(path string) []string {
	return v.meta.FindBacklinks(path)
}

// BuildGraph derives the full link graph from the current Meta Cache.
func (v *Vault) BuildGraph() graph.Graph {
	return graph.Build(v.meta.Entries())
}

// Reindex rebuilds the Search Index from scratch against the current
// vault content, for recovery from IndexError.
func (v *Vault) Reindex() error {
	var docs []search.Document
	err := filepath.WalkDir(v.Dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if path != v.Dir && (name[0] == '.' || name == "search_index") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		rel, relErr := filepath.Rel(v.Dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		docs = append(docs, search.Document{Path: rel, Title: filepath.Base(rel), Body: string(data)})
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "walking vault for reindex")
	}
	v.log.Info().Int("docs", len(docs)).Msg("reindex: rebuilding search index")

	v.searchMu.Lock()
	defer v.searchMu.Unlock()
	v.searchIdx.Close()
	idx, err := search.Reindex(search.Dir(v.Dir), docs)
	if err != nil {
		return err
	}
	v.searchIdx = idx
	return nil
}

// --- settings -------------------------------------------------------------

// GetSettings returns a snapshot of the current settings.
func (v *Vault) GetSettings() settings.Settings {
	v.settingsMu.Lock()
	defer v.settingsMu.Unlock()
	return v.settings
}

// PatchSettings merges a JSON patch into the current settings, validates
// the result, persists it, and only then updates the in-memory copy.
func (v *Vault) PatchSettings(patch []byte) (settings.Settings, error) {
	v.settingsMu.Lock()
	defer v.settingsMu.Unlock()

	merged, err := settings.Merge(v.settings, patch)
	if err != nil {
		return settings.Settings{}, err
	}
	if problems := settings.Validate(merged); len(problems) > 0 {
		return settings.Settings{}, errs.New(errs.InvalidInput, "invalid settings: %v", problems)
	}
	if err := settings.Save(v.Dir, merged); err != nil {
		return settings.Settings{}, err
	}
	v.settings = merged
	return merged, nil
}

// --- bookmarks --------------------------------------------------------------

// AddBookmark bookmarks path with label.
func (v *Vault) AddBookmark(path, label string) error {
	v.bookmarksMu.Lock()
	defer v.bookmarksMu.Unlock()
	v.bookmarkSt.Add(path, label, time.Now())
	return v.bookmarkSt.Save(v.Dir)
}

// RemoveBookmark removes the bookmark for path.
func (v *Vault) RemoveBookmark(path string) error {
	v.bookmarksMu.Lock()
	defer v.bookmarksMu.Unlock()
	v.bookmarkSt.Remove(path)
	return v.bookmarkSt.Save(v.Dir)
}

// ListBookmarks returns every bookmark, sorted by path.
func (v *Vault) ListBookmarks() []bookmarks.Bookmark {
	v.bookmarksMu.Lock()
	defer v.bookmarksMu.Unlock()
	return v.bookmarkSt.List()
}

// --- nav history ------------------------------------------------------------

// NavPush records path as visited.
func (v *Vault) NavPush(path string) { v.nav.Push(path) }

// NavBack steps navigation history back one entry.
func (v *Vault) NavBack() string { return v.nav.GoBack() }

// NavForward steps navigation history forward one entry.
func (v *Vault) NavForward() string { return v.nav.GoForward() }

// --- snapshots --------------------------------------------------------------

// CreateSnapshot snapshots rel's current on-disk content.
func (v *Vault) CreateSnapshot(rel string) (string, error) {
	content, err := v.ReadNote(rel)
	if err != nil {
		return "", err
	}
	return snapshot.Create(v.Dir, rel, content, time.Now(), snapshot.DefaultRetention)
}

// ListSnapshots enumerates stored snapshots for rel, newest first.
func (v *Vault) ListSnapshots(rel string) ([]snapshot.Info, error) {
	return snapshot.List(v.Dir, rel)
}

// RestoreSnapshot snapshots the current content, then writes the
// snapshot at ts back over rel.
func (v *Vault) RestoreSnapshot(rel, ts string) error {
	current, err := v.ReadNote(rel)
	if err != nil && !errs.Is(err, errs.NotFound) {
		return err
	}
	restored, err := snapshot.Restore(v.Dir, rel, ts, current, time.Now(), snapshot.DefaultRetention)
	if err != nil {
		return err
	}
	return v.SaveNote(rel, restored)
}

// --- canvas -----------------------------------------------------------------

// LoadCanvas loads rel as a .canvas document, or an empty canvas if absent.
func (v *Vault) LoadCanvas(rel string) (canvas.Canvas, error) {
	return canvas.Load(v.Dir, rel)
}

// SaveCanvas persists c verbatim at rel.
func (v *Vault) SaveCanvas(rel string, c canvas.Canvas) error {
	return canvas.Save(v.Dir, rel, c)
}

// --- rendering --------------------------------------------------------------

// RenderNote renders rel's content to sanitized HTML, resolving
// wiki-links against the Meta Cache's known paths.
func (v *Vault) RenderNote(rel string) (string, error) {
	content, err := v.ReadNote(rel)
	if err != nil {
		return "", err
	}
	return markdown.Render(content, v.resolveWikiLink)
}

func (v *Vault) resolveWikiLink(target string) (string, bool) {
	entries := v.meta.Entries()
	var paths []string
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	stem := extract.ResolveLinkTarget(target)
	for _, path := range paths {
		base := filepath.Base(path)
		name := base[:len(base)-len(filepath.Ext(base))]
		if name == stem {
			return "/" + path, true
		}
	}
	return "", false
}

// --- daily notes ------------------------------------------------------------

// templateVarPattern matches {{varname}} and {{varname:format}} tokens in
// a daily-note template body. Known variables: title, date, time. Unknown
// tokens (e.g. {{foo}}) are left untouched.
var templateVarPattern = regexp.MustCompile(`\{\{(date|time|title)(?::([^}]+))?\}\}`)

// substituteTemplateVars replaces {{title}}, {{date}}, {{date:FORMAT}},
// {{time}}, and {{time:FORMAT}} tokens in template with their values.
// FORMAT uses the same moment-style tokens as the daily-note path format.
func substituteTemplateVars(template, title string, now time.Time) string {
	return templateVarPattern.ReplaceAllStringFunc(template, func(match string) string {
		sub := templateVarPattern.FindStringSubmatch(match)
		if sub == nil {
			return match
		}
		name, format := sub[1], sub[2]
		switch name {
		case "title":
			return title
		case "date":
			if format != "" {
				return now.Format(dailynote.MomentToGoLayout(format))
			}
			return now.Format("2006-01-02")
		case "time":
			if format != "" {
				return now.Format(dailynote.MomentToGoLayout(format))
			}
			return now.Format("15:04")
		default:
			return match
		}
	})
}

// OpenDailyNote returns the path and content of today's daily note,
// creating it from the configured template if it doesn't exist yet.
func (v *Vault) OpenDailyNote(date time.Time, folder, format, templateBody string) (string, string, error) {
	read := func(path string) (string, bool) {
		content, err := v.ReadNote(path)
		if err != nil {
			return "", false
		}
		return content, true
	}
	path, content, err := dailynote.Open(date, folder, format, templateBody, read, substituteTemplateVars)
	if err != nil {
		return "", "", err
	}
	if _, statErr := pathguard.Validate(v.Dir, path); statErr != nil {
		return "", "", statErr
	}
	if err := v.SaveNote(path, content); err != nil {
		return "", "", err
	}
	return path, content, nil
}

// --- cards & stats ----------------------------------------------------------

// ReviewCard loads rel as a card, runs SM-2 scheduling for quality q,
// writes the updated card back, and records the review in Stats.
func (v *Vault) ReviewCard(rel string, quality int, now time.Time) (cards.Card, error) {
	content, err := v.ReadNote(rel)
	if err != nil {
		return cards.Card{}, err
	}
	card, err := cards.Parse(rel, content)
	if err != nil {
		return cards.Card{}, err
	}

	label := cards.Review(&card, quality, now)

	out, err := cards.Serialize(card)
	if err != nil {
		return cards.Card{}, err
	}
	if err := v.SaveNote(rel, out); err != nil {
		return cards.Card{}, err
	}

	s, err := stats.Load(v.Dir)
	if err != nil {
		return card, err
	}
	stats.RecordReview(&s, now.Format("2006-01-02"), label)
	if err := stats.Save(v.Dir, s); err != nil {
		return card, err
	}
	return card, nil
}

// AllCards loads every Cards/*.md file as a parsed Card, skipping files
// that fail to parse.
func (v *Vault) AllCards() ([]cards.Card, error) {
	dir := filepath.Join(v.Dir, "Cards")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IOFailure, err, "reading Cards directory")
	}

	var out []cards.Card
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		rel := "Cards/" + e.Name()
		content, err := v.ReadNote(rel)
		if err != nil {
			continue
		}
		card, err := cards.Parse(rel, content)
		if err != nil {
			continue
		}
		out = append(out, card)
	}
	return out, nil
}

// RelatedCards scores every other card against target.
func (v *Vault) RelatedCards(target cards.Card, limit int) ([]connections.Related, error) {
	all, err := v.AllCards()
	if err != nil {
		return nil, err
	}
	return connections.FindRelated(target, all, limit), nil
}

// AllSources loads every Sources/*.md file as a parsed Source, skipping
// files that fail to parse, ordered reading first, then want_to_read,
// then finished.
func (v *Vault) AllSources() ([]cards.Source, error) {
	dir := filepath.Join(v.Dir, "Sources")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IOFailure, err, "reading Sources directory")
	}

	var out []cards.Source
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		rel := "Sources/" + e.Name()
		content, err := v.ReadNote(rel)
		if err != nil {
			continue
		}
		source, err := cards.ParseSource(rel, content)
		if err != nil {
			continue
		}
		out = append(out, source)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return cards.StatusSortOrder(out[i].Status) < cards.StatusSortOrder(out[j].Status)
	})
	return out, nil
}

// ReadSource loads and parses a single Sources/*.md file.
func (v *Vault) ReadSource(rel string) (cards.Source, error) {
	content, err := v.ReadNote(rel)
	if err != nil {
		return cards.Source{}, err
	}
	return cards.ParseSource(rel, content)
}

// SaveSource serializes src and writes it to its Path.
func (v *Vault) SaveSource(src cards.Source) error {
	out, err := cards.SerializeSource(src)
	if err != nil {
		return err
	}
	return v.SaveNote(src.Path, out)
}

// CreateSource builds a new Source record for title/author/sourceType and
// writes it to Sources/.
func (v *Vault) CreateSource(title, author, sourceType, status string, rating int, notes string, now time.Time) (cards.Source, error) {
	src := cards.NewSource(title, author, sourceType, status, rating, notes, now)
	if err := v.SaveSource(src); err != nil {
		return cards.Source{}, err
	}
	return src, nil
}

// DeleteSource removes a Sources/*.md file.
func (v *Vault) DeleteSource(rel string) error {
	return v.DeleteNote(rel)
}

// ImportHighlights groups entries by source title (falling back to
// defaultSource), creating one Source per group if it doesn't already
// exist and one Card per entry, tagged "imported" and linked back to
// its source via a wiki-link. A per-entry failure is recorded in
// Result.Errors rather than aborting the run.
func (v *Vault) ImportHighlights(entries []importer.Entry, defaultSource string, now time.Time) importer.Result {
	var result importer.Result

	for _, g := range importer.GroupByTitle(entries, defaultSource) {
		slug := cards.Slug(g.Title)
		sourcePath := "Sources/" + slug + ".md"

		if _, err := v.ReadSource(sourcePath); err != nil {
			src := cards.NewSource(g.Title, g.Author, "book", "finished", 0, "", now)
			src.Path = sourcePath
			if err := v.SaveSource(src); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("source %q: %v", g.Title, err))
			} else {
				result.SourcesCreated++
			}
		}

		for _, e := range g.Entries {
			front := []rune(e.Highlight)
			if len(front) > 80 {
				front = append(front[:80], '…')
			}
			back := e.Highlight
			if e.Note != "" {
				back += "\n\n_Note: " + e.Note + "_"
			}
			if e.Location != "" {
				back += "\n\n_Location: " + e.Location + "_"
			}

			card := cards.NewCard(string(front), back, "[["+slug+"]]", []string{"imported"}, now)
			out, err := cards.Serialize(card)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("card from %q: %v", g.Title, err))
				continue
			}
			if err := v.SaveNote(card.Path, out); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("card from %q: %v", g.Title, err))
				continue
			}
			result.CardsCreated++
		}
	}

	return result
}

// Dashboard returns today's review stats dashboard.
func (v *Vault) Dashboard(today string) (stats.Dashboard, error) {
	s, err := stats.Load(v.Dir)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.BuildDashboard(s, today), nil
}

// --- misc introspection -----------------------------------------------------

// FileTree returns the nested directory/file listing.
func (v *Vault) FileTree() ([]filetree.Node, error) {
	return filetree.BuildFileTree(v.Dir)
}

// ReadFrontmatter parses rel's frontmatter without rendering.
func (v *Vault) ReadFrontmatter(rel string) (frontmatter.Frontmatter, string, bool, error) {
	content, err := v.ReadNote(rel)
	if err != nil {
		return frontmatter.Frontmatter{}, "", false, err
	}
	fm, body, ok := frontmatter.Parse(content)
	return fm, body, ok, nil
}
