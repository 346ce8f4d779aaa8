// Package watch is an optional fsnotify-driven live cache updater: it
// watches a vault directory tree and keeps the Meta Cache and Search
// Index current without the host needing to poll or rebuild on a TTL.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Callbacks are invoked as settled filesystem changes are discovered.
// rel is vault-relative, slash-separated.
type Callbacks struct {
	// OnUpdate fires for a created or modified .md file, with its
	// freshly-read content.
	OnUpdate func(rel, content string)
	// OnRemove fires for a deleted (or renamed-away) .md file.
	OnRemove func(rel string)
}

// Watcher watches vaultDir for .md file changes and dispatches settled
// changes to Callbacks after a debounce window, so a burst of writes
// from an editor autosave collapses into one cache update.
type Watcher struct {
	vaultDir string
	cb       Callbacks
	debounce time.Duration
	log      zerolog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher for vaultDir. debounce of zero defaults to
// 300ms, matched to typical editor-autosave burst windows.
func New(vaultDir string, cb Callbacks, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		vaultDir: vaultDir,
		cb:       cb,
		debounce: debounce,
		log:      log,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds every non-hidden, non-index directory under vaultDir to the
// watch list and begins the event loop in a goroutine. Non-blocking.
func (w *Watcher) Start() error {
	if err := w.addTree(w.vaultDir); err != nil {
		return err
	}
	go w.run()
	return nil
}

// Close stops the event loop and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	<-w.doneCh
	return w.fsw.Close()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || name == "search_index") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("vault watcher error")

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".md") {
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.addTree(event.Name); err != nil {
					w.log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new subdirectory")
				}
			}
		}
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushSettled() {
	now := time.Now()

	w.mu.Lock()
	var settled []string
	for path, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.dispatch(path)
	}
}

func (w *Watcher) dispatch(absPath string) {
	rel, err := filepath.Rel(w.vaultDir, absPath)
	if err != nil {
		w.log.Warn().Err(err).Str("path", absPath).Msg("failed to compute vault-relative path")
		return
	}
	rel = filepath.ToSlash(rel)

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			if w.cb.OnRemove != nil {
				w.cb.OnRemove(rel)
			}
			return
		}
		w.log.Warn().Err(err).Str("path", rel).Msg("failed to read changed file")
		return
	}

	if w.cb.OnUpdate != nil {
		w.cb.OnUpdate(rel, string(content))
	}
}
