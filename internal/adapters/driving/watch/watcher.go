// Package watch re-ingests files under a directory as they change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/formats"
	"github.com/custodia-labs/docrag/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is ingested.
const DefaultDebounce = 300 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watch: watcher is closed")

// Action is what the watcher did for a path.
type Action string

// Actions reported in results.
const (
	ActionIngested Action = "ingested"
	ActionRemoved  Action = "removed"
)

// Result reports the outcome for one path.
type Result struct {
	Path   string
	Action Action
	Ingest *domain.IngestResult
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher ingests supported files created or modified under a root
// directory. A file that changes again replaces its previous document.
type Watcher struct {
	root     string
	ingest   driving.IngestService
	debounce time.Duration

	mu     sync.Mutex
	closed bool
	fsw    *fsnotify.Watcher

	// docs maps an absolute path to the document ingested from it.
	docs map[string]string
}

// New creates a watcher for root.
func New(root string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		ingest:   ingest,
		debounce: DefaultDebounce,
		docs:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Track records that path was already ingested as documentID, so a later
// change replaces that document.
func (w *Watcher) Track(path, documentID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs[path] = documentID
}

// Watch starts watching and returns a channel of results. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(fsw, w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	results := make(chan Result)
	go w.loop(ctx, fsw, results)
	return results, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, results chan<- Result) {
	defer close(results)

	pending := make(map[string]*time.Timer)
	due := make(chan string)
	done := make(chan struct{})
	defer func() {
		close(done)
		for _, t := range pending {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		if t, ok := pending[path]; ok {
			t.Reset(w.debounce)
			return
		}
		pending[path] = time.AfterFunc(w.debounce, func() {
			select {
			case due <- path:
			case <-done:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			switch w.handleFsEvent(fsw, event) {
			case opIngest:
				schedule(event.Name)
			case opRemove:
				if t, ok := pending[event.Name]; ok {
					t.Stop()
					delete(pending, event.Name)
				}
				if res, ok := w.remove(ctx, event.Name); ok {
					if !send(ctx, results, res) {
						return
					}
				}
			}

		case path := <-due:
			delete(pending, path)
			if !send(ctx, results, w.ingestFile(ctx, path)) {
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		}
	}
}

type op int

const (
	opNone op = iota
	opIngest
	opRemove
)

// handleFsEvent decides what an event means for the index. New
// directories are added to the watch list.
func (w *Watcher) handleFsEvent(fsw *fsnotify.Watcher, event fsnotify.Event) op {
	if rel, err := filepath.Rel(w.root, event.Name); err != nil || isHidden(rel) {
		return opNone
	}

	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return opNone
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				if err := addTree(fsw, event.Name); err != nil {
					logger.Warn("watch: %v", err)
				}
			}
			return opNone
		}
		if !formats.IsSupported(event.Name) {
			return opNone
		}
		return opIngest

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return opRemove
	}
	return opNone
}

func (w *Watcher) ingestFile(ctx context.Context, path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Action: ActionIngested, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	res, err := w.ingest.Ingest(ctx, filepath.Base(path), content)
	if err != nil {
		return Result{Path: path, Action: ActionIngested, Err: err}
	}

	if previous, ok := w.swap(path, res.DocumentID); ok {
		if err := w.ingest.DeleteDocument(ctx, previous); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("watch: removing previous version of %s: %v", path, err)
		}
	}
	logger.Debug("watch: indexed %s as %s", path, res.DocumentID)
	return Result{Path: path, Action: ActionIngested, Ingest: res}
}

func (w *Watcher) remove(ctx context.Context, path string) (Result, bool) {
	docID, ok := w.swap(path, "")
	if !ok {
		return Result{}, false
	}

	err := w.ingest.DeleteDocument(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		err = nil
	}
	return Result{Path: path, Action: ActionRemoved, Err: err}, true
}

// swap records documentID for path, or forgets path when documentID is
// empty, and returns the previous document.
func (w *Watcher) swap(path, documentID string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	previous, ok := w.docs[path]
	if documentID == "" {
		delete(w.docs, path)
	} else {
		w.docs[path] = documentID
	}
	return previous, ok
}

func send(ctx context.Context, results chan<- Result, r Result) bool {
	select {
	case results <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// addTree adds root and every non-hidden directory below it.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
