// Package watch re-runs validation when samples or grammar files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// minTick bounds how often pending changes are checked.
const minTick = time.Millisecond

type Config struct {
	Debounce time.Duration
	// Pattern filters file names inside watched directories. Empty matches
	// everything. Files added directly are always relevant.
	Pattern string
	Logger  *zap.Logger
}

// Watcher collects file changes and hands them over in debounced batches.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	pattern  string
	log      *zap.Logger

	mu      sync.Mutex
	files   map[string]bool
	pending map[string]time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Watcher{
		watcher:  fsw,
		debounce: cfg.Debounce,
		pattern:  cfg.Pattern,
		log:      cfg.Logger,
		files:    make(map[string]bool),
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
	}, nil
}

// Add watches each path: directories recursively, files through their parent
// directory.
func (w *Watcher) Add(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		if !info.IsDir() {
			w.mu.Lock()
			w.files[filepath.Clean(p)] = true
			w.mu.Unlock()
			if err := w.watcher.Add(filepath.Dir(p)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
			continue
		}
		if err := w.addDirRecursive(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addDirRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Watch delivers batches of changed paths to onChange until ctx is done or
// Stop is called. onChange runs on a single goroutine, one batch at a time.
func (w *Watcher) Watch(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processDebounced(ctx, onChange)
	}()
	defer wg.Wait()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirRecursive(event.Name); err != nil {
				w.log.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
	w.log.Debug("change queued", zap.String("path", event.Name), zap.String("op", event.Op.String()))
}

func (w *Watcher) relevant(path string) bool {
	w.mu.Lock()
	direct := w.files[filepath.Clean(path)]
	w.mu.Unlock()
	if direct {
		return true
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if w.pattern == "" {
		return true
	}
	ok, _ := filepath.Match(w.pattern, filepath.Base(path))
	return ok
}

func (w *Watcher) processDebounced(ctx context.Context, onChange func(context.Context, []string)) {
	ticker := time.NewTicker(max(w.debounce/2, minTick))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if changed := w.takeSettled(time.Now()); len(changed) > 0 {
				onChange(ctx, changed)
			}
		}
	}
}

// takeSettled removes and returns the pending paths untouched for at least
// the debounce interval.
func (w *Watcher) takeSettled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var res []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			res = append(res, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(res)
	return res
}
