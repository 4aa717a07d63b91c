// Package watch rebuilds a project whenever its sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vzt7/unbuild/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build. Errors are logged and do not stop watching.
type BuildFunc func(ctx context.Context) error

// Watcher runs a build at start and again after every settled batch of
// filesystem changes below Root. Builds never overlap; changes made while a
// build runs cause exactly one follow-up build.
type Watcher struct {
	Root     string
	Debounce time.Duration
	// Ignore lists directory names (relative to Root) that are not watched.
	Ignore []string
	Build  BuildFunc
}

// New creates a watcher for root that skips the output directory and node_modules.
func New(root, outDir string, build BuildFunc) *Watcher {
	return &Watcher{
		Root:     root,
		Debounce: DefaultDebounce,
		Ignore:   []string{outDir, "node_modules"},
		Build:    build,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := w.addDirsRecursive(fw, w.Root); err != nil {
		return err
	}

	rebuildReq, trigger := w.debouncer()
	done := w.startWorker(ctx, rebuildReq)
	rebuildReq <- struct{}{}

	slog.Info("Watching for changes", logfields.Path(w.Root))
	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// debouncer returns the rebuild channel and a trigger that coalesces calls
// arriving within the debounce window.
func (w *Watcher) debouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)
	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

func (w *Watcher) startWorker(ctx context.Context, rebuildReq chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				w.rebuild(ctx)
			}
		}
	}()
	return done
}

func (w *Watcher) rebuild(ctx context.Context) {
	start := time.Now()
	if err := w.Build(ctx); err != nil {
		slog.Warn("rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuilt", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if w.shouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.Root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnore skips hidden and editor temp files and anything inside an ignored directory.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, dir := range w.Ignore {
		dir = strings.Trim(filepath.ToSlash(dir), "/")
		if dir == "" || dir == "." {
			continue
		}
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}
