package cli

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/utils"
)

// DefaultDebounce is how long the watcher waits for further changes
// before transforming a batch
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-runs transforms whenever a watched source file changes
type Watcher struct {
	runner      *Runner
	diagnostics *utils.DiagnosticSystem
	debounce    time.Duration
	ignore      []string
	ready       chan struct{}
}

// NewWatcher creates a Watcher. Events under any of the ignore directories
// are dropped, so an output directory inside the watched tree does not
// retrigger itself.
func NewWatcher(runner *Runner, diagnostics *utils.DiagnosticSystem, debounce time.Duration, ignore ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var abs []string
	for _, dir := range ignore {
		if dir == "" {
			continue
		}
		if p, err := filepath.Abs(dir); err == nil {
			abs = append(abs, p)
		}
	}

	return &Watcher{
		runner:      runner,
		diagnostics: diagnostics,
		debounce:    debounce,
		ignore:      abs,
		ready:       make(chan struct{}),
	}
}

// Ready is closed once the initial run finished and events are being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Watch transforms paths once, then again on every change until ctx is done
func (w *Watcher) Watch(ctx context.Context, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapFileSystemError("create", "file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range paths {
		if err := w.addTree(watcher, strings.TrimSuffix(p, "/...")); err != nil {
			return err
		}
	}

	w.runBatch(ctx, paths)

	w.diagnostics.Success("Watching for changes...")
	close(w.ready)

	pending := make(map[string]bool)
	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || w.ignored(event.Name) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}

			if info.IsDir() {
				if event.Op&fsnotify.Create != 0 {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.diagnostics.Warn("cannot watch %s: %v", event.Name, err)
					}
				}
				continue
			}

			if !utils.DefaultSourceFileFilter()(event.Name, info) {
				continue
			}

			w.diagnostics.Verbose("File changed: %s", event.Name)
			pending[event.Name] = true

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			files := make([]string, 0, len(pending))
			for file := range pending {
				files = append(files, file)
			}
			sort.Strings(files)
			pending = make(map[string]bool)

			w.runBatch(ctx, files)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("watcher error: %v", err)
		}
	}
}

func (w *Watcher) runBatch(ctx context.Context, paths []string) {
	id := uuid.NewString()[:8]
	start := time.Now()

	summary, err := w.runner.Run(ctx, paths)
	if ctx.Err() != nil {
		return
	}
	var failures *errors.MultipleErrors
	switch {
	case stderrors.As(err, &failures):
		w.diagnostics.Warn("[%s] %d of %d files failed", id, failures.Count(), summary.FilesScanned)
	case err != nil:
		w.diagnostics.Error("[%s] %v", id, err)
		return
	}
	w.diagnostics.Info("[%s] %d files, %d changed, %d routes rewritten in %s",
		id, summary.FilesScanned, summary.FilesChanged, summary.RoutesRewritten,
		time.Since(start).Round(time.Millisecond))
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.WrapFileSystemError("watch", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}

	dirFilter := utils.DefaultDirectoryFilter()
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if path != root && (!dirFilter(path, info) || w.ignored(path)) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
