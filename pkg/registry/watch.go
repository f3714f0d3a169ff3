package registry

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of writes from editors into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a registry file whenever it changes.
type Watcher struct {
	path     string
	onReload func(*Registry, error)
	debounce time.Duration
	logger   *log.Logger
}

// NewWatcher watches path and calls onReload with each freshly loaded
// registry, or with the load error when the new file is invalid. The caller
// keeps serving its previous registry on error.
func NewWatcher(path string, onReload func(*Registry, error)) *Watcher {
	return &Watcher{
		path:     path,
		onReload: onReload,
		debounce: DefaultDebounce,
		logger:   log.Default(),
	}
}

// WithDebounce sets the quiet period required before a reload.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// WithLogger sets the logger used for watch events.
func (w *Watcher) WithLogger(l *log.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// Watch blocks until ctx is cancelled. The parent directory is watched so
// that editors replacing the file by rename are still seen.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.logger.Debug("watching registry", "path", abs)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				w.reload()
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("registry watch error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) reload() {
	r, err := Load(w.path)
	if err != nil {
		w.logger.Warn("registry reload failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("registry reloaded", "path", w.path, "machines", r.Len())
	}
	w.onReload(r, err)
}
