package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

// ReportFunc receives the outcome of re-analyzing a changed file.
type ReportFunc func(path string, report *Report, err error)

// Watcher re-runs the engine on TEAL files when they are written.
type Watcher struct {
	engine   *Engine
	watcher  *fsnotify.Watcher
	onReport ReportFunc
	debounce time.Duration
}

// NewWatcher watches every directory under paths. A file path watches its
// parent directory.
func NewWatcher(engine *Engine, paths []string, onReport ReportFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}

	w := &Watcher{
		engine:   engine,
		watcher:  fw,
		onReport: onReport,
		debounce: defaultDebounce,
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.watcher.Add(filepath.Dir(path))
	}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Watch blocks until ctx is done or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.engine.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !IsTealFile(event.Name) {
		return
	}
	// wait for a while after file change to consider multiple changes as one
	time.Sleep(w.debounce)

	w.engine.logger.Debug("File changed", zap.String("file", event.Name))
	report, err := w.engine.Run(event.Name)
	if w.onReport != nil {
		w.onReport(event.Name, report, err)
	}
}

// IsTealFile reports whether path has the .teal extension.
func IsTealFile(path string) bool {
	return filepath.Ext(path) == ".teal"
}
