package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"texture-manager/core/vfs"
)

// Watcher forwards file changes under the mounted asset directories.
type Watcher struct {
	fs       *vfs.Layered
	notify   *fsnotify.Watcher
	log      *zap.Logger
	onChange func(path string)
	wg       sync.WaitGroup
}

// New starts watching every non-writable mount of fs. onChange receives
// virtual paths and may be called from the watcher goroutine until Close
// returns.
func New(fs *vfs.Layered, log *zap.Logger, onChange func(path string)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		fs:       fs,
		notify:   notify,
		log:      log,
		onChange: onChange,
	}
	for _, m := range fs.Mounts() {
		if m.Writable {
			continue
		}
		w.addTree(m.Dir)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for the event loop to drain. No
// callbacks run after Close returns.
func (w *Watcher) Close() error {
	err := w.notify.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.notify.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Chmod) {
		return
	}
	if w.insideWritable(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addTree(ev.Name)
			return
		}
	}

	p, ok := w.fs.VFSPath(ev.Name)
	if !ok {
		return
	}
	w.log.Debug("file changed", zap.String("path", p), zap.Stringer("op", ev.Op))
	w.onChange(p)
}

// addTree registers dir and all its subdirectories. Entries that vanish
// during the walk are skipped.
func (w *Watcher) addTree(dir string) {
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.insideWritable(p) {
			return filepath.SkipDir
		}
		if err := w.notify.Add(p); err != nil {
			w.log.Warn("cannot watch directory", zap.String("dir", p), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		w.log.Warn("watch tree", zap.String("dir", dir), zap.Error(err))
	}
}

// insideWritable reports whether the OS path belongs to a writable mount,
// which also covers a cache directory nested inside the asset root.
func (w *Watcher) insideWritable(osPath string) bool {
	for _, m := range w.fs.Mounts() {
		if !m.Writable {
			continue
		}
		rel, err := filepath.Rel(m.Dir, osPath)
		if err != nil {
			continue
		}
		if rel == "." || !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}
