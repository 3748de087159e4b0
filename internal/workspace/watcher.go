package workspace

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// ChangeEvent tells the explorer that something on disk changed outside the
// editor. Path is workspace-relative.
type ChangeEvent struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// Watcher follows the workspace tree with fsnotify and fans events out to
// subscribers. Slow subscribers lose events rather than block the watcher.
type Watcher struct {
	svc *Service
	fw  *fsnotify.Watcher

	mu   sync.Mutex
	subs map[chan ChangeEvent]struct{}
}

func NewWatcher(svc *Service) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		svc:  svc,
		fw:   fw,
		subs: make(map[chan ChangeEvent]struct{}),
	}

	err = filepath.WalkDir(svc.Root(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if lo.Contains(ignoredDirs, d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
	if err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Subscribe returns a channel of change events and a cancel func. The
// channel is closed on cancel.
func (w *Watcher) Subscribe() (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 64)

	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subs[ch]; ok {
			delete(w.subs, ch)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

func (w *Watcher) Run(ctx context.Context) {
	defer w.fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("workspace watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if lo.Contains(ignoredDirs, name) {
		return
	}

	// New directories must be added so their contents are watched too.
	if ev.Op.Has(fsnotify.Create) && isDir(ev.Name) {
		_ = w.fw.Add(ev.Name)
	}

	rel, err := filepath.Rel(w.svc.Root(), ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}

	change := ChangeEvent{
		Path: filepath.ToSlash(rel),
		Op:   opString(ev.Op),
	}

	w.mu.Lock()
	for ch := range w.subs {
		select {
		case ch <- change:
		default:
		}
	}
	w.mu.Unlock()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return "chmod"
	}
}
