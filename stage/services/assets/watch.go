package assets

import (
	"fmt"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logclient "frost/stage/client/logger"
	"frost/stage/proto"
)

// reloadQuiet is how long a file must stay unchanged before it is reloaded.
// Editors and exporters often write in bursts.
const reloadQuiet = 150 * time.Millisecond

// watcher re-submits texture loads when their files change on disk.
type watcher struct {
	fw   *fsnotify.Watcher
	root string
	l    *Loader
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	dirs    map[string]bool
	reqs    map[string]Request // keyed by slash path relative to root
	pending map[string]*time.Timer
}

// Watch enables hot reload of loaded textures and height maps below root, the
// directory the loader's fs.FS was created from.
func (l *Loader) Watch(root string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("assets watch: %w", err)
	}
	w := &watcher{
		fw:      fw,
		root:    root,
		l:       l,
		done:    make(chan struct{}),
		dirs:    map[string]bool{},
		reqs:    map[string]Request{},
		pending: map[string]*time.Timer{},
	}

	l.mu.Lock()
	if l.closed || l.watcher != nil {
		l.mu.Unlock()
		fw.Close()
		return fmt.Errorf("assets watch: %w", ErrClosed)
	}
	l.watcher = w
	l.mu.Unlock()

	go w.run()
	return nil
}

func (l *Loader) track(req Request) {
	l.mu.Lock()
	w := l.watcher
	l.mu.Unlock()
	if w != nil {
		w.track(req)
	}
}

func (w *watcher) track(req Request) {
	name, err := cleanPath(req.Path)
	if err != nil {
		return
	}
	dir := filepath.Join(w.root, filepath.FromSlash(path.Dir(name)))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.reqs[name] = req
	if w.dirs[dir] {
		return
	}
	if err := w.fw.Add(dir); err != nil {
		w.logf("assets watch %s: %v", dir, err)
		return
	}
	w.dirs[dir] = true
}

func (w *watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.changed(ev.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logf("assets watch: %v", err)
		}
	}
}

func (w *watcher) changed(file string) {
	rel, err := filepath.Rel(w.root, file)
	if err != nil {
		return
	}
	name := filepath.ToSlash(rel)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.reqs[name]; !ok || w.closed {
		return
	}
	if t, ok := w.pending[name]; ok {
		t.Reset(reloadQuiet)
		return
	}
	w.pending[name] = time.AfterFunc(reloadQuiet, func() { w.reload(name) })
}

func (w *watcher) reload(name string) {
	w.mu.Lock()
	delete(w.pending, name)
	req, ok := w.reqs[name]
	closed := w.closed
	w.mu.Unlock()
	if !ok || closed {
		return
	}
	if err := w.l.Submit(req); err != nil {
		w.logf("assets reload %s: %v", name, err)
	}
}

func (w *watcher) logf(format string, args ...any) {
	if w.l.k == nil || !w.l.logCap.Valid() {
		return
	}
	logclient.Post(w.l.k, w.l.logCap, proto.LogWarn, fmt.Sprintf(format, args...))
}

func (w *watcher) close() error {
	w.mu.Lock()
	w.closed = true
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	w.mu.Unlock()
	err := w.fw.Close()
	<-w.done
	return err
}
