package shaders

import (
	"path/filepath"
	"strings"

	"deferred-gl/liblog"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changed shader files of an override directory.
// Changes are only forwarded; rebuilding happens on the render thread.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
}

func Watch(dir string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		fsnotify: fsWatch,
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
	}
	go w.start()
	liblog.Infof("Watching shaders in %q", dir)
	return w, nil
}

func (w *Watcher) start() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !isShaderFile(e.Name) {
				continue
			}
			select {
			case w.changes <- e.Name:
			default:
				// a reload is already pending
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			liblog.Warnf("Shader watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Poll drains the pending changes without blocking.
func (w *Watcher) Poll() []string {
	var files []string
	for {
		select {
		case f := <-w.changes:
			files = append(files, f)
		default:
			return files
		}
	}
}

func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsnotify.Close()
}

func isShaderFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".vert" || ext == ".frag"
}
