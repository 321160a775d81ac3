package spendfeed

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/averlow/healthdash/internal/logger"
)

// Watcher observes a local feed file and reports changes so the
// orchestrator can offer a refresh. It is only usable when the feed source
// is a filesystem path.
type Watcher struct {
	watcher       *fsnotify.Watcher
	filePath      string
	changeChan    chan struct{}
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewWatcher starts watching the feed file's directory. Watching the
// directory instead of the file catches atomic replace-on-write updates.
func NewWatcher(filePath string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(filepath.Dir(filePath)); err != nil {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			logger.Error("failed to close feed watcher", "error", closeErr)
		}
		return nil, err
	}

	w := &Watcher{
		watcher:    fsWatcher,
		filePath:   filePath,
		changeChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}

	go w.watchLoop()
	return w, nil
}

// Changes returns a channel that receives a signal whenever the feed file
// is written or recreated.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changeChan
}

func (w *Watcher) watchLoop() {
	const debounceInterval = 250 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, func() {
					select {
					case w.changeChan <- struct{}{}:
					default:
					}
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("feed watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	return w.watcher.Close()
}
