package effects

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const debounceDelay = 100 * time.Millisecond

// Watcher reports edits to definition files by identifier
type Watcher struct {
	library *Library
	logger  logrus.FieldLogger
	delay   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewWatcher(library *Library, logger logrus.FieldLogger) *Watcher {
	return &Watcher{
		library: library,
		logger:  logger.WithField("component", "effects"),
		delay:   debounceDelay,
		timers:  make(map[string]*time.Timer),
	}
}

// Run watches the library directory until ctx is done. onChange is called
// once per burst of writes to the same file, from a timer goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(id string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.library.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.library.Dir, err)
	}
	w.logger.WithField("dir", w.library.Dir).Info("EFFECTS: watching definitions")

	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			id, ok := w.library.IDFromPath(event.Name)
			if !ok {
				continue
			}
			w.schedule(id, onChange)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("EFFECTS: watcher error")
		}
	}
}

func (w *Watcher) schedule(id string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[id]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.delay, func() { w.fire(id, t, onChange) })
	w.timers[id] = t
}

// fire reports id unless t was replaced or stopped after it started running
func (w *Watcher) fire(id string, t *time.Timer, onChange func(string)) {
	w.mu.Lock()
	if w.timers[id] != t {
		w.mu.Unlock()
		return
	}
	delete(w.timers, id)
	w.mu.Unlock()

	w.logger.WithField("config", id).Debug("EFFECTS: definition changed")
	onChange(id)
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
}
