// Package watcher implements the filesystem watcher and debouncer: an
// event stream, filtered by the indexer's own exclude set, that
// accumulates paths and fires a callback once the stream has been idle for
// the debounce interval.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dennisonbertram/lgrep/internal/discover"
)

// DebounceInterval is the idle period before a batch fires: 1,500 ms
// after the last event.
const DebounceInterval = 1500 * time.Millisecond

// Watcher streams filesystem events under a root directory, filters them by
// a Discovery's exclude set, and debounces them into batched callbacks:
// accumulate under a lock, reset the debounce timer on every event,
// Pause/Resume over the accumulator, idempotent Stop.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	discovery *discover.Discovery
	debounce  time.Duration
	onBatch   func(paths []string)

	paused   bool
	pausedMu sync.RWMutex

	accumulated   map[string]bool
	accumulatedMu sync.Mutex

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	done     chan struct{}
	quit     chan struct{}
}

// New creates a Watcher over root, using discovery's exclude set to decide
// which directories to watch and which events to keep. onBatch is invoked
// with the accumulated set of changed absolute paths once the debounce
// interval elapses with no further events; it must not block indefinitely,
// since the watcher's event loop stalls while it runs.
func New(root string, discovery *discover.Discovery, onBatch func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:   fsw,
		root:        root,
		discovery:   discovery,
		debounce:    DebounceInterval,
		onBatch:     onBatch,
		accumulated: make(map[string]bool),
		done:        make(chan struct{}),
		quit:        make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounceInterval overrides the debounce window. Tests use this to
// avoid waiting 1.5s per assertion; production callers should leave the
// default in place.
func (w *Watcher) SetDebounceInterval(d time.Duration) {
	w.debounce = d
}

// Start launches the event loop in a goroutine. It returns immediately;
// call Stop to shut down and wait for the loop to exit.
func (w *Watcher) Start() {
	go w.run()
}

// Stop flushes any pending batch synchronously, then stops the
// fsnotify watcher. Idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.quit)
		<-w.done
		err = w.fsWatcher.Close()
	})
	return err
}

// Pause stops firing the callback but keeps accumulating events.
func (w *Watcher) Pause() {
	w.pausedMu.Lock()
	defer w.pausedMu.Unlock()
	w.paused = true
}

// Resume resumes firing the callback. If events accumulated while paused,
// they fire immediately rather than waiting for the next debounce window.
func (w *Watcher) Resume() {
	w.pausedMu.Lock()
	w.paused = false
	w.pausedMu.Unlock()
	w.flush()
}

func (w *Watcher) run() {
	defer close(w.done)

	reindex := make(chan struct{}, 1)

	for {
		select {
		case <-w.quit:
			w.stopTimer()
			w.flush() // synchronous flush before exit
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Printf("watcher: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}
			if !w.shouldTrack(event) {
				continue
			}
			w.accumulatedMu.Lock()
			w.accumulated[event.Name] = true
			w.accumulatedMu.Unlock()
			w.resetTimer(reindex)

		case <-reindex:
			w.flush()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// flush fires the callback with whatever has accumulated, unless paused or
// empty. Overlapping batches coalesce naturally: an event that arrives
// while onBatch is running is simply accumulated into the next batch.
func (w *Watcher) flush() {
	w.pausedMu.RLock()
	paused := w.paused
	w.pausedMu.RUnlock()
	if paused {
		return
	}

	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.accumulated))
	for p := range w.accumulated {
		paths = append(paths, p)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	if w.onBatch != nil {
		w.onBatch(paths)
	}
}

func (w *Watcher) resetTimer(reindex chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		if !w.timer.Stop() {
			select {
			case <-w.timer.C:
			default:
			}
		}
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case reindex <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// shouldTrack reports whether event is a content change (not a bare rename
// or chmod) on a path the discovery excludes would not have skipped.
func (w *Watcher) shouldTrack(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	return !w.discovery.ShouldExclude(rel)
}

// addTree adds rootPath and every non-excluded subdirectory to the
// fsnotify watcher.
func (w *Watcher) addTree(rootPath string) error {
	rel, err := filepath.Rel(w.root, rootPath)
	if err == nil && rel != "." && w.discovery.ShouldExclude(filepath.ToSlash(rel)) {
		return nil
	}

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(rootPath); err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := w.addTree(filepath.Join(rootPath, entry.Name())); err != nil {
			log.Printf("watcher: %v", err)
		}
	}
	return nil
}
