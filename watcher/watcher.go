package watcher

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"respimg/meta"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the metadata file when the build step rewrites it
type Watcher struct {
	path     string
	store    *meta.Store
	watcher  *fsnotify.Watcher
	events   chan Event
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// Event represents the outcome of a metadata file change
type Event struct {
	Type     EventType
	FilePath string
	Images   int   // number of images in the new snapshot
	Err      error // set for EventFailed
}

// EventType represents the type of metadata event
type EventType int

const (
	EventReloaded EventType = iota
	EventFailed
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventReloaded:
		return "reloaded"
	case EventFailed:
		return "failed"
	case EventRemoved:
		return "removed"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// NewWatcher creates a watcher that swaps reloaded metadata into store
func NewWatcher(path string, store *meta.Store) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve meta path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     absPath,
		store:    store,
		watcher:  fsWatcher,
		events:   make(chan Event, 100),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// SetDebounce changes the settle delay. Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins monitoring the metadata file.
// The parent directory is watched so that atomic replacements are seen.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}
	log.Printf("Watching meta file: %s", w.path)

	go w.processEvents()

	return nil
}

// processEvents handles fsnotify events for the metadata file
func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

// schedule debounces rapid successive events into one reload
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload loads the metadata file and swaps it into the store
func (w *Watcher) reload() {
	var ev Event
	ev.FilePath = w.path

	m, err := meta.Load(w.path)
	switch {
	case err == nil:
		w.store.Swap(m)
		ev.Type = EventReloaded
		ev.Images = len(m.Images)
		log.Printf("Meta reloaded: %d images from %s", ev.Images, w.path)
	case isNotExist(err):
		// Keep serving the previous snapshot until the file comes back
		ev.Type = EventRemoved
		log.Printf("Meta file removed: %s", w.path)
	default:
		ev.Type = EventFailed
		ev.Err = err
		log.Printf("Meta reload failed, keeping previous snapshot: %v", err)
	}

	w.emit(ev)
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	select {
	case w.events <- ev:
	default:
		log.Printf("Dropping meta event, channel full: %v", ev.Type)
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	close(w.events)
	w.mu.Unlock()

	return w.watcher.Close()
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
