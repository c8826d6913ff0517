package plugin

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors plugin directories and invokes a callback, debounced,
// when their contents change, so dropping a plugin package into the
// directory takes effect without a restart.
//
// The callback runs on the watcher goroutine. Manager methods are
// mutex-guarded, so wiring it straight to Manager.Reload is safe; a host
// that needs event-loop affinity marshals inside the callback it supplies.
type Watcher struct {
	mu sync.Mutex

	dirs     []string
	debounce time.Duration
	log      Logger
	onChange func()

	fw      *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchDebounce sets how long the directory must stay quiet before the
// callback fires. Installers touch many files in a burst; one callback per
// burst is the point.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(log Logger) WatcherOption {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWatcher creates a watcher over the given plugin directories. Directories
// that do not exist yet are skipped at Start; call Start again after creating
// them.
func NewWatcher(dirs []string, onChange func(), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dirs:     dirs,
		debounce: 500 * time.Millisecond,
		log:      nopLogger{},
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Idempotent while running.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	watched := 0
	for _, dir := range w.dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.log.Warnf("plugin watcher: cannot watch %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fw.Close()
		return nil
	}

	w.fw = fw
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.running = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.fw.Close()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// loop collects fsnotify events and fires the callback once the directory
// has been quiet for the debounce window.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("plugin watcher: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			w.notify()
		}
	}
}

// notify invokes the callback with panic containment so a broken callback
// does not kill the watcher goroutine.
func (w *Watcher) notify() {
	if w.onChange == nil {
		return
	}
	if err := guard(func() error {
		w.onChange()
		return nil
	}); err != nil {
		w.log.Warnf("plugin watcher callback failed: %v", err)
	}
}
