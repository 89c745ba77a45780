// Package watcher reports changes to a guide catalog directory, using
// fsnotify where available and stat polling otherwise.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/devsetup/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrRootRemoved    = errors.New("watched catalog directory was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNotDirectory   = errors.New("watched path is not a directory")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked after a debounced change.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// snapshot summarizes the catalog files so polling can detect edits,
// additions and removals.
type snapshot struct {
	files   int
	size    int64
	newest  time.Time
	present bool
}

func (s snapshot) differs(o snapshot) bool {
	return s.files != o.files || s.size != o.size || !s.newest.Equal(o.newest) || s.present != o.present
}

// Watcher monitors a catalog directory (categories.yaml and guides/*.yaml).
type Watcher struct {
	root             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	last        snapshot

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the catalog directory at root.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:             absRoot,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.root)
	switch {
	case os.IsPermission(err):
		return ErrPermission
	case err != nil:
		return err
	case !info.IsDir():
		return ErrNotDirectory
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.last = scan(w.root)
	w.useFallback = w.forcePoll || envBool("DEVSETUP_FORCE_POLL")

	if !w.useFallback {
		if fsw, err := w.newFsnotify(); err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.root, err)
			w.useFallback = true
		} else {
			w.fsWatcher = fsw
			go w.watchFsnotify(fsw)
		}
	}

	if w.useFallback {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// newFsnotify watches the root and its guides directory. Directories are
// watched rather than files so atomic saves (write temp + rename) are seen.
func (w *Watcher) newFsnotify() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	guides := filepath.Join(w.root, "guides")
	if info, err := os.Stat(guides); err == nil && info.IsDir() {
		if err := fsw.Add(guides); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return fsw, nil
}

// Stop stops watching. The change channel stays open; a receiver blocked on
// Changed simply never fires again.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Done returns a channel closed when the watcher stops. It is already
// closed for a watcher that is not started.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.started || w.ctx == nil {
		return closedCh
	}
	return w.ctx.Done()
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Changed returns a channel that receives after each debounced change.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// isCatalogFile reports whether an event path can affect the catalog.
func isCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func (w *Watcher) watchFsnotify(fsw *fsnotify.Watcher) {
	guides := filepath.Join(w.root, "guides")

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}

			if event.Name == w.root && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.onError(ErrRootRemoved)
				continue
			}
			// A guides directory created after Start needs its own watch.
			if event.Name == guides && event.Op&fsnotify.Create != 0 {
				if err := fsw.Add(guides); err != nil {
					w.onError(err)
				}
				w.debouncer.Trigger(w.notifyChange)
				continue
			}
			if !isCatalogFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			cur := scan(w.root)

			w.mu.Lock()
			prev := w.last
			changed := cur.differs(prev)
			w.last = cur
			w.mu.Unlock()

			if prev.present && !cur.present {
				w.onError(ErrRootRemoved)
				continue
			}
			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// scan stats every catalog file under root.
func scan(root string) snapshot {
	var s snapshot
	if _, err := os.Stat(root); err != nil {
		return s
	}
	s.present = true
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && filepath.Base(path) != "guides" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isCatalogFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		s.files++
		s.size += info.Size()
		if info.ModTime().After(s.newest) {
			s.newest = info.ModTime()
		}
		return nil
	})
	return s
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	if !started {
		return
	}

	w.onChange()

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
