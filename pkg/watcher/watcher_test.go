package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32

	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

// catalogDir creates a minimal catalog layout and returns its root.
func catalogDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "guides"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(root, "categories.yaml"), "categories: []\n")
	return root
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, ch <-chan struct{}, d time.Duration) bool {
	t.Helper()
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

func TestWatcher_DetectsGuideFileChange(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			root := catalogDir(t)

			var changes atomic.Int32
			w, err := NewWatcher(root,
				WithDebounceDuration(30*time.Millisecond),
				WithPollInterval(40*time.Millisecond),
				WithForcePoll(poll),
				WithOnChange(func() { changes.Add(1) }),
			)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()

			if poll && !w.IsPolling() {
				t.Fatal("expected polling mode")
			}

			time.Sleep(60 * time.Millisecond)
			write(t, filepath.Join(root, "guides", "mqtt.yaml"), "id: mqtt\nsteps: []\n")

			if !waitFor(t, w.Changed(), 2*time.Second) {
				t.Fatal("no change signalled")
			}
			if changes.Load() < 1 {
				t.Error("OnChange not called")
			}
		})
	}
}

func TestWatcher_IgnoresNonCatalogFiles(t *testing.T) {
	root := catalogDir(t)

	w, err := NewWatcher(root, WithDebounceDuration(20*time.Millisecond), WithPollInterval(30*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	write(t, filepath.Join(root, "notes.txt"), "scratch")
	write(t, filepath.Join(root, "guides", "draft.md"), "# draft")

	if waitFor(t, w.Changed(), 300*time.Millisecond) {
		t.Error("change signalled for non-catalog files")
	}
}

func TestWatcher_StartErrors(t *testing.T) {
	root := catalogDir(t)

	w, _ := NewWatcher(filepath.Join(root, "categories.yaml"))
	if err := w.Start(); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}

	w, _ = NewWatcher(filepath.Join(root, "missing"))
	if err := w.Start(); err == nil {
		t.Error("expected error for missing directory")
	}

	w, _ = NewWatcher(root)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestWatcher_RootRemovedWhilePolling(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "catalog")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 4)
	w, err := NewWatcher(root,
		WithForcePoll(true),
		WithPollInterval(30*time.Millisecond),
		WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrRootRemoved) {
			t.Errorf("expected ErrRootRemoved, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("root removal not reported")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	root := catalogDir(t)
	w, err := NewWatcher(root)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Fatal("new watcher should not be started")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Fatal("expected started")
	}
	w.Stop()
	w.Stop()
	if w.IsStarted() {
		t.Fatal("expected stopped")
	}
	if err := w.Start(); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	w.Stop()
}

func TestWatcher_RootIsAbsolute(t *testing.T) {
	w, err := NewWatcher(".")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Root()) {
		t.Errorf("expected absolute root, got %q", w.Root())
	}
	if w.PollInterval() != DefaultPollInterval {
		t.Errorf("expected default poll interval, got %v", w.PollInterval())
	}
}

func TestScan_CountsOnlyCatalogFiles(t *testing.T) {
	root := catalogDir(t)
	write(t, filepath.Join(root, "guides", "a.yaml"), "id: a\n")
	write(t, filepath.Join(root, "guides", "b.yml"), "id: b\n")
	write(t, filepath.Join(root, "README.md"), "docs")
	if err := os.MkdirAll(filepath.Join(root, "other"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(root, "other", "c.yaml"), "ignored")

	s := scan(root)
	if !s.present || s.files != 3 {
		t.Errorf("scan = %+v, want 3 catalog files", s)
	}
	if scan(filepath.Join(root, "nope")).present {
		t.Error("missing root reported present")
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		t.Setenv("DEVSETUP_TEST_BOOL", v)
		if !envBool("DEVSETUP_TEST_BOOL") {
			t.Errorf("envBool(%q) = false", v)
		}
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		t.Setenv("DEVSETUP_TEST_BOOL", v)
		if envBool("DEVSETUP_TEST_BOOL") {
			t.Errorf("envBool(%q) = true", v)
		}
	}
}

func TestWatcher_StopReleasesGoroutines(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

			root := catalogDir(t)
			w, err := NewWatcher(root, WithForcePoll(poll), WithPollInterval(20*time.Millisecond))
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			time.Sleep(50 * time.Millisecond)
			w.Stop()
		})
	}
}

func TestWatcher_DoneClosesOnStop(t *testing.T) {
	root := catalogDir(t)
	w, err := NewWatcher(root, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Done():
	default:
		t.Fatal("Done should be closed before Start")
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	done := w.Done()
	select {
	case <-done:
		t.Fatal("Done closed while running")
	default:
	}

	w.Stop()
	if !waitFor(t, done, time.Second) {
		t.Fatal("Done not closed after Stop")
	}
}
