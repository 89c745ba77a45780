package progress

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

// failingKV returns err from every write.
type failingKV struct {
	*MemoryStore
	err error
}

func (f failingKV) Set(string, string) error { return f.err }
func (f failingKV) Delete(string) error      { return f.err }

func TestKey(t *testing.T) {
	if got := Key("lemp-stack"); got != "lemp-stack-progress" {
		t.Errorf("Key = %q", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 16, 0},
		{2, 16, 13},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds half away from zero
		{16, 16, 100},
		{0, 0, 0},
		{5, 0, 0},
		{20, 16, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.completed, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestToggleTwoStepsOfSixteen(t *testing.T) {
	kv := NewMemoryStore()
	s := NewStore(kv)
	tr := s.Track("lemp-stack", 16)

	if err := tr.Toggle(5); err != nil {
		t.Fatal(err)
	}
	if err := tr.Toggle(9); err != nil {
		t.Fatal(err)
	}

	if got := tr.Completed().Sorted(); !reflect.DeepEqual(got, []int{5, 9}) {
		t.Fatalf("completed = %v, want [5 9]", got)
	}
	if tr.Percent() != 13 {
		t.Errorf("percent = %d, want 13", tr.Percent())
	}
	raw, ok, _ := kv.Get("lemp-stack-progress")
	if !ok || raw != "[5,9]" {
		t.Errorf("persisted value = %q (present=%v), want [5,9]", raw, ok)
	}
}

func TestLoad_MalformedValueIsEmpty(t *testing.T) {
	for _, raw := range []string{"not-json", "{\"a\":1}", "[1,", "\"text\""} {
		kv := NewMemoryStore()
		_ = kv.Set("g-progress", raw)

		got := NewStore(kv).Load("g-progress")
		if got.Len() != 0 {
			t.Errorf("Load with %q = %v, want empty", raw, got.Sorted())
		}
	}
}

func TestLoad_AbsentKeyIsEmpty(t *testing.T) {
	if got := NewStore(NewMemoryStore()).Load("never-visited-progress"); got.Len() != 0 {
		t.Errorf("expected empty set, got %v", got.Sorted())
	}
}

func TestReset_RemovesPersistedKey(t *testing.T) {
	kv := NewMemoryStore()
	s := NewStore(kv)
	for _, n := range []int{1, 2, 3} {
		s.Toggle("g-progress", n)
	}

	s.Reset("g-progress")

	if got := s.Load("g-progress"); got.Len() != 0 {
		t.Errorf("Load after reset = %v", got.Sorted())
	}
	if _, ok, _ := kv.Get("g-progress"); ok {
		t.Error("persisted key still present after reset")
	}
	if got := NewStore(kv).Load("g-progress"); got.Len() != 0 {
		t.Errorf("fresh store after reset = %v", got.Sorted())
	}
}

func TestToggle_IgnoresNonPositive(t *testing.T) {
	kv := NewMemoryStore()
	s := NewStore(kv)

	if got := s.Toggle("g-progress", 0); got.Len() != 0 {
		t.Errorf("toggle 0 changed set: %v", got.Sorted())
	}
	if _, ok, _ := kv.Get("g-progress"); ok {
		t.Error("ignored toggle should not write")
	}
}

func TestTracker_RejectsOutOfRange(t *testing.T) {
	tr := NewStore(NewMemoryStore()).Track("g", 4)
	for _, n := range []int{0, 5, -1} {
		if err := tr.Toggle(n); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("Toggle(%d) err = %v, want ErrInvalidStep", n, err)
		}
	}
}

func TestTracker_IgnoresPersistedNumbersBeyondTotal(t *testing.T) {
	kv := NewMemoryStore()
	_ = kv.Set(Key("g"), "[1,4,30]")

	tr := NewStore(kv).Track("g", 4)
	if got := tr.Completed().Sorted(); !reflect.DeepEqual(got, []int{1, 4}) {
		t.Errorf("completed = %v, want [1 4]", got)
	}
	if tr.Percent() != 50 {
		t.Errorf("percent = %d, want 50", tr.Percent())
	}
}

func TestTracker_AllDone(t *testing.T) {
	tr := NewStore(NewMemoryStore()).Track("g", 2)
	if tr.AllDone() {
		t.Fatal("fresh tracker reports done")
	}
	_ = tr.Toggle(1)
	_ = tr.Toggle(2)
	if !tr.AllDone() || tr.Percent() != 100 {
		t.Errorf("expected all done at 100%%, got %d%%", tr.Percent())
	}
	if NewStore(NewMemoryStore()).Track("empty", 0).AllDone() {
		t.Error("guide without steps must not report done")
	}
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	boom := errors.New("disk full")
	s := NewStore(failingKV{MemoryStore: NewMemoryStore(), err: boom})

	got := s.Toggle("g-progress", 3)
	if !got.Has(3) {
		t.Fatal("toggle lost in-memory state on write failure")
	}
	if !s.Load("g-progress").Has(3) {
		t.Error("in-memory state not authoritative after failed write")
	}
	if !errors.Is(s.LastWriteError(), boom) {
		t.Errorf("LastWriteError = %v, want %v", s.LastWriteError(), boom)
	}

	s.Reset("g-progress")
	if s.Load("g-progress").Len() != 0 {
		t.Error("reset should clear memory even when delete fails")
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	s := NewStore(NewMemoryStore())
	s.Toggle("g-progress", 1)

	got := s.Load("g-progress")
	delete(got, 1)

	if !s.Load("g-progress").Has(1) {
		t.Error("mutating a loaded set changed the store")
	}
}

// =============================================================================
// Backends
// =============================================================================

func backends(t *testing.T) map[string]func() Backend {
	dir := t.TempDir()
	return map[string]func() Backend{
		"memory": func() Backend {
			return NewMemoryStore()
		},
		"json": func() Backend {
			b, err := Open(BackendJSON, filepath.Join(dir, "nested", "progress.json"))
			if err != nil {
				t.Fatal(err)
			}
			return b
		},
		"sqlite": func() Backend {
			b, err := Open(BackendSQLite, filepath.Join(dir, "progress.db"))
			if err != nil {
				t.Fatal(err)
			}
			return b
		},
	}
}

func TestBackends_GetSetDelete(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := open()
			defer b.Close()

			if _, ok, err := b.Get("k"); ok || err != nil {
				t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
			}
			if err := b.Set("k", "[1]"); err != nil {
				t.Fatal(err)
			}
			if err := b.Set("k", "[1,2]"); err != nil {
				t.Fatal(err)
			}
			v, ok, err := b.Get("k")
			if err != nil || !ok || v != "[1,2]" {
				t.Fatalf("Get = %q ok=%v err=%v", v, ok, err)
			}
			if err := b.Delete("k"); err != nil {
				t.Fatal(err)
			}
			if err := b.Delete("k"); err != nil {
				t.Fatalf("second delete: %v", err)
			}
			if _, ok, _ := b.Get("k"); ok {
				t.Error("key present after delete")
			}
		})
	}
}

func TestFileBackends_SurviveRestart(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{BackendJSON, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(dir, "progress."+backend)

			first, err := Open(backend, path)
			if err != nil {
				t.Fatal(err)
			}
			tr := NewStore(first).Track("mqtt-setup", 23)
			_ = tr.Toggle(2)
			_ = tr.Toggle(23)
			want := tr.Completed()
			if err := first.Close(); err != nil {
				t.Fatal(err)
			}

			second, err := Open(backend, path)
			if err != nil {
				t.Fatal(err)
			}
			defer second.Close()
			got := NewStore(second).Track("mqtt-setup", 23).Completed()
			if !got.Equal(want) {
				t.Errorf("after restart got %v, want %v", got.Sorted(), want.Sorted())
			}
		})
	}
}

func TestOpenFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	first, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = first.Set("a", "[1]")

	if err := writeFile(path, "garbage{"); err != nil {
		t.Fatal(err)
	}

	fs, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("corrupt file should not fail open: %v", err)
	}
	if _, ok, _ := fs.Get("a"); ok {
		t.Error("expected empty store after corruption")
	}
	if !fileExists(path + ".corrupt") {
		t.Error("corrupt file was not moved aside")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("redis", "/tmp/x"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Open(BackendSQLite, ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

// =============================================================================
// Properties
// =============================================================================

func TestProperty_ToggleTwiceRestores(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(1, 30).Draw(t, "total")
		seed := rapid.SliceOfDistinct(rapid.IntRange(1, total), rapid.ID[int]).Draw(t, "seed")
		n := rapid.IntRange(1, total).Draw(t, "n")

		s := NewStore(NewMemoryStore())
		for _, x := range seed {
			s.Toggle("p", x)
		}
		before := s.Load("p")

		s.Toggle("p", n)
		after := s.Toggle("p", n)

		if !after.Equal(before) {
			t.Fatalf("toggle(%d) twice: before %v after %v", n, before.Sorted(), after.Sorted())
		}
	})
}

func TestProperty_RoundTripAndPercent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(1, 30).Draw(t, "total")
		ops := rapid.SliceOf(rapid.IntRange(1, total)).Draw(t, "ops")

		kv := NewMemoryStore()
		tr := NewStore(kv).Track("g", total)
		for _, n := range ops {
			if err := tr.Toggle(n); err != nil {
				t.Fatal(err)
			}
		}

		p := tr.Percent()
		if p < 0 || p > 100 {
			t.Fatalf("percent %d out of bounds", p)
		}
		if want := Percent(tr.Count(), total); p != want {
			t.Fatalf("percent %d, want %d", p, want)
		}

		reloaded := NewStore(kv).Track("g", total).Completed()
		if !reloaded.Equal(tr.Completed()) {
			t.Fatalf("restart: got %v, want %v", reloaded.Sorted(), tr.Completed().Sorted())
		}

		tr.Reset()
		if NewStore(kv).Load(Key("g")).Len() != 0 {
			t.Fatal("reset did not clear persisted state")
		}
		if _, ok, _ := kv.Get(Key("g")); ok {
			t.Fatal("reset left key behind")
		}
	})
}
