// Package progress tracks which steps of a guide are marked complete.
//
// Each guide's completed set is persisted under its own key as a JSON array
// of 1-based step numbers. Read failures are never surfaced: an absent or
// unparseable record is treated as no progress. Write failures are logged and
// the in-memory set stays authoritative for the session.
package progress

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/devsetup/pkg/debug"
	"github.com/vanderheijden86/devsetup/pkg/metrics"
)

// ErrInvalidStep is returned by Tracker.Toggle for numbers outside the guide.
var ErrInvalidStep = errors.New("step number out of range")

// Key returns the storage key for a guide's completed set.
func Key(guideID string) string {
	return guideID + "-progress"
}

// Set is a set of 1-based step numbers.
type Set map[int]struct{}

// NewSet returns a set holding nums.
func NewSet(nums ...int) Set {
	s := make(Set, len(nums))
	for _, n := range nums {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether n is in the set.
func (s Set) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if !o.Has(n) {
			return false
		}
	}
	return true
}

// Percent returns round(100*completed/total) clamped to [0, 100]. A guide
// with no steps is 0% complete.
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	return min(p, 100)
}

// Store reads and writes completed sets through a KeyValueStore. The first
// Load of a key reads the backend; later calls use the in-memory copy.
type Store struct {
	mu       sync.Mutex
	kv       KeyValueStore
	cache    map[string]Set
	writeErr error
}

// NewStore returns a Store over kv.
func NewStore(kv KeyValueStore) *Store {
	return &Store{kv: kv, cache: make(map[string]Set)}
}

// Load returns the completed set for key, or an empty set when nothing
// usable is persisted.
func (s *Store) Load(key string) Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(key).Clone()
}

func (s *Store) load(key string) Set {
	if set, ok := s.cache[key]; ok {
		return set
	}
	set := s.read(key)
	s.cache[key] = set
	return set
}

func (s *Store) read(key string) Set {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		debug.Log("progress: reading %q failed, treating as empty: %v", key, err)
		return Set{}
	}
	if !ok {
		return Set{}
	}
	var nums []int
	if err := json.Unmarshal([]byte(raw), &nums); err != nil {
		debug.Log("progress: %q holds unparseable value %q, treating as empty: %v", key, raw, err)
		return Set{}
	}
	set := make(Set, len(nums))
	for _, n := range nums {
		if n < 1 {
			debug.Log("progress: %q dropping invalid step number %d", key, n)
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// Toggle flips membership of step n, persists the result, and returns the
// new set. Non-positive numbers leave the set unchanged.
func (s *Store) Toggle(key string, n int) Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.load(key)
	if n < 1 {
		debug.Log("progress: ignoring toggle of step %d on %q", n, key)
		return set.Clone()
	}
	if set.Has(n) {
		delete(set, n)
	} else {
		set[n] = struct{}{}
	}
	s.write(key, set)
	return set.Clone()
}

func (s *Store) write(key string, set Set) {
	defer metrics.Timer(metrics.ProgressWrite)()
	data, err := json.Marshal(set.Sorted())
	if err == nil {
		err = s.kv.Set(key, string(data))
	}
	s.writeErr = err
	if err != nil {
		debug.Log("progress: persisting %q failed, keeping in-memory state: %v", key, err)
	}
}

// Reset empties the set for key and deletes its persisted record.
func (s *Store) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = Set{}
	err := s.kv.Delete(key)
	s.writeErr = err
	if err != nil {
		debug.Log("progress: deleting %q failed: %v", key, err)
	}
}

// LastWriteError returns the error from the most recent Toggle or Reset, or nil.
func (s *Store) LastWriteError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

// Tracker is the completed set of one guide, bounded by its step count.
type Tracker struct {
	store *Store
	key   string
	total int
	set   Set
}

// Track loads the completed set for a guide with total steps. Persisted
// numbers beyond total are ignored.
func (s *Store) Track(guideID string, total int) *Tracker {
	t := &Tracker{store: s, key: Key(guideID), total: total}
	t.set = t.bounded(s.Load(t.key))
	return t
}

func (t *Tracker) bounded(set Set) Set {
	for n := range set {
		if n > t.total {
			debug.Log("progress: %q ignoring step %d beyond %d steps", t.key, n, t.total)
			delete(set, n)
		}
	}
	return set
}

// Toggle flips step n, which must be within [1, total].
func (t *Tracker) Toggle(n int) error {
	if n < 1 || n > t.total {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidStep, n, t.total)
	}
	t.set = t.bounded(t.store.Toggle(t.key, n))
	return nil
}

// Reset clears every completed step.
func (t *Tracker) Reset() {
	t.store.Reset(t.key)
	t.set = Set{}
}

// Key returns the storage key of the tracked guide.
func (t *Tracker) Key() string { return t.key }

// Done reports whether step n is complete.
func (t *Tracker) Done(n int) bool { return t.set.Has(n) }

// Completed returns a copy of the completed set.
func (t *Tracker) Completed() Set { return t.set.Clone() }

// Count returns the number of completed steps.
func (t *Tracker) Count() int { return len(t.set) }

// Total returns the guide's step count.
func (t *Tracker) Total() int { return t.total }

// Percent returns the rounded completion percentage.
func (t *Tracker) Percent() int { return Percent(len(t.set), t.total) }

// AllDone reports whether every step of a non-empty guide is complete.
func (t *Tracker) AllDone() bool { return t.total > 0 && len(t.set) == t.total }
