// Package metrics times the hot paths of devsetup: catalog loading,
// searching, markdown rendering, progress writes and frame rendering.
//
// Timings are kept in memory for the life of the process and written to the
// debug log when the TUI exits. Set DEVSETUP_METRICS=0 to turn collection off.
//
//	func loadCatalog() {
//	    defer metrics.Timer(metrics.CatalogLoad)()
//	    // ...
//	}
package metrics

import (
	"os"
	"sync"
	"time"
)

var enabled = os.Getenv("DEVSETUP_METRICS") != "0"

// Timing accumulates the durations of one named operation.
type Timing struct {
	name string

	mu    sync.Mutex
	count int
	total time.Duration
	max   time.Duration
}

func newTiming(name string) *Timing {
	return &Timing{name: name}
}

func (t *Timing) observe(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.total += d
	t.max = max(t.max, d)
}

// Stats is a point-in-time copy of a Timing.
type Stats struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
}

// Avg returns the mean duration, or 0 before the first observation.
func (s Stats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

func (t *Timing) stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{Name: t.name, Count: t.count, Total: t.total, Max: t.max}
}

// Timer starts timing t and returns the func that stops it. Use with defer.
func Timer(t *Timing) func() {
	if !enabled || t == nil {
		return func() {}
	}
	start := time.Now()
	return func() { t.observe(time.Since(start)) }
}

// Operations timed across devsetup.
var (
	CatalogLoad    = newTiming("catalog_load")
	CatalogSearch  = newTiming("catalog_search")
	StepFilter     = newTiming("step_filter")
	MarkdownRender = newTiming("markdown_render")
	ProgressWrite  = newTiming("progress_write")
	UIRender       = newTiming("ui_render")
)

var all = []*Timing{CatalogLoad, CatalogSearch, StepFilter, MarkdownRender, ProgressWrite, UIRender}

// Snapshot returns the stats of every operation observed at least once.
func Snapshot() []Stats {
	var out []Stats
	for _, t := range all {
		if s := t.stats(); s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}
