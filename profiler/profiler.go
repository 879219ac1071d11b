// Package profiler times named operations. Bundle assembly uses it to report
// how long each step and each icon decode took.
package profiler

import (
	"fmt"
	"sync"
	"time"
)

// Stage is the accumulated timing of one named operation.
type Stage struct {
	Name  string
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average returns the mean duration, or zero when nothing was recorded.
func (s Stage) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

func (s Stage) String() string {
	if s.Count == 1 {
		return fmt.Sprintf("%s: %v", s.Name, s.Total)
	}
	return fmt.Sprintf("%s: %v total, %d calls, avg %v (min %v, max %v)", s.Name, s.Total, s.Count, s.Average(), s.Min, s.Max)
}

// Tracker accumulates timings per operation name. It is safe for concurrent
// use; parallel icon decodes record into the same tracker.
type Tracker struct {
	mu     sync.Mutex
	order  []string
	stages map[string]*Stage
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{stages: make(map[string]*Stage)}
}

// Track starts timing name and returns the function that stops it.
//
// Arguments:
//   - name: The operation name.
//
// Returns:
//   - func(): Records the elapsed time when called.
//
// @example
//
//	defer tracker.Track("plist")()
func (t *Tracker) Track(name string) func() {
	start := time.Now()
	return func() { t.Record(name, time.Since(start)) }
}

// Record adds one observation of d for name.
func (t *Tracker) Record(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stages[name]
	if !ok {
		s = &Stage{Name: name, Min: d, Max: d}
		t.stages[name] = s
		t.order = append(t.order, name)
	}
	s.Count++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
}

// Stages returns a copy of every stage in the order it was first recorded.
func (t *Tracker) Stages() []Stage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Stage, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.stages[name])
	}
	return out
}
