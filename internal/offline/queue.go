package offline

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultQueueCapacity matches the device's review buffer.
const DefaultQueueCapacity = 50

// Entry is one exchange answered locally while the Village was away.
type Entry struct {
	Timestamp time.Time
	Input     string
	Output    string
	E         float64
	State     string
	Quality   string
}

// Queue is a fixed-capacity buffer of offline exchanges. Adding to a
// full queue evicts the oldest entry; it never blocks and never grows.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

// NewQueue makes a queue holding at most capacity entries.
// Non-positive capacities get the default.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{cap: capacity}
}

// Add appends an entry, evicting the oldest when full. A zero
// timestamp is stamped with now.
func (q *Queue) Add(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
	if len(q.entries) > q.cap {
		q.entries = q.entries[len(q.entries)-q.cap:]
	}
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Pending reports whether anything is waiting to sync.
func (q *Queue) Pending() bool {
	return q.Len() > 0
}

// Cap returns the queue's fixed capacity.
func (q *Queue) Cap() int {
	return q.cap
}

// Entries returns a copy of the queue, oldest first.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Drain empties the queue and returns what it held. Called after a
// successful sync hands the entries to the review store.
func (q *Queue) Drain() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.entries
	q.entries = nil
	return out
}

// Clear drops everything without returning it.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
}

// Summary renders the last few exchanges for the sync payload and the
// review surface.
func (q *Queue) Summary() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "While offline (%d interactions):\n", len(q.entries))

	start := 0
	if len(q.entries) > 10 {
		start = len(q.entries) - 10
	}
	for _, e := range q.entries[start:] {
		input := e.Input
		if len(input) > 50 {
			input = input[:50] + "..."
		}
		fmt.Fprintf(&b, "  [%s] User: %s\n", e.Timestamp.Format("15:04"), input)
		fmt.Fprintf(&b, "           E=%.2f, %s\n", e.E, e.State)
	}
	if start > 0 {
		fmt.Fprintf(&b, "  ... and %d more interactions\n", start)
	}

	return strings.TrimRight(b.String(), "\n")
}
