// Package dedup suppresses QoS 1 redeliveries: a broker may hand the same
// payload to a subscriber more than once, and safety events must not be
// double-processed.
package dedup

import (
	"sync"
	"time"
)

// Deduper remembers recently seen ids for a TTL, with a soft cap on memory.
type Deduper struct {
	mu     sync.Mutex
	ttl    time.Duration
	max    int
	seenAt map[string]time.Time
}

// New creates a Deduper. Non-positive arguments fall back to sane defaults.
func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seenAt: make(map[string]time.Time, max)}
}

// ShouldProcess reports whether id has not been seen within the TTL, and
// records it. An empty id is always processed.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if at, ok := d.seenAt[id]; ok && now.Sub(at) < d.ttl {
		return false
	}
	d.seenAt[id] = now

	if len(d.seenAt) > d.max {
		d.evictLocked(now)
	}
	return true
}

// Len returns the number of tracked ids, expired entries included.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seenAt)
}

func (d *Deduper) evictLocked(now time.Time) {
	for id, at := range d.seenAt {
		if now.Sub(at) >= d.ttl {
			delete(d.seenAt, id)
		}
		if len(d.seenAt) <= d.max {
			return
		}
	}
}
