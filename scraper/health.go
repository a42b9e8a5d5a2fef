package scraper

import (
	"math"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Tab retirement thresholds.
const (
	retireErrScore = 3.0
	retireUses     = 50
	retireAge      = 50 * time.Minute
)

// tabHealth scores a pooled tab across sessions. A clean session lowers the
// error score by 0.5 (min 0); a session with failures raises it by 1.
type tabHealth struct {
	errScore float64
	useCount int
	created  time.Time
}

func (h *tabHealth) record(ok bool) {
	h.useCount++
	if ok {
		h.errScore = math.Max(0, h.errScore-0.5)
	} else {
		h.errScore += 1.0
	}
}

func (h *tabHealth) shouldRetire(now time.Time) bool {
	return h.errScore >= retireErrScore ||
		h.useCount >= retireUses ||
		now.Sub(h.created) >= retireAge
}

// healthBook tracks every pooled tab by target ID.
type healthBook struct {
	mu   sync.Mutex
	tabs map[proto.TargetTargetID]*tabHealth
	now  func() time.Time
}

func newHealthBook() *healthBook {
	return &healthBook{tabs: make(map[proto.TargetTargetID]*tabHealth), now: time.Now}
}

// finish records the outcome of one session on tab id and reports whether
// the tab should be closed instead of returned to the pool. Retired tabs
// are forgotten.
func (b *healthBook) finish(id proto.TargetTargetID, ok bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, exists := b.tabs[id]
	if !exists {
		h = &tabHealth{created: b.now()}
		b.tabs[id] = h
	}
	h.record(ok)
	if h.shouldRetire(b.now()) {
		delete(b.tabs, id)
		return true
	}
	return false
}

func (b *healthBook) forget(id proto.TargetTargetID) {
	b.mu.Lock()
	delete(b.tabs, id)
	b.mu.Unlock()
}
