package treesync

import (
	"log/slog"
	"sync"
	"time"
)

const DefaultQuietWindow = 100 * time.Millisecond

// ChangeCoalescer merges bursts of change batches into one aggregate and
// delivers it after a quiet window with no further Schedule calls.
// Watchers report a flood of events for a single logical operation (a
// large write, a directory move), so the tree refreshes once per burst
// instead of once per event.
type ChangeCoalescer struct {
	mu       sync.Mutex
	quiet    time.Duration
	fire     func(ChangeBatch)
	timer    *time.Timer
	pending  []RawChangeRecord
	disposed bool
	inFlight sync.WaitGroup
}

// NewChangeCoalescer creates a coalescer that invokes fire with the
// aggregated batch once per quiet period.
func NewChangeCoalescer(quiet time.Duration, fire func(ChangeBatch)) *ChangeCoalescer {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &ChangeCoalescer{quiet: quiet, fire: fire}
}

// Schedule appends the piece's records to the pending aggregate and
// re-arms the quiet window. Never blocks.
func (c *ChangeCoalescer) Schedule(piece ChangeBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}

	c.pending = append(c.pending, piece.Records()...)

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, c.flush)
}

// Dispose discards any pending aggregate and prevents further firings.
// It waits for a firing already in progress, so once Dispose returns the
// callback will never run again. Must not be called from the callback.
func (c *ChangeCoalescer) Dispose() {
	c.mu.Lock()
	c.disposed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.mu.Unlock()

	c.inFlight.Wait()
}

func (c *ChangeCoalescer) flush() {
	c.mu.Lock()
	if c.disposed || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	batch := NewChangeBatch(c.pending)
	c.pending = nil
	c.timer = nil
	c.inFlight.Add(1)
	c.mu.Unlock()
	defer c.inFlight.Done()

	slog.Debug("coalescer fire", "records", len(batch.Records()))
	c.fire(batch)
}
