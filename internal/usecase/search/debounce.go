package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSuperseded = errors.New("search superseded by a newer query")

// Debouncer delays work per key; a newer Wait on the same key makes the
// pending one return ErrSuperseded.
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	gen   map[string]uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, gen: map[string]uint64{}}
}

// Wait blocks for the debounce delay and reports whether the caller is
// still the latest for key.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	d.mu.Lock()
	d.gen[key]++
	mine := d.gen[key]
	d.mu.Unlock()

	if d.delay > 0 {
		t := time.NewTimer(d.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			d.release(key, mine)
			return ctx.Err()
		case <-t.C:
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen[key] != mine {
		return ErrSuperseded
	}
	delete(d.gen, key)
	return nil
}

func (d *Debouncer) release(key string, mine uint64) {
	d.mu.Lock()
	if d.gen[key] == mine {
		delete(d.gen, key)
	}
	d.mu.Unlock()
}

// Pending is the number of keys with a waiting caller.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.gen)
}
