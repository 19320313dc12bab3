package pool

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a quote is re-simulated.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs fn only after input has been quiet for delay, and delivers a
// result only if no newer input arrived while fn was running.
type Debouncer[T any] struct {
	delay   time.Duration
	fn      func(ctx context.Context, input string) T
	deliver func(input string, result T)

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool
}

func NewDebouncer[T any](delay time.Duration, fn func(ctx context.Context, input string) T, deliver func(input string, result T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn, deliver: deliver}
}

// Update records a new input, cancelling any pending run.
func (d *Debouncer[T]) Update(ctx context.Context, input string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		result := d.fn(ctx, input)

		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed || seq != d.seq {
			return
		}
		d.deliver(input, result)
	})
}

// Stop cancels the pending run and discards any in-flight result.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
}
