package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deliveries struct {
	mu  sync.Mutex
	got []string
}

func (d *deliveries) add(input, result string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, input+"="+result)
}

func (d *deliveries) list() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.got...)
}

func TestDebouncerCoalescesRapidInput(t *testing.T) {
	var runs atomic.Int32
	out := &deliveries{}
	d := NewDebouncer(20*time.Millisecond, func(ctx context.Context, input string) string {
		runs.Add(1)
		return "q" + input
	}, out.add)

	ctx := context.Background()
	for _, input := range []string{"1", "1.", "1.5"} {
		d.Update(ctx, input)
	}

	require.Eventually(t, func() bool { return len(out.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"1.5=q1.5"}, out.list())
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerDiscardsStaleResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	out := &deliveries{}
	d := NewDebouncer(5*time.Millisecond, func(ctx context.Context, input string) string {
		if input == "slow" {
			close(started)
			<-release
		}
		return "q" + input
	}, out.add)

	ctx := context.Background()
	d.Update(ctx, "slow")
	<-started
	d.Update(ctx, "fast")

	require.Eventually(t, func() bool { return len(out.list()) == 1 }, time.Second, 5*time.Millisecond)
	close(release)

	assert.Never(t, func() bool { return len(out.list()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, []string{"fast=qfast"}, out.list())
}

func TestDebouncerStop(t *testing.T) {
	out := &deliveries{}
	d := NewDebouncer(10*time.Millisecond, func(ctx context.Context, input string) string {
		return input
	}, out.add)

	d.Update(context.Background(), "1")
	d.Stop()
	d.Update(context.Background(), "2")

	assert.Never(t, func() bool { return len(out.list()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}
