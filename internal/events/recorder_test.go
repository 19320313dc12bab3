package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suiswap/internal/model"
)

type memorySink struct {
	mu      sync.Mutex
	batches [][]model.EventRecord
	fail    bool
}

func (m *memorySink) PutEventBatch(ctx context.Context, events []model.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("sink down")
	}
	m.batches = append(m.batches, append([]model.EventRecord(nil), events...))
	return nil
}

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func testEvent(digest string) Event {
	return Event{ID: EventID{TxDigest: digest, EventSeq: 0}, Type: "0x1::pool::SwapEvent", TimestampMs: 1000}
}

func TestRecorderFlushesFullBatches(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink, 2, nil)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	var last model.EventRecord
	rec.OnFlush = func(ctx context.Context, r model.EventRecord) { last = r }

	rec.Handle(testEvent("A"))
	assert.Equal(t, 0, sink.count())
	rec.Handle(testEvent("B"))
	require.Equal(t, 1, sink.count())
	assert.Equal(t, "B", last.TxDigest)
	assert.Equal(t, "2024-01-01T00:00:00Z", sink.batches[0][0].ReceivedAt)

	rec.Handle(testEvent("C"))
	require.NoError(t, rec.Flush(context.Background()))
	assert.Equal(t, 2, sink.count())
	assert.Equal(t, 3, rec.Stored())
}

func TestRecorderKeepsBatchOnFailure(t *testing.T) {
	sink := &memorySink{fail: true}
	rec := NewRecorder(sink, 10, nil)
	rec.Handle(testEvent("A"))

	require.Error(t, rec.Flush(context.Background()))
	sink.fail = false
	require.NoError(t, rec.Flush(context.Background()))
	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.batches[0], 1)
}

func TestRecorderRunFlushesOnStop(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink, 100, nil)
	rec.Handle(testEvent("A"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done
	assert.Equal(t, 1, sink.count())
}
