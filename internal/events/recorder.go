package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"suiswap/internal/model"
	"suiswap/internal/storage"
)

const flushTimeout = 10 * time.Second

// Recorder batches received events into a storage sink.
type Recorder struct {
	sink      storage.Storage
	batchSize int
	logger    *zap.Logger
	// OnFlush, when set, is called with the newest record of each stored batch.
	OnFlush func(ctx context.Context, last model.EventRecord)

	mu      sync.Mutex
	pending []model.EventRecord
	stored  int
	now     func() time.Time
}

func NewRecorder(sink storage.Storage, batchSize int, logger *zap.Logger) *Recorder {
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{sink: sink, batchSize: batchSize, logger: logger, now: time.Now}
}

// Handle queues an event and writes the batch once it is full. It has the
// signature of Options.OnEvent.
func (r *Recorder) Handle(ev Event) {
	r.mu.Lock()
	r.pending = append(r.pending, ev.Record(r.now()))
	full := len(r.pending) >= r.batchSize
	r.mu.Unlock()

	r.logger.Debug("event received",
		zap.String("type", ev.Type),
		zap.String("tx_digest", ev.ID.TxDigest),
		zap.Uint64("event_seq", uint64(ev.ID.EventSeq)),
	)
	if full {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := r.Flush(ctx); err != nil {
			r.logger.Error("store events failed", zap.Error(err))
		}
	}
}

// Flush writes any pending events. On failure the batch is kept for the next flush.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.sink.PutEventBatch(ctx, r.pending); err != nil {
		return err
	}
	last := r.pending[len(r.pending)-1]
	r.stored += len(r.pending)
	r.logger.Info("stored events", zap.Int("count", len(r.pending)), zap.Int("total", r.stored))
	r.pending = nil
	if r.OnFlush != nil {
		r.OnFlush(ctx, last)
	}
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := r.Flush(final); err != nil {
				r.logger.Error("final flush failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if err := r.Flush(ctx); err != nil {
				r.logger.Error("store events failed", zap.Error(err))
			}
		}
	}
}

// Stored returns the number of events written so far.
func (r *Recorder) Stored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored
}
