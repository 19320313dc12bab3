package storage

import (
	"context"

	"suiswap/internal/model"
)

// Storage defines a sink for event records.
type Storage interface {
	PutEventBatch(ctx context.Context, events []model.EventRecord) error
}
