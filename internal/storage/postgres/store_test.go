package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"suiswap/internal/model"
)

// Runs against a real database when SUISWAP_TEST_PG_DSN is set.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("SUISWAP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SUISWAP_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	digest := "test-" + time.Now().UTC().Format("20060102150405.000000000")
	events := []model.EventRecord{
		{TxDigest: digest, EventSeq: 0, EventType: "0x1::pool::SwapEvent", ParsedJSON: json.RawMessage(`{"a":1}`), ReceivedAt: time.Now().UTC().Format(time.RFC3339)},
		{TxDigest: digest, EventSeq: 1, EventType: "0x1::pool::SwapEvent"},
	}
	if err := store.PutEventBatch(ctx, events); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Duplicates are ignored.
	if err := store.PutEventBatch(ctx, events); err != nil {
		t.Fatalf("re-insert: %v", err)
	}

	name := "test-" + digest
	if _, ok, err := store.LoadState(ctx, name); err != nil || ok {
		t.Fatalf("expected no state, ok=%v err=%v", ok, err)
	}
	if err := store.SaveState(ctx, name, 200); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveState(ctx, name, 100); err != nil {
		t.Fatalf("save older: %v", err)
	}
	ts, ok, err := store.LoadState(ctx, name)
	if err != nil || !ok || ts != 200 {
		t.Fatalf("unexpected state ts=%d ok=%v err=%v", ts, ok, err)
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
