package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"suiswap/internal/model"
)

func TestJsonlStorageAppendsBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	store := NewJsonlStorage(path)
	ctx := context.Background()

	first := []model.EventRecord{
		{TxDigest: "A", EventSeq: 0, EventType: "0x1::pool::SwapEvent", ParsedJSON: json.RawMessage(`{"amount_in":"1"}`)},
		{TxDigest: "A", EventSeq: 1, EventType: "0x1::pool::SwapEvent"},
	}
	if err := store.PutEventBatch(ctx, first); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := store.PutEventBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := store.PutEventBatch(ctx, []model.EventRecord{{TxDigest: "B"}}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var digests []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.EventRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		digests = append(digests, rec.Key())
	}
	if len(digests) != 3 || digests[0] != "A:0" || digests[1] != "A:1" || digests[2] != "B:0" {
		t.Fatalf("unexpected records %v", digests)
	}
}

func TestJsonlStorageHonoursCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewJsonlStorage(path).PutEventBatch(ctx, []model.EventRecord{{TxDigest: "A"}}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not be created")
	}
}
