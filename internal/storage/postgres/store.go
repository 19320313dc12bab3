package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"suiswap/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_events (
	tx_digest    TEXT NOT NULL,
	event_seq    BIGINT NOT NULL,
	package_id   TEXT NOT NULL,
	module       TEXT NOT NULL,
	sender       TEXT NOT NULL,
	event_type   TEXT NOT NULL,
	timestamp_ms BIGINT NOT NULL,
	parsed_json  JSONB,
	bcs          TEXT,
	received_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (tx_digest, event_seq)
);
CREATE INDEX IF NOT EXISTS pool_events_type_ts ON pool_events (event_type, timestamp_ms);
CREATE TABLE IF NOT EXISTS watch_state (
	name              TEXT PRIMARY KEY,
	last_timestamp_ms BIGINT NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for pool events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the event and state tables if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutEventBatch inserts events, skipping ones already stored.
func (s *Store) PutEventBatch(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		var parsed any
		if len(ev.ParsedJSON) > 0 {
			parsed = string(ev.ParsedJSON)
		}
		receivedAt, err := time.Parse(time.RFC3339, ev.ReceivedAt)
		if err != nil {
			receivedAt = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO pool_events (
				tx_digest, event_seq, package_id, module, sender, event_type,
				timestamp_ms, parsed_json, bcs, received_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
			ON CONFLICT (tx_digest, event_seq) DO NOTHING
		`,
			ev.TxDigest,
			int64(ev.EventSeq),
			ev.PackageID,
			ev.Module,
			ev.Sender,
			ev.EventType,
			int64(ev.TimestampMs),
			parsed,
			ev.BCS,
			receivedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last stored event timestamp for a watcher name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_timestamp_ms FROM watch_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(ts), true, nil
}

// SaveState upserts the last stored event timestamp for a watcher name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO watch_state (name, last_timestamp_ms, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_timestamp_ms = GREATEST(watch_state.last_timestamp_ms, EXCLUDED.last_timestamp_ms), updated_at = now()
	`, name, int64(ts))
	return err
}
