package events

import (
	"encoding/json"
	"time"

	"suiswap/internal/model"
	"suiswap/internal/sui"
)

// EventID identifies an event within a transaction.
type EventID struct {
	TxDigest string     `json:"txDigest"`
	EventSeq sui.Uint64 `json:"eventSeq"`
}

// Event is a chain event as delivered by the subscription.
type Event struct {
	ID                EventID         `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson"`
	BCS               string          `json:"bcs"`
	TimestampMs       sui.Uint64      `json:"timestampMs"`
}

// Record converts the event into its storage form.
func (e Event) Record(receivedAt time.Time) model.EventRecord {
	return model.EventRecord{
		TxDigest:    e.ID.TxDigest,
		EventSeq:    uint64(e.ID.EventSeq),
		PackageID:   e.PackageID,
		Module:      e.TransactionModule,
		Sender:      e.Sender,
		EventType:   e.Type,
		TimestampMs: uint64(e.TimestampMs),
		ParsedJSON:  e.ParsedJSON,
		BCS:         e.BCS,
		ReceivedAt:  receivedAt.UTC().Format(time.RFC3339),
	}
}
