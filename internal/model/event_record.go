package model

import (
	"encoding/json"
	"strconv"
)

// EventRecord is the normalized representation of a chain event for storage.
type EventRecord struct {
	TxDigest    string          `json:"tx_digest"`
	EventSeq    uint64          `json:"event_seq"`
	PackageID   string          `json:"package_id"`
	Module      string          `json:"module"`
	Sender      string          `json:"sender"`
	EventType   string          `json:"event_type"`
	TimestampMs uint64          `json:"timestamp_ms"`
	ParsedJSON  json.RawMessage `json:"parsed_json,omitempty"`
	BCS         string          `json:"bcs,omitempty"`
	ReceivedAt  string          `json:"received_at"`
}

// Key identifies an event uniquely across the chain.
func (r EventRecord) Key() string {
	return r.TxDigest + ":" + strconv.FormatUint(r.EventSeq, 10)
}
