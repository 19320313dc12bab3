package sui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Uint64 decodes u64 values that the RPC renders either as JSON strings or numbers.
type Uint64 uint64

func (u *Uint64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse u64: %w", err)
	}
	*u = Uint64(v)
	return nil
}

func (u Uint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

// ObjectDataOptions selects which parts of an object sui_getObject returns.
type ObjectDataOptions struct {
	ShowType    bool `json:"showType,omitempty"`
	ShowOwner   bool `json:"showOwner,omitempty"`
	ShowContent bool `json:"showContent,omitempty"`
}

// ObjectResponse is the sui_getObject result.
type ObjectResponse struct {
	Data  *ObjectData     `json:"data"`
	Error json.RawMessage `json:"error,omitempty"`
}

// ObjectData describes one on-chain object.
type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  Uint64         `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Owner    *ObjectOwner   `json:"owner,omitempty"`
	Content  *ObjectContent `json:"content,omitempty"`
}

// ObjectOwner covers the owner shapes this client cares about.
type ObjectOwner struct {
	AddressOwner string       `json:"AddressOwner,omitempty"`
	ObjectOwner  string       `json:"ObjectOwner,omitempty"`
	Shared       *SharedOwner `json:"Shared,omitempty"`
}

type SharedOwner struct {
	InitialSharedVersion Uint64 `json:"initial_shared_version"`
}

// ObjectContent is the parsed Move content of an object.
type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// Coin is one owned coin object from suix_getCoins.
type Coin struct {
	CoinType     string `json:"coinType"`
	CoinObjectID string `json:"coinObjectId"`
	Version      Uint64 `json:"version"`
	Digest       string `json:"digest"`
	Balance      Uint64 `json:"balance"`
}

// CoinPage is one page of suix_getCoins.
type CoinPage struct {
	Data        []Coin  `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// DevInspectResults is the sui_devInspectTransactionBlock result.
type DevInspectResults struct {
	Results []ExecutionResult `json:"results"`
	Error   string            `json:"error,omitempty"`
}

// ExecutionResult holds the outputs of one command.
type ExecutionResult struct {
	ReturnValues []ReturnValue `json:"returnValues"`
}

// ReturnValue is a BCS-encoded return value and its Move type, rendered by
// the RPC as [[b0, b1, ...], "u64"].
type ReturnValue struct {
	Bytes []byte
	Type  string
}

func (r *ReturnValue) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("return value: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("return value: expected 2 elements, got %d", len(pair))
	}
	var ints []uint16
	if err := json.Unmarshal(pair[0], &ints); err != nil {
		return fmt.Errorf("return value bytes: %w", err)
	}
	raw := make([]byte, len(ints))
	for i, v := range ints {
		if v > 0xff {
			return fmt.Errorf("return value byte %d out of range: %d", i, v)
		}
		raw[i] = uint8(v)
	}
	var typ string
	if err := json.Unmarshal(pair[1], &typ); err != nil {
		return fmt.Errorf("return value type: %w", err)
	}
	r.Bytes = raw
	r.Type = typ
	return nil
}

// TransactionBlockResponseOptions selects what sui_executeTransactionBlock returns.
type TransactionBlockResponseOptions struct {
	ShowEffects bool `json:"showEffects,omitempty"`
	ShowEvents  bool `json:"showEvents,omitempty"`
}

// TransactionBlockResponse is the sui_executeTransactionBlock result.
type TransactionBlockResponse struct {
	Digest  string              `json:"digest"`
	Effects *TransactionEffects `json:"effects,omitempty"`
}

type TransactionEffects struct {
	Status  ExecutionStatus `json:"status"`
	GasUsed *GasCostSummary `json:"gasUsed,omitempty"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type GasCostSummary struct {
	ComputationCost Uint64 `json:"computationCost"`
	StorageCost     Uint64 `json:"storageCost"`
	StorageRebate   Uint64 `json:"storageRebate"`
}

// Succeeded reports whether the effects carry a success status.
func (r *TransactionBlockResponse) Succeeded() bool {
	return r != nil && r.Effects != nil && r.Effects.Status.Status == "success"
}
