package model

// Quote is a simulated swap output. Raw values are in smallest units.
type Quote struct {
	Direction string `json:"direction"`
	PayAmount string `json:"pay_amount"`
	RawIn     uint64 `json:"raw_in,string"`
	RawOut    uint64 `json:"raw_out,string"`
	Receive   string `json:"receive"`
	MinOut    uint64 `json:"min_out,string"`
}

// LPQuote is the simulated LP mint for a deposit.
type LPQuote struct {
	RawSui   uint64 `json:"raw_sui,string"`
	RawUsdc  uint64 `json:"raw_usdc,string"`
	Expected uint64 `json:"expected_lp,string"`
	MinOut   uint64 `json:"min_lp_out,string"`
}

// TxResult reports a submitted state-changing operation.
type TxResult struct {
	Operation string            `json:"operation"`
	Digest    string            `json:"digest"`
	Status    string            `json:"status"`
	Bounds    map[string]uint64 `json:"bounds,omitempty"`
}
