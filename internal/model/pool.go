package model

// PoolSnapshot is a read of the pool object's reserves and LP supply in raw units.
type PoolSnapshot struct {
	PoolID      string `json:"pool_id"`
	Version     uint64 `json:"version"`
	SuiReserve  uint64 `json:"sui_reserve,string"`
	UsdcReserve uint64 `json:"usdc_reserve,string"`
	LPSupply    uint64 `json:"lp_supply,string"`
}

// PoolOverview is the display form of a snapshot.
type PoolOverview struct {
	PoolID      string `json:"pool_id"`
	SuiReserve  string `json:"sui_reserve"`
	UsdcReserve string `json:"usdc_reserve"`
	LPSupply    string `json:"lp_supply"`
}

// Fees are the accumulated protocol fees for both pool tokens.
type Fees struct {
	Sui         uint64 `json:"sui,string"`
	Usdc        uint64 `json:"usdc,string"`
	SuiDisplay  string `json:"sui_display"`
	UsdcDisplay string `json:"usdc_display"`
}

// Balances are an account's holdings of the pool tokens, summed over owned coins.
type Balances struct {
	Address     string `json:"address"`
	Sui         string `json:"sui"`
	Usdc        string `json:"usdc"`
	LP          string `json:"lp"`
	SuiDisplay  string `json:"sui_display"`
	UsdcDisplay string `json:"usdc_display"`
	LPDisplay   string `json:"lp_display"`
}
