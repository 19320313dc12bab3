package pool

import (
	"encoding/json"
	"fmt"

	"suiswap/internal/model"
	"suiswap/internal/sui"
)

type supplyFields struct {
	Value sui.Uint64 `json:"value"`
}

type treasuryFields struct {
	TotalSupply struct {
		Fields supplyFields `json:"fields"`
	} `json:"total_supply"`
}

type poolFields struct {
	SuiReserve  sui.Uint64 `json:"sui_reserve"`
	UsdcReserve sui.Uint64 `json:"usdc_reserve"`
	LPTreasury  struct {
		Fields treasuryFields `json:"fields"`
	} `json:"lp_treasury"`
}

// parseSnapshot reads reserves and LP supply out of the pool object's Move content.
func parseSnapshot(obj *sui.ObjectData) (model.PoolSnapshot, error) {
	if obj.Content == nil || obj.Content.DataType != "moveObject" {
		return model.PoolSnapshot{}, fmt.Errorf("pool %s has no move object content", obj.ObjectID)
	}
	var fields poolFields
	if err := json.Unmarshal(obj.Content.Fields, &fields); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("decode pool fields: %w", err)
	}
	return model.PoolSnapshot{
		PoolID:      obj.ObjectID,
		Version:     uint64(obj.Version),
		SuiReserve:  uint64(fields.SuiReserve),
		UsdcReserve: uint64(fields.UsdcReserve),
		LPSupply:    uint64(fields.LPTreasury.Fields.TotalSupply.Fields.Value),
	}, nil
}
