package amount

import (
	"math"

	"github.com/holiman/uint256"
)

const (
	// SlippageBps is the fixed 0.5% tolerance applied to every minimum-out bound.
	SlippageBps = 50

	bpsDenominator = 10_000
)

// MinOut returns floor(expected * (1 - 0.005)).
func MinOut(expected uint64) uint64 {
	v := uint256.NewInt(expected)
	v.Mul(v, uint256.NewInt(bpsDenominator-SlippageBps))
	v.Div(v, uint256.NewInt(bpsDenominator))
	return v.Uint64()
}

// ProRata returns share * reserve / supply, the payout a share of the LP
// supply is entitled to. A zero supply yields zero.
func ProRata(share, reserve, supply uint64) uint64 {
	if supply == 0 {
		return 0
	}
	v := uint256.NewInt(share)
	v.Mul(v, uint256.NewInt(reserve))
	v.Div(v, uint256.NewInt(supply))
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}
