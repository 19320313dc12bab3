package pool

import (
	"fmt"
	"strings"
)

// Move module and entry points of the on-chain pool.
const (
	moduleName = "pool"

	fnGetFees         = "get_fees"
	fnUsdcOutput      = "get_usdc_output_amount"
	fnSuiOutput       = "get_sui_output_amount"
	fnLPForAmounts    = "calculate_lp_tokens_for_amounts"
	fnSwapSuiToUsdc   = "swap_sui_to_usdc"
	fnSwapUsdcToSui   = "swap_usdc_to_sui"
	fnAddLiquidity    = "add_liquidity"
	fnRemoveLiquidity = "remove_liquidity"
	fnCollectFees     = "collect_fees"
)

// SuiCoinType is the native coin type.
const SuiCoinType = "0x2::sui::SUI"

// Direction selects which token is paid into a swap.
type Direction string

const (
	SuiToUsdc Direction = "sui-to-usdc"
	UsdcToSui Direction = "usdc-to-sui"
)

// ParseDirection accepts the canonical names plus the short forms "sui" and "usdc"
// naming the pay token.
func ParseDirection(input string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case string(SuiToUsdc), "sui":
		return SuiToUsdc, nil
	case string(UsdcToSui), "usdc":
		return UsdcToSui, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrValidation, input)
	}
}

func (d Direction) quoteFunction() string {
	if d == SuiToUsdc {
		return fnUsdcOutput
	}
	return fnSuiOutput
}

func (d Direction) swapFunction() string {
	if d == SuiToUsdc {
		return fnSwapSuiToUsdc
	}
	return fnSwapUsdcToSui
}

// minOutName is the Move parameter name of the swap's minimum-out argument.
func (d Direction) minOutName() string {
	if d == SuiToUsdc {
		return "min_usdc_out"
	}
	return "min_sui_out"
}
