package amount

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToRaw converts a human decimal string into an integer amount in the token's
// smallest unit. Fractional digits beyond decimals are truncated, never rounded.
// Empty or whitespace-only input yields zero.
func ToRaw(input string, decimals uint8) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return big.NewInt(0), nil
	}

	parts := strings.Split(input, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}

	integerPart := parts[0]
	fractionalPart := ""
	if len(parts) == 2 {
		fractionalPart = parts[1]
	}
	if integerPart == "" && fractionalPart == "" {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}
	if !isDigits(integerPart) || !isDigits(fractionalPart) {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}

	if len(fractionalPart) > int(decimals) {
		fractionalPart = fractionalPart[:decimals]
	} else {
		fractionalPart += strings.Repeat("0", int(decimals)-len(fractionalPart))
	}

	combined := strings.TrimLeft(integerPart+fractionalPart, "0")
	if combined == "" {
		return big.NewInt(0), nil
	}

	raw, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}
	return raw, nil
}

// ToRawUint64 is ToRaw for amounts that must fit a Move u64 argument.
func ToRawUint64(input string, decimals uint8) (uint64, error) {
	raw, err := ToRaw(input, decimals)
	if err != nil {
		return 0, err
	}
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount exceeds u64: %s", input)
	}
	return raw.Uint64(), nil
}

// FormatBalance renders a raw amount for display. At least two fractional
// digits are always shown, extra trailing zeros are trimmed and the integer
// part carries thousands separators.
func FormatBalance(value *big.Int, decimals uint8) string {
	if value == nil || value.Sign() == 0 {
		return "0.00"
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	integerPart, fractionalPart := new(big.Int).QuoRem(value, divisor, new(big.Int))

	fractional := fractionalPart.String()
	if len(fractional) < int(decimals) {
		fractional = strings.Repeat("0", int(decimals)-len(fractional)) + fractional
	}
	fractional = strings.TrimRight(fractional, "0")
	if len(fractional) < 2 {
		fractional += strings.Repeat("0", 2-len(fractional))
	}

	return GroupThousands(integerPart) + "." + fractional
}

// FormatUint64 is FormatBalance for on-chain u64 values.
func FormatUint64(value uint64, decimals uint8) string {
	return FormatBalance(new(big.Int).SetUint64(value), decimals)
}

// FormatFixed renders a raw amount with exactly places fractional digits,
// rounding half away from zero. Used for overview figures where a stable
// width matters more than precision.
func FormatFixed(value *big.Int, decimals uint8, places int32) string {
	if value == nil {
		value = big.NewInt(0)
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).StringFixed(places)
}

// GroupThousands formats an integer with comma separators.
func GroupThousands(value *big.Int) string {
	digits := new(big.Int).Abs(value).String()
	var b strings.Builder
	if value.Sign() < 0 {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func isDigits(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
