package sui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the byte length of Sui addresses and object IDs.
const AddressLength = 32

// Address is a Sui account address or object ID.
type Address [AddressLength]byte

// ParseAddress accepts 0x-prefixed hex of up to 64 digits. Short forms such
// as 0x2 are left-padded with zeros.
func ParseAddress(input string) (Address, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "0x") && !strings.HasPrefix(input, "0X") {
		return Address{}, fmt.Errorf("invalid address %q: missing 0x prefix", input)
	}
	digits := input[2:]
	if digits == "" || len(digits) > AddressLength*2 {
		return Address{}, fmt.Errorf("invalid address %q: bad length", input)
	}
	digits = strings.Repeat("0", AddressLength*2-len(digits)) + digits

	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", input, err)
	}

	var addr Address
	copy(addr[:], data)
	return addr, nil
}

// MustParseAddress is ParseAddress for constants.
func MustParseAddress(input string) Address {
	addr, err := ParseAddress(input)
	if err != nil {
		panic(err)
	}
	return addr
}

// String returns the full-width lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
