package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

const (
	privateKeyHRP = "suiprivkey"
	flagEd25519   = 0x00
)

// Signer produces serialized signatures for transaction bytes.
type Signer interface {
	Address() Address
	Sign(txBytes []byte) (string, error)
}

// Ed25519Signer signs with an ed25519 key.
type Ed25519Signer struct {
	key     ed25519.PrivateKey
	address Address
}

// NewEd25519Signer creates a signer from a 32-byte seed.
func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	return &Ed25519Signer{
		key:     key,
		address: DeriveAddress(key.Public().(ed25519.PublicKey)),
	}, nil
}

// ParsePrivateKey accepts a bech32 suiprivkey1... string, a base64 keystore
// entry (flag || seed), or a 0x-prefixed hex seed.
func ParsePrivateKey(input string) (*Ed25519Signer, error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return nil, fmt.Errorf("private key is empty")
	case strings.HasPrefix(input, privateKeyHRP+"1"):
		hrp, data, err := bech32.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		if hrp != privateKeyHRP {
			return nil, fmt.Errorf("unexpected private key prefix %q", hrp)
		}
		raw, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		return signerFromFlagged(raw)
	case strings.HasPrefix(input, "0x"):
		seed, err := hexutil.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		return NewEd25519Signer(seed)
	default:
		raw, err := base64.StdEncoding.DecodeString(input)
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		return signerFromFlagged(raw)
	}
}

func signerFromFlagged(raw []byte) (*Ed25519Signer, error) {
	if len(raw) != 1+ed25519.SeedSize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", 1+ed25519.SeedSize, len(raw))
	}
	if raw[0] != flagEd25519 {
		return nil, fmt.Errorf("unsupported key scheme flag %#x", raw[0])
	}
	return NewEd25519Signer(raw[1:])
}

// DeriveAddress returns blake2b256(flag || pubkey).
func DeriveAddress(pub ed25519.PublicKey) Address {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, flagEd25519)
	buf = append(buf, pub...)
	return Address(blake2b.Sum256(buf))
}

func (s *Ed25519Signer) Address() Address {
	return s.address
}

// PublicKey returns the raw public key.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Sign signs the intent digest of txBytes and returns flag || sig || pubkey in base64.
func (s *Ed25519Signer) Sign(txBytes []byte) (string, error) {
	digest := TransactionDigest(txBytes)
	sig := ed25519.Sign(s.key, digest[:])

	pub := s.PublicKey()
	out := make([]byte, 0, 1+len(sig)+len(pub))
	out = append(out, flagEd25519)
	out = append(out, sig...)
	out = append(out, pub...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// TransactionDigest is blake2b256 over the transaction-data intent prefix and the bytes.
func TransactionDigest(txBytes []byte) [32]byte {
	msg := make([]byte, 0, 3+len(txBytes))
	msg = append(msg, 0, 0, 0)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}
