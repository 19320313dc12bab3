package sui

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func testSeed() []byte {
	return bytes.Repeat([]byte{0x42}, ed25519.SeedSize)
}

func TestParsePrivateKeyFormats(t *testing.T) {
	seed := testSeed()
	want, err := NewEd25519Signer(seed)
	require.NoError(t, err)

	flagged := append([]byte{flagEd25519}, seed...)
	conv, err := bech32.ConvertBits(flagged, 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode(privateKeyHRP, conv)
	require.NoError(t, err)

	inputs := map[string]string{
		"bech32": encoded,
		"base64": base64.StdEncoding.EncodeToString(flagged),
		"hex":    hexutil.Encode(seed),
	}
	for name, input := range inputs {
		signer, err := ParsePrivateKey(input)
		require.NoError(t, err, name)
		assert.Equal(t, want.Address(), signer.Address(), name)
	}
}

func TestParsePrivateKeyRejectsBadInput(t *testing.T) {
	for _, input := range []string{
		"",
		"0x1234",
		base64.StdEncoding.EncodeToString(append([]byte{0x01}, testSeed()...)),
		"not base64!",
	} {
		_, err := ParsePrivateKey(input)
		assert.Error(t, err, input)
	}
}

func TestDeriveAddress(t *testing.T) {
	signer, err := NewEd25519Signer(testSeed())
	require.NoError(t, err)

	pub := signer.PublicKey()
	want := blake2b.Sum256(append([]byte{0x00}, pub...))
	assert.Equal(t, Address(want), signer.Address())
}

func TestSignSerializesSchemeSignatureAndKey(t *testing.T) {
	signer, err := NewEd25519Signer(testSeed())
	require.NoError(t, err)

	txBytes := []byte{0x00, 0x01, 0x02}
	encoded, err := signer.Sign(txBytes)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Len(t, raw, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	assert.Equal(t, byte(flagEd25519), raw[0])

	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])
	assert.Equal(t, signer.PublicKey(), pub)

	digest := TransactionDigest(txBytes)
	assert.True(t, ed25519.Verify(pub, digest[:], sig))

	want := blake2b.Sum256([]byte{0, 0, 0, 0x00, 0x01, 0x02})
	assert.Equal(t, want, digest)
}
