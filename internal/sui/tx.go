package sui

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"suiswap/internal/bcs"
)

// DigestLength is the byte length of object and transaction digests.
const DigestLength = 32

// ObjectRef identifies a specific version of an owned object.
type ObjectRef struct {
	ObjectID Address
	Version  uint64
	Digest   [DigestLength]byte
}

// CoinRef converts an RPC coin into an object reference.
func CoinRef(c Coin) (ObjectRef, error) {
	id, err := ParseAddress(c.CoinObjectID)
	if err != nil {
		return ObjectRef{}, err
	}
	digest, err := DecodeDigest(c.Digest)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("coin %s: %w", c.CoinObjectID, err)
	}
	return ObjectRef{ObjectID: id, Version: uint64(c.Version), Digest: digest}, nil
}

// DecodeDigest decodes a base58 object digest.
func DecodeDigest(s string) ([DigestLength]byte, error) {
	var out [DigestLength]byte
	raw := base58.Decode(s)
	if len(raw) != DigestLength {
		return out, fmt.Errorf("invalid digest %q", s)
	}
	copy(out[:], raw)
	return out, nil
}

func (r ObjectRef) encode(e *bcs.Encoder) {
	e.WriteFixed(r.ObjectID[:])
	e.WriteU64(r.Version)
	e.WriteBytes(r.Digest[:])
}

type argumentKind uint8

const (
	argGasCoin argumentKind = iota
	argInput
	argResult
	argNestedResult
)

// Argument references a value inside a programmable transaction.
type Argument struct {
	kind   argumentKind
	index  uint16
	nested uint16
}

// GasCoin refers to the coin paying for gas.
var GasCoin = Argument{kind: argGasCoin}

func (a Argument) encode(e *bcs.Encoder) {
	e.WriteVariant(uint32(a.kind))
	switch a.kind {
	case argInput, argResult:
		e.WriteU16(a.index)
	case argNestedResult:
		e.WriteU16(a.index)
		e.WriteU16(a.nested)
	}
}

type callArg struct {
	pure   []byte
	object *objectArg
}

type objectArg struct {
	owned                *ObjectRef
	id                   Address
	initialSharedVersion uint64
	mutable              bool
}

func (c callArg) encode(e *bcs.Encoder) {
	if c.object == nil {
		e.WriteVariant(0)
		e.WriteBytes(c.pure)
		return
	}
	e.WriteVariant(1)
	if c.object.owned != nil {
		e.WriteVariant(0)
		c.object.owned.encode(e)
		return
	}
	e.WriteVariant(1)
	e.WriteFixed(c.object.id[:])
	e.WriteU64(c.object.initialSharedVersion)
	e.WriteBool(c.object.mutable)
}

type commandKind uint8

const (
	cmdMoveCall commandKind = iota
	cmdTransferObjects
	cmdSplitCoins
	cmdMergeCoins
)

type command struct {
	kind     commandKind
	pkg      Address
	module   string
	function string
	target   Argument
	args     []Argument
}

func (c command) encode(e *bcs.Encoder) {
	e.WriteVariant(uint32(c.kind))
	switch c.kind {
	case cmdMoveCall:
		e.WriteFixed(c.pkg[:])
		e.WriteString(c.module)
		e.WriteString(c.function)
		e.WriteLen(0) // type arguments
		writeArgs(e, c.args)
	case cmdTransferObjects:
		writeArgs(e, c.args)
		c.target.encode(e)
	case cmdSplitCoins, cmdMergeCoins:
		c.target.encode(e)
		writeArgs(e, c.args)
	}
}

func writeArgs(e *bcs.Encoder, args []Argument) {
	e.WriteLen(len(args))
	for _, a := range args {
		a.encode(e)
	}
}

// GasData describes how a transaction pays for gas.
type GasData struct {
	Payment []ObjectRef
	Owner   Address
	Price   uint64
	Budget  uint64
}

// Transaction builds a programmable transaction block.
type Transaction struct {
	inputs   []callArg
	commands []command
	objects  map[Address]uint16
}

func NewTransaction() *Transaction {
	return &Transaction{objects: make(map[Address]uint16)}
}

func (t *Transaction) addInput(arg callArg) Argument {
	t.inputs = append(t.inputs, arg)
	return Argument{kind: argInput, index: uint16(len(t.inputs) - 1)}
}

// PureU64 adds a u64 pure input.
func (t *Transaction) PureU64(v uint64) Argument {
	return t.addInput(callArg{pure: bcs.U64(v)})
}

// SharedObject adds a shared object input. Repeated references to the same
// object reuse one input, which becomes mutable if any reference asks for it.
func (t *Transaction) SharedObject(id Address, initialSharedVersion uint64, mutable bool) Argument {
	if idx, ok := t.objects[id]; ok {
		if mutable {
			t.inputs[idx].object.mutable = true
		}
		return Argument{kind: argInput, index: idx}
	}
	arg := t.addInput(callArg{object: &objectArg{id: id, initialSharedVersion: initialSharedVersion, mutable: mutable}})
	t.objects[id] = arg.index
	return arg
}

// OwnedObject adds an owned object input.
func (t *Transaction) OwnedObject(ref ObjectRef) Argument {
	if idx, ok := t.objects[ref.ObjectID]; ok {
		return Argument{kind: argInput, index: idx}
	}
	r := ref
	arg := t.addInput(callArg{object: &objectArg{owned: &r}})
	t.objects[ref.ObjectID] = arg.index
	return arg
}

func (t *Transaction) addCommand(c command) uint16 {
	t.commands = append(t.commands, c)
	return uint16(len(t.commands) - 1)
}

// SplitCoins splits coin into one new coin per amount and returns them.
func (t *Transaction) SplitCoins(coin Argument, amounts ...Argument) []Argument {
	idx := t.addCommand(command{kind: cmdSplitCoins, target: coin, args: amounts})
	out := make([]Argument, len(amounts))
	for i := range amounts {
		out[i] = Argument{kind: argNestedResult, index: idx, nested: uint16(i)}
	}
	return out
}

// MergeCoins merges sources into dest.
func (t *Transaction) MergeCoins(dest Argument, sources ...Argument) {
	t.addCommand(command{kind: cmdMergeCoins, target: dest, args: sources})
}

// TransferObjects sends objects to a recipient address argument.
func (t *Transaction) TransferObjects(recipient Argument, objects ...Argument) {
	t.addCommand(command{kind: cmdTransferObjects, target: recipient, args: objects})
}

// PureAddress adds an address pure input.
func (t *Transaction) PureAddress(addr Address) Argument {
	return t.addInput(callArg{pure: append([]byte(nil), addr[:]...)})
}

// MoveCall appends a call to package::module::function and returns its result.
func (t *Transaction) MoveCall(pkg Address, module, function string, args ...Argument) Argument {
	idx := t.addCommand(command{kind: cmdMoveCall, pkg: pkg, module: module, function: function, args: args})
	return Argument{kind: argResult, index: idx}
}

// Kind returns the BCS-encoded TransactionKind, as accepted by dev-inspect.
func (t *Transaction) Kind() []byte {
	e := bcs.NewEncoder()
	t.encodeKind(e)
	return e.Bytes()
}

func (t *Transaction) encodeKind(e *bcs.Encoder) {
	e.WriteVariant(0) // ProgrammableTransaction
	e.WriteLen(len(t.inputs))
	for _, in := range t.inputs {
		in.encode(e)
	}
	e.WriteLen(len(t.commands))
	for _, c := range t.commands {
		c.encode(e)
	}
}

// Build returns the BCS-encoded TransactionData ready for signing.
func (t *Transaction) Build(sender Address, gas GasData) ([]byte, error) {
	if len(gas.Payment) == 0 {
		return nil, fmt.Errorf("no gas payment coins")
	}
	if gas.Budget == 0 {
		return nil, fmt.Errorf("gas budget must be positive")
	}

	e := bcs.NewEncoder()
	e.WriteVariant(0) // V1
	t.encodeKind(e)
	e.WriteFixed(sender[:])

	e.WriteLen(len(gas.Payment))
	for _, ref := range gas.Payment {
		ref.encode(e)
	}
	e.WriteFixed(gas.Owner[:])
	e.WriteU64(gas.Price)
	e.WriteU64(gas.Budget)

	e.WriteVariant(0) // no expiration
	return e.Bytes(), nil
}
