// Package bcs implements the subset of Binary Canonical Serialization needed
// to build Sui programmable transactions.
package bcs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encoder appends BCS-encoded values to an internal buffer.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// WriteULEB128 writes an unsigned LEB128 integer, used for lengths and enum tags.
func (e *Encoder) WriteULEB128(v uint64) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// WriteVariant writes an enum variant index.
func (e *Encoder) WriteVariant(index uint32) {
	e.WriteULEB128(uint64(index))
}

// WriteLen writes a sequence length prefix.
func (e *Encoder) WriteLen(n int) {
	e.WriteULEB128(uint64(n))
}

func (e *Encoder) WriteU8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

// WriteBytes writes a length-prefixed byte vector.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteLen(len(b))
	e.buf.Write(b)
}

// WriteFixed writes bytes without a length prefix (fixed-size arrays).
func (e *Encoder) WriteFixed(b []byte) {
	e.buf.Write(b)
}

func (e *Encoder) WriteString(s string) {
	e.WriteBytes([]byte(s))
}

// U64 returns the BCS encoding of a single u64.
func U64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// DecodeU64 reads a little-endian u64 from the first 8 bytes of b.
func DecodeU64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("u64 needs 8 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint64(b[:8]), nil
}
