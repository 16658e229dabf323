// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package codec implements Basalt's deterministic binary wire/on-disk
// format: little-endian fixed-width integers, LEB128 VarInts with a
// minimal-encoding requirement, and bounded length-prefixed byte strings.
//
// Writer and Reader follow the same behavior as the rest of this codebase's
// encode/decode pairs: methods do not return an error on every call, they
// simply stop doing work once the first error is hit, so callers can chain
// several writes/reads and check the error once at the end with Err().
package codec

import "encoding/binary"

const (
	// MaxBytesLength is the largest length-prefixed byte string the
	// decoder will accept.
	MaxBytesLength = 16 * 1024 * 1024
	// MaxStringLength is the largest length-prefixed string the decoder
	// will accept.
	MaxStringLength = 4096
)

// Writer owns a growable byte buffer and appends to it sequentially.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns a Writer with the given initial capacity hint.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

// Err returns the first error encountered by any Write* call, if any.
func (w *Writer) Err() error { return w.err }

// Bytes returns the accumulated buffer. It is only meaningful when Err()
// is nil.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b)
}

// WriteBool appends a 1-byte boolean.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// WriteRaw appends raw bytes with no length prefix.
func (w *Writer) WriteRaw(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b...)
}

// WriteUint16 appends a little-endian uint16.
func (w *Writer) WriteUint16(n uint16) {
	if w.err != nil {
		return
	}
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], n)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(n uint32) {
	if w.err != nil {
		return
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], n)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteUint64 appends a little-endian uint64.
func (w *Writer) WriteUint64(n uint64) {
	if w.err != nil {
		return
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], n)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteInt64 appends a little-endian int64 (reinterpreted bit pattern,
// used for Unix timestamps which may be negative before the epoch).
func (w *Writer) WriteInt64(n int64) {
	w.WriteUint64(uint64(n))
}

// WriteVarInt appends n as a minimally-encoded LEB128 VarInt.
func (w *Writer) WriteVarInt(n uint64) {
	if w.err != nil {
		return
	}
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

// WriteBytes appends a VarInt length prefix followed by the bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteVarInt(uint64(len(b)))
	w.WriteRaw(b)
}

// WriteString appends a VarInt length prefix followed by the UTF-8 bytes
// of s.
func (w *Writer) WriteString(s string) {
	w.WriteVarInt(uint64(len(s)))
	w.WriteRaw([]byte(s))
}
