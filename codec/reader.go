// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import "encoding/binary"

// Reader borrows an immutable buffer and walks it with a cursor. It never
// copies the input; slices returned by ReadBytes/ReadString alias the
// underlying buffer's memory, so callers that need to retain them across
// buffer reuse must copy explicitly.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered by any Read* call, if any.
func (r *Reader) Err() error { return r.err }

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// require reports whether n more bytes are available, using subtraction
// so that a pathological huge n cannot overflow the comparison (spec.md
// §4.1: "the Reader's availability check uses subtraction to avoid
// integer overflow").
func (r *Reader) require(n int) bool {
	return n <= len(r.buf)-r.pos
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// ReadByte consumes and returns a single byte.
func (r *Reader) ReadByte() byte {
	if r.err != nil {
		return 0
	}
	if !r.require(1) {
		r.fail(ErrShortBuffer)
		return 0
	}
	b := r.buf[r.pos]
	r.pos++
	return b
}

// ReadBool consumes a 1-byte boolean.
func (r *Reader) ReadBool() bool {
	return r.ReadByte() != 0
}

// ReadRaw consumes and returns exactly n raw bytes.
func (r *Reader) ReadRaw(n int) []byte {
	if r.err != nil {
		return nil
	}
	if !r.require(n) {
		r.fail(ErrShortBuffer)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// ReadUint16 consumes a little-endian uint16.
func (r *Reader) ReadUint16() uint16 {
	b := r.ReadRaw(2)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadUint32 consumes a little-endian uint32.
func (r *Reader) ReadUint32() uint32 {
	b := r.ReadRaw(4)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadUint64 consumes a little-endian uint64.
func (r *Reader) ReadUint64() uint64 {
	b := r.ReadRaw(8)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadInt64 consumes a little-endian int64.
func (r *Reader) ReadInt64() int64 {
	return int64(r.ReadUint64())
}

// ReadVarInt consumes a LEB128 VarInt, enforcing the minimal-encoding and
// overflow rules from spec.md §4.1:
//   - more than 10 bytes is rejected (ErrVarIntOverflow);
//   - a 10th byte carrying any of bits 1-6 set would overflow a uint64
//     (ErrVarIntOverflow);
//   - a multi-byte encoding whose final byte is 0x00 is non-minimal
//     (ErrNonMinimalVarInt) since the same value fits in fewer bytes.
func (r *Reader) ReadVarInt() uint64 {
	if r.err != nil {
		return 0
	}
	var result uint64
	var shift uint
	for i := 0; i < 10; i++ {
		b := r.ReadByte()
		if r.err != nil {
			return 0
		}
		last := b&0x80 == 0
		payload := b & 0x7f

		if i == 9 {
			// The 10th byte may only contribute bit 63; bits 1-6 of its
			// payload would shift past the 64-bit range.
			if payload&0x7e != 0 {
				r.fail(ErrVarIntOverflow)
				return 0
			}
		}
		if last && payload == 0 && i > 0 {
			r.fail(ErrNonMinimalVarInt)
			return 0
		}
		result |= uint64(payload) << shift
		shift += 7
		if last {
			return result
		}
	}
	r.fail(ErrVarIntOverflow)
	return 0
}

// ReadBytes consumes a VarInt length prefix followed by that many bytes,
// rejecting a declared length beyond max.
func (r *Reader) ReadBytes(max int) []byte {
	n := r.readLength(max)
	if r.err != nil {
		return nil
	}
	return r.ReadRaw(n)
}

// ReadString consumes a VarInt length prefix followed by that many UTF-8
// bytes, rejecting a declared length beyond max.
func (r *Reader) ReadString(max int) string {
	b := r.ReadBytes(max)
	if r.err != nil {
		return ""
	}
	return string(b)
}

func (r *Reader) readLength(max int) int {
	n := r.ReadVarInt()
	if r.err != nil {
		return 0
	}
	if n > uint64(max) {
		r.fail(ErrOversizeLengthPrefix)
		return 0
	}
	return int(n)
}
