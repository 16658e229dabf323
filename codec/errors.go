// basalt: permissioned layer-1 node
// Copyright 2024 Basalt Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import "errors"

// ErrShortBuffer is returned when a read would run past the end of the
// underlying buffer.
var ErrShortBuffer = errors.New("codec: short buffer")

// ErrNonMinimalVarInt is returned when a decoded VarInt's final byte is
// 0x00, meaning the same value could have been encoded with fewer bytes.
var ErrNonMinimalVarInt = errors.New("codec: non-minimal varint encoding")

// ErrVarIntOverflow is returned when a VarInt would need more than 10
// bytes, or its 10th byte carries bits that would overflow a uint64.
var ErrVarIntOverflow = errors.New("codec: varint overflow")

// ErrOversizeLengthPrefix is returned when a length-prefixed field's
// declared length exceeds the caller-supplied maximum.
var ErrOversizeLengthPrefix = errors.New("codec: length prefix exceeds maximum")

// ErrBadMagic is returned when a fixed magic/tag byte does not match the
// expected value.
var ErrBadMagic = errors.New("codec: bad magic")
