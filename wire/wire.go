// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Package wire implements the binary wire format shared by all generated
// codecs: tag/varint/zigzag/fixed primitives on the encode side, and
// protowire-style consume functions on the decode side.
//
// Append functions never fail. Consume functions return the decoded value
// and the number of bytes read; a negative count encodes the failure, and
// ParseError converts it into a *DecodeError.
package wire

import (
	"encoding/binary"
	"math/bits"
)

// Type is the 3-bit wire type carried in the low bits of a field tag.
type Type int8

const (
	VarintType     Type = 0
	Fixed64Type    Type = 1
	BytesType      Type = 2
	StartGroupType Type = 3
	EndGroupType   Type = 4
	Fixed32Type    Type = 5
)

// maxFieldNumber is the largest field number representable in a tag.
const maxFieldNumber = 1<<29 - 1

// Message is implemented by every generated message struct.
type Message interface {
	AppendWire(b []uint8) []uint8
	UnmarshalWire(b []uint8) error
}

// Marshal encodes a message into a fresh buffer. Encoding cannot fail.
func Marshal(m Message) []uint8 {
	return m.AppendWire(nil)
}

// AppendVarint appends v to b as a base-128 varint.
func AppendVarint(b []uint8, v uint64) []uint8 {
	for v >= 0x80 {
		b = append(b, uint8(v)|0x80)
		v >>= 7
	}
	return append(b, uint8(v))
}

// AppendTag appends the tag of a field with the given number and wire type.
func AppendTag(b []uint8, num int32, typ Type) []uint8 {
	return AppendVarint(b, uint64(num)<<3|uint64(typ))
}

// AppendZigzag32 appends v as a zigzag-encoded varint, folding the sign
// into the low bit so small negative values stay short on the wire.
func AppendZigzag32(b []uint8, v int32) []uint8 {
	return AppendVarint(b, uint64(uint32(v)<<1^uint32(v>>31)))
}

// AppendZigzag64 appends v as a zigzag-encoded varint.
func AppendZigzag64(b []uint8, v int64) []uint8 {
	return AppendVarint(b, uint64(v)<<1^uint64(v>>63))
}

// AppendFixed32 appends v as four little-endian bytes.
func AppendFixed32(b []uint8, v uint32) []uint8 {
	return binary.LittleEndian.AppendUint32(b, v)
}

// AppendFixed64 appends v as eight little-endian bytes.
func AppendFixed64(b []uint8, v uint64) []uint8 {
	return binary.LittleEndian.AppendUint64(b, v)
}

// AppendBytes appends v as a length-delimited record.
func AppendBytes(b []uint8, v []uint8) []uint8 {
	return append(AppendVarint(b, uint64(len(v))), v...)
}

// AppendString appends v as a length-delimited record.
func AppendString(b []uint8, v string) []uint8 {
	return append(AppendVarint(b, uint64(len(v))), v...)
}

// AppendUnknown appends previously captured unknown-field bytes verbatim.
func AppendUnknown(b []uint8, raw []uint8) []uint8 {
	return append(b, raw...)
}

// DecodeZigzag32 reverses zigzag encoding for a 32-bit value. Varints
// longer than 32 bits are truncated before decoding.
func DecodeZigzag32(v uint64) int32 {
	u := uint32(v)
	return int32(u>>1) ^ -int32(u&1)
}

// DecodeZigzag64 reverses zigzag encoding for a 64-bit value.
func DecodeZigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// SizeVarint returns the encoded size of v in bytes.
func SizeVarint(v uint64) int {
	return (bits.Len64(v|1) + 6) / 7
}

// SizeTag returns the encoded size of a field tag in bytes.
func SizeTag(num int32) int {
	return SizeVarint(uint64(num) << 3)
}
