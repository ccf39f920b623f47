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

package wire

import (
	"fmt"
	"unicode/utf8"
)

// Negative byte counts returned by the Consume functions.
const (
	_ = -iota
	errCodeTruncated
	errCodeOverflow
	errCodeFieldNumber
	errCodeWireType
	errCodeUTF8
)

// DecodeError reports malformed input. Decoding never panics and never
// returns a partial result alongside a DecodeError.
type DecodeError struct {
	offset int
	reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: %s at offset %d", e.reason, e.offset)
}

// Offset returns the byte offset at which decoding failed.
func (e *DecodeError) Offset() int {
	return e.offset
}

// Reason returns a short description of the failure.
func (e *DecodeError) Reason() string {
	return e.reason
}

// ParseError converts a negative byte count returned by a Consume function
// into a *DecodeError positioned at the caller's current offset.
func ParseError(offset, n int) *DecodeError {
	var reason string
	switch n {
	case errCodeTruncated:
		reason = "truncated input"
	case errCodeOverflow:
		reason = "invalid varint"
	case errCodeFieldNumber:
		reason = "invalid field number"
	case errCodeWireType:
		reason = "invalid wire type"
	case errCodeUTF8:
		reason = "invalid UTF-8 in string"
	default:
		reason = "malformed input"
	}
	return &DecodeError{offset: offset, reason: reason}
}

// ConsumeVarint decodes a base-128 varint from the start of b. Varints
// longer than ten bytes, or with the 65th value bit set, are invalid.
func ConsumeVarint(b []uint8) (uint64, int) {
	var v uint64
	for ii := 0; ii < len(b) && ii < 10; ii++ {
		c := b[ii]
		if ii == 9 && c > 0x01 {
			return 0, errCodeOverflow
		}
		v |= uint64(c&0x7F) << (7 * uint(ii))
		if c < 0x80 {
			return v, ii + 1
		}
	}
	return 0, errCodeTruncated
}

// ConsumeTag decodes a field tag from the start of b. Tags with field
// number zero or out of range fail, as do the proto2 group wire types and
// the two unassigned ones.
func ConsumeTag(b []uint8) (int32, Type, int) {
	v, n := ConsumeVarint(b)
	if n < 0 {
		return 0, 0, n
	}
	if v>>3 == 0 || v>>3 > maxFieldNumber {
		return 0, 0, errCodeFieldNumber
	}
	typ := Type(v & 0x07)
	switch typ {
	case VarintType, Fixed64Type, BytesType, Fixed32Type:
	default:
		return 0, 0, errCodeWireType
	}
	return int32(v >> 3), typ, n
}

// ConsumeFixed32 decodes four little-endian bytes from the start of b.
func ConsumeFixed32(b []uint8) (uint32, int) {
	if len(b) < 4 {
		return 0, errCodeTruncated
	}
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return v, 4
}

// ConsumeFixed64 decodes eight little-endian bytes from the start of b.
func ConsumeFixed64(b []uint8) (uint64, int) {
	if len(b) < 8 {
		return 0, errCodeTruncated
	}
	lo, _ := ConsumeFixed32(b)
	hi, _ := ConsumeFixed32(b[4:])
	return uint64(hi)<<32 | uint64(lo), 8
}

// ConsumeBytes decodes a length-delimited record from the start of b. The
// returned slice aliases b.
func ConsumeBytes(b []uint8) ([]uint8, int) {
	size, n := ConsumeVarint(b)
	if n < 0 {
		return nil, n
	}
	if size > uint64(len(b)-n) {
		return nil, errCodeTruncated
	}
	return b[n : n+int(size)], n + int(size)
}

// ConsumeString decodes a length-delimited record from the start of b and
// validates that it holds UTF-8 text.
func ConsumeString(b []uint8) (string, int) {
	v, n := ConsumeBytes(b)
	if n < 0 {
		return "", n
	}
	if !utf8.Valid(v) {
		return "", errCodeUTF8
	}
	return string(v), n
}

// SkipValue returns the size of the value of wire type typ at the start
// of b, without decoding it.
func SkipValue(b []uint8, typ Type) int {
	switch typ {
	case VarintType:
		_, n := ConsumeVarint(b)
		return n
	case Fixed64Type:
		if len(b) < 8 {
			return errCodeTruncated
		}
		return 8
	case BytesType:
		_, n := ConsumeBytes(b)
		return n
	case Fixed32Type:
		if len(b) < 4 {
			return errCodeTruncated
		}
		return 4
	}
	return errCodeWireType
}

// ConsumeUnknown captures a field whose number the decoder does not know,
// with b positioned just after the field's tag. It returns the verbatim
// tag and value bytes for later re-emission, and the size of the value.
func ConsumeUnknown(b []uint8, num int32, typ Type) ([]uint8, int) {
	n := SkipValue(b, typ)
	if n < 0 {
		return nil, n
	}
	return append(AppendTag(nil, num, typ), b[:n]...), n
}
