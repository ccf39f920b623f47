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

package wire_test

import (
	"testing"

	"go.wiregen.dev/wiregen/internal/testutil"
	"go.wiregen.dev/wiregen/wire"
)

func expectParseReason(t *testing.T, want string, n int) {
	t.Helper()
	if n >= 0 {
		t.Fatalf("expected a negative byte count, got %d", n)
	}
	testutil.ExpectEq(t, want, wire.ParseError(0, n).Reason())
}

func TestConsumeVarintErrors(t *testing.T) {
	t.Parallel()

	_, n := wire.ConsumeVarint(nil)
	expectParseReason(t, "truncated input", n)

	_, n = wire.ConsumeVarint([]uint8{0x80})
	expectParseReason(t, "truncated input", n)

	_, n = wire.ConsumeVarint([]uint8{
		0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00,
	})
	expectParseReason(t, "invalid varint", n)

	// The tenth byte may only contribute the 64th value bit.
	_, n = wire.ConsumeVarint([]uint8{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F,
	})
	expectParseReason(t, "invalid varint", n)
}

func TestConsumeTagErrors(t *testing.T) {
	t.Parallel()

	_, _, n := wire.ConsumeTag([]uint8{0x00})
	expectParseReason(t, "invalid field number", n)

	_, _, n = wire.ConsumeTag([]uint8{0x80, 0x80, 0x80, 0x80, 0x10})
	expectParseReason(t, "invalid field number", n)

	groupTags := [][]uint8{
		{0x0B}, // field 1, start group
		{0x0C}, // field 1, end group
		{0x0E},
		{0x0F},
	}
	for _, tag := range groupTags {
		_, _, n = wire.ConsumeTag(tag)
		expectParseReason(t, "invalid wire type", n)
	}

	_, _, n = wire.ConsumeTag([]uint8{0x80})
	expectParseReason(t, "truncated input", n)
}

func TestConsumeBytesErrors(t *testing.T) {
	t.Parallel()

	_, n := wire.ConsumeBytes(nil)
	expectParseReason(t, "truncated input", n)

	_, n = wire.ConsumeBytes([]uint8{0x05, 0x01, 0x02})
	expectParseReason(t, "truncated input", n)
}

func TestConsumeStringUTF8(t *testing.T) {
	t.Parallel()

	_, n := wire.ConsumeString([]uint8{0x01, 0xFF})
	expectParseReason(t, "invalid UTF-8 in string", n)

	text, n := wire.ConsumeString([]uint8{0x02, 0xC3, 0xA9})
	testutil.ExpectEq(t, "é", text)
	testutil.ExpectEq(t, 3, n)
}

func TestConsumeFixedErrors(t *testing.T) {
	t.Parallel()

	_, n := wire.ConsumeFixed32([]uint8{0x01, 0x02, 0x03})
	expectParseReason(t, "truncated input", n)

	_, n = wire.ConsumeFixed64([]uint8{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
	expectParseReason(t, "truncated input", n)
}

func TestSkipValue(t *testing.T) {
	t.Parallel()

	testutil.ExpectEq(t, 2, wire.SkipValue([]uint8{0x96, 0x01}, wire.VarintType))
	testutil.ExpectEq(t, 8, wire.SkipValue(make([]uint8, 8), wire.Fixed64Type))
	testutil.ExpectEq(t, 4, wire.SkipValue(make([]uint8, 4), wire.Fixed32Type))
	testutil.ExpectEq(t, 3, wire.SkipValue([]uint8{0x02, 0xAA, 0xBB}, wire.BytesType))

	expectParseReason(t, "truncated input",
		wire.SkipValue(make([]uint8, 7), wire.Fixed64Type))
	expectParseReason(t, "truncated input",
		wire.SkipValue([]uint8{0x80}, wire.VarintType))
	expectParseReason(t, "invalid wire type",
		wire.SkipValue([]uint8{0x00}, wire.StartGroupType))
	expectParseReason(t, "invalid wire type",
		wire.SkipValue([]uint8{0x00}, wire.EndGroupType))
}

func TestConsumeUnknown(t *testing.T) {
	t.Parallel()

	// Value bytes only; the tag was already consumed by the caller.
	raw, n := wire.ConsumeUnknown([]uint8{0x96, 0x01, 0xAA}, 7, wire.VarintType)
	testutil.ExpectEq(t, 2, n)
	testutil.ExpectBytesEq(t, []uint8{0x38, 0x96, 0x01}, raw)

	raw, n = wire.ConsumeUnknown([]uint8{0x03, 0x01, 0x02, 0x03}, 2, wire.BytesType)
	testutil.ExpectEq(t, 4, n)
	testutil.ExpectBytesEq(t, []uint8{0x12, 0x03, 0x01, 0x02, 0x03}, raw)

	_, n = wire.ConsumeUnknown([]uint8{0x05, 0x01}, 2, wire.BytesType)
	expectParseReason(t, "truncated input", n)

	var unknown []uint8
	unknown = wire.AppendUnknown(unknown, []uint8{0x38, 0x96, 0x01})
	unknown = wire.AppendUnknown(unknown, []uint8{0x12, 0x00})
	testutil.ExpectBytesEq(t, []uint8{0x38, 0x96, 0x01, 0x12, 0x00}, unknown)
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	_, n := wire.ConsumeVarint(nil)
	err := wire.ParseError(42, n)
	testutil.ExpectEq(t, 42, err.Offset())
	testutil.ExpectEq(t, "truncated input", err.Reason())
	testutil.ExpectEq(t, "wire: truncated input at offset 42", err.Error())
}
