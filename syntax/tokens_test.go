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

package syntax_test

import (
	"testing"

	"go.wiregen.dev/wiregen/internal/testutil"
	"go.wiregen.dev/wiregen/syntax"
)

type strToken struct {
	kind    string
	content string
}

func lex(t *testing.T, src string) []strToken {
	t.Helper()
	t.Logf("source: %q", src)

	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	var got []strToken
	for {
		var token syntax.Token
		testutil.AssertNoError(t, tokens.Next(&token))
		if token.Kind == syntax.T_EOF {
			break
		}
		got = append(got, strToken{
			kind:    token.Kind.String(),
			content: src[:token.Len],
		})
		src = src[token.Len:]
	}
	return got
}

func lexErr(t *testing.T, src string) *syntax.Error {
	t.Helper()
	t.Logf("source: %q", src)

	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	for {
		var token syntax.Token
		err = tokens.Next(&token)
		if err != nil || token.Kind == syntax.T_EOF {
			break
		}
	}
	testutil.AssertError(t, err)
	return err.(*syntax.Error)
}

func TestSigils(t *testing.T) {
	t.Parallel()

	got := lex(t, ";,.={}()[]<>")
	want := []strToken{
		{"SEMI", ";"},
		{"COMMA", ","},
		{"DOT", "."},
		{"EQ", "="},
		{"OPEN_CURL", "{"},
		{"CLOSE_CURL", "}"},
		{"OPEN_PAREN", "("},
		{"CLOSE_PAREN", ")"},
		{"OPEN_SQUARE", "["},
		{"CLOSE_SQUARE", "]"},
		{"OPEN_ANGLE", "<"},
		{"CLOSE_ANGLE", ">"},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestSpaceAndNewlines(t *testing.T) {
	t.Parallel()

	got := lex(t, " \t \n\r\n;")
	want := []strToken{
		{"SPACE", " \t "},
		{"NEWLINE", "\n"},
		{"NEWLINE", "\r\n"},
		{"SEMI", ";"},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestIdents(t *testing.T) {
	t.Parallel()

	got := lex(t, "foo _bar Baz9 qu_ux")
	want := []strToken{
		{"IDENT", "foo"},
		{"SPACE", " "},
		{"IDENT", "_bar"},
		{"SPACE", " "},
		{"IDENT", "Baz9"},
		{"SPACE", " "},
		{"IDENT", "qu_ux"},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestComments(t *testing.T) {
	t.Parallel()

	got := lex(t, "// line\n/* block */ //eof")
	want := []strToken{
		{"COMMENT", "// line"},
		{"NEWLINE", "\n"},
		{"COMMENT", "/* block */"},
		{"SPACE", " "},
		{"COMMENT", "//eof"},
	}
	testutil.ExpectSliceEq(t, want, got)

	got = lex(t, "/* multi\nline */;")
	want = []strToken{
		{"COMMENT", "/* multi\nline */"},
		{"SEMI", ";"},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestIntLits(t *testing.T) {
	t.Parallel()

	got := lex(t, "0 123 -5 0x1F 0X1f 0755 -0x10 -0 00")
	want := []strToken{
		{"INT_LIT", "0"},
		{"SPACE", " "},
		{"INT_LIT", "123"},
		{"SPACE", " "},
		{"INT_LIT", "-5"},
		{"SPACE", " "},
		{"HEX_INT_LIT", "0x1F"},
		{"SPACE", " "},
		{"HEX_INT_LIT", "0X1f"},
		{"SPACE", " "},
		{"OCT_INT_LIT", "0755"},
		{"SPACE", " "},
		{"HEX_INT_LIT", "-0x10"},
		{"SPACE", " "},
		{"INT_LIT", "-0"},
		{"SPACE", " "},
		{"OCT_INT_LIT", "00"},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestIntLitBoundaries(t *testing.T) {
	t.Parallel()

	got := lex(t, "1;2=3]")
	want := []strToken{
		{"INT_LIT", "1"},
		{"SEMI", ";"},
		{"INT_LIT", "2"},
		{"EQ", "="},
		{"INT_LIT", "3"},
		{"CLOSE_SQUARE", "]"},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestStrLits(t *testing.T) {
	t.Parallel()

	got := lex(t, `"foo" 'bar' "a\"b" "\n" "日本"`)
	want := []strToken{
		{"STR_LIT", `"foo"`},
		{"SPACE", " "},
		{"STR_LIT", `'bar'`},
		{"SPACE", " "},
		{"STR_LIT", `"a\"b"`},
		{"SPACE", " "},
		{"STR_LIT", `"\n"`},
		{"SPACE", " "},
		{"STR_LIT", `"日本"`},
	}
	testutil.ExpectSliceEq(t, want, got)
}

func TestLexErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		code uint32
		span syntax.Span
	}{
		{"\x01", 1002, syntax.NewSpan(0, 1)},
		{"\r;", 1002, syntax.NewSpan(0, 1)},
		{"@", 1003, syntax.NewSpan(0, 1)},
		{"é", 1003, syntax.NewSpan(0, 2)},
		{"-", 1005, syntax.NewSpan(0, 1)},
		{"-a", 1005, syntax.NewSpan(0, 2)},
		{"09", 1005, syntax.NewSpan(0, 2)},
		{"0x", 1005, syntax.NewSpan(0, 2)},
		{"123abc", 1005, syntax.NewSpan(0, 6)},
		{"0xFG", 1005, syntax.NewSpan(0, 4)},
		{"1_000", 1005, syntax.NewSpan(0, 5)},
		{`"abc`, 1008, syntax.NewSpan(0, 4)},
		{"'abc", 1008, syntax.NewSpan(0, 4)},
		{"\"a\nb\"", 1009, syntax.NewSpan(2, 1)},
		{"\"a\r\nb\"", 1009, syntax.NewSpan(2, 2)},
		{"\"a\x01b\"", 1002, syntax.NewSpan(2, 1)},
		{"/* abc", 1011, syntax.NewSpan(0, 6)},
		{"/", 1012, syntax.NewSpan(0, 1)},
		{"/x", 1012, syntax.NewSpan(0, 1)},
	}
	for _, test := range tests {
		err := lexErr(t, test.src)
		testutil.ExpectEq(t, test.code, err.Code())
		testutil.ExpectEq(t, test.span, err.Span())
	}
}

func TestLexErrorOffsets(t *testing.T) {
	t.Parallel()

	err := lexErr(t, "message M { int32 x = 1x; }")
	testutil.ExpectEq(t, uint32(1005), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(22, 2), err.Span())
}

func TestInvalidUtf8(t *testing.T) {
	t.Parallel()

	_, err := syntax.NewTokens([]byte{'a', 0xFF, 'b'})
	testutil.AssertError(t, err)

	lexErr := err.(*syntax.Error)
	testutil.ExpectEq(t, uint32(1001), lexErr.Code())
	testutil.ExpectEq(t, syntax.NewSpan(1, 1), lexErr.Span())
}

func TestTokenKindString(t *testing.T) {
	t.Parallel()

	testutil.ExpectEq(t, "EOF", syntax.T_EOF.String())
	testutil.ExpectEq(t, "IDENT", syntax.T_IDENT.String())
	testutil.ExpectEq(t, "STR_LIT", syntax.T_STR_LIT.String())
	testutil.ExpectEq(t, "TokenKind(255)", syntax.TokenKind(255).String())
}
