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

package syntax

import (
	"fmt"
	"unicode/utf8"
)

type Error struct {
	code    uint32
	message string
	span    Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() Span {
	return err.span
}

// Position is a 1-based line and column pair within a source file.
type Position struct {
	Line   uint32
	Column uint32
}

// PositionOf converts the start of a span into a line and column within src.
// Columns count bytes, not display width.
func PositionOf(src []byte, span Span) Position {
	pos := Position{Line: 1, Column: 1}
	end := int(span.start)
	if end > len(src) {
		end = len(src)
	}
	for _, c := range src[:end] {
		if c == '\n' {
			pos.Line += 1
			pos.Column = 1
		} else {
			pos.Column += 1
		}
	}
	return pos
}

func errSourceTooLong(srcLen int) error {
	return &Error{
		code: 1000,
		message: fmt.Sprintf(
			"Source too long (%d bytes, max %d)", srcLen, maxSrcLen,
		),
	}
}

func errInvalidUtf8(src []byte) error {
	offset := 0
	for len(src) > 0 {
		r, runeLen := utf8.DecodeRune(src)
		if r == utf8.RuneError && runeLen == 1 {
			break
		}
		offset += runeLen
		src = src[runeLen:]
	}
	return &Error{
		code:    1001,
		message: "Source is not valid UTF-8",
		span: Span{
			start: uint32(offset),
			len:   1,
		},
	}
}

func errForbiddenControlCharacter(offset uint32, c byte) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Forbidden control character 0x%02X", c),
		span: Span{
			start: offset,
			len:   1,
		},
	}
}

func errUnexpectedCharacter(offset uint32, r rune) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("Unexpected character %q", r),
		span: Span{
			start: offset,
			len:   uint32(utf8.RuneLen(r)),
		},
	}
}

func errTokenTooLong(offset uint32, tokenLen int) error {
	return &Error{
		code:    1004,
		message: fmt.Sprintf("Token too long (%d bytes, max %d)", tokenLen, maxTokenLen),
		span: Span{
			start: offset,
			len:   uint32(maxTokenLen),
		},
	}
}

func errIntLitInvalid(offset uint32, token []byte) error {
	return &Error{
		code:    1005,
		message: fmt.Sprintf("Invalid integer literal %q", token),
		span: Span{
			start: offset,
			len:   uint32(len(token)),
		},
	}
}

func errIntLitTooPositive(token string, start uint32) error {
	return &Error{
		code:    1006,
		message: fmt.Sprintf("Integer literal %q too large for u64", token),
		span: Span{
			start: start,
			len:   uint32(len(token)),
		},
	}
}

func errIntLitTooNegative(token string, start uint32) error {
	return &Error{
		code:    1007,
		message: fmt.Sprintf("Integer literal %q too small for i64", token),
		span: Span{
			start: start,
			len:   uint32(len(token)),
		},
	}
}

func errStrLitUnterminated(offset uint32, len uint32) error {
	return &Error{
		code:    1008,
		message: "Unterminated string literal",
		span: Span{
			start: offset,
			len:   len,
		},
	}
}

func errStrLitContainsNewline(offset uint32, len uint32) error {
	return &Error{
		code:    1009,
		message: "String literal contains unescaped newline",
		span: Span{
			start: offset,
			len:   len,
		},
	}
}

func errStrLitInvalidEscape(start uint32, token string) error {
	return &Error{
		code:    1010,
		message: fmt.Sprintf("Invalid escape sequence in string literal %s", token),
		span: Span{
			start: start,
			len:   uint32(len(token)),
		},
	}
}

func errCommentUnterminated(offset uint32, len uint32) error {
	return &Error{
		code:    1011,
		message: "Unterminated block comment",
		span: Span{
			start: offset,
			len:   len,
		},
	}
}

func errCommentInvalid(offset uint32) error {
	return &Error{
		code:    1012,
		message: "Invalid comment (expected \"//\" or \"/*\")",
		span: Span{
			start: offset,
			len:   1,
		},
	}
}

func errExpectedSigil(
	want TokenKind,
	got TokenKind,
	token string,
	span Span,
) error {
	var wantStr string
	switch want {
	case T_SEMI:
		wantStr = "';'"
	case T_COMMA:
		wantStr = "','"
	case T_DOT:
		wantStr = "'.'"
	case T_EQ:
		wantStr = "'='"
	case T_OPEN_CURL:
		wantStr = "'{'"
	case T_CLOSE_CURL:
		wantStr = "'}'"
	case T_OPEN_PAREN:
		wantStr = "'('"
	case T_CLOSE_PAREN:
		wantStr = "')'"
	case T_OPEN_SQUARE:
		wantStr = "'['"
	case T_CLOSE_SQUARE:
		wantStr = "']'"
	default:
		wantStr = want.String()
	}
	return &Error{
		code:    2000,
		message: fmt.Sprintf("Expected %s, got %s", wantStr, fmtGotToken(got, token)),
		span:    span,
	}
}

func errExpectedIdent(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2001,
		message: fmt.Sprintf("Expected identifier, got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errExpectedIntLit(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2002,
		message: fmt.Sprintf("Expected integer literal, got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errExpectedStrLit(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2003,
		message: fmt.Sprintf("Expected string literal, got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errExpectedTypeName(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2004,
		message: fmt.Sprintf("Expected type name, got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errExpectedDeclaration(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2005,
		message: fmt.Sprintf("Expected declaration, got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errUnknownDeclaration(token string, span Span) error {
	return &Error{
		code:    2006,
		message: fmt.Sprintf("Unknown declaration %q", token),
		span:    span,
	}
}

func errExpectedSyntaxDecl(span Span) error {
	return &Error{
		code:    2007,
		message: `File must begin with 'syntax = "proto3";'`,
		span:    span,
	}
}

func errUnsupportedSyntax(value string, span Span) error {
	return &Error{
		code:    2008,
		message: fmt.Sprintf("Unsupported syntax %q (expected \"proto3\")", value),
		span:    span,
	}
}

func errDuplicatePackage(span Span) error {
	return &Error{
		code:    2009,
		message: "Duplicate package declaration",
		span:    span,
	}
}

func errExpectedConstant(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2010,
		message: fmt.Sprintf("Expected constant, got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errExplicitPresenceDisabled(span Span) error {
	return &Error{
		code:    2011,
		message: "Field modifier 'optional' requires explicit optional presence to be enabled",
		span:    span,
	}
}

func errOptionalRepeated(span Span) error {
	return &Error{
		code:    2012,
		message: "Field modifiers 'optional' and 'repeated' cannot be combined",
		span:    span,
	}
}

func errUnsupportedConstruct(what string, span Span) error {
	return &Error{
		code:    2013,
		message: fmt.Sprintf("'%s' is not supported by this schema dialect", what),
		span:    span,
	}
}

func errExpectedKeywordReturns(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2014,
		message: fmt.Sprintf("Expected 'returns', got %s", fmtGotToken(got, token)),
		span:    span,
	}
}

func errExpectedReservedItem(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2015,
		message: fmt.Sprintf(
			"Expected reserved field number or name, got %s",
			fmtGotToken(got, token),
		),
		span: span,
	}
}

func errExpectedServiceItem(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2016,
		message: fmt.Sprintf(
			"Expected 'rpc' or 'option', got %s", fmtGotToken(got, token),
		),
		span: span,
	}
}

func fmtGotToken(got TokenKind, token string) string {
	switch got {
	case T_EOF:
		return "end of input"
	case T_NEWLINE:
		return "end of line"
	case T_SPACE:
		return "space"
	default:
		return fmt.Sprintf("%q", token)
	}
}
