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

package compiler

import (
	"fmt"
	"strings"

	"go.wiregen.dev/wiregen/syntax"
)

// Error is a schema error: the input parsed, but does not describe a
// valid schema. Syntax errors from imported files are also wrapped as
// Errors so that one Result carries every problem found in the closure.
type Error struct {
	code    uint32
	message string
	file    string
	span    syntax.Span
	pos     syntax.Position
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

// File is the canonical path of the schema file containing the error, or
// "" when the error is not attributable to a loaded file.
func (err *Error) File() string {
	return err.file
}

func (err *Error) Span() syntax.Span {
	return err.span
}

func (err *Error) Position() syntax.Position {
	return err.pos
}

func errSyntax(file string, src []uint8, err *syntax.Error) *Error {
	return &Error{
		code:    err.Code(),
		message: err.Message(),
		file:    file,
		span:    err.Span(),
		pos:     syntax.PositionOf(src, err.Span()),
	}
}

func errImportPathInvalid(importPath string, span syntax.Span) error {
	return &Error{
		code:    3000,
		message: fmt.Sprintf("Invalid import path %q", importPath),
		span:    span,
	}
}

func errSchemaNotLoaded(importPath string, cause error, span syntax.Span) error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Cannot load schema %q: %v", importPath, cause),
		span:    span,
	}
}

func errImportCycle(chain []string, span syntax.Span) error {
	return &Error{
		code:    3002,
		message: "Import cycle: " + strings.Join(chain, " -> "),
		span:    span,
	}
}

func errDeclNameConflict(
	kind DeclKind,
	name string,
	prevKind DeclKind,
	prevFile string,
	span syntax.Span,
) error {
	return &Error{
		code: 3003,
		message: fmt.Sprintf(
			"Cannot declare %s '%s': already declared as a %s in %q",
			kind, name, prevKind, prevFile,
		),
		span: span,
	}
}

func errGeneratedNameConflict(
	goName, name, prevName string,
	span syntax.Span,
) error {
	return &Error{
		code: 3004,
		message: fmt.Sprintf(
			"Generated type name '%s' for '%s' conflicts with '%s'",
			goName, name, prevName,
		),
		span: span,
	}
}

func errTypeNotFound(name string, span syntax.Span) error {
	return &Error{
		code:    3005,
		message: fmt.Sprintf("Type '%s' not found", name),
		span:    span,
	}
}

func errNotAType(name string, kind DeclKind, span syntax.Span) error {
	return &Error{
		code:    3006,
		message: fmt.Sprintf("'%s' is a %s, not a field type", name, kind),
		span:    span,
	}
}

func errRpcTypeNotMessage(name string, span syntax.Span) error {
	return &Error{
		code:    3007,
		message: fmt.Sprintf("'%s' is not a message type", name),
		span:    span,
	}
}

func errFieldNumberOutOfRange(number string, span syntax.Span) error {
	return &Error{
		code: 3008,
		message: fmt.Sprintf(
			"Field number %s is out of range [1, %d]",
			number, MaxFieldNumber,
		),
		span: span,
	}
}

func errFieldNumberImplReserved(
	name string,
	number uint32,
	span syntax.Span,
) error {
	return &Error{
		code: 3009,
		message: fmt.Sprintf(
			"Field '%s' uses number %d, which is reserved for"+
				" implementation use [%d, %d]",
			name, number, implReservedLo, implReservedHi,
		),
		span: span,
	}
}

func errOptionConflict(name string, span syntax.Span) error {
	return &Error{
		code:    3010,
		message: fmt.Sprintf("Option '%s' already assigned", name),
		span:    span,
	}
}

func errFieldNumberConflict(
	name, prevName string,
	number int32,
	span syntax.Span,
) error {
	return &Error{
		code: 3011,
		message: fmt.Sprintf(
			"Field '%s' reuses number %d, already assigned to field '%s'",
			name, number, prevName,
		),
		span: span,
	}
}

func errFieldNameConflict(name, message string, span syntax.Span) error {
	return &Error{
		code: 3012,
		message: fmt.Sprintf(
			"Field '%s' declared twice in message '%s'",
			name, message,
		),
		span: span,
	}
}

func errFieldNumberReserved(
	name string,
	number int32,
	span syntax.Span,
) error {
	return &Error{
		code: 3013,
		message: fmt.Sprintf(
			"Field '%s' uses reserved number %d",
			name, number,
		),
		span: span,
	}
}

func errFieldNameReserved(name string, span syntax.Span) error {
	return &Error{
		code:    3014,
		message: fmt.Sprintf("Field name '%s' is reserved", name),
		span:    span,
	}
}

func errReservedRangeInvalid(text string, span syntax.Span) error {
	return &Error{
		code:    3015,
		message: fmt.Sprintf("Invalid reserved range '%s'", text),
		span:    span,
	}
}

func errOptionalOnMessageField(name string, span syntax.Span) error {
	return &Error{
		code: 3016,
		message: fmt.Sprintf(
			"Field '%s' has message type and already tracks presence;"+
				" remove 'optional'",
			name,
		),
		span: span,
	}
}

func errOptionValueInvalid(name, expected string, span syntax.Span) error {
	return &Error{
		code:    3017,
		message: fmt.Sprintf("Option '%s' expects %s", name, expected),
		span:    span,
	}
}

func errPackedNotRepeated(name string, span syntax.Span) error {
	return &Error{
		code: 3018,
		message: fmt.Sprintf(
			"Field '%s' is not repeated and cannot be packed",
			name,
		),
		span: span,
	}
}

func errPackedNotPackable(
	name string,
	fieldType FieldType,
	span syntax.Span,
) error {
	return &Error{
		code: 3019,
		message: fmt.Sprintf(
			"Field '%s' has type %s, which cannot be packed",
			name, fieldType,
		),
		span: span,
	}
}

func errEnumEmpty(name string, span syntax.Span) error {
	return &Error{
		code: 3020,
		message: fmt.Sprintf(
			"Enum '%s' must declare at least one value",
			name,
		),
		span: span,
	}
}

func errEnumFirstValueNotZero(name string, span syntax.Span) error {
	return &Error{
		code:    3021,
		message: fmt.Sprintf("First enum value '%s' must be zero", name),
		span:    span,
	}
}

func errEnumValueOutOfRange(name, number string, span syntax.Span) error {
	return &Error{
		code: 3022,
		message: fmt.Sprintf(
			"Enum value '%s' number %s is out of int32 range",
			name, number,
		),
		span: span,
	}
}

func errEnumValueNumberConflict(
	name, prevName string,
	number int32,
	span syntax.Span,
) error {
	return &Error{
		code: 3023,
		message: fmt.Sprintf(
			"Enum value '%s' reuses number %d, already assigned to '%s';"+
				" set allow_alias to permit aliases",
			name, number, prevName,
		),
		span: span,
	}
}

func errEnumValueNameConflict(name, enum string, span syntax.Span) error {
	return &Error{
		code: 3024,
		message: fmt.Sprintf(
			"Enum value '%s' declared twice in enum '%s'",
			name, enum,
		),
		span: span,
	}
}

func errEnumValueNumberReserved(
	name string,
	number int32,
	span syntax.Span,
) error {
	return &Error{
		code: 3025,
		message: fmt.Sprintf(
			"Enum value '%s' uses reserved number %d",
			name, number,
		),
		span: span,
	}
}

func errEnumValueNameReserved(name string, span syntax.Span) error {
	return &Error{
		code:    3026,
		message: fmt.Sprintf("Enum value name '%s' is reserved", name),
		span:    span,
	}
}

func errMethodNameConflict(name, service string, span syntax.Span) error {
	return &Error{
		code: 3027,
		message: fmt.Sprintf(
			"Method '%s' declared twice in service '%s'",
			name, service,
		),
		span: span,
	}
}

func errDefaultValueNotAllowed(name string, span syntax.Span) error {
	return &Error{
		code: 3028,
		message: fmt.Sprintf(
			"Field '%s' declares a default value; explicit defaults are"+
				" not supported",
			name,
		),
		span: span,
	}
}
