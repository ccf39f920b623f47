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

	"go.wiregen.dev/wiregen/syntax"
)

// Warning marks a construct that is legal but probably not what the
// schema author intended. Warnings never suppress the Graph.
type Warning struct {
	code    uint32
	message string
	file    string
	span    syntax.Span
	pos     syntax.Position
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

// File is the canonical path of the schema file containing the warning.
func (w *Warning) File() string {
	return w.file
}

func (w *Warning) Span() syntax.Span {
	return w.span
}

func (w *Warning) Position() syntax.Position {
	return w.pos
}

func warnUnknownOption(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4000,
		message: fmt.Sprintf("Unknown option '%s'", name),
		span:    span,
	}
}

func warnUnusedImport(importPath string, span syntax.Span) *Warning {
	return &Warning{
		code: 4001,
		message: fmt.Sprintf(
			"Imported schema %q is never referenced",
			importPath,
		),
		span: span,
	}
}

func warnDuplicateImport(importPath string, span syntax.Span) *Warning {
	return &Warning{
		code:    4002,
		message: fmt.Sprintf("Schema %q imported twice", importPath),
		span:    span,
	}
}

func warnDuplicateReserved(text string, span syntax.Span) *Warning {
	return &Warning{
		code: 4003,
		message: fmt.Sprintf(
			"Reserved %s overlaps an earlier reserved statement",
			text,
		),
		span: span,
	}
}

func warnAllowAliasUnused(span syntax.Span) *Warning {
	return &Warning{
		code:    4004,
		message: "allow_alias is set but no enum value is aliased",
		span:    span,
	}
}

func warnEmptyService(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4005,
		message: fmt.Sprintf("Service '%s' declares no methods", name),
		span:    span,
	}
}

func warnDeclShadowsScalar(name string, span syntax.Span) *Warning {
	return &Warning{
		code: 4006,
		message: fmt.Sprintf(
			"Declaration '%s' shadows a builtin type name and cannot be"+
				" referenced without qualification",
			name,
		),
		span: span,
	}
}
