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

package codegen

import (
	"go.wiregen.dev/wiregen/compiler"
)

func (g *codegen) emitEnum(decl *compiler.Decl) {
	g.line("")
	g.linef("type %s int32", decl.GoName)

	if len(decl.Enum.Values) > 0 {
		g.line("")
		g.line("const (")
		for _, value := range decl.Enum.Values {
			g.linef("\t%s_%s %s = %d",
				decl.GoName, value.Name, decl.GoName, value.Number)
		}
		g.line(")")
	}

	g.line("")
	g.linef("func (x %s) String() string {", decl.GoName)
	if len(decl.Enum.Values) > 0 {
		g.line("\tswitch x {")
		seen := make(map[int32]bool)
		for _, value := range decl.Enum.Values {
			if seen[value.Number] {
				continue
			}
			seen[value.Number] = true
			g.linef("\tcase %d:", value.Number)
			g.linef("\t\treturn %q", value.Name)
		}
		g.line("\t}")
	}
	g.linef("\treturn %q + strconv.FormatInt(int64(x), 10) + \")\"", decl.GoName+"(")
	g.line("}")
}
