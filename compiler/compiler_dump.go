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
	"bytes"
	"fmt"
	"io"

	"go.wiregen.dev/wiregen/wire"
)

// DumpGraph renders the resolved graph as stable human-readable text, one
// line per file property, declaration, field, enum value, or method.
func DumpGraph(w io.Writer, g *Graph) error {
	var buf bytes.Buffer
	for _, file := range g.Files {
		fmt.Fprintf(&buf, "file %s\n", file.Path)
		if file.Package != "" {
			fmt.Fprintf(&buf, "  package %s\n", file.Package)
		}
		for _, importPath := range file.Imports {
			fmt.Fprintf(&buf, "  import %s\n", importPath)
		}
		if file.GoPackage != "" {
			fmt.Fprintf(&buf, "  option go_package = %q\n", file.GoPackage)
		}
		for _, idx := range file.Decls {
			dumpDecl(&buf, g, idx, "  ")
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func dumpDecl(buf *bytes.Buffer, g *Graph, idx DeclIndex, indent string) {
	decl := g.Decl(idx)
	switch decl.Kind {
	case DeclMessage:
		fmt.Fprintf(buf, "%smessage %s\n", indent, decl.Name)
		for _, field := range decl.Message.Fields {
			dumpField(buf, g, field, indent+"  ")
		}
		for _, nested := range decl.Message.Nested {
			dumpDecl(buf, g, nested, indent+"  ")
		}
	case DeclEnum:
		fmt.Fprintf(buf, "%senum %s\n", indent, decl.Name)
		for _, value := range decl.Enum.Values {
			fmt.Fprintf(
				buf, "%s  value %s = %d\n",
				indent, value.Name, value.Number,
			)
		}
	case DeclService:
		fmt.Fprintf(buf, "%sservice %s\n", indent, decl.Name)
		for _, method := range decl.Service.Methods {
			fmt.Fprintf(
				buf, "%s  rpc %s %s -> %s %s\n",
				indent, method.Name,
				g.Decl(method.Input).Name,
				g.Decl(method.Output).Name,
				method.Cardinality,
			)
		}
	}
}

func dumpField(buf *bytes.Buffer, g *Graph, field *Field, indent string) {
	fmt.Fprintf(
		buf, "%sfield %s = %d %s",
		indent, field.Name, field.Number, field.Type,
	)
	if field.TypeDecl != NoDecl {
		fmt.Fprintf(buf, " %s", g.Decl(field.TypeDecl).Name)
	}
	fmt.Fprintf(
		buf, " %s %s",
		wireTypeString(field.WireType()), field.Presence,
	)
	if field.Packed {
		buf.WriteString(" packed")
	}
	if field.Deprecated {
		buf.WriteString(" deprecated")
	}
	buf.WriteString("\n")
}

func wireTypeString(t wire.Type) string {
	switch t {
	case wire.Fixed32Type:
		return "fixed32"
	case wire.Fixed64Type:
		return "fixed64"
	case wire.BytesType:
		return "bytes"
	default:
		return "varint"
	}
}
