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
	"sort"

	"go.wiregen.dev/wiregen/compiler"
)

func (g *codegen) emitMessage(decl *compiler.Decl) {
	g.line("")
	g.linef("type %s struct {", decl.GoName)
	for _, field := range decl.Message.Fields {
		if field.Deprecated {
			g.line("\t// Deprecated: Do not use.")
		}
		g.linef("\t%s %s", fieldGoName(field), g.fieldGoType(field))
	}
	if len(decl.Message.Fields) > 0 {
		g.line("")
	}
	g.line("\tunknown []uint8")
	g.line("}")

	g.emitAppendWire(decl)
	g.emitMarshalWire(decl)
	g.emitUnmarshalWire(decl)

	for _, nested := range decl.Message.Nested {
		child := g.graph.Decl(nested)
		switch child.Kind {
		case compiler.DeclMessage:
			g.emitMessage(child)
		case compiler.DeclEnum:
			g.emitEnum(child)
		}
	}
}

func (g *codegen) fieldGoType(field *compiler.Field) string {
	var base string
	switch field.Type {
	case compiler.TypeDouble:
		base = "float64"
	case compiler.TypeFloat:
		base = "float32"
	case compiler.TypeInt32, compiler.TypeSint32, compiler.TypeSfixed32:
		base = "int32"
	case compiler.TypeInt64, compiler.TypeSint64, compiler.TypeSfixed64:
		base = "int64"
	case compiler.TypeUint32, compiler.TypeFixed32:
		base = "uint32"
	case compiler.TypeUint64, compiler.TypeFixed64:
		base = "uint64"
	case compiler.TypeBool:
		base = "bool"
	case compiler.TypeString:
		base = "string"
	case compiler.TypeBytes:
		base = "[]uint8"
	case compiler.TypeEnum:
		base = g.graph.Decl(field.TypeDecl).GoName
	case compiler.TypeMessage:
		base = "*" + g.graph.Decl(field.TypeDecl).GoName
	}
	switch field.Presence {
	case compiler.PresenceRepeated:
		return "[]" + base
	case compiler.PresenceOptional:
		if field.Type == compiler.TypeBytes {
			return base
		}
		return "*" + base
	}
	return base
}

// encodeOrder returns the message's fields sorted by ascending number.
func encodeOrder(decl *compiler.Decl) []*compiler.Field {
	fields := make([]*compiler.Field, len(decl.Message.Fields))
	copy(fields, decl.Message.Fields)
	sort.Slice(fields, func(ii, jj int) bool {
		return fields[ii].Number < fields[jj].Number
	})
	return fields
}

func (g *codegen) emitAppendWire(decl *compiler.Decl) {
	g.line("")
	g.linef("func (m *%s) AppendWire(b []uint8) []uint8 {", decl.GoName)
	for _, field := range encodeOrder(decl) {
		g.emitFieldEncode(field)
	}
	g.line("\treturn wire.AppendUnknown(b, m.unknown)")
	g.line("}")
}

func (g *codegen) emitMarshalWire(decl *compiler.Decl) {
	g.line("")
	g.linef("func (m *%s) MarshalWire() []uint8 {", decl.GoName)
	g.line("\treturn m.AppendWire(nil)")
	g.line("}")
}

func (g *codegen) emitFieldEncode(field *compiler.Field) {
	goName := "m." + fieldGoName(field)
	switch field.Presence {
	case compiler.PresenceRepeated:
		if field.Packed {
			g.linef("\tif len(%s) > 0 {", goName)
			g.linef("\t\tb = wire.AppendTag(b, %d, wire.BytesType)", field.Number)
			g.line("\t\tvar pk []uint8")
			g.linef("\t\tfor _, v := range %s {", goName)
			g.emitAppendValue("\t\t\t", "pk", field.Type, "v")
			g.line("\t\t}")
			g.line("\t\tb = wire.AppendBytes(b, pk)")
			g.line("\t}")
			return
		}
		g.linef("\tfor _, v := range %s {", goName)
		g.emitTag("\t\t", field)
		g.emitAppendValue("\t\t", "b", field.Type, "v")
		g.line("\t}")

	case compiler.PresenceOptional:
		if field.Type == compiler.TypeBytes {
			g.linef("\tif %s != nil {", goName)
			g.emitTag("\t\t", field)
			g.linef("\t\tb = wire.AppendBytes(b, %s)", goName)
			g.line("\t}")
			return
		}
		g.linef("\tif %s != nil {", goName)
		g.emitTag("\t\t", field)
		g.emitAppendValue("\t\t", "b", field.Type, "*"+goName)
		g.line("\t}")

	case compiler.PresenceMessage:
		g.linef("\tif %s != nil {", goName)
		g.emitTag("\t\t", field)
		g.linef("\t\tb = wire.AppendBytes(b, %s.MarshalWire())", goName)
		g.line("\t}")

	default:
		switch field.Type {
		case compiler.TypeBool:
			g.linef("\tif %s {", goName)
			g.emitTag("\t\t", field)
			g.line("\t\tb = wire.AppendVarint(b, 1)")
			g.line("\t}")
		case compiler.TypeString:
			g.linef("\tif %s != \"\" {", goName)
			g.emitTag("\t\t", field)
			g.linef("\t\tb = wire.AppendString(b, %s)", goName)
			g.line("\t}")
		case compiler.TypeBytes:
			g.linef("\tif len(%s) > 0 {", goName)
			g.emitTag("\t\t", field)
			g.linef("\t\tb = wire.AppendBytes(b, %s)", goName)
			g.line("\t}")
		default:
			g.linef("\tif %s != 0 {", goName)
			g.emitTag("\t\t", field)
			g.emitAppendValue("\t\t", "b", field.Type, goName)
			g.line("\t}")
		}
	}
}

func (g *codegen) emitTag(indent string, field *compiler.Field) {
	g.linef("%sb = wire.AppendTag(b, %d, wire.%s)",
		indent, field.Number, wireTypeName(field))
}

func wireTypeName(field *compiler.Field) string {
	switch field.WireType() {
	case 0:
		return "VarintType"
	case 1:
		return "Fixed64Type"
	case 2:
		return "BytesType"
	case 5:
		return "Fixed32Type"
	}
	return "VarintType"
}

// emitAppendValue writes the append call for one value expression. buf is
// the accumulator variable and expr the Go expression for the value.
func (g *codegen) emitAppendValue(indent, buf string, typ compiler.FieldType, expr string) {
	switch typ {
	case compiler.TypeDouble:
		g.linef("%s%s = wire.AppendFixed64(%s, math.Float64bits(%s))", indent, buf, buf, expr)
	case compiler.TypeFloat:
		g.linef("%s%s = wire.AppendFixed32(%s, math.Float32bits(%s))", indent, buf, buf, expr)
	case compiler.TypeInt32, compiler.TypeInt64, compiler.TypeEnum:
		g.linef("%s%s = wire.AppendVarint(%s, uint64(%s))", indent, buf, buf, expr)
	case compiler.TypeUint32:
		g.linef("%s%s = wire.AppendVarint(%s, uint64(%s))", indent, buf, buf, expr)
	case compiler.TypeUint64:
		g.linef("%s%s = wire.AppendVarint(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeSint32:
		g.linef("%s%s = wire.AppendZigzag32(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeSint64:
		g.linef("%s%s = wire.AppendZigzag64(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeFixed32:
		g.linef("%s%s = wire.AppendFixed32(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeFixed64:
		g.linef("%s%s = wire.AppendFixed64(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeSfixed32:
		g.linef("%s%s = wire.AppendFixed32(%s, uint32(%s))", indent, buf, buf, expr)
	case compiler.TypeSfixed64:
		g.linef("%s%s = wire.AppendFixed64(%s, uint64(%s))", indent, buf, buf, expr)
	case compiler.TypeBool:
		g.linef("%sif %s {", indent, expr)
		g.linef("%s\t%s = wire.AppendVarint(%s, 1)", indent, buf, buf)
		g.linef("%s} else {", indent)
		g.linef("%s\t%s = wire.AppendVarint(%s, 0)", indent, buf, buf)
		g.linef("%s}", indent)
	case compiler.TypeString:
		g.linef("%s%s = wire.AppendString(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeBytes:
		g.linef("%s%s = wire.AppendBytes(%s, %s)", indent, buf, buf, expr)
	case compiler.TypeMessage:
		g.linef("%s%s = wire.AppendBytes(%s, %s.MarshalWire())", indent, buf, buf, expr)
	}
}

func (g *codegen) elemGoName(field *compiler.Field) string {
	if field.TypeDecl == compiler.NoDecl {
		return ""
	}
	return g.graph.Decl(field.TypeDecl).GoName
}

func (g *codegen) emitUnmarshalWire(decl *compiler.Decl) {
	g.line("")
	g.linef("func (m *%s) UnmarshalWire(b []uint8) error {", decl.GoName)
	g.linef("\tvar msg %s", decl.GoName)
	g.line("\toff := 0")
	g.line("\tfor off < len(b) {")
	g.line("\t\tnum, typ, n := wire.ConsumeTag(b[off:])")
	g.line("\t\tif n < 0 {")
	g.line("\t\t\treturn wire.ParseError(off, n)")
	g.line("\t\t}")
	g.line("\t\toff += n")

	if len(decl.Message.Fields) == 0 {
		g.emitUnknownCapture("\t\t")
	} else {
		g.line("\t\tswitch {")
		for _, field := range encodeOrder(decl) {
			g.emitFieldDecode(field)
		}
		g.line("\t\tdefault:")
		g.emitUnknownCapture("\t\t\t")
		g.line("\t\t}")
	}

	g.line("\t}")
	g.line("\t*m = msg")
	g.line("\treturn nil")
	g.line("}")
}

func (g *codegen) emitUnknownCapture(indent string) {
	g.linef("%sraw, n := wire.ConsumeUnknown(b[off:], num, typ)", indent)
	g.linef("%sif n < 0 {", indent)
	g.linef("%s\treturn wire.ParseError(off, n)", indent)
	g.linef("%s}", indent)
	g.linef("%soff += n", indent)
	g.linef("%smsg.unknown = append(msg.unknown, raw...)", indent)
}

func (g *codegen) emitFieldDecode(field *compiler.Field) {
	goName := "msg." + fieldGoName(field)
	g.linef("\t\tcase num == %d && typ == wire.%s:", field.Number, wireTypeName(field))

	switch {
	case field.Type == compiler.TypeMessage:
		g.line("\t\t\tv, n := wire.ConsumeBytes(b[off:])")
		g.emitConsumeCheck("\t\t\t")
		g.linef("\t\t\tsub := new(%s)", g.elemGoName(field))
		g.line("\t\t\tif err := sub.UnmarshalWire(v); err != nil {")
		g.line("\t\t\t\treturn err")
		g.line("\t\t\t}")
		if field.Presence == compiler.PresenceRepeated {
			g.linef("\t\t\t%s = append(%s, sub)", goName, goName)
		} else {
			g.linef("\t\t\t%s = sub", goName)
		}

	case field.Presence == compiler.PresenceRepeated:
		g.emitConsumeValue("\t\t\t", field.Type, "b[off:]")
		g.emitConsumeCheck("\t\t\t")
		g.linef("\t\t\t%s = append(%s, %s)", goName, goName, g.decodeExpr(field, "v"))
		if packable(field.Type) {
			g.emitPackedDecode(field)
		}

	case field.Presence == compiler.PresenceOptional:
		g.emitConsumeValue("\t\t\t", field.Type, "b[off:]")
		g.emitConsumeCheck("\t\t\t")
		if field.Type == compiler.TypeBytes {
			g.linef("\t\t\t%s = append([]uint8{}, v...)", goName)
		} else if expr := g.decodeExpr(field, "v"); expr == "v" {
			g.linef("\t\t\t%s = &v", goName)
		} else {
			g.linef("\t\t\tvv := %s", expr)
			g.linef("\t\t\t%s = &vv", goName)
		}

	default:
		g.emitConsumeValue("\t\t\t", field.Type, "b[off:]")
		g.emitConsumeCheck("\t\t\t")
		g.linef("\t\t\t%s = %s", goName, g.decodeExpr(field, "v"))
	}
}

func (g *codegen) emitConsumeCheck(indent string) {
	g.linef("%sif n < 0 {", indent)
	g.linef("%s\treturn wire.ParseError(off, n)", indent)
	g.linef("%s}", indent)
	g.linef("%soff += n", indent)
}

func (g *codegen) emitConsumeValue(indent string, typ compiler.FieldType, src string) {
	g.linef("%sv, n := wire.%s(%s)", indent, consumeFunc(typ), src)
}

func consumeFunc(typ compiler.FieldType) string {
	switch typ {
	case compiler.TypeDouble, compiler.TypeFixed64, compiler.TypeSfixed64:
		return "ConsumeFixed64"
	case compiler.TypeFloat, compiler.TypeFixed32, compiler.TypeSfixed32:
		return "ConsumeFixed32"
	case compiler.TypeString:
		return "ConsumeString"
	case compiler.TypeBytes:
		return "ConsumeBytes"
	}
	return "ConsumeVarint"
}

// decodeExpr converts the consumed raw value v into the field's Go type.
func (g *codegen) decodeExpr(field *compiler.Field, v string) string {
	switch field.Type {
	case compiler.TypeDouble:
		return "math.Float64frombits(" + v + ")"
	case compiler.TypeFloat:
		return "math.Float32frombits(" + v + ")"
	case compiler.TypeInt32:
		return "int32(" + v + ")"
	case compiler.TypeInt64:
		return "int64(" + v + ")"
	case compiler.TypeUint32:
		return "uint32(" + v + ")"
	case compiler.TypeUint64:
		return v
	case compiler.TypeSint32:
		return "wire.DecodeZigzag32(" + v + ")"
	case compiler.TypeSint64:
		return "wire.DecodeZigzag64(" + v + ")"
	case compiler.TypeFixed32:
		return v
	case compiler.TypeFixed64:
		return v
	case compiler.TypeSfixed32:
		return "int32(" + v + ")"
	case compiler.TypeSfixed64:
		return "int64(" + v + ")"
	case compiler.TypeBool:
		return v + " != 0"
	case compiler.TypeString:
		return v
	case compiler.TypeBytes:
		return "append([]uint8(nil), " + v + "...)"
	case compiler.TypeEnum:
		return g.elemGoName(field) + "(" + v + ")"
	}
	return v
}

func packable(typ compiler.FieldType) bool {
	switch typ {
	case compiler.TypeString, compiler.TypeBytes, compiler.TypeMessage:
		return false
	}
	return true
}

// emitPackedDecode adds the length-delimited arm for a packable repeated
// field, decoding each element out of the packed payload.
func (g *codegen) emitPackedDecode(field *compiler.Field) {
	goName := "msg." + fieldGoName(field)
	g.linef("\t\tcase num == %d && typ == wire.BytesType:", field.Number)
	g.line("\t\t\tpk, n := wire.ConsumeBytes(b[off:])")
	g.emitConsumeCheck("\t\t\t")
	g.line("\t\t\tfor pkOff := 0; pkOff < len(pk); {")
	g.linef("\t\t\t\tv, n := wire.%s(pk[pkOff:])", consumeFunc(field.Type))
	g.line("\t\t\t\tif n < 0 {")
	g.line("\t\t\t\t\treturn wire.ParseError(off-len(pk)+pkOff, n)")
	g.line("\t\t\t\t}")
	g.line("\t\t\t\tpkOff += n")
	g.linef("\t\t\t\t%s = append(%s, %s)", goName, goName, g.decodeExpr(field, "v"))
	g.line("\t\t\t}")
}
