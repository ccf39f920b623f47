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
	"math"

	"go.wiregen.dev/wiregen/syntax"
)

func (c *compiler) compileMessage(
	sf *schemaFile,
	decl *Decl,
	node *syntax.Message,
) {
	for _, opt := range node.Options() {
		name := opt.Name().Get()
		switch name {
		case "deprecated":
			if _, ok := boolOptionValue(opt); !ok {
				c.err(sf, errOptionValueInvalid(
					name,
					"true or false",
					opt.Value().Span(),
				))
			}
		default:
			c.warn(sf, warnUnknownOption(name, opt.Name().Span()))
		}
	}

	reserved := c.compileReserved(sf, node.Reserved(), 1, MaxFieldNumber)
	numbers := make(map[int32]string)
	names := make(map[string]bool)
	for _, fieldNode := range node.Fields() {
		field := c.compileField(sf, decl, fieldNode)
		if field == nil {
			continue
		}
		if names[field.Name] {
			c.err(sf, errFieldNameConflict(
				field.Name,
				decl.Name,
				fieldNode.Name().Span(),
			))
			continue
		}
		if prev, dup := numbers[field.Number]; dup {
			c.err(sf, errFieldNumberConflict(
				field.Name,
				prev,
				field.Number,
				fieldNode.Number().Span(),
			))
			continue
		}
		if reserved.containsNumber(int64(field.Number)) {
			c.err(sf, errFieldNumberReserved(
				field.Name,
				field.Number,
				fieldNode.Number().Span(),
			))
			continue
		}
		if reserved.containsName(field.Name) {
			c.err(sf, errFieldNameReserved(
				field.Name,
				fieldNode.Name().Span(),
			))
			continue
		}
		names[field.Name] = true
		numbers[field.Number] = field.Name
		decl.Message.Fields = append(decl.Message.Fields, field)
	}
}

func (c *compiler) compileField(
	sf *schemaFile,
	decl *Decl,
	node *syntax.Field,
) *Field {
	name := node.Name().Get()

	number, ok := node.Number().GetUint32()
	if !ok || number < 1 || number > MaxFieldNumber {
		c.err(sf, errFieldNumberOutOfRange(
			syntax.Unparse(node.Number()),
			node.Number().Span(),
		))
		return nil
	}
	if number >= implReservedLo && number <= implReservedHi {
		c.err(sf, errFieldNumberImplReserved(
			name,
			number,
			node.Number().Span(),
		))
		return nil
	}

	typeName := node.TypeName()
	fieldType := TypeInvalid
	typeDecl := NoDecl
	if scalar, ok := scalarFieldType(typeName); ok {
		fieldType = scalar
	} else {
		idx, ok := c.resolveType(sf, decl.Name, typeName)
		if !ok {
			return nil
		}
		resolved := c.graph.Decls[idx]
		switch resolved.Kind {
		case DeclMessage:
			fieldType = TypeMessage
		case DeclEnum:
			fieldType = TypeEnum
		default:
			c.err(sf, errNotAType(
				resolved.Name,
				resolved.Kind,
				typeName.Span(),
			))
			return nil
		}
		typeDecl = idx
	}

	presence := PresenceImplicit
	switch {
	case node.IsRepeated():
		presence = PresenceRepeated
	case fieldType == TypeMessage:
		if node.IsOptional() {
			c.err(sf, errOptionalOnMessageField(name, node.Name().Span()))
		}
		presence = PresenceMessage
	case node.IsOptional():
		presence = PresenceOptional
	}

	field := &Field{
		Name:     name,
		Number:   int32(number),
		Type:     fieldType,
		TypeDecl: typeDecl,
		Presence: presence,
	}
	packable := presence == PresenceRepeated && isPackable(fieldType)
	field.Packed = packable

	for _, opt := range node.Options() {
		optName := opt.Name().Get()
		switch optName {
		case "packed":
			value, ok := boolOptionValue(opt)
			if !ok {
				c.err(sf, errOptionValueInvalid(
					optName,
					"true or false",
					opt.Value().Span(),
				))
				continue
			}
			if presence != PresenceRepeated {
				c.err(sf, errPackedNotRepeated(name, opt.Span()))
				continue
			}
			if value && !packable {
				c.err(sf, errPackedNotPackable(name, fieldType, opt.Span()))
				continue
			}
			if packable {
				field.Packed = value
			}
		case "deprecated":
			value, ok := boolOptionValue(opt)
			if !ok {
				c.err(sf, errOptionValueInvalid(
					optName,
					"true or false",
					opt.Value().Span(),
				))
				continue
			}
			field.Deprecated = value
		case "default":
			c.err(sf, errDefaultValueNotAllowed(name, opt.Span()))
		default:
			c.warn(sf, warnUnknownOption(optName, opt.Name().Span()))
		}
	}
	return field
}

func scalarFieldType(ref *syntax.TypeName) (FieldType, bool) {
	if ref.IsFullyQualified() || len(ref.Idents()) != 1 {
		return TypeInvalid, false
	}
	fieldType, ok := scalarTypes[ref.Name()]
	return fieldType, ok
}

// isPackable reports whether elements of the type encode as fixed-width or
// varint records, the shapes that may be packed.
func isPackable(t FieldType) bool {
	switch t {
	case TypeInvalid, TypeString, TypeBytes, TypeMessage:
		return false
	}
	return true
}

func (c *compiler) compileEnum(
	sf *schemaFile,
	decl *Decl,
	node *syntax.Enum,
) {
	allowAlias := false
	var allowAliasSpan syntax.Span
	for _, opt := range node.Options() {
		name := opt.Name().Get()
		switch name {
		case "allow_alias":
			value, ok := boolOptionValue(opt)
			if !ok {
				c.err(sf, errOptionValueInvalid(
					name,
					"true or false",
					opt.Value().Span(),
				))
				continue
			}
			allowAlias = value
			allowAliasSpan = opt.Span()
		case "deprecated":
			if _, ok := boolOptionValue(opt); !ok {
				c.err(sf, errOptionValueInvalid(
					name,
					"true or false",
					opt.Value().Span(),
				))
			}
		default:
			c.warn(sf, warnUnknownOption(name, opt.Name().Span()))
		}
	}

	reserved := c.compileReserved(
		sf,
		node.Reserved(),
		math.MinInt32,
		math.MaxInt32,
	)

	values := node.Values()
	if len(values) == 0 {
		c.err(sf, errEnumEmpty(decl.Name, node.Name().Span()))
		return
	}
	names := make(map[string]bool)
	numbers := make(map[int32]string)
	aliased := false
	for ii, value := range values {
		valueName := value.Name().Get()
		number, ok := value.Value().GetInt32()
		if !ok {
			c.err(sf, errEnumValueOutOfRange(
				valueName,
				syntax.Unparse(value.Value()),
				value.Value().Span(),
			))
			continue
		}
		if ii == 0 && number != 0 {
			c.err(sf, errEnumFirstValueNotZero(
				valueName,
				value.Value().Span(),
			))
		}
		for _, opt := range value.Options() {
			optName := opt.Name().Get()
			switch optName {
			case "deprecated":
				if _, ok := boolOptionValue(opt); !ok {
					c.err(sf, errOptionValueInvalid(
						optName,
						"true or false",
						opt.Value().Span(),
					))
				}
			default:
				c.warn(sf, warnUnknownOption(optName, opt.Name().Span()))
			}
		}
		if names[valueName] {
			c.err(sf, errEnumValueNameConflict(
				valueName,
				decl.Name,
				value.Name().Span(),
			))
			continue
		}
		if prev, dup := numbers[number]; dup {
			if !allowAlias {
				c.err(sf, errEnumValueNumberConflict(
					valueName,
					prev,
					number,
					value.Value().Span(),
				))
				continue
			}
			aliased = true
		}
		if reserved.containsNumber(int64(number)) {
			c.err(sf, errEnumValueNumberReserved(
				valueName,
				number,
				value.Value().Span(),
			))
			continue
		}
		if reserved.containsName(valueName) {
			c.err(sf, errEnumValueNameReserved(
				valueName,
				value.Name().Span(),
			))
			continue
		}
		names[valueName] = true
		if _, dup := numbers[number]; !dup {
			numbers[number] = valueName
		}
		decl.Enum.Values = append(decl.Enum.Values, &EnumValue{
			Name:   valueName,
			Number: number,
		})
	}
	if allowAlias && !aliased {
		c.warn(sf, warnAllowAliasUnused(allowAliasSpan))
	}
}

func (c *compiler) compileService(
	sf *schemaFile,
	decl *Decl,
	node *syntax.Service,
) {
	for _, opt := range node.Options() {
		name := opt.Name().Get()
		switch name {
		case "deprecated":
			if _, ok := boolOptionValue(opt); !ok {
				c.err(sf, errOptionValueInvalid(
					name,
					"true or false",
					opt.Value().Span(),
				))
			}
		default:
			c.warn(sf, warnUnknownOption(name, opt.Name().Span()))
		}
	}

	rpcs := node.Rpcs()
	if len(rpcs) == 0 {
		c.warn(sf, warnEmptyService(decl.Name, node.Name().Span()))
		return
	}
	methodNames := make(map[string]bool)
	for _, rpc := range rpcs {
		methodName := rpc.Name().Get()
		if methodNames[methodName] {
			c.err(sf, errMethodNameConflict(
				methodName,
				decl.Name,
				rpc.Name().Span(),
			))
			continue
		}
		methodNames[methodName] = true
		for _, opt := range rpc.Options() {
			optName := opt.Name().Get()
			switch optName {
			case "deprecated":
				if _, ok := boolOptionValue(opt); !ok {
					c.err(sf, errOptionValueInvalid(
						optName,
						"true or false",
						opt.Value().Span(),
					))
				}
			default:
				c.warn(sf, warnUnknownOption(optName, opt.Name().Span()))
			}
		}
		input, okInput := c.resolveMethodType(sf, rpc.RequestType())
		output, okOutput := c.resolveMethodType(sf, rpc.ResponseType())
		if !okInput || !okOutput {
			continue
		}
		cardinality := Unary
		switch {
		case rpc.RequestIsStream() && rpc.ResponseIsStream():
			cardinality = BidiStreaming
		case rpc.RequestIsStream():
			cardinality = ClientStreaming
		case rpc.ResponseIsStream():
			cardinality = ServerStreaming
		}
		decl.Service.Methods = append(decl.Service.Methods, &Method{
			Name:        methodName,
			Cardinality: cardinality,
			Input:       input,
			Output:      output,
		})
	}
}

func (c *compiler) resolveMethodType(
	sf *schemaFile,
	ref *syntax.TypeName,
) (DeclIndex, bool) {
	idx, ok := c.resolveType(sf, sf.file.Package, ref)
	if !ok {
		return NoDecl, false
	}
	if resolved := c.graph.Decls[idx]; resolved.Kind != DeclMessage {
		c.err(sf, errRpcTypeNotMessage(resolved.Name, ref.Span()))
		return NoDecl, false
	}
	return idx, true
}

func (c *compiler) compileReserved(
	sf *schemaFile,
	statements []*syntax.Reserved,
	min, max int64,
) *reservedSet {
	reserved := newReservedSet()
	for _, res := range statements {
		for _, reservedRange := range res.Ranges() {
			lo, ok := reservedRange.Lo().GetInt64()
			if !ok {
				c.err(sf, errReservedRangeInvalid(
					syntax.Unparse(reservedRange),
					reservedRange.Span(),
				))
				continue
			}
			hi := lo
			if reservedRange.ToMax() {
				hi = max
			} else if hiLit := reservedRange.Hi(); hiLit != nil {
				if hi, ok = hiLit.GetInt64(); !ok {
					c.err(sf, errReservedRangeInvalid(
						syntax.Unparse(reservedRange),
						reservedRange.Span(),
					))
					continue
				}
			}
			if lo < min || hi > max || lo > hi {
				c.err(sf, errReservedRangeInvalid(
					syntax.Unparse(reservedRange),
					reservedRange.Span(),
				))
				continue
			}
			if !reserved.addRange(lo, hi) {
				c.warn(sf, warnDuplicateReserved(
					syntax.Unparse(reservedRange),
					reservedRange.Span(),
				))
			}
		}
		for _, nameLit := range res.Names() {
			if !reserved.addName(nameLit.Get()) {
				c.warn(sf, warnDuplicateReserved(
					syntax.Unparse(nameLit),
					nameLit.Span(),
				))
			}
		}
	}
	return reserved
}

type reservedSet struct {
	ranges [][2]int64
	names  map[string]bool
}

func newReservedSet() *reservedSet {
	return &reservedSet{names: make(map[string]bool)}
}

// addRange records [lo, hi] and reports false if it overlaps a range
// recorded earlier.
func (r *reservedSet) addRange(lo, hi int64) bool {
	fresh := true
	for _, prev := range r.ranges {
		if lo <= prev[1] && prev[0] <= hi {
			fresh = false
			break
		}
	}
	r.ranges = append(r.ranges, [2]int64{lo, hi})
	return fresh
}

func (r *reservedSet) addName(name string) bool {
	if r.names[name] {
		return false
	}
	r.names[name] = true
	return true
}

func (r *reservedSet) containsNumber(n int64) bool {
	for _, rr := range r.ranges {
		if n >= rr[0] && n <= rr[1] {
			return true
		}
	}
	return false
}

func (r *reservedSet) containsName(name string) bool {
	return r.names[name]
}
