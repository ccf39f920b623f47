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
	"bytes"
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOptionFunc func(*ParseOptions)

func (f parseOptionFunc) apply(opts *ParseOptions) { f(opts) }

// AllowExplicitPresence permits the 'optional' field label. When not
// enabled, fields labeled 'optional' are a parse error.
func AllowExplicitPresence(allow bool) ParseOption {
	return parseOptionFunc(func(opts *ParseOptions) {
		opts.allowExplicitPresence = allow
	})
}

func Parse(src []uint8, opts ...ParseOption) (*Schema, error) {
	return NewParseOptions(opts...).ParseSchema(src)
}

type ParseOptions struct {
	saveSpaces            bool
	saveNewlines          bool
	saveComments          bool
	allowExplicitPresence bool
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOptions := &ParseOptions{
		saveSpaces:   true,
		saveNewlines: true,
		saveComments: true,
	}
	for _, opt := range opts {
		opt.apply(parseOptions)
	}
	return parseOptions
}

func (opts *ParseOptions) ParseSchema(src []uint8) (*Schema, error) {
	ctx, err := newParseCtx[Schema](opts, src)
	if err != nil {
		return nil, err
	}
	return parseSchema(ctx)
}

type parseCtx[T any] struct {
	src        []uint8
	opts       *ParseOptions
	tokens     *Tokens
	childNodes []Node
	haveToken  bool
	token      Token
	err        error
	consumed   uint32
	offset     uint32
}

func newParseCtx[T any](opts *ParseOptions, src []uint8) (*parseCtx[T], error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	return &parseCtx[T]{
		src:    src,
		opts:   opts,
		tokens: tokens,
	}, nil
}

func (ctx *parseCtx[T]) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	if err := ctx.tokens.Next(&ctx.token); err != nil {
		ctx.err = err
		return ctx.err
	}
	ctx.haveToken = true
	return nil
}

func (ctx *parseCtx[T]) readToken() []uint8 {
	return ctx.src[:ctx.token.Len]
}

func (ctx *parseCtx[T]) consumeToken(child Node) {
	ctx.src = ctx.src[ctx.token.Len:]
	ctx.consumed += uint32(ctx.token.Len)
	ctx.offset += uint32(ctx.token.Len)
	ctx.haveToken = false
	if child != nil {
		ctx.childNodes = append(ctx.childNodes, child)
	}
}

func (ctx *parseCtx[T]) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *parseCtx[T]) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		consumed := ctx.consumed
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if consumed == ctx.consumed {
			return
		}
	}
}

// space consumes a run of whitespace, newline, and comment tokens. The
// grammar is whitespace-insensitive, so productions call this between
// every pair of tokens.
func (ctx *parseCtx[T]) space() {
	for _ = range ctx.loop {
		if err := ctx.ensureToken(); err != nil {
			return
		}
		switch ctx.token.Kind {
		case T_SPACE:
			ctx.consumeSpace()
		case T_NEWLINE:
			var child *Newline
			if ctx.opts.saveNewlines {
				child = &Newline{
					crlf:  ctx.token.Len == 2,
					start: ctx.offset,
				}
			}
			ctx.consumeToken(child)
		case T_COMMENT:
			var child *Comment
			if ctx.opts.saveComments {
				child = &Comment{
					raw:   string(ctx.readToken()),
					start: ctx.offset,
				}
			}
			ctx.consumeToken(child)
		default:
			return
		}
	}
}

func (ctx *parseCtx[T]) consumeSpace() {
	if !ctx.opts.saveSpaces {
		ctx.consumeToken(nil)
		return
	}

	tokenBytes := ctx.readToken()
	var token string
	if bytes.Equal(tokenBytes, []uint8{' '}) {
		token = " "
	} else {
		token = string(tokenBytes)
	}
	ctx.consumeToken(&Space{
		raw:   token,
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) sigil(kind TokenKind) {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != kind {
		ctx.err = errExpectedSigil(
			kind,
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) trySigil(kind TokenKind) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != kind {
		return false
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
	return true
}

func (ctx *parseCtx[T]) tryKeyword(keyword string) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != T_IDENT {
		return false
	}
	if string(ctx.readToken()) != keyword {
		return false
	}
	ctx.consumeToken(&Keyword{
		raw:   keyword,
		start: ctx.offset,
	})
	return true
}

func (ctx *parseCtx[T]) ident() *Ident {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedIdent(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	ident := &Ident{
		raw:   token,
		start: ctx.offset,
	}
	ctx.consumeToken(ident)
	return ident
}

func (ctx *parseCtx[T]) int() *IntLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())

	switch ctx.token.Kind {
	case T_INT_LIT, T_OCT_INT_LIT, T_HEX_INT_LIT:
	default:
		ctx.err = errExpectedIntLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}

	intNode, err := newIntLit(token, ctx.token.Kind, ctx.offset)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(intNode)
	return intNode
}

func (ctx *parseCtx[T]) str() *StrLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())

	if ctx.token.Kind != T_STR_LIT {
		ctx.err = errExpectedStrLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	strNode, err := newStrLit(token, ctx.offset, ctx.token.flags)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(strNode)
	return strNode
}

func (ctx *parseCtx[T]) finish(
	build func(span Span, childNodes []Node) *T,
) (*T, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}
	span := Span{
		start: ctx.offset - ctx.consumed,
		len:   ctx.consumed,
	}
	return build(span, ctx.childNodes), nil
}

func parseChild[P any, C any, PtrC interface {
	*C
	Node
}](
	ctx *parseCtx[P],
	parseChildFn func(*parseCtx[C]) (PtrC, error),
) (*C, bool) {
	if ctx.err != nil {
		return nil, false
	}
	childCtx := &parseCtx[C]{
		src:       ctx.src,
		opts:      ctx.opts,
		tokens:    ctx.tokens,
		haveToken: ctx.haveToken,
		token:     ctx.token,
		offset:    ctx.offset,
	}
	child, err := parseChildFn(childCtx)
	if err != nil {
		ctx.err = err
		return nil, false
	}

	ctx.haveToken = childCtx.haveToken
	ctx.token = childCtx.token

	if childCtx.consumed == 0 {
		return nil, false
	}
	ctx.src = ctx.src[childCtx.consumed:]
	ctx.consumed += childCtx.consumed
	ctx.offset = childCtx.offset
	ctx.childNodes = append(ctx.childNodes, child)
	return child, true
}

func parseSchema(ctx *parseCtx[Schema]) (*Schema, error) {
	ctx.space()
	parseChild(ctx, parseSyntaxDecl)

	var havePackage bool
	for _ = range ctx.loop {
		ctx.space()

		if ctx.token.Kind == T_EOF {
			break
		}
		if ctx.trySigil(T_SEMI) {
			continue
		}

		var ok bool
		{
			var decl *PackageDecl
			if decl, ok = parseChild(ctx, parsePackageDecl); ok {
				if havePackage {
					return nil, errDuplicatePackage(decl.Span())
				}
				havePackage = true
			}
		}
		if !ok && ctx.err == nil {
			_, ok = parseChild(ctx, parseImport)
		}
		if !ok && ctx.err == nil {
			_, ok = parseChild(ctx, parseOption)
		}
		if !ok && ctx.err == nil {
			_, ok = parseChild(ctx, parseMessage)
		}
		if !ok && ctx.err == nil {
			_, ok = parseChild(ctx, parseEnum)
		}
		if !ok && ctx.err == nil {
			_, ok = parseChild(ctx, parseService)
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			span := ctx.tokenSpan()
			if ctx.token.Kind == T_IDENT {
				return nil, errUnknownDeclaration(token, span)
			}
			return nil, errExpectedDeclaration(ctx.token.Kind, token, span)
		}
	}

	return ctx.finish(func(span Span, childNodes []Node) *Schema {
		return &Schema{
			span:       span,
			childNodes: childNodes,
		}
	})
}

func parseSyntaxDecl(ctx *parseCtx[SyntaxDecl]) (*SyntaxDecl, error) {
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	if !ctx.tryKeyword("syntax") {
		return nil, errExpectedSyntaxDecl(ctx.tokenSpan())
	}
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := ctx.str()
	if ctx.err == nil && value.Get() != "proto3" {
		return nil, errUnsupportedSyntax(value.Get(), value.Span())
	}
	ctx.space()
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *SyntaxDecl {
		return &SyntaxDecl{
			span:       span,
			childNodes: childNodes,
			value:      value,
		}
	})
}

func parsePackageDecl(ctx *parseCtx[PackageDecl]) (*PackageDecl, error) {
	if !ctx.tryKeyword("package") {
		return nil, nil
	}
	ctx.space()

	idents := []*Ident{ctx.ident()}
	for _ = range ctx.loop {
		if ctx.trySigil(T_DOT) {
			idents = append(idents, ctx.ident())
		} else {
			break
		}
	}
	ctx.space()
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *PackageDecl {
		return &PackageDecl{
			span:       span,
			childNodes: childNodes,
			idents:     idents,
		}
	})
}

func parseImport(ctx *parseCtx[Import]) (*Import, error) {
	if !ctx.tryKeyword("import") {
		return nil, nil
	}
	ctx.space()
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	if ctx.token.Kind == T_IDENT {
		switch modifier := string(ctx.readToken()); modifier {
		case "public", "weak":
			return nil, errUnsupportedConstruct("import "+modifier, ctx.tokenSpan())
		}
	}
	path := ctx.str()
	ctx.space()
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *Import {
		return &Import{
			span:       span,
			childNodes: childNodes,
			path:       path,
		}
	})
}

func parseOption(ctx *parseCtx[Option]) (*Option, error) {
	if !ctx.tryKeyword("option") {
		return nil, nil
	}
	ctx.space()
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	if ctx.token.Kind == T_OPEN_PAREN {
		return nil, errUnsupportedConstruct("custom option", ctx.tokenSpan())
	}
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := parseConstant(ctx)
	ctx.space()
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *Option {
		return &Option{
			span:       span,
			childNodes: childNodes,
			name:       name,
			value:      value,
		}
	})
}

func parseConstant[T any](ctx *parseCtx[T]) Node {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	switch ctx.token.Kind {
	case T_INT_LIT, T_OCT_INT_LIT, T_HEX_INT_LIT:
		if child := ctx.int(); child != nil {
			return child
		}
	case T_STR_LIT:
		if child := ctx.str(); child != nil {
			return child
		}
	case T_IDENT:
		if child := ctx.ident(); child != nil {
			return child
		}
	}
	if ctx.err == nil {
		ctx.err = errExpectedConstant(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	return nil
}

func parseTypeName(ctx *parseCtx[TypeName]) (*TypeName, error) {
	leadingDot := ctx.trySigil(T_DOT)
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	if ctx.token.Kind != T_IDENT {
		return nil, errExpectedTypeName(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}

	idents := []*Ident{ctx.ident()}
	for _ = range ctx.loop {
		if ctx.trySigil(T_DOT) {
			idents = append(idents, ctx.ident())
		} else {
			break
		}
	}
	return ctx.finish(func(span Span, childNodes []Node) *TypeName {
		return &TypeName{
			span:       span,
			childNodes: childNodes,
			idents:     idents,
			leadingDot: leadingDot,
		}
	})
}

func parseMessage(ctx *parseCtx[Message]) (*Message, error) {
	if !ctx.tryKeyword("message") {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()
	ctx.space()

	var fields []*Field
	var messages []*Message
	var enums []*Enum
	var reserved []*Reserved
	var options []*Option
	ctx.sigil(T_OPEN_CURL)
	ctx.space()
	for _ = range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if ctx.trySigil(T_SEMI) {
			ctx.space()
			continue
		}

		var ok bool
		{
			var decl *Message
			if decl, ok = parseChild(ctx, parseMessage); ok {
				messages = append(messages, decl)
			}
		}
		if !ok && ctx.err == nil {
			var decl *Enum
			if decl, ok = parseChild(ctx, parseEnum); ok {
				enums = append(enums, decl)
			}
		}
		if !ok && ctx.err == nil {
			var decl *Reserved
			if decl, ok = parseChild(ctx, parseReserved); ok {
				reserved = append(reserved, decl)
			}
		}
		if !ok && ctx.err == nil {
			var decl *Option
			if decl, ok = parseChild(ctx, parseOption); ok {
				options = append(options, decl)
			}
		}
		if !ok && ctx.err == nil {
			if ctx.token.Kind == T_IDENT {
				switch keyword := string(ctx.readToken()); keyword {
				case "oneof", "map", "extend", "extensions", "group", "required":
					return nil, errUnsupportedConstruct(keyword, ctx.tokenSpan())
				}
			}
			var decl *Field
			if decl, ok = parseChild(ctx, parseField); ok {
				fields = append(fields, decl)
			}
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			return nil, errExpectedDeclaration(ctx.token.Kind, token, ctx.tokenSpan())
		}
		ctx.space()
	}

	return ctx.finish(func(span Span, childNodes []Node) *Message {
		return &Message{
			span:       span,
			childNodes: childNodes,
			name:       name,
			fields:     fields,
			messages:   messages,
			enums:      enums,
			reserved:   reserved,
			options:    options,
		}
	})
}

func parseField(ctx *parseCtx[Field]) (*Field, error) {
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	label := labelNone
	labelSpan := ctx.tokenSpan()
	if ctx.tryKeyword("optional") {
		if !ctx.opts.allowExplicitPresence {
			return nil, errExplicitPresenceDisabled(labelSpan)
		}
		label = labelOptional
		ctx.space()
	} else if ctx.tryKeyword("repeated") {
		label = labelRepeated
		ctx.space()
	}
	if label != labelNone {
		if err := ctx.ensureToken(); err != nil {
			return nil, err
		}
		dupSpan := ctx.tokenSpan()
		if ctx.tryKeyword("optional") || ctx.tryKeyword("repeated") {
			return nil, errOptionalRepeated(dupSpan)
		}
	}

	typeName, _ := parseChild(ctx, parseTypeName)
	ctx.space()
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	number := ctx.int()
	ctx.space()

	var options []*FieldOption
	if ctx.trySigil(T_OPEN_SQUARE) {
		ctx.space()
		for _ = range ctx.loop {
			option, _ := parseChild(ctx, parseFieldOption)
			options = append(options, option)
			ctx.space()
			if !ctx.trySigil(T_COMMA) {
				break
			}
			ctx.space()
		}
		ctx.sigil(T_CLOSE_SQUARE)
		ctx.space()
	}
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *Field {
		return &Field{
			span:       span,
			childNodes: childNodes,
			label:      label,
			typeName:   typeName,
			name:       name,
			number:     number,
			options:    options,
		}
	})
}

func parseFieldOption(ctx *parseCtx[FieldOption]) (*FieldOption, error) {
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	if ctx.token.Kind == T_OPEN_PAREN {
		return nil, errUnsupportedConstruct("custom option", ctx.tokenSpan())
	}
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := parseConstant(ctx)

	return ctx.finish(func(span Span, childNodes []Node) *FieldOption {
		return &FieldOption{
			span:       span,
			childNodes: childNodes,
			name:       name,
			value:      value,
		}
	})
}

func parseReserved(ctx *parseCtx[Reserved]) (*Reserved, error) {
	if !ctx.tryKeyword("reserved") {
		return nil, nil
	}
	ctx.space()
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}

	var ranges []*ReservedRange
	var names []*StrLit
	switch ctx.token.Kind {
	case T_STR_LIT:
		for _ = range ctx.loop {
			names = append(names, ctx.str())
			ctx.space()
			if !ctx.trySigil(T_COMMA) {
				break
			}
			ctx.space()
		}
	case T_INT_LIT, T_OCT_INT_LIT, T_HEX_INT_LIT:
		for _ = range ctx.loop {
			reservedRange, _ := parseChild(ctx, parseReservedRange)
			ranges = append(ranges, reservedRange)
			ctx.space()
			if !ctx.trySigil(T_COMMA) {
				break
			}
			ctx.space()
		}
	default:
		return nil, errExpectedReservedItem(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *Reserved {
		return &Reserved{
			span:       span,
			childNodes: childNodes,
			ranges:     ranges,
			names:      names,
		}
	})
}

func parseReservedRange(ctx *parseCtx[ReservedRange]) (*ReservedRange, error) {
	lo := ctx.int()
	ctx.space()

	var hi *IntLit
	toMax := false
	if ctx.tryKeyword("to") {
		ctx.space()
		if ctx.tryKeyword("max") {
			toMax = true
		} else {
			hi = ctx.int()
		}
	}

	return ctx.finish(func(span Span, childNodes []Node) *ReservedRange {
		return &ReservedRange{
			span:       span,
			childNodes: childNodes,
			lo:         lo,
			hi:         hi,
			toMax:      toMax,
		}
	})
}

func parseEnum(ctx *parseCtx[Enum]) (*Enum, error) {
	if !ctx.tryKeyword("enum") {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()
	ctx.space()

	var values []*EnumValue
	var reserved []*Reserved
	var options []*Option
	ctx.sigil(T_OPEN_CURL)
	ctx.space()
	for _ = range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if ctx.trySigil(T_SEMI) {
			ctx.space()
			continue
		}

		var ok bool
		{
			var decl *Option
			if decl, ok = parseChild(ctx, parseOption); ok {
				options = append(options, decl)
			}
		}
		if !ok && ctx.err == nil {
			var decl *Reserved
			if decl, ok = parseChild(ctx, parseReserved); ok {
				reserved = append(reserved, decl)
			}
		}
		if !ok && ctx.err == nil {
			var decl *EnumValue
			if decl, ok = parseChild(ctx, parseEnumValue); ok {
				values = append(values, decl)
			}
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			return nil, errExpectedDeclaration(ctx.token.Kind, token, ctx.tokenSpan())
		}
		ctx.space()
	}

	return ctx.finish(func(span Span, childNodes []Node) *Enum {
		return &Enum{
			span:       span,
			childNodes: childNodes,
			name:       name,
			values:     values,
			reserved:   reserved,
			options:    options,
		}
	})
}

func parseEnumValue(ctx *parseCtx[EnumValue]) (*EnumValue, error) {
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := ctx.int()
	ctx.space()

	var options []*FieldOption
	if ctx.trySigil(T_OPEN_SQUARE) {
		ctx.space()
		for _ = range ctx.loop {
			option, _ := parseChild(ctx, parseFieldOption)
			options = append(options, option)
			ctx.space()
			if !ctx.trySigil(T_COMMA) {
				break
			}
			ctx.space()
		}
		ctx.sigil(T_CLOSE_SQUARE)
		ctx.space()
	}
	ctx.sigil(T_SEMI)

	return ctx.finish(func(span Span, childNodes []Node) *EnumValue {
		return &EnumValue{
			span:       span,
			childNodes: childNodes,
			name:       name,
			value:      value,
			options:    options,
		}
	})
}

func parseService(ctx *parseCtx[Service]) (*Service, error) {
	if !ctx.tryKeyword("service") {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()
	ctx.space()

	var rpcs []*Rpc
	var options []*Option
	ctx.sigil(T_OPEN_CURL)
	ctx.space()
	for _ = range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if ctx.trySigil(T_SEMI) {
			ctx.space()
			continue
		}

		rpc, ok := parseChild(ctx, parseRpc)
		if ok {
			rpcs = append(rpcs, rpc)
		}
		if !ok && ctx.err == nil {
			var option *Option
			option, ok = parseChild(ctx, parseOption)
			if ok {
				options = append(options, option)
			}
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			return nil, errExpectedServiceItem(
				ctx.token.Kind,
				string(ctx.readToken()),
				ctx.tokenSpan(),
			)
		}
		ctx.space()
	}

	return ctx.finish(func(span Span, childNodes []Node) *Service {
		return &Service{
			span:       span,
			childNodes: childNodes,
			name:       name,
			rpcs:       rpcs,
			options:    options,
		}
	})
}

func parseRpc(ctx *parseCtx[Rpc]) (*Rpc, error) {
	if !ctx.tryKeyword("rpc") {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()
	ctx.space()

	ctx.sigil(T_OPEN_PAREN)
	ctx.space()
	var requestIsStream bool
	if ctx.tryKeyword("stream") {
		requestIsStream = true
		ctx.space()
	}
	requestType, _ := parseChild(ctx, parseTypeName)
	ctx.space()
	ctx.sigil(T_CLOSE_PAREN)
	ctx.space()

	if ctx.err == nil && !ctx.tryKeyword("returns") {
		return nil, errExpectedKeywordReturns(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	ctx.space()
	ctx.sigil(T_OPEN_PAREN)
	ctx.space()
	var responseIsStream bool
	if ctx.tryKeyword("stream") {
		responseIsStream = true
		ctx.space()
	}
	responseType, _ := parseChild(ctx, parseTypeName)
	ctx.space()
	ctx.sigil(T_CLOSE_PAREN)
	ctx.space()

	var options []*Option
	if !ctx.trySigil(T_SEMI) {
		ctx.sigil(T_OPEN_CURL)
		ctx.space()
		for _ = range ctx.loop {
			if ctx.trySigil(T_CLOSE_CURL) {
				break
			}
			if ctx.trySigil(T_SEMI) {
				ctx.space()
				continue
			}
			option, ok := parseChild(ctx, parseOption)
			if ok {
				options = append(options, option)
			}
			if ctx.err != nil {
				return nil, ctx.err
			}
			if !ok {
				return nil, errExpectedSigil(
					T_CLOSE_CURL,
					ctx.token.Kind,
					string(ctx.readToken()),
					ctx.tokenSpan(),
				)
			}
			ctx.space()
		}
	}

	return ctx.finish(func(span Span, childNodes []Node) *Rpc {
		return &Rpc{
			span:             span,
			childNodes:       childNodes,
			name:             name,
			requestType:      requestType,
			requestIsStream:  requestIsStream,
			responseType:     responseType,
			responseIsStream: responseIsStream,
			options:          options,
		}
	})
}
