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
	"iter"
	"math"
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

type Node interface {
	Span() Span

	ChildNodes() iter.Seq[Node]

	privChildren() []Node

	UnparseTo(buf *bytes.Buffer)
}

func Unparse(node Node) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

func Walk(node Node, walkFn func(Node) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for _, child := range node.privChildren() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

func iterChildren(childNodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(_yield func(Node) bool) {}
}

func (*leafNode) privChildren() []Node {
	return nil
}

type Space struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Space)(nil)

func (n *Space) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Space) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

type Newline struct {
	leafNode
	start uint32
	crlf  bool
}

var _ Node = (*Newline)(nil)

func (n *Newline) Span() Span {
	var len uint32
	if n.crlf {
		len = 2
	} else {
		len = 1
	}
	return Span{
		start: n.start,
		len:   len,
	}
}

func (n *Newline) UnparseTo(buf *bytes.Buffer) {
	if n.crlf {
		buf.WriteString("\r\n")
	} else {
		buf.WriteByte('\n')
	}
}

type Comment struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Comment)(nil)

func (n *Comment) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Comment) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Comment) Text() string {
	return n.raw
}

func (n *Comment) IsBlock() bool {
	return strings.HasPrefix(n.raw, "/*")
}

type IntLit struct {
	leafNode
	raw   string
	value uint64
	start uint32
}

var _ Node = (*IntLit)(nil)

func (n *IntLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *IntLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newIntLit(token string, kind TokenKind, start uint32) (*IntLit, error) {
	base := 10
	valueStr := token
	if valueStr[0] == '-' {
		valueStr = valueStr[1:]
	}
	switch kind {
	case T_OCT_INT_LIT:
		base = 8
		valueStr = valueStr[1:]
	case T_HEX_INT_LIT:
		base = 16
		valueStr = valueStr[2:]
	}

	value, err := strconv.ParseUint(valueStr, base, 64)
	if err != nil {
		if token[0] == '-' {
			return nil, errIntLitTooNegative(token, start)
		}
		return nil, errIntLitTooPositive(token, start)
	}
	if token[0] == '-' {
		if value > (uint64(math.MaxInt64) + 1) {
			return nil, errIntLitTooNegative(token, start)
		}
		value = uint64(-int64(value))
	}

	return &IntLit{
		raw:   token,
		value: value,
		start: start,
	}, nil
}

func (n *IntLit) IsNegative() bool {
	return n.raw[0] == '-'
}

func (n *IntLit) GetUint32() (uint32, bool) {
	if n.raw[0] != '-' && n.value <= math.MaxUint32 {
		return uint32(n.value), true
	}
	return 0, false
}

func (n *IntLit) GetUint64() (uint64, bool) {
	if n.raw[0] != '-' {
		return n.value, true
	}
	return 0, false
}

func (n *IntLit) GetInt32() (int32, bool) {
	if n.raw[0] == '-' {
		v := int64(n.value)
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int32(v), true
		}
		return 0, false
	}
	if n.value <= math.MaxInt32 {
		return int32(n.value), true
	}
	return 0, false
}

func (n *IntLit) GetInt64() (int64, bool) {
	if n.raw[0] == '-' || n.value <= math.MaxInt64 {
		return int64(n.value), true
	}
	return 0, false
}

type StrLit struct {
	leafNode
	raw   string
	value string
	start uint32
}

var _ Node = (*StrLit)(nil)

func (n *StrLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *StrLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newStrLit(token string, start uint32, flags uint8) (*StrLit, error) {
	value := token[1 : len(token)-1]
	if flags&tokenFlagStrHasNoEscapes != 0 {
		return &StrLit{
			raw:   token,
			value: value,
			start: start,
		}, nil
	}

	invalid := func() (*StrLit, error) {
		return nil, errStrLitInvalidEscape(start, token)
	}

	var buf bytes.Buffer
	for len(value) > 0 {
		c := value[0]
		if c != '\\' {
			buf.WriteByte(c)
			value = value[1:]
			continue
		}
		if len(value) < 2 {
			return invalid()
		}
		e := value[1]
		value = value[2:]

		switch e {
		case 'a':
			buf.WriteByte(0x07)
		case 'b':
			buf.WriteByte(0x08)
		case 'f':
			buf.WriteByte(0x0C)
		case 'n':
			buf.WriteByte(0x0A)
		case 'r':
			buf.WriteByte(0x0D)
		case 't':
			buf.WriteByte(0x09)
		case 'v':
			buf.WriteByte(0x0B)
		case '\\', '\'', '"', '?':
			buf.WriteByte(e)
		case 'x', 'X':
			hexLen := 0
			for hexLen < 2 && hexLen < len(value) && isHexDigit(value[hexLen]) {
				hexLen += 1
			}
			if hexLen == 0 {
				return invalid()
			}
			b, err := strconv.ParseUint(value[:hexLen], 16, 8)
			if err != nil {
				return invalid()
			}
			buf.WriteByte(uint8(b))
			value = value[hexLen:]
		case '0', '1', '2', '3', '4', '5', '6', '7':
			extra := 0
			for extra < 2 && extra < len(value) && value[extra] >= '0' && value[extra] <= '7' {
				extra += 1
			}
			b, err := strconv.ParseUint(string(e)+value[:extra], 8, 8)
			if err != nil {
				return invalid()
			}
			buf.WriteByte(uint8(b))
			value = value[extra:]
		default:
			return invalid()
		}
	}
	return &StrLit{
		raw:   token,
		value: buf.String(),
		start: start,
	}, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func (n *StrLit) Get() string {
	return n.value
}

type Sigil struct {
	leafNode
	raw   byte
	start uint32
}

var _ Node = (*Sigil)(nil)

func (n *Sigil) Span() Span {
	return Span{
		start: n.start,
		len:   1,
	}
}

func (n *Sigil) UnparseTo(buf *bytes.Buffer) {
	buf.WriteByte(n.raw)
}

type Ident struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Ident)(nil)

func (n *Ident) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Ident) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Ident) Get() string {
	return n.raw
}

type Keyword struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Keyword)(nil)

func (n *Keyword) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Keyword) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

// TypeName is a possibly dotted reference to a scalar, message, or enum
// type. A leading dot anchors resolution at the root namespace.
type TypeName struct {
	span       Span
	childNodes []Node

	idents     []*Ident
	leadingDot bool
}

var _ Node = (*TypeName)(nil)

func (n *TypeName) Span() Span {
	return n.span
}

func (n *TypeName) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *TypeName) privChildren() []Node {
	return n.childNodes
}

func (n *TypeName) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *TypeName) Idents() []*Ident {
	return n.idents
}

func (n *TypeName) IsFullyQualified() bool {
	return n.leadingDot
}

// Name returns the dotted reference without any leading dot.
func (n *TypeName) Name() string {
	parts := make([]string, 0, len(n.idents))
	for _, ident := range n.idents {
		parts = append(parts, ident.Get())
	}
	return strings.Join(parts, ".")
}

type Schema struct {
	span       Span
	childNodes []Node
}

var _ Node = (*Schema)(nil)

func (n *Schema) Span() Span {
	return n.span
}

func (n *Schema) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Schema) privChildren() []Node {
	return n.childNodes
}

func (n *Schema) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

type SyntaxDecl struct {
	span       Span
	childNodes []Node
	value      *StrLit
}

var _ Node = (*SyntaxDecl)(nil)

func (n *SyntaxDecl) Span() Span {
	return n.span
}

func (n *SyntaxDecl) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *SyntaxDecl) privChildren() []Node {
	return n.childNodes
}

func (n *SyntaxDecl) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *SyntaxDecl) Value() *StrLit {
	return n.value
}

type PackageDecl struct {
	span       Span
	childNodes []Node
	idents     []*Ident
}

var _ Node = (*PackageDecl)(nil)

func (n *PackageDecl) Span() Span {
	return n.span
}

func (n *PackageDecl) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *PackageDecl) privChildren() []Node {
	return n.childNodes
}

func (n *PackageDecl) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *PackageDecl) Idents() []*Ident {
	return n.idents
}

func (n *PackageDecl) Name() string {
	parts := make([]string, 0, len(n.idents))
	for _, ident := range n.idents {
		parts = append(parts, ident.Get())
	}
	return strings.Join(parts, ".")
}

type Import struct {
	span       Span
	childNodes []Node
	path       *StrLit
}

var _ Node = (*Import)(nil)

func (n *Import) Span() Span {
	return n.span
}

func (n *Import) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Import) privChildren() []Node {
	return n.childNodes
}

func (n *Import) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Import) Path() *StrLit {
	return n.path
}

type Option struct {
	span       Span
	childNodes []Node
	name       *Ident
	value      Node
}

var _ Node = (*Option)(nil)

func (n *Option) Span() Span {
	return n.span
}

func (n *Option) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Option) privChildren() []Node {
	return n.childNodes
}

func (n *Option) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Option) Name() *Ident {
	return n.name
}

func (n *Option) Value() Node {
	return n.value
}

type Message struct {
	span       Span
	childNodes []Node
	name       *Ident
	fields     []*Field
	messages   []*Message
	enums      []*Enum
	reserved   []*Reserved
	options    []*Option
}

var _ Node = (*Message)(nil)

func (n *Message) Span() Span {
	return n.span
}

func (n *Message) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Message) privChildren() []Node {
	return n.childNodes
}

func (n *Message) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Message) Name() *Ident {
	return n.name
}

func (n *Message) Fields() []*Field {
	return n.fields
}

func (n *Message) Messages() []*Message {
	return n.messages
}

func (n *Message) Enums() []*Enum {
	return n.enums
}

func (n *Message) Reserved() []*Reserved {
	return n.reserved
}

func (n *Message) Options() []*Option {
	return n.options
}

type fieldLabel uint8

const (
	labelNone fieldLabel = iota
	labelOptional
	labelRepeated
)

type Field struct {
	span       Span
	childNodes []Node
	label      fieldLabel
	typeName   *TypeName
	name       *Ident
	number     *IntLit
	options    []*FieldOption
}

var _ Node = (*Field)(nil)

func (n *Field) Span() Span {
	return n.span
}

func (n *Field) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Field) privChildren() []Node {
	return n.childNodes
}

func (n *Field) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Field) IsOptional() bool {
	return n.label == labelOptional
}

func (n *Field) IsRepeated() bool {
	return n.label == labelRepeated
}

func (n *Field) TypeName() *TypeName {
	return n.typeName
}

func (n *Field) Name() *Ident {
	return n.name
}

func (n *Field) Number() *IntLit {
	return n.number
}

func (n *Field) Options() []*FieldOption {
	return n.options
}

type FieldOption struct {
	span       Span
	childNodes []Node
	name       *Ident
	value      Node
}

var _ Node = (*FieldOption)(nil)

func (n *FieldOption) Span() Span {
	return n.span
}

func (n *FieldOption) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *FieldOption) privChildren() []Node {
	return n.childNodes
}

func (n *FieldOption) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *FieldOption) Name() *Ident {
	return n.name
}

func (n *FieldOption) Value() Node {
	return n.value
}

type Reserved struct {
	span       Span
	childNodes []Node
	ranges     []*ReservedRange
	names      []*StrLit
}

var _ Node = (*Reserved)(nil)

func (n *Reserved) Span() Span {
	return n.span
}

func (n *Reserved) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Reserved) privChildren() []Node {
	return n.childNodes
}

func (n *Reserved) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Reserved) Ranges() []*ReservedRange {
	return n.ranges
}

func (n *Reserved) Names() []*StrLit {
	return n.names
}

type ReservedRange struct {
	span       Span
	childNodes []Node
	lo         *IntLit
	hi         *IntLit
	toMax      bool
}

var _ Node = (*ReservedRange)(nil)

func (n *ReservedRange) Span() Span {
	return n.span
}

func (n *ReservedRange) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *ReservedRange) privChildren() []Node {
	return n.childNodes
}

func (n *ReservedRange) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *ReservedRange) Lo() *IntLit {
	return n.lo
}

// Hi is nil for single-number ranges and for ranges ending in 'max'.
func (n *ReservedRange) Hi() *IntLit {
	return n.hi
}

func (n *ReservedRange) ToMax() bool {
	return n.toMax
}

type Enum struct {
	span       Span
	childNodes []Node
	name       *Ident
	values     []*EnumValue
	reserved   []*Reserved
	options    []*Option
}

var _ Node = (*Enum)(nil)

func (n *Enum) Span() Span {
	return n.span
}

func (n *Enum) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Enum) privChildren() []Node {
	return n.childNodes
}

func (n *Enum) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Enum) Name() *Ident {
	return n.name
}

func (n *Enum) Values() []*EnumValue {
	return n.values
}

func (n *Enum) Reserved() []*Reserved {
	return n.reserved
}

func (n *Enum) Options() []*Option {
	return n.options
}

type EnumValue struct {
	span       Span
	childNodes []Node
	name       *Ident
	value      *IntLit
	options    []*FieldOption
}

var _ Node = (*EnumValue)(nil)

func (n *EnumValue) Span() Span {
	return n.span
}

func (n *EnumValue) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *EnumValue) privChildren() []Node {
	return n.childNodes
}

func (n *EnumValue) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *EnumValue) Name() *Ident {
	return n.name
}

func (n *EnumValue) Value() *IntLit {
	return n.value
}

func (n *EnumValue) Options() []*FieldOption {
	return n.options
}

type Service struct {
	span       Span
	childNodes []Node
	name       *Ident
	rpcs       []*Rpc
	options    []*Option
}

var _ Node = (*Service)(nil)

func (n *Service) Span() Span {
	return n.span
}

func (n *Service) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Service) privChildren() []Node {
	return n.childNodes
}

func (n *Service) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Service) Name() *Ident {
	return n.name
}

func (n *Service) Rpcs() []*Rpc {
	return n.rpcs
}

func (n *Service) Options() []*Option {
	return n.options
}

type Rpc struct {
	span             Span
	childNodes       []Node
	name             *Ident
	requestType      *TypeName
	requestIsStream  bool
	responseType     *TypeName
	responseIsStream bool
	options          []*Option
}

var _ Node = (*Rpc)(nil)

func (n *Rpc) Span() Span {
	return n.span
}

func (n *Rpc) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Rpc) privChildren() []Node {
	return n.childNodes
}

func (n *Rpc) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

func (n *Rpc) Name() *Ident {
	return n.name
}

func (n *Rpc) RequestType() *TypeName {
	return n.requestType
}

func (n *Rpc) RequestIsStream() bool {
	return n.requestIsStream
}

func (n *Rpc) ResponseType() *TypeName {
	return n.responseType
}

func (n *Rpc) ResponseIsStream() bool {
	return n.responseIsStream
}

func (n *Rpc) Options() []*Option {
	return n.options
}
