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

// Package compiler loads a schema file and its transitive imports, resolves
// every type reference, and produces an index-addressed Graph of message,
// enum, and service declarations with per-field wire models.
//
// Resolution is order-independent: the Graph never depends on declaration
// or file order beyond the declared sequences themselves. Errors accumulate
// so that a single run reports as many problems as possible; a non-empty
// error list means no Graph is returned.
package compiler

import (
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"go.wiregen.dev/wiregen/syntax"
	"go.wiregen.dev/wiregen/wire"
)

// MaxFieldNumber is the largest wire number a field may use.
const MaxFieldNumber = 536870911 // 2^29 - 1

// Field numbers in this range are reserved for implementation use.
const (
	implReservedLo = 19000
	implReservedHi = 19999
)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

// AllowExplicitPresence permits the 'optional' field label in loaded
// schemas.
func AllowExplicitPresence(allow bool) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.allowExplicitPresence = allow
	})
}

type CompileOptions struct {
	allowExplicitPresence bool
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

type Result struct {
	// Graph is nil when Errors is non-empty.
	Graph *Graph

	Errors   []*Error
	Warnings []*Warning
}

// Compile loads the entry schemas and their transitive import closure
// through the loader, then resolves and validates the combined schema.
func Compile(loader Loader, entries []string, opts ...CompileOption) Result {
	return NewCompileOptions(opts...).Compile(loader, entries)
}

func (opts *CompileOptions) Compile(loader Loader, entries []string) Result {
	c := &compiler{
		opts:   opts,
		loader: loader,
		files:  make(map[string]*schemaFile),
		graph: &Graph{
			declIndex: make(map[string]DeclIndex),
		},
	}
	for _, entry := range entries {
		c.loadFile(entry, nil, syntax.Span{})
	}
	for _, sf := range c.order {
		c.graph.Files = append(c.graph.Files, sf.file)
	}
	log.WithField("files", len(c.order)).Debug("schema closure loaded")

	c.registerDecls()
	c.compileFileOptions()
	c.compileDecls()
	c.checkImports()
	log.WithFields(log.Fields{
		"decls":    len(c.graph.Decls),
		"errors":   len(c.errors),
		"warnings": len(c.warnings),
	}).Debug("schema closure compiled")

	if len(c.errors) > 0 {
		return Result{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}
	return Result{
		Graph:    c.graph,
		Warnings: c.warnings,
	}
}

// DeclIndex addresses a declaration within Graph.Decls. Type references are
// indices rather than pointers so that recursive messages stay expressible
// without reference cycles.
type DeclIndex int32

// NoDecl marks an absent declaration reference.
const NoDecl DeclIndex = -1

type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclMessage
	DeclEnum
	DeclService
)

func (k DeclKind) String() string {
	switch k {
	case DeclMessage:
		return "message"
	case DeclEnum:
		return "enum"
	case DeclService:
		return "service"
	default:
		return "invalid"
	}
}

// Graph is the resolved model of a schema closure: a flat declaration
// table plus the per-file structure needed to generate one output file per
// input file.
type Graph struct {
	// Files lists the closure with imports ordered before importers.
	Files []*File

	// Decls is the index-addressed declaration table.
	Decls []*Decl

	declIndex map[string]DeclIndex
}

func (g *Graph) Decl(idx DeclIndex) *Decl {
	return g.Decls[idx]
}

// DeclByName looks up a declaration by fully-qualified name, without a
// leading dot.
func (g *Graph) DeclByName(name string) (DeclIndex, bool) {
	if idx, ok := g.declIndex[name]; ok {
		return idx, true
	}
	return NoDecl, false
}

type File struct {
	// Path is the canonical import path of the file.
	Path string

	// Package is the declared package name, or "" for the root namespace.
	Package string

	// GoPackage is the value of the go_package option, or "".
	GoPackage string

	// Imports lists the canonical paths of direct imports.
	Imports []string

	// Decls indexes the file's top-level declarations in declared order.
	Decls []DeclIndex
}

type Decl struct {
	Kind DeclKind

	// Name is the fully-qualified name, without a leading dot.
	Name string

	// GoName is the generated Go type name: the declaration chain below
	// the package, each component exported, joined by underscores.
	GoName string

	File   *File
	Parent DeclIndex

	// Exactly one of the following is non-nil, matching Kind.
	Message *MessageDecl
	Enum    *EnumDecl
	Service *ServiceDecl
}

type MessageDecl struct {
	Fields []*Field

	// Nested indexes nested messages and enums in declared order.
	Nested []DeclIndex
}

type EnumDecl struct {
	Values []*EnumValue
}

type EnumValue struct {
	Name   string
	Number int32
}

type ServiceDecl struct {
	Methods []*Method
}

type Method struct {
	Name        string
	Cardinality Cardinality
	Input       DeclIndex
	Output      DeclIndex
}

// Cardinality is the streaming shape of an rpc method.
type Cardinality uint8

const (
	Unary Cardinality = iota
	ServerStreaming
	ClientStreaming
	BidiStreaming
)

func (c Cardinality) String() string {
	switch c {
	case ServerStreaming:
		return "server_streaming"
	case ClientStreaming:
		return "client_streaming"
	case BidiStreaming:
		return "bidi_streaming"
	default:
		return "unary"
	}
}

func (c Cardinality) ClientStreams() bool {
	return c == ClientStreaming || c == BidiStreaming
}

func (c Cardinality) ServerStreams() bool {
	return c == ServerStreaming || c == BidiStreaming
}

type FieldType uint8

const (
	TypeInvalid FieldType = iota
	TypeDouble
	TypeFloat
	TypeInt32
	TypeInt64
	TypeUint32
	TypeUint64
	TypeSint32
	TypeSint64
	TypeFixed32
	TypeFixed64
	TypeSfixed32
	TypeSfixed64
	TypeBool
	TypeString
	TypeBytes
	TypeMessage
	TypeEnum
)

var fieldTypeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeDouble:   "double",
	TypeFloat:    "float",
	TypeInt32:    "int32",
	TypeInt64:    "int64",
	TypeUint32:   "uint32",
	TypeUint64:   "uint64",
	TypeSint32:   "sint32",
	TypeSint64:   "sint64",
	TypeFixed32:  "fixed32",
	TypeFixed64:  "fixed64",
	TypeSfixed32: "sfixed32",
	TypeSfixed64: "sfixed64",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeBytes:    "bytes",
	TypeMessage:  "message",
	TypeEnum:     "enum",
}

func (t FieldType) String() string {
	if int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return "invalid"
}

var scalarTypes = map[string]FieldType{
	"double":   TypeDouble,
	"float":    TypeFloat,
	"int32":    TypeInt32,
	"int64":    TypeInt64,
	"uint32":   TypeUint32,
	"uint64":   TypeUint64,
	"sint32":   TypeSint32,
	"sint64":   TypeSint64,
	"fixed32":  TypeFixed32,
	"fixed64":  TypeFixed64,
	"sfixed32": TypeSfixed32,
	"sfixed64": TypeSfixed64,
	"bool":     TypeBool,
	"string":   TypeString,
	"bytes":    TypeBytes,
}

// Presence is the field presence policy.
type Presence uint8

const (
	// PresenceImplicit fields have no presence: the zero value is not
	// encoded and decodes indistinguishably from absence.
	PresenceImplicit Presence = iota

	// PresenceOptional fields track presence explicitly and encode
	// whenever present, including at the zero value.
	PresenceOptional

	// PresenceMessage fields track presence through their pointer.
	PresenceMessage

	// PresenceRepeated fields have no per-element presence.
	PresenceRepeated
)

func (p Presence) String() string {
	switch p {
	case PresenceOptional:
		return "optional"
	case PresenceMessage:
		return "message"
	case PresenceRepeated:
		return "repeated"
	default:
		return "implicit"
	}
}

type Field struct {
	Name   string
	Number int32
	Type   FieldType

	// TypeDecl indexes the referenced declaration for message and enum
	// fields, and is NoDecl for scalars.
	TypeDecl DeclIndex

	Presence   Presence
	Packed     bool
	Deprecated bool
}

// WireType is the wire type of one encoded element of the field. Packed
// repeated fields encode the whole sequence as a single BytesType record.
func (f *Field) WireType() wire.Type {
	switch f.Type {
	case TypeDouble, TypeFixed64, TypeSfixed64:
		return wire.Fixed64Type
	case TypeFloat, TypeFixed32, TypeSfixed32:
		return wire.Fixed32Type
	case TypeString, TypeBytes, TypeMessage:
		return wire.BytesType
	default:
		return wire.VarintType
	}
}

// Tag is the field's key varint: the number shifted left three bits, ORed
// with the element wire type.
func (f *Field) Tag() uint32 {
	return uint32(f.Number)<<3 | uint32(f.WireType())
}

type compiler struct {
	opts   *CompileOptions
	loader Loader

	files map[string]*schemaFile
	order []*schemaFile
	stack []string

	graph *Graph
	meta  []declMeta

	errors   []*Error
	warnings []*Warning
}

type schemaFile struct {
	file        *File
	src         []uint8
	nodes       *fileNodes
	loading     bool
	usedImports map[string]bool
	importSpans map[string]syntax.Span
}

type fileNodes struct {
	packageDecl *syntax.PackageDecl
	imports     []*syntax.Import
	options     []*syntax.Option

	// decls holds messages, enums, and services in declared order.
	decls []syntax.Node
}

func newFileNodes(parsedSchema *syntax.Schema) *fileNodes {
	nodes := &fileNodes{}
	for node := range parsedSchema.ChildNodes() {
		switch node := node.(type) {
		case *syntax.PackageDecl:
			nodes.packageDecl = node
		case *syntax.Import:
			nodes.imports = append(nodes.imports, node)
		case *syntax.Option:
			nodes.options = append(nodes.options, node)
		case *syntax.Message, *syntax.Enum, *syntax.Service:
			nodes.decls = append(nodes.decls, node)
		default:
		}
	}
	return nodes
}

type declMeta struct {
	sf       *schemaFile
	node     syntax.Node
	nameSpan syntax.Span
}

func (c *compiler) err(sf *schemaFile, err error) {
	e := err.(*Error)
	e.file = sf.file.Path
	e.pos = syntax.PositionOf(sf.src, e.span)
	c.errors = append(c.errors, e)
}

func (c *compiler) warn(sf *schemaFile, warning *Warning) {
	warning.file = sf.file.Path
	warning.pos = syntax.PositionOf(sf.src, warning.span)
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) loadFile(
	importPath string,
	importer *schemaFile,
	span syntax.Span,
) {
	src, err := c.loader.Load(importPath)
	if err != nil {
		loadErr := errSchemaNotLoaded(importPath, err, span)
		if importer != nil {
			importer.usedImports[path.Clean(importPath)] = true
			c.err(importer, loadErr)
		} else {
			c.errors = append(c.errors, loadErr.(*Error))
		}
		return
	}

	canonical := src.CanonicalPath
	if sf, ok := c.files[canonical]; ok {
		if sf.loading {
			importer.usedImports[canonical] = true
			c.err(importer, errImportCycle(
				importChain(c.stack, canonical),
				span,
			))
		}
		return
	}

	sf := &schemaFile{
		file:        &File{Path: canonical},
		src:         src.Data,
		loading:     true,
		usedImports: make(map[string]bool),
		importSpans: make(map[string]syntax.Span),
	}
	c.files[canonical] = sf

	parsed, err := syntax.Parse(
		src.Data,
		syntax.AllowExplicitPresence(c.opts.allowExplicitPresence),
	)
	if err != nil {
		c.errors = append(c.errors, errSyntax(
			canonical,
			src.Data,
			err.(*syntax.Error),
		))
		if importer != nil {
			importer.usedImports[canonical] = true
		}
		sf.loading = false
		return
	}
	sf.nodes = newFileNodes(parsed)
	if pkg := sf.nodes.packageDecl; pkg != nil {
		sf.file.Package = pkg.Name()
	}

	c.stack = append(c.stack, canonical)
	for _, importNode := range sf.nodes.imports {
		importedPath := importNode.Path().Get()
		importSpan := importNode.Path().Span()
		if !validImportPath(importedPath) {
			c.err(sf, errImportPathInvalid(importedPath, importSpan))
			continue
		}
		clean := path.Clean(importedPath)
		if _, dup := sf.importSpans[clean]; dup {
			c.warn(sf, warnDuplicateImport(clean, importSpan))
			continue
		}
		sf.importSpans[clean] = importSpan
		sf.file.Imports = append(sf.file.Imports, clean)
		c.loadFile(importedPath, sf, importSpan)
	}
	c.stack = c.stack[:len(c.stack)-1]
	sf.loading = false
	c.order = append(c.order, sf)
}

func importChain(stack []string, target string) []string {
	start := 0
	for ii, p := range stack {
		if p == target {
			start = ii
			break
		}
	}
	chain := append([]string{}, stack[start:]...)
	return append(chain, target)
}

func (c *compiler) registerDecls() {
	for _, sf := range c.order {
		scope := sf.file.Package
		for _, node := range sf.nodes.decls {
			var idx DeclIndex
			switch node := node.(type) {
			case *syntax.Message:
				idx = c.registerMessage(sf, node, scope, NoDecl)
			case *syntax.Enum:
				idx = c.registerEnum(sf, node, scope, NoDecl)
			case *syntax.Service:
				idx = c.registerService(sf, node, scope)
			}
			if idx != NoDecl {
				sf.file.Decls = append(sf.file.Decls, idx)
			}
		}
	}
	c.checkGoNames()
}

func (c *compiler) registerMessage(
	sf *schemaFile,
	node *syntax.Message,
	scope string,
	parent DeclIndex,
) DeclIndex {
	idx := c.registerDecl(sf, DeclMessage, node, scope, parent)
	if idx == NoDecl {
		return NoDecl
	}
	decl := c.graph.Decls[idx]
	decl.Message = &MessageDecl{}

	fqn := decl.Name
	for child := range node.ChildNodes() {
		var nested DeclIndex
		switch child := child.(type) {
		case *syntax.Message:
			nested = c.registerMessage(sf, child, fqn, idx)
		case *syntax.Enum:
			nested = c.registerEnum(sf, child, fqn, idx)
		default:
			continue
		}
		if nested != NoDecl {
			decl.Message.Nested = append(decl.Message.Nested, nested)
		}
	}
	return idx
}

func (c *compiler) registerEnum(
	sf *schemaFile,
	node *syntax.Enum,
	scope string,
	parent DeclIndex,
) DeclIndex {
	idx := c.registerDecl(sf, DeclEnum, node, scope, parent)
	if idx == NoDecl {
		return NoDecl
	}
	c.graph.Decls[idx].Enum = &EnumDecl{}
	return idx
}

func (c *compiler) registerService(
	sf *schemaFile,
	node *syntax.Service,
	scope string,
) DeclIndex {
	idx := c.registerDecl(sf, DeclService, node, scope, NoDecl)
	if idx == NoDecl {
		return NoDecl
	}
	c.graph.Decls[idx].Service = &ServiceDecl{}
	return idx
}

type namedDecl interface {
	syntax.Node
	Name() *syntax.Ident
}

func (c *compiler) registerDecl(
	sf *schemaFile,
	kind DeclKind,
	node namedDecl,
	scope string,
	parent DeclIndex,
) DeclIndex {
	name := node.Name().Get()
	fqn := name
	if scope != "" {
		fqn = scope + "." + name
	}

	if prev, conflict := c.graph.declIndex[fqn]; conflict {
		prevDecl := c.graph.Decls[prev]
		c.err(sf, errDeclNameConflict(
			kind,
			fqn,
			prevDecl.Kind,
			prevDecl.File.Path,
			node.Name().Span(),
		))
		return NoDecl
	}
	if _, shadow := scalarTypes[name]; shadow {
		c.warn(sf, warnDeclShadowsScalar(name, node.Name().Span()))
	}

	idx := DeclIndex(len(c.graph.Decls))
	c.graph.Decls = append(c.graph.Decls, &Decl{
		Kind:   kind,
		Name:   fqn,
		GoName: goTypeName(fqn, sf.file.Package),
		File:   sf.file,
		Parent: parent,
	})
	c.graph.declIndex[fqn] = idx
	c.meta = append(c.meta, declMeta{
		sf:       sf,
		node:     node,
		nameSpan: node.Name().Span(),
	})
	return idx
}

// goTypeName flattens the declaration chain below the package into the
// generated Go type name: Outer.Inner becomes Outer_Inner.
func goTypeName(fqn, pkg string) string {
	rel := fqn
	if pkg != "" {
		rel = strings.TrimPrefix(fqn, pkg+".")
	}
	parts := strings.Split(rel, ".")
	for ii, part := range parts {
		parts[ii] = exportName(part)
	}
	return strings.Join(parts, "_")
}

func exportName(name string) string {
	if name == "" {
		return name
	}
	if name[0] == '_' {
		return "X" + name
	}
	if name[0] >= 'a' && name[0] <= 'z' {
		return string(name[0]-('a'-'A')) + name[1:]
	}
	return name
}

func (c *compiler) checkGoNames() {
	byGoName := make(map[string]*Decl, len(c.graph.Decls))
	for ii, decl := range c.graph.Decls {
		if prev, conflict := byGoName[decl.GoName]; conflict {
			c.err(c.meta[ii].sf, errGeneratedNameConflict(
				decl.GoName,
				decl.Name,
				prev.Name,
				c.meta[ii].nameSpan,
			))
			continue
		}
		byGoName[decl.GoName] = decl
	}
}

func (c *compiler) compileFileOptions() {
	for _, sf := range c.order {
		for _, opt := range sf.nodes.options {
			name := opt.Name().Get()
			switch name {
			case "go_package":
				value, ok := opt.Value().(*syntax.StrLit)
				if !ok {
					c.err(sf, errOptionValueInvalid(
						name,
						"a string",
						opt.Value().Span(),
					))
					continue
				}
				if sf.file.GoPackage != "" {
					c.err(sf, errOptionConflict(name, opt.Name().Span()))
					continue
				}
				sf.file.GoPackage = value.Get()
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
	}
}

func (c *compiler) compileDecls() {
	for ii, decl := range c.graph.Decls {
		meta := c.meta[ii]
		switch decl.Kind {
		case DeclMessage:
			c.compileMessage(meta.sf, decl, meta.node.(*syntax.Message))
		case DeclEnum:
			c.compileEnum(meta.sf, decl, meta.node.(*syntax.Enum))
		case DeclService:
			c.compileService(meta.sf, decl, meta.node.(*syntax.Service))
		}
	}
}

// resolveType resolves a type reference the way protobuf scopes names: the
// whole reference is tried against each enclosing scope from innermost to
// the root, and a leading dot forces a fully-qualified lookup.
func (c *compiler) resolveType(
	sf *schemaFile,
	scope string,
	ref *syntax.TypeName,
) (DeclIndex, bool) {
	name := ref.Name()
	if ref.IsFullyQualified() {
		if idx, ok := c.graph.declIndex[name]; ok {
			c.markUsed(sf, idx)
			return idx, true
		}
		c.err(sf, errTypeNotFound("."+name, ref.Span()))
		return NoDecl, false
	}

	for prefix := scope; ; prefix = parentScope(prefix) {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		if idx, ok := c.graph.declIndex[full]; ok {
			c.markUsed(sf, idx)
			return idx, true
		}
		if prefix == "" {
			break
		}
	}
	c.err(sf, errTypeNotFound(name, ref.Span()))
	return NoDecl, false
}

func parentScope(scope string) string {
	if ii := strings.LastIndexByte(scope, '.'); ii >= 0 {
		return scope[:ii]
	}
	return ""
}

func (c *compiler) markUsed(sf *schemaFile, idx DeclIndex) {
	defFile := c.graph.Decls[idx].File
	if defFile != sf.file {
		sf.usedImports[defFile.Path] = true
	}
}

func (c *compiler) checkImports() {
	for _, sf := range c.order {
		for _, importedPath := range sf.file.Imports {
			if !sf.usedImports[importedPath] {
				c.warn(sf, warnUnusedImport(
					importedPath,
					sf.importSpans[importedPath],
				))
			}
		}
	}
}

type optionNode interface {
	Name() *syntax.Ident
	Value() syntax.Node
}

func boolOptionValue(opt optionNode) (bool, bool) {
	ident, ok := opt.Value().(*syntax.Ident)
	if !ok {
		return false, false
	}
	switch ident.Get() {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
