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

// Package codegen renders a compiled schema graph into Go source.
//
// Generate is pure: it returns the complete output set and writes nothing
// itself. Output is deterministic, byte for byte, for identical input and
// options: declarations are emitted in declared order, fields are encoded
// in ascending number order, and no map iteration reaches the emitter.
package codegen

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"go.wiregen.dev/wiregen/compiler"
)

// Options configure one Generate invocation.
type Options struct {
	// BuildServer emits server interfaces, dispatch tables, and handler
	// thunks alongside the always-generated clients.
	BuildServer bool

	// PackageName overrides the generated Go package name. When empty,
	// the name is derived from the entry file's go_package option, else
	// its sanitized proto package, else the file's base name.
	PackageName string
}

// File is one generated source file.
type File struct {
	Path    string
	Content []uint8
}

// Generate renders every file of the graph into Go source, one output
// file per input schema file, all in a single Go package.
func Generate(graph *compiler.Graph, opts Options) ([]File, error) {
	if err := checkGeneratedNames(graph, opts); err != nil {
		return nil, err
	}
	goPackage := goPackageName(graph, opts.PackageName)

	outPaths := make(map[string]string)
	var files []File
	for _, file := range graph.Files {
		outPath := genFileName(file.Path)
		if prev, ok := outPaths[outPath]; ok {
			return nil, errors.Errorf(
				"schema files %q and %q both generate %q",
				prev, file.Path, outPath)
		}
		outPaths[outPath] = file.Path

		g := &codegen{
			graph:     graph,
			opts:      opts,
			file:      file,
			goPackage: goPackage,
		}
		g.emitFile()
		files = append(files, File{Path: outPath, Content: g.output.Bytes()})
		log.WithFields(log.Fields{
			"schema": file.Path,
			"out":    outPath,
		}).Debug("generated file")
	}
	return files, nil
}

type codegen struct {
	graph *compiler.Graph
	opts  Options
	file  *compiler.File

	goPackage string
	output    bytes.Buffer
}

func (g *codegen) line(s string) {
	g.output.WriteString(s)
	g.output.WriteByte('\n')
}

func (g *codegen) linef(format string, a ...any) {
	fmt.Fprintf(&g.output, format, a...)
	g.output.WriteByte('\n')
}

func (g *codegen) emitFile() {
	g.line("// Code generated by wiregen. DO NOT EDIT.")
	g.linef("// source: %s", g.file.Path)
	g.line("")
	g.linef("package %s", g.goPackage)

	g.emitImports()

	for _, idx := range g.file.Decls {
		decl := g.graph.Decl(idx)
		switch decl.Kind {
		case compiler.DeclMessage:
			g.emitMessage(decl)
		case compiler.DeclEnum:
			g.emitEnum(decl)
		case compiler.DeclService:
			g.emitService(decl)
		}
	}
}

func (g *codegen) emitImports() {
	var needMath, needStrconv, needWire bool
	var needContext, needRPC bool

	var scanDecl func(idx compiler.DeclIndex)
	scanDecl = func(idx compiler.DeclIndex) {
		decl := g.graph.Decl(idx)
		switch decl.Kind {
		case compiler.DeclMessage:
			needWire = true
			for _, field := range decl.Message.Fields {
				switch field.Type {
				case compiler.TypeDouble, compiler.TypeFloat:
					needMath = true
				}
			}
			for _, nested := range decl.Message.Nested {
				scanDecl(nested)
			}
		case compiler.DeclEnum:
			needStrconv = true
		case compiler.DeclService:
			needContext = true
			needRPC = true
			if g.opts.BuildServer {
				for _, method := range decl.Service.Methods {
					if method.Cardinality == compiler.Unary {
						needWire = true
					}
				}
			}
		}
	}
	for _, idx := range g.file.Decls {
		scanDecl(idx)
	}

	var stdlib, local []string
	if needContext {
		stdlib = append(stdlib, "context")
	}
	if needMath {
		stdlib = append(stdlib, "math")
	}
	if needStrconv {
		stdlib = append(stdlib, "strconv")
	}
	if needRPC {
		local = append(local, "go.wiregen.dev/wiregen/rpc")
	}
	if needWire {
		local = append(local, "go.wiregen.dev/wiregen/wire")
	}
	if len(stdlib) == 0 && len(local) == 0 {
		return
	}

	g.line("")
	g.line("import (")
	for _, imp := range stdlib {
		g.linef("\t%q", imp)
	}
	if len(stdlib) > 0 && len(local) > 0 {
		g.line("")
	}
	for _, imp := range local {
		g.linef("\t%q", imp)
	}
	g.line(")")
}

// genFileName maps a schema import path to its generated file name.
func genFileName(schemaPath string) string {
	base := path.Base(schemaPath)
	base = strings.TrimSuffix(base, path.Ext(base))
	return base + ".gen.go"
}

func goPackageName(graph *compiler.Graph, override string) string {
	if override != "" {
		return sanitizeIdent(override)
	}
	entry := graph.Files[len(graph.Files)-1]
	if gp := entry.GoPackage; gp != "" {
		if ii := strings.LastIndexByte(gp, ';'); ii >= 0 {
			return sanitizeIdent(gp[ii+1:])
		}
		return sanitizeIdent(path.Base(gp))
	}
	if entry.Package != "" {
		return sanitizeIdent(entry.Package)
	}
	base := path.Base(entry.Path)
	return sanitizeIdent(strings.TrimSuffix(base, path.Ext(base)))
}

func sanitizeIdent(s string) string {
	var out []uint8
	for ii := 0; ii < len(s); ii++ {
		c := s[ii]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_':
			out = append(out, c)
		case '0' <= c && c <= '9':
			if len(out) == 0 {
				out = append(out, '_')
			}
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}

// goCamelCase converts a lower_snake_case name to the exported Go form,
// with the same digit and underscore handling as protoc.
func goCamelCase(s string) string {
	var out []uint8
	for ii := 0; ii < len(s); ii++ {
		c := s[ii]
		switch {
		case c == '_' && ii+1 < len(s) && isLower(s[ii+1]):
			// Dropped; the next letter is capitalized below.
		case c == '_' && ii == 0:
			out = append(out, 'X')
		case '0' <= c && c <= '9':
			out = append(out, c)
		default:
			if isLower(c) {
				c -= 'a' - 'A'
			}
			out = append(out, c)
			for ; ii+1 < len(s) && isLower(s[ii+1]); ii++ {
				out = append(out, s[ii+1])
			}
		}
	}
	return string(out)
}

func isLower(c uint8) bool {
	return 'a' <= c && c <= 'z'
}

// fieldGoName is the exported struct field name for a schema field. Names
// that would collide with generated method names get a trailing
// underscore.
func fieldGoName(field *compiler.Field) string {
	name := goCamelCase(field.Name)
	switch name {
	case "AppendWire", "MarshalWire", "UnmarshalWire":
		name += "_"
	}
	return name
}

// checkGeneratedNames rejects schemas whose declarations map onto
// colliding Go identifiers. Cross-declaration type collisions are caught
// at compile time; this covers the names only code generation introduces.
func checkGeneratedNames(graph *compiler.Graph, opts Options) error {
	names := make(map[string]string)
	for _, decl := range graph.Decls {
		names[decl.GoName] = decl.Name
	}
	claim := func(goName, owner string) error {
		if prev, ok := names[goName]; ok {
			return errors.Errorf(
				"generated name %q for %s conflicts with %s",
				goName, owner, prev)
		}
		names[goName] = owner
		return nil
	}

	for _, decl := range graph.Decls {
		switch decl.Kind {
		case compiler.DeclMessage:
			seen := make(map[string]string)
			for _, field := range decl.Message.Fields {
				goName := fieldGoName(field)
				if prev, ok := seen[goName]; ok {
					return errors.Errorf(
						"fields %q and %q of message %s map to the same Go name %q",
						prev, field.Name, decl.Name, goName)
				}
				seen[goName] = field.Name
			}
		case compiler.DeclService:
			seen := make(map[string]string)
			for _, method := range decl.Service.Methods {
				goName := goCamelCase(method.Name)
				if prev, ok := seen[goName]; ok {
					return errors.Errorf(
						"methods %q and %q of service %s map to the same Go name %q",
						prev, method.Name, decl.Name, goName)
				}
				seen[goName] = method.Name
			}

			derived := []string{
				decl.GoName + "Client",
				"New" + decl.GoName + "Client",
			}
			if opts.BuildServer {
				derived = append(derived,
					decl.GoName+"Server",
					"Unimplemented"+decl.GoName+"Server",
					"Register"+decl.GoName+"Server",
					decl.GoName+"_ServiceDesc",
				)
			}
			for _, method := range decl.Service.Methods {
				if method.Cardinality == compiler.Unary {
					continue
				}
				goName := goCamelCase(method.Name)
				derived = append(derived, decl.GoName+"_"+goName+"Client")
				if opts.BuildServer {
					derived = append(derived, decl.GoName+"_"+goName+"Server")
				}
			}
			for _, goName := range derived {
				if err := claim(goName, "service "+decl.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
