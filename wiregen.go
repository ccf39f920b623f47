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

// Package wiregen compiles schema files into Go source as part of a
// build. It wraps the compiler and codegen packages behind the small
// surface a go:generate directive or build script needs:
//
//	err := wiregen.Configure().
//		BuildServer(true).
//		OutDir("internal/gen").
//		Compile([]string{"proto/services.proto"}, []string{"proto"})
//
// Compilation is all or nothing: every output file is rendered in
// memory before the first write, and any schema error aborts the run
// with the output directory untouched.
package wiregen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"go.wiregen.dev/wiregen/codegen"
	"go.wiregen.dev/wiregen/compiler"
	"go.wiregen.dev/wiregen/syntax"
)

// A Builder holds the configuration for one compile run. Builders are
// created by Configure and adjusted by chaining setters.
type Builder struct {
	buildServer   bool
	allowOptional bool
	outDir        string
	packageName   string
	logger        *log.Logger
}

// Configure returns a Builder with default settings: client stubs only,
// no explicit field presence, output to the current directory.
func Configure() *Builder {
	return &Builder{
		outDir: ".",
		logger: log.StandardLogger(),
	}
}

// BuildServer controls whether service declarations generate server
// interfaces and dispatch tables in addition to client stubs.
func (b *Builder) BuildServer(build bool) *Builder {
	b.buildServer = build
	return b
}

// AllowExplicitPresence permits the "optional" label on scalar fields.
func (b *Builder) AllowExplicitPresence(allow bool) *Builder {
	b.allowOptional = allow
	return b
}

// OutDir sets the directory generated files are written to. Missing
// directories are created on write.
func (b *Builder) OutDir(dir string) *Builder {
	b.outDir = dir
	return b
}

// PackageName overrides the Go package name of the generated files.
func (b *Builder) PackageName(name string) *Builder {
	b.packageName = name
	return b
}

// Logger sets the logger used for build progress. Nil restores the
// standard logger.
func (b *Builder) Logger(logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.StandardLogger()
	}
	b.logger = logger
	return b
}

// Compile compiles the given schema files and writes the generated Go
// sources into the configured output directory. Schemas may be direct
// filesystem paths or import paths relative to an include directory;
// imports are resolved against the includes in order, first match wins.
//
// If any schema in the import closure fails to compile, Compile returns
// an error describing every problem found and writes nothing.
func (b *Builder) Compile(schemas []string, includes []string) error {
	files, err := b.Generate(schemas, includes)
	if err != nil {
		return err
	}
	return b.WriteFiles(files)
}

// Generate runs the compile pipeline and returns the generated files
// without writing them.
func (b *Builder) Generate(schemas []string, includes []string) ([]codegen.File, error) {
	if len(schemas) == 0 {
		return nil, errors.New("no schema files given")
	}
	loader := compiler.NewDirLoader(includes...)
	result := compiler.Compile(loader, schemas,
		compiler.AllowExplicitPresence(b.allowOptional))
	for _, warn := range result.Warnings {
		b.logger.Warn(Diagnostic(warn.File(), warn.Position(), warn.String()))
	}
	if len(result.Errors) > 0 {
		return nil, compileError(result.Errors)
	}
	files, err := codegen.Generate(result.Graph, codegen.Options{
		BuildServer: b.buildServer,
		PackageName: b.packageName,
	})
	if err != nil {
		return nil, err
	}
	b.logger.WithFields(log.Fields{
		"schemas": len(schemas),
		"files":   len(files),
	}).Debug("generated output files")
	return files, nil
}

// WriteFiles writes generated files into the configured output
// directory. Every path is validated before the first write: a path
// that is absolute or contains a ".." component rejects the whole
// batch.
func (b *Builder) WriteFiles(files []codegen.File) error {
	for _, file := range files {
		if !validOutPath(file.Path) {
			return errors.Errorf("invalid generated file path %q", file.Path)
		}
	}
	for _, file := range files {
		osPath := filepath.Join(b.outDir, filepath.FromSlash(file.Path))
		if dir := filepath.Dir(osPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(err, "creating output directory")
			}
		}
		if err := os.WriteFile(osPath, file.Content, 0o644); err != nil {
			return errors.Wrapf(err, "writing %q", osPath)
		}
		b.logger.WithFields(log.Fields{
			"path": osPath,
			"size": len(file.Content),
		}).Debug("wrote generated file")
	}
	return nil
}

// CompileSchemas compiles schema files with default settings. It is
// shorthand for Configure().Compile(schemas, includes).
func CompileSchemas(schemas []string, includes []string) error {
	return Configure().Compile(schemas, includes)
}

// Diagnostic formats a compiler error or warning with its source
// position in the conventional file:line:column form. Diagnostics
// without an attributable file are returned as bare text.
func Diagnostic(file string, pos syntax.Position, text string) string {
	if file == "" {
		return text
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, pos.Line, pos.Column, text)
}

func compileError(errs []*compiler.Error) error {
	lines := make([]string, len(errs))
	for ii, err := range errs {
		lines[ii] = Diagnostic(err.File(), err.Position(), err.Error())
	}
	if len(lines) == 1 {
		return errors.New(lines[0])
	}
	return errors.Errorf(
		"%d schema errors:\n%s",
		len(errs), strings.Join(lines, "\n"),
	)
}

func validOutPath(outPath string) bool {
	if outPath == "" || path.IsAbs(outPath) ||
		strings.Contains(outPath, "\\") {
		return false
	}
	for _, part := range strings.Split(outPath, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
