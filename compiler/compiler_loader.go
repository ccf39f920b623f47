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
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Source is one schema file supplied by a Loader. CanonicalPath identifies
// the file within an import closure: two import paths naming the same file
// must yield the same CanonicalPath.
type Source struct {
	CanonicalPath string
	Data          []byte
}

// Loader resolves import paths to schema sources.
type Loader interface {
	Load(importPath string) (*Source, error)
}

// DirLoader loads schemas from an ordered list of include directories. The
// first directory containing the requested path wins. Entry files may also
// be given as direct filesystem paths; their canonical path is computed by
// stripping the longest matching include prefix.
type DirLoader struct {
	includes []string
}

func NewDirLoader(includes ...string) *DirLoader {
	if len(includes) == 0 {
		includes = []string{"."}
	}
	return &DirLoader{includes: includes}
}

func (l *DirLoader) Load(importPath string) (*Source, error) {
	for _, dir := range l.includes {
		osPath := filepath.Join(dir, filepath.FromSlash(importPath))
		data, err := os.ReadFile(osPath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "loading schema %q", importPath)
		}
		log.WithFields(log.Fields{
			"path": importPath,
			"file": osPath,
		}).Debug("loaded schema file")
		return &Source{
			CanonicalPath: path.Clean(filepath.ToSlash(importPath)),
			Data:          data,
		}, nil
	}

	data, err := os.ReadFile(filepath.FromSlash(importPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf(
				"schema %q not found in %s",
				importPath, strings.Join(l.includes, ":"),
			)
		}
		return nil, errors.Wrapf(err, "loading schema %q", importPath)
	}
	canonical := path.Clean(filepath.ToSlash(importPath))
	for _, dir := range l.includes {
		prefix := path.Clean(filepath.ToSlash(dir)) + "/"
		if rest, ok := strings.CutPrefix(canonical, prefix); ok {
			canonical = rest
			break
		}
	}
	log.WithFields(log.Fields{
		"path": importPath,
		"file": importPath,
	}).Debug("loaded schema file")
	return &Source{CanonicalPath: canonical, Data: data}, nil
}

// FSLoader loads schemas from an fs.FS, with import paths relative to its
// root.
type FSLoader struct {
	fsys fs.FS
}

func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

func (l *FSLoader) Load(importPath string) (*Source, error) {
	canonical := path.Clean(importPath)
	data, err := fs.ReadFile(l.fsys, canonical)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("schema %q not found", importPath)
		}
		return nil, errors.Wrapf(err, "loading schema %q", importPath)
	}
	return &Source{CanonicalPath: canonical, Data: data}, nil
}

func validImportPath(importPath string) bool {
	if importPath == "" || path.IsAbs(importPath) ||
		strings.Contains(importPath, "\\") {
		return false
	}
	clean := path.Clean(importPath)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}
