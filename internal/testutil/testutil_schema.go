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

package testutil

import (
	"testing"
	"testing/fstest"

	"go.wiregen.dev/wiregen/compiler"
)

// SchemaFS builds an in-memory schema filesystem from sources keyed by
// import path.
func SchemaFS(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for path, data := range files {
		fsys[path] = &fstest.MapFile{Data: []uint8(data)}
	}
	return fsys
}

// CompileSchemas compiles entry schemas against in-memory sources and
// fails the test on any schema error.
func CompileSchemas(
	t *testing.T,
	files map[string]string,
	entries []string,
	opts ...compiler.CompileOption,
) *compiler.Graph {
	t.Helper()
	loader := compiler.NewFSLoader(SchemaFS(files))
	result := compiler.Compile(loader, entries, opts...)
	for _, err := range result.Errors {
		ExpectNoError(t, err)
	}
	if len(result.Errors) > 0 {
		t.FailNow()
	}
	return result.Graph
}
