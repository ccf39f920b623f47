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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.wiregen.dev/wiregen/internal/testutil"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "wiregen.yaml")
	err := os.WriteFile(path, []uint8(`
inputs:
  - proto/services.proto
includes:
  - proto
out: internal/gen
build_server: true
allow_optional: true
`), 0o644)
	testutil.AssertNoError(t, err)

	cfg, err := loadConfig(path)
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []string{"proto/services.proto"}, cfg.Inputs)
	testutil.ExpectSliceEq(t, []string{"proto"}, cfg.Includes)
	testutil.ExpectEq(t, "internal/gen", cfg.Out)
	testutil.ExpectEq(t, true, cfg.BuildServer)
	testutil.ExpectEq(t, true, cfg.AllowOptional)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig("")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "", cfg.Out)
	testutil.ExpectEq(t, false, cfg.BuildServer)
}

func TestLoadConfigBadYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "wiregen.yaml")
	err := os.WriteFile(path, []uint8("inputs: [unclosed"), 0o644)
	testutil.AssertNoError(t, err)

	_, err = loadConfig(path)
	testutil.AssertError(t, err)
}

func TestNewPluginRequest(t *testing.T) {
	t.Parallel()
	graph := testutil.CompileSchemas(t, map[string]string{
		"blog.proto": `
syntax = "proto3";

package blog;

enum Status {
  STATUS_UNSPECIFIED = 0;
  STATUS_LIVE = 1;
}

message Post {
  string title = 1;
  Status status = 2;
  repeated uint32 tags = 3;

  message Meta {
    int64 created = 1;
  }
  Meta meta = 4;
}

service Blog {
  rpc Publish(Post) returns (Post);
  rpc Watch(Post) returns (stream Post);
}
`,
	}, []string{"blog.proto"})

	req := newPluginRequest(graph, true, "blogpb")
	testutil.ExpectEq(t, 1, req.Version)
	testutil.ExpectEq(t, true, req.BuildServer)
	testutil.ExpectEq(t, "blogpb", req.PackageName)

	if len(req.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(req.Files))
	}
	testutil.ExpectEq(t, "blog.proto", req.Files[0].Path)
	testutil.ExpectEq(t, "blog", req.Files[0].Package)
	testutil.ExpectEq(t, 3, len(req.Files[0].Decls))

	if len(req.Decls) != 4 {
		t.Fatalf("expected 4 declarations, got %d", len(req.Decls))
	}
	byName := make(map[string]pluginDecl, len(req.Decls))
	for _, decl := range req.Decls {
		byName[decl.Name] = decl
	}

	status := byName["blog.Status"]
	testutil.ExpectEq(t, "enum", status.Kind)
	if len(status.Values) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(status.Values))
	}
	testutil.ExpectEq(t, "STATUS_LIVE", status.Values[1].Name)
	testutil.ExpectEq(t, int32(1), status.Values[1].Number)

	post := byName["blog.Post"]
	testutil.ExpectEq(t, "message", post.Kind)
	testutil.ExpectEq(t, "Post", post.GoName)
	testutil.ExpectEq(t, "blog.proto", post.File)
	testutil.ExpectEq(t, int32(-1), post.Parent)
	if len(post.Fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(post.Fields))
	}
	testutil.ExpectEq(t, "string", post.Fields[0].Type)
	testutil.ExpectEq(t, "implicit", post.Fields[0].Presence)
	testutil.ExpectEq(t, "enum", post.Fields[1].Type)
	testutil.ExpectEq(t, true, post.Fields[2].Packed)
	testutil.ExpectEq(t, "repeated", post.Fields[2].Presence)
	testutil.ExpectEq(t, "message", post.Fields[3].Type)
	testutil.ExpectEq(t, 1, len(post.Nested))

	meta := byName["blog.Post.Meta"]
	testutil.ExpectEq(t, "Post_Meta", meta.GoName)

	blog := byName["blog.Blog"]
	testutil.ExpectEq(t, "service", blog.Kind)
	if len(blog.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(blog.Methods))
	}
	testutil.ExpectEq(t, "unary", blog.Methods[0].Cardinality)
	testutil.ExpectEq(t, "server_streaming", blog.Methods[1].Cardinality)
	testutil.ExpectEq(t, blog.Methods[0].Input, blog.Methods[0].Output)
}
