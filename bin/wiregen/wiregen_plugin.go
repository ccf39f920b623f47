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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	wasm "github.com/tetratelabs/wazero"
	wasi "github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"go.wiregen.dev/wiregen/codegen"
	"go.wiregen.dev/wiregen/compiler"
)

// pluginRequest is the JSON document handed to a plugin backend on
// stdin: the resolved schema model plus generation options. Declaration
// references are indices into Decls; -1 marks an absent reference.
type pluginRequest struct {
	Version     int    `json:"version"`
	BuildServer bool   `json:"build_server"`
	PackageName string `json:"package_name,omitempty"`

	Files []pluginSchema `json:"files"`
	Decls []pluginDecl   `json:"decls"`
}

type pluginSchema struct {
	Path      string   `json:"path"`
	Package   string   `json:"package,omitempty"`
	GoPackage string   `json:"go_package,omitempty"`
	Imports   []string `json:"imports,omitempty"`
	Decls     []int32  `json:"decls"`
}

type pluginDecl struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	GoName string `json:"go_name"`
	File   string `json:"file"`
	Parent int32  `json:"parent"`

	Fields  []pluginField     `json:"fields,omitempty"`
	Nested  []int32           `json:"nested,omitempty"`
	Values  []pluginEnumValue `json:"values,omitempty"`
	Methods []pluginMethod    `json:"methods,omitempty"`
}

type pluginField struct {
	Name       string `json:"name"`
	Number     int32  `json:"number"`
	Type       string `json:"type"`
	TypeDecl   int32  `json:"type_decl"`
	Presence   string `json:"presence"`
	Packed     bool   `json:"packed"`
	Deprecated bool   `json:"deprecated,omitempty"`
}

type pluginEnumValue struct {
	Name   string `json:"name"`
	Number int32  `json:"number"`
}

type pluginMethod struct {
	Name        string `json:"name"`
	Cardinality string `json:"cardinality"`
	Input       int32  `json:"input"`
	Output      int32  `json:"output"`
}

// pluginResponse is the JSON document a plugin backend writes to
// stdout. File content is base64, per encoding/json convention for
// byte slices.
type pluginResponse struct {
	Error string          `json:"error,omitempty"`
	Files []pluginOutFile `json:"files"`
}

type pluginOutFile struct {
	Path    string  `json:"path"`
	Content []uint8 `json:"content"`
}

func newPluginRequest(
	graph *compiler.Graph,
	buildServer bool,
	packageName string,
) *pluginRequest {
	req := &pluginRequest{
		Version:     1,
		BuildServer: buildServer,
		PackageName: packageName,
	}
	for _, file := range graph.Files {
		req.Files = append(req.Files, pluginSchema{
			Path:      file.Path,
			Package:   file.Package,
			GoPackage: file.GoPackage,
			Imports:   file.Imports,
			Decls:     declIndexes(file.Decls),
		})
	}
	for _, decl := range graph.Decls {
		pd := pluginDecl{
			Kind:   decl.Kind.String(),
			Name:   decl.Name,
			GoName: decl.GoName,
			File:   decl.File.Path,
			Parent: int32(decl.Parent),
		}
		switch {
		case decl.Message != nil:
			for _, field := range decl.Message.Fields {
				pd.Fields = append(pd.Fields, pluginField{
					Name:       field.Name,
					Number:     field.Number,
					Type:       field.Type.String(),
					TypeDecl:   int32(field.TypeDecl),
					Presence:   field.Presence.String(),
					Packed:     field.Packed,
					Deprecated: field.Deprecated,
				})
			}
			pd.Nested = declIndexes(decl.Message.Nested)
		case decl.Enum != nil:
			for _, value := range decl.Enum.Values {
				pd.Values = append(pd.Values, pluginEnumValue{
					Name:   value.Name,
					Number: value.Number,
				})
			}
		case decl.Service != nil:
			for _, method := range decl.Service.Methods {
				pd.Methods = append(pd.Methods, pluginMethod{
					Name:        method.Name,
					Cardinality: method.Cardinality.String(),
					Input:       int32(method.Input),
					Output:      int32(method.Output),
				})
			}
		}
		req.Decls = append(req.Decls, pd)
	}
	return req
}

func declIndexes(idxs []compiler.DeclIndex) []int32 {
	out := make([]int32, len(idxs))
	for ii, idx := range idxs {
		out[ii] = int32(idx)
	}
	return out
}

// runPlugin executes a WASI code generator module: the request is fed
// to the module's stdin and the response read from its stdout. The
// module's stderr passes through to the caller's.
func runPlugin(
	ctx context.Context,
	pluginPath string,
	req *pluginRequest,
) ([]codegen.File, error) {
	requestBuf, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding plugin request")
	}
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading plugin")
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)
	wasi.MustInstantiate(ctx, runtime)

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling plugin %q", pluginPath)
	}

	var stdout bytes.Buffer
	moduleConfig := wasm.NewModuleConfig().
		WithArgs(filepath.Base(pluginPath)).
		WithStdin(bytes.NewReader(requestBuf)).
		WithStdout(&stdout).
		WithStderr(os.Stderr)
	module, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrap(err, "running plugin")
		}
		if exitErr.ExitCode() != 0 {
			return nil, errors.Errorf(
				"plugin exited with code %d", exitErr.ExitCode())
		}
	} else {
		defer module.Close(ctx)
	}

	var resp pluginResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, errors.Wrap(err, "decoding plugin response")
	}
	if resp.Error != "" {
		return nil, errors.Errorf("plugin: %s", resp.Error)
	}
	if len(resp.Files) == 0 {
		return nil, errors.New("plugin did not generate any output files")
	}
	files := make([]codegen.File, len(resp.Files))
	for ii, file := range resp.Files {
		files[ii] = codegen.File{Path: file.Path, Content: file.Content}
	}
	return files, nil
}
