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
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"go.wiregen.dev/wiregen"
	"go.wiregen.dev/wiregen/compiler"
)

type cmdGenerate struct {
	flagSet *pflag.FlagSet

	includes      []string
	outDir        string
	buildServer   bool
	allowOptional bool
	packageName   string
	configPath    string
	pluginPath    string
}

func (*cmdGenerate) help() *commandHelp {
	return &commandHelp{
		usage:   "generate [options] SCHEMA...",
		summary: "Compile schema files and write generated Go source",
	}
}

func (cmd *cmdGenerate) flags(flags *pflag.FlagSet) {
	cmd.flagSet = flags
	flags.StringArrayVarP(&cmd.includes, "include", "I", nil,
		"Schema search directory; repeatable, first match wins")
	flags.StringVarP(&cmd.outDir, "out", "o", "",
		"Output directory for generated files")
	flags.BoolVar(&cmd.buildServer, "build-server", false,
		"Generate server interfaces and dispatch tables")
	flags.BoolVar(&cmd.allowOptional, "experimental-optional-presence", false,
		"Allow the 'optional' field label on scalar fields")
	flags.StringVar(&cmd.packageName, "package", "",
		"Override the generated Go package name")
	flags.StringVar(&cmd.configPath, "config", "",
		"Read defaults from a wiregen.yaml config file")
	flags.StringVar(&cmd.pluginPath, "plugin", "",
		"Generate with a WASI plugin instead of the builtin Go backend")
}

func (cmd *cmdGenerate) run(ctx context.Context, argv []string) int {
	cfg, err := loadConfig(cmd.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	schemas := argv
	if len(schemas) == 0 {
		schemas = cfg.Inputs
	}
	if len(schemas) == 0 {
		fmt.Fprintln(os.Stderr, "No schema files given")
		return 1
	}
	includes := cmd.includes
	if len(includes) == 0 {
		includes = cfg.Includes
	}
	outDir := cmd.outDir
	if !cmd.flagSet.Changed("out") && cfg.Out != "" {
		outDir = cfg.Out
	}
	if outDir == "" {
		fmt.Fprintln(os.Stderr,
			"No output directory specified (set --out= or 'out' in the config file)")
		return 1
	}
	buildServer := cmd.buildServer
	if !cmd.flagSet.Changed("build-server") {
		buildServer = cfg.BuildServer
	}
	allowOptional := cmd.allowOptional
	if !cmd.flagSet.Changed("experimental-optional-presence") {
		allowOptional = cfg.AllowOptional
	}

	builder := wiregen.Configure().
		BuildServer(buildServer).
		AllowExplicitPresence(allowOptional).
		OutDir(outDir).
		PackageName(cmd.packageName)

	if cmd.pluginPath == "" {
		if err := builder.Compile(schemas, includes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	loader := compiler.NewDirLoader(includes...)
	result := compiler.Compile(loader, schemas,
		compiler.AllowExplicitPresence(allowOptional))
	printDiagnostics(result)
	if len(result.Errors) > 0 {
		return 1
	}
	files, err := runPlugin(ctx, cmd.pluginPath,
		newPluginRequest(result.Graph, buildServer, cmd.packageName))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := builder.WriteFiles(files); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printDiagnostics(result compiler.Result) {
	for _, warn := range result.Warnings {
		fmt.Fprintln(os.Stderr,
			wiregen.Diagnostic(warn.File(), warn.Position(), warn.String()))
	}
	for _, err := range result.Errors {
		fmt.Fprintln(os.Stderr,
			wiregen.Diagnostic(err.File(), err.Position(), err.Error()))
	}
}
