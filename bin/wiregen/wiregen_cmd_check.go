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

	"go.wiregen.dev/wiregen/compiler"
)

type cmdCheck struct {
	includes      []string
	allowOptional bool
	dump          bool
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check [options] SCHEMA...",
		summary: "Compile schema files without generating code",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&cmd.includes, "include", "I", nil,
		"Schema search directory; repeatable, first match wins")
	flags.BoolVar(&cmd.allowOptional, "experimental-optional-presence", false,
		"Allow the 'optional' field label on scalar fields")
	flags.BoolVar(&cmd.dump, "dump", false,
		"Print the resolved schema model to stdout")
}

func (cmd *cmdCheck) run(ctx context.Context, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "No schema files given")
		return 1
	}

	loader := compiler.NewDirLoader(cmd.includes...)
	result := compiler.Compile(loader, argv,
		compiler.AllowExplicitPresence(cmd.allowOptional))
	printDiagnostics(result)
	if len(result.Errors) > 0 {
		return 1
	}
	if cmd.dump {
		if err := compiler.DumpGraph(os.Stdout, result.Graph); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}
