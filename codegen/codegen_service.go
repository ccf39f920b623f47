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

package codegen

import (
	"go.wiregen.dev/wiregen/compiler"
)

func (g *codegen) emitService(decl *compiler.Decl) {
	g.emitServiceClient(decl)
	if g.opts.BuildServer {
		g.emitServiceServer(decl)
	}
}

func (g *codegen) msgName(idx compiler.DeclIndex) string {
	return g.graph.Decl(idx).GoName
}

// fullMethod is the wire-level method identifier passed to the transport.
func fullMethod(decl *compiler.Decl, method *compiler.Method) string {
	return "/" + decl.Name + "/" + method.Name
}

func (g *codegen) emitServiceClient(decl *compiler.Decl) {
	client := decl.GoName + "Client"

	g.line("")
	g.linef("type %s struct {", client)
	g.line("\tcc rpc.ClientConn")
	g.line("}")
	g.line("")
	g.linef("func New%s(cc rpc.ClientConn) *%s {", client, client)
	g.linef("\treturn &%s{cc: cc}", client)
	g.line("}")

	for _, method := range decl.Service.Methods {
		goName := goCamelCase(method.Name)
		in := g.msgName(method.Input)
		out := g.msgName(method.Output)

		if method.Cardinality == compiler.Unary {
			g.line("")
			g.linef("func (c *%s) %s(ctx context.Context, in *%s) (*%s, error) {",
				client, goName, in, out)
			g.linef("\tout := new(%s)", out)
			g.linef("\tif err := c.cc.Invoke(ctx, %q, in, out); err != nil {",
				fullMethod(decl, method))
			g.line("\t\treturn nil, err")
			g.line("\t}")
			g.line("\treturn out, nil")
			g.line("}")
			continue
		}

		wrapper := decl.GoName + "_" + goName + "Client"
		g.line("")
		if method.Cardinality == compiler.ServerStreaming {
			g.linef("func (c *%s) %s(ctx context.Context, in *%s) (*%s, error) {",
				client, goName, in, wrapper)
		} else {
			g.linef("func (c *%s) %s(ctx context.Context) (*%s, error) {",
				client, goName, wrapper)
		}
		g.line("\tstream, err := c.cc.NewStream(ctx, &rpc.StreamDesc{")
		g.linef("\t\tStreamName: %q,", method.Name)
		if method.Cardinality.ClientStreams() {
			g.line("\t\tClientStreams: true,")
		}
		if method.Cardinality.ServerStreams() {
			g.line("\t\tServerStreams: true,")
		}
		g.linef("\t}, %q)", fullMethod(decl, method))
		g.line("\tif err != nil {")
		g.line("\t\treturn nil, err")
		g.line("\t}")
		if method.Cardinality == compiler.ServerStreaming {
			g.line("\tif err := stream.Send(in); err != nil {")
			g.line("\t\treturn nil, err")
			g.line("\t}")
			g.line("\tif err := stream.CloseSend(); err != nil {")
			g.line("\t\treturn nil, err")
			g.line("\t}")
		}
		g.linef("\treturn &%s{stream}, nil", wrapper)
		g.line("}")

		g.line("")
		g.linef("type %s struct {", wrapper)
		g.line("\trpc.ClientStream")
		g.line("}")

		if method.Cardinality.ClientStreams() {
			g.line("")
			g.linef("func (x *%s) Send(m *%s) error {", wrapper, in)
			g.line("\treturn x.ClientStream.Send(m)")
			g.line("}")
		}
		if method.Cardinality == compiler.ClientStreaming {
			g.line("")
			g.linef("func (x *%s) CloseAndRecv() (*%s, error) {", wrapper, out)
			g.line("\tif err := x.ClientStream.CloseSend(); err != nil {")
			g.line("\t\treturn nil, err")
			g.line("\t}")
			g.emitClientRecvBody(out)
			g.line("}")
		} else {
			g.line("")
			g.linef("func (x *%s) Recv() (*%s, error) {", wrapper, out)
			g.emitClientRecvBody(out)
			g.line("}")
		}
	}
}

func (g *codegen) emitClientRecvBody(out string) {
	g.linef("\tout := new(%s)", out)
	g.line("\tif err := x.ClientStream.Recv(out); err != nil {")
	g.line("\t\treturn nil, err")
	g.line("\t}")
	g.line("\treturn out, nil")
}

func (g *codegen) emitServiceServer(decl *compiler.Decl) {
	server := decl.GoName + "Server"

	g.line("")
	g.linef("type %s interface {", server)
	for _, method := range decl.Service.Methods {
		goName := goCamelCase(method.Name)
		in := g.msgName(method.Input)
		out := g.msgName(method.Output)
		switch method.Cardinality {
		case compiler.Unary:
			g.linef("\t%s(context.Context, *%s) (*%s, error)", goName, in, out)
		case compiler.ServerStreaming:
			g.linef("\t%s(*%s, *%s_%sServer) error", goName, in, decl.GoName, goName)
		default:
			g.linef("\t%s(*%s_%sServer) error", goName, decl.GoName, goName)
		}
	}
	g.line("}")

	g.line("")
	g.line("// Unimplemented" + server + " answers every method with code")
	g.line("// Unimplemented. Embed it to keep implementations forward compatible.")
	g.linef("type Unimplemented%s struct{}", server)
	for _, method := range decl.Service.Methods {
		goName := goCamelCase(method.Name)
		in := g.msgName(method.Input)
		out := g.msgName(method.Output)
		g.line("")
		switch method.Cardinality {
		case compiler.Unary:
			g.linef("func (Unimplemented%s) %s(context.Context, *%s) (*%s, error) {",
				server, goName, in, out)
			g.linef("\treturn nil, rpc.Errorf(rpc.Unimplemented, \"method %s not implemented\")",
				goName)
		case compiler.ServerStreaming:
			g.linef("func (Unimplemented%s) %s(*%s, *%s_%sServer) error {",
				server, goName, in, decl.GoName, goName)
			g.linef("\treturn rpc.Errorf(rpc.Unimplemented, \"method %s not implemented\")",
				goName)
		default:
			g.linef("func (Unimplemented%s) %s(*%s_%sServer) error {",
				server, goName, decl.GoName, goName)
			g.linef("\treturn rpc.Errorf(rpc.Unimplemented, \"method %s not implemented\")",
				goName)
		}
		g.line("}")
	}

	for _, method := range decl.Service.Methods {
		if method.Cardinality == compiler.Unary {
			continue
		}
		goName := goCamelCase(method.Name)
		in := g.msgName(method.Input)
		out := g.msgName(method.Output)
		wrapper := decl.GoName + "_" + goName + "Server"

		g.line("")
		g.linef("type %s struct {", wrapper)
		g.line("\trpc.ServerStream")
		g.line("}")
		if method.Cardinality.ServerStreams() {
			g.line("")
			g.linef("func (x *%s) Send(m *%s) error {", wrapper, out)
			g.line("\treturn x.ServerStream.Send(m)")
			g.line("}")
		}
		if method.Cardinality.ClientStreams() {
			g.line("")
			g.linef("func (x *%s) Recv() (*%s, error) {", wrapper, in)
			g.linef("\treq := new(%s)", in)
			g.line("\tif err := x.ServerStream.Recv(req); err != nil {")
			g.line("\t\treturn nil, err")
			g.line("\t}")
			g.line("\treturn req, nil")
			g.line("}")
		}
		if method.Cardinality == compiler.ClientStreaming {
			g.line("")
			g.linef("func (x *%s) SendAndClose(m *%s) error {", wrapper, out)
			g.line("\treturn x.ServerStream.Send(m)")
			g.line("}")
		}
	}

	for _, method := range decl.Service.Methods {
		goName := goCamelCase(method.Name)
		handler := "_" + decl.GoName + "_" + goName + "_Handler"
		g.line("")
		if method.Cardinality == compiler.Unary {
			g.linef("func %s(impl any, ctx context.Context, dec func(wire.Message) error) (wire.Message, error) {",
				handler)
			g.linef("\treq := new(%s)", g.msgName(method.Input))
			g.line("\tif err := dec(req); err != nil {")
			g.line("\t\treturn nil, err")
			g.line("\t}")
			g.linef("\treturn impl.(%s).%s(ctx, req)", server, goName)
			g.line("}")
			continue
		}
		wrapper := decl.GoName + "_" + goName + "Server"
		g.linef("func %s(impl any, stream rpc.ServerStream) error {", handler)
		if method.Cardinality == compiler.ServerStreaming {
			g.linef("\treq := new(%s)", g.msgName(method.Input))
			g.line("\tif err := stream.Recv(req); err != nil {")
			g.line("\t\treturn err")
			g.line("\t}")
			g.linef("\treturn impl.(%s).%s(req, &%s{stream})", server, goName, wrapper)
		} else {
			g.linef("\treturn impl.(%s).%s(&%s{stream})", server, goName, wrapper)
		}
		g.line("}")
	}

	g.line("")
	g.linef("func Register%s(s rpc.ServiceRegistrar, srv %s) {", server, server)
	g.linef("\ts.RegisterService(&%s_ServiceDesc, srv)", decl.GoName)
	g.line("}")

	g.line("")
	g.linef("var %s_ServiceDesc = rpc.ServiceDesc{", decl.GoName)
	g.linef("\tServiceName: %q,", decl.Name)
	g.linef("\tHandlerType: (*%s)(nil),", server)

	var unary, streaming []*compiler.Method
	for _, method := range decl.Service.Methods {
		if method.Cardinality == compiler.Unary {
			unary = append(unary, method)
		} else {
			streaming = append(streaming, method)
		}
	}
	if len(unary) == 0 {
		g.line("\tMethods: []rpc.MethodDesc{},")
	} else {
		g.line("\tMethods: []rpc.MethodDesc{")
		for _, method := range unary {
			g.line("\t\t{")
			g.linef("\t\t\tMethodName: %q,", method.Name)
			g.linef("\t\t\tHandler: _%s_%s_Handler,", decl.GoName, goCamelCase(method.Name))
			g.line("\t\t},")
		}
		g.line("\t},")
	}
	if len(streaming) == 0 {
		g.line("\tStreams: []rpc.StreamDesc{},")
	} else {
		g.line("\tStreams: []rpc.StreamDesc{")
		for _, method := range streaming {
			g.line("\t\t{")
			g.linef("\t\t\tStreamName: %q,", method.Name)
			g.linef("\t\t\tHandler: _%s_%s_Handler,", decl.GoName, goCamelCase(method.Name))
			if method.Cardinality.ClientStreams() {
				g.line("\t\t\tClientStreams: true,")
			}
			if method.Cardinality.ServerStreams() {
				g.line("\t\t\tServerStreams: true,")
			}
			g.line("\t\t},")
		}
		g.line("\t},")
	}
	g.line("}")
}
