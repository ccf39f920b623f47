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

package codegen_test

import (
	"testing"

	"go.wiregen.dev/wiregen/codegen"
)

const routerSchema = `syntax = "proto3";

package nav;

message Point {
  double lat = 1;
  double lng = 2;
}

message Route {
  repeated Point points = 1;
}

message Summary {
  int64 total_m = 1;
}

service Router {
  rpc Plan(Point) returns (Route);
  rpc Watch(Point) returns (stream Route);
  rpc Upload(stream Point) returns (Summary);
  rpc Follow(stream Point) returns (stream Route);
}
`

func TestGenerateServiceClient(t *testing.T) {
	t.Parallel()

	content := generateOne(t, routerSchema, codegen.Options{})

	expectContains(t, content, "type RouterClient struct {")
	expectContains(t, content, "\tcc rpc.ClientConn\n")
	expectContains(t, content, "func NewRouterClient(cc rpc.ClientConn) *RouterClient {")

	expectContains(t, content,
		"func (c *RouterClient) Plan(ctx context.Context, in *Point) (*Route, error) {")
	expectContains(t, content,
		`if err := c.cc.Invoke(ctx, "/nav.Router/Plan", in, out); err != nil {`)

	expectContains(t, content,
		"func (c *RouterClient) Watch(ctx context.Context, in *Point) (*Router_WatchClient, error) {")
	expectContains(t, content, "type Router_WatchClient struct {")
	expectContains(t, content, "\trpc.ClientStream\n")
	expectContains(t, content, "func (x *Router_WatchClient) Recv() (*Route, error) {")

	expectContains(t, content,
		"func (c *RouterClient) Upload(ctx context.Context) (*Router_UploadClient, error) {")
	expectContains(t, content, "func (x *Router_UploadClient) Send(m *Point) error {")
	expectContains(t, content,
		"func (x *Router_UploadClient) CloseAndRecv() (*Summary, error) {")

	expectContains(t, content, "func (x *Router_FollowClient) Send(m *Point) error {")
	expectContains(t, content, "func (x *Router_FollowClient) Recv() (*Route, error) {")

	// Server stubs appear only when requested.
	expectNotContains(t, content, "RouterServer")
	expectNotContains(t, content, "ServiceDesc")
}

func TestGenerateServiceStreamDescs(t *testing.T) {
	t.Parallel()

	content := generateOne(t, routerSchema, codegen.Options{})

	expectContains(t, content, `		StreamName: "Watch",
		ServerStreams: true,
	}, "/nav.Router/Watch")`)
	expectContains(t, content, `		StreamName: "Upload",
		ClientStreams: true,
	}, "/nav.Router/Upload")`)
	expectContains(t, content, `		StreamName: "Follow",
		ClientStreams: true,
		ServerStreams: true,
	}, "/nav.Router/Follow")`)
}

func TestGenerateServiceServer(t *testing.T) {
	t.Parallel()

	content := generateOne(t, routerSchema, codegen.Options{BuildServer: true})

	expectContains(t, content, "type RouterServer interface {")
	expectContains(t, content, "\tPlan(context.Context, *Point) (*Route, error)\n")
	expectContains(t, content, "\tWatch(*Point, *Router_WatchServer) error\n")
	expectContains(t, content, "\tUpload(*Router_UploadServer) error\n")
	expectContains(t, content, "\tFollow(*Router_FollowServer) error\n")

	expectContains(t, content, "type UnimplementedRouterServer struct{}")
	expectContains(t, content,
		`return nil, rpc.Errorf(rpc.Unimplemented, "method Plan not implemented")`)
	expectContains(t, content,
		`return rpc.Errorf(rpc.Unimplemented, "method Follow not implemented")`)

	expectContains(t, content, "func (x *Router_WatchServer) Send(m *Route) error {")
	expectContains(t, content, "func (x *Router_UploadServer) Recv() (*Point, error) {")
	expectContains(t, content,
		"func (x *Router_UploadServer) SendAndClose(m *Summary) error {")
	expectContains(t, content, "func (x *Router_FollowServer) Send(m *Route) error {")
	expectContains(t, content, "func (x *Router_FollowServer) Recv() (*Point, error) {")

	expectContains(t, content,
		"func RegisterRouterServer(s rpc.ServiceRegistrar, srv RouterServer) {")
	expectContains(t, content, "s.RegisterService(&Router_ServiceDesc, srv)")
}

func TestGenerateServiceHandlers(t *testing.T) {
	t.Parallel()

	content := generateOne(t, routerSchema, codegen.Options{BuildServer: true})

	expectContains(t, content,
		"func _Router_Plan_Handler(impl any, ctx context.Context, dec func(wire.Message) error) (wire.Message, error) {")
	expectContains(t, content, "return impl.(RouterServer).Plan(ctx, req)")

	expectContains(t, content,
		"func _Router_Watch_Handler(impl any, stream rpc.ServerStream) error {")
	expectContains(t, content,
		"return impl.(RouterServer).Watch(req, &Router_WatchServer{stream})")
	expectContains(t, content,
		"return impl.(RouterServer).Upload(&Router_UploadServer{stream})")
	expectContains(t, content,
		"return impl.(RouterServer).Follow(&Router_FollowServer{stream})")
}

func TestGenerateServiceDesc(t *testing.T) {
	t.Parallel()

	content := generateOne(t, routerSchema, codegen.Options{BuildServer: true})

	expectContains(t, content, "var Router_ServiceDesc = rpc.ServiceDesc{")
	expectContains(t, content, "\tServiceName: \"nav.Router\",\n")
	expectContains(t, content, "\tHandlerType: (*RouterServer)(nil),\n")

	expectContains(t, content, `		{
			MethodName: "Plan",
			Handler: _Router_Plan_Handler,
		},`)
	expectContains(t, content, `		{
			StreamName: "Watch",
			Handler: _Router_Watch_Handler,
			ServerStreams: true,
		},`)
	expectContains(t, content, `		{
			StreamName: "Upload",
			Handler: _Router_Upload_Handler,
			ClientStreams: true,
		},`)
	expectContains(t, content, `		{
			StreamName: "Follow",
			Handler: _Router_Follow_Handler,
			ClientStreams: true,
			ServerStreams: true,
		},`)
}

func TestGenerateServiceImports(t *testing.T) {
	t.Parallel()

	source := `syntax = "proto3";

package ns;

message Note {
  string text = 1;
}

service Notes {
  rpc Add(Note) returns (Note);
}
`

	content := generateOne(t, source, codegen.Options{})
	expectContains(t, content, `import (
	"context"

	"go.wiregen.dev/wiregen/rpc"
	"go.wiregen.dev/wiregen/wire"
)`)

	content = generateOne(t, source, codegen.Options{BuildServer: true})
	expectContains(t, content, "dec func(wire.Message) error")
}

func TestGenerateUnaryOnlyService(t *testing.T) {
	t.Parallel()

	content := generateOne(t, `syntax = "proto3";

package kv;

message Pair {
  string key = 1;
  string value = 2;
}

service Store {
  rpc Put(Pair) returns (Pair);
  rpc Get(Pair) returns (Pair);
}
`, codegen.Options{BuildServer: true})

	expectContains(t, content, "\tMethods: []rpc.MethodDesc{\n")
	expectContains(t, content, "\tStreams: []rpc.StreamDesc{},\n")
	expectNotContains(t, content, "ClientStream")
	expectNotContains(t, content, "CloseAndRecv")
}
