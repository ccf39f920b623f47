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

package rpc

import (
	"context"

	"go.wiregen.dev/wiregen/wire"
)

// MethodHandler is the generated thunk for one unary method. It allocates
// the concrete request type, fills it via dec, and invokes the bound
// implementation.
type MethodHandler func(impl any, ctx context.Context, dec func(wire.Message) error) (wire.Message, error)

// MethodDesc describes one unary method of a ServiceDesc.
type MethodDesc struct {
	MethodName string
	Handler    MethodHandler
}

// StreamHandler is the generated thunk for one streaming method.
type StreamHandler func(impl any, stream ServerStream) error

// StreamDesc describes one streaming method of a ServiceDesc. The two
// direction flags select the cardinality: server-streaming, client-
// streaming, or bidirectional when both are set.
type StreamDesc struct {
	StreamName    string
	Handler       StreamHandler
	ClientStreams bool
	ServerStreams bool
}

// ServiceDesc is the closed dispatch table for one generated service. A
// transport routes each inbound call to the matching entry; method names
// absent from the table are answered with code Unimplemented.
type ServiceDesc struct {
	// ServiceName is the fully qualified proto name, "package.Service".
	ServiceName string

	// HandlerType is a nil pointer to the generated server interface,
	// allowing a transport to type-check implementations at registration.
	HandlerType any

	Methods []MethodDesc
	Streams []StreamDesc
}

// ServerStream is the server half of a streaming call, owned by the
// handler for the duration of the call.
type ServerStream interface {
	Context() context.Context

	// Send transmits a message to the client.
	Send(m wire.Message) error

	// Recv blocks until the next client message is decoded into m. It
	// fails with io.EOF once the client has closed its send side.
	Recv(m wire.Message) error
}

// ServiceRegistrar binds a service implementation to a server transport.
// Each ServiceDesc is registered with exactly one implementation, before
// the transport starts serving.
type ServiceRegistrar interface {
	RegisterService(desc *ServiceDesc, impl any)
}
