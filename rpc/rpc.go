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

// Package rpc defines the transport-agnostic contracts that generated
// service stubs bind to. A transport implements ClientConn and
// ServiceRegistrar; generated code supplies typed clients, server
// interfaces, and the per-service dispatch table.
//
// Concurrency contract for handlers: a transport may invoke unary handlers
// concurrently across calls, so implementations must be safe for concurrent
// use. A streaming handler owns its stream for the duration of the call and
// is the only goroutine calling Send and Recv; both may block until the
// peer progresses or the stream's context is canceled. Cancellation is
// reported as an Error with code Canceled, never as a silent abort.
package rpc

import (
	"context"

	"go.wiregen.dev/wiregen/wire"
)

// ClientConn is implemented by a client transport. Method names are fully
// qualified, in the form "/package.Service/Method".
type ClientConn interface {
	// Invoke performs a unary call, blocking until out is populated with
	// the response or the call fails.
	Invoke(ctx context.Context, method string, in, out wire.Message) error

	// NewStream starts a streaming call described by desc.
	NewStream(ctx context.Context, desc *StreamDesc, method string) (ClientStream, error)
}

// ClientStream is the client half of a streaming call.
type ClientStream interface {
	Context() context.Context

	// Send transmits a message to the server. It blocks on flow control
	// and fails if the stream is done.
	Send(m wire.Message) error

	// Recv blocks until the next server message is decoded into m. It
	// fails with io.EOF once the server has finished sending.
	Recv(m wire.Message) error

	// CloseSend signals that no further messages will be sent. It must be
	// called at most once, and never concurrently with Send.
	CloseSend() error
}
