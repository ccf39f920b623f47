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

package rpc_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.wiregen.dev/wiregen/rpc"
	"go.wiregen.dev/wiregen/wire"
)

func TestCodeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Canceled", rpc.Canceled.String())
	require.Equal(t, "InvalidArgument", rpc.InvalidArgument.String())
	require.Equal(t, "NotFound", rpc.NotFound.String())
	require.Equal(t, "Unimplemented", rpc.Unimplemented.String())
	require.Equal(t, "Internal", rpc.Internal.String())
	require.Equal(t, "Unavailable", rpc.Unavailable.String())
	require.Equal(t, "Code(99)", rpc.Code(99).String())
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := rpc.Errorf(rpc.NotFound, "no such thing %q", "x")
	require.Equal(t, rpc.NotFound, err.Code)
	require.Equal(t, `no such thing "x"`, err.Message())
	require.EqualError(t, err, `rpc error: code = NotFound desc = no such thing "x"`)
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, rpc.Code(0), rpc.ErrorCode(nil))
	require.Equal(t, rpc.Unavailable,
		rpc.ErrorCode(rpc.Errorf(rpc.Unavailable, "down")))
	require.Equal(t, rpc.NotFound,
		rpc.ErrorCode(fmt.Errorf("outer: %w", rpc.Errorf(rpc.NotFound, "gone"))))
	require.Equal(t, rpc.Canceled, rpc.ErrorCode(context.Canceled))
	require.Equal(t, rpc.Canceled, rpc.ErrorCode(context.DeadlineExceeded))
	require.Equal(t, rpc.Canceled,
		rpc.ErrorCode(fmt.Errorf("call: %w", context.Canceled)))
	require.Equal(t, rpc.Internal, rpc.ErrorCode(io.ErrUnexpectedEOF))
}

// textMsg is a minimal wire.Message, shaped like a generated struct with a
// single string field.
type textMsg struct {
	text string
}

func (m *textMsg) AppendWire(b []uint8) []uint8 {
	if m.text != "" {
		b = wire.AppendTag(b, 1, wire.BytesType)
		b = wire.AppendString(b, m.text)
	}
	return b
}

func (m *textMsg) UnmarshalWire(b []uint8) error {
	off := 0
	for off < len(b) {
		num, typ, n := wire.ConsumeTag(b[off:])
		if n < 0 {
			return wire.ParseError(off, n)
		}
		off += n
		if num == 1 && typ == wire.BytesType {
			text, n := wire.ConsumeString(b[off:])
			if n < 0 {
				return wire.ParseError(off, n)
			}
			m.text = text
			off += n
			continue
		}
		n = wire.SkipValue(b[off:], typ)
		if n < 0 {
			return wire.ParseError(off, n)
		}
		off += n
	}
	return nil
}

// echoServer is the shape of a generated server interface.
type echoServer interface {
	Echo(ctx context.Context, req *textMsg) (*textMsg, error)
	Chat(stream rpc.ServerStream) error
}

var echoServiceDesc = rpc.ServiceDesc{
	ServiceName: "test.Echo",
	HandlerType: (*echoServer)(nil),
	Methods: []rpc.MethodDesc{{
		MethodName: "Echo",
		Handler: func(impl any, ctx context.Context, dec func(wire.Message) error) (wire.Message, error) {
			req := new(textMsg)
			if err := dec(req); err != nil {
				return nil, err
			}
			return impl.(echoServer).Echo(ctx, req)
		},
	}},
	Streams: []rpc.StreamDesc{{
		StreamName: "Chat",
		Handler: func(impl any, stream rpc.ServerStream) error {
			return impl.(echoServer).Chat(stream)
		},
		ClientStreams: true,
		ServerStreams: true,
	}},
}

type echoService struct{}

func (echoService) Echo(ctx context.Context, req *textMsg) (*textMsg, error) {
	if req.text == "" {
		return nil, rpc.Errorf(rpc.InvalidArgument, "empty text")
	}
	return &textMsg{text: "echo: " + req.text}, nil
}

func (echoService) Chat(stream rpc.ServerStream) error {
	for {
		req := new(textMsg)
		if err := stream.Recv(req); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := stream.Send(&textMsg{text: strings.ToUpper(req.text)}); err != nil {
			return err
		}
	}
}

// loopback routes calls through a ServiceDesc in-process, standing in for
// a real transport on both halves of the connection.
type loopback struct {
	desc *rpc.ServiceDesc
	impl any
}

func (l *loopback) RegisterService(desc *rpc.ServiceDesc, impl any) {
	if l.desc != nil {
		panic("loopback: service already registered")
	}
	l.desc, l.impl = desc, impl
}

func (l *loopback) Invoke(ctx context.Context, method string, in, out wire.Message) error {
	if err := ctx.Err(); err != nil {
		return rpc.Errorf(rpc.Canceled, "%s", err)
	}
	name := method[strings.LastIndexByte(method, '/')+1:]
	for _, md := range l.desc.Methods {
		if md.MethodName != name {
			continue
		}
		buf := wire.Marshal(in)
		resp, err := md.Handler(l.impl, ctx, func(req wire.Message) error {
			return req.UnmarshalWire(buf)
		})
		if err != nil {
			return err
		}
		return out.UnmarshalWire(wire.Marshal(resp))
	}
	return rpc.Errorf(rpc.Unimplemented, "unknown method %s", method)
}

func (l *loopback) NewStream(ctx context.Context, desc *rpc.StreamDesc, method string) (rpc.ClientStream, error) {
	name := method[strings.LastIndexByte(method, '/')+1:]
	for ii := range l.desc.Streams {
		sd := &l.desc.Streams[ii]
		if sd.StreamName != name {
			continue
		}
		p := &streamPipe{
			ctx:  ctx,
			c2s:  make(chan []uint8, 8),
			s2c:  make(chan []uint8, 8),
			done: make(chan struct{}),
		}
		go func() {
			p.err = sd.Handler(l.impl, (*pipeServerStream)(p))
			close(p.done)
		}()
		return (*pipeClientStream)(p), nil
	}
	return nil, rpc.Errorf(rpc.Unimplemented, "unknown method %s", method)
}

type streamPipe struct {
	ctx  context.Context
	c2s  chan []uint8
	s2c  chan []uint8
	done chan struct{}
	err  error
}

type pipeClientStream streamPipe

func (s *pipeClientStream) Context() context.Context { return s.ctx }

func (s *pipeClientStream) Send(m wire.Message) error {
	select {
	case s.c2s <- wire.Marshal(m):
		return nil
	case <-s.ctx.Done():
		return rpc.Errorf(rpc.Canceled, "%s", s.ctx.Err())
	}
}

func (s *pipeClientStream) Recv(m wire.Message) error {
	select {
	case buf := <-s.s2c:
		return m.UnmarshalWire(buf)
	case <-s.done:
		select {
		case buf := <-s.s2c:
			return m.UnmarshalWire(buf)
		default:
		}
		if s.err != nil {
			return s.err
		}
		return io.EOF
	case <-s.ctx.Done():
		return rpc.Errorf(rpc.Canceled, "%s", s.ctx.Err())
	}
}

func (s *pipeClientStream) CloseSend() error {
	close(s.c2s)
	return nil
}

type pipeServerStream streamPipe

func (s *pipeServerStream) Context() context.Context { return s.ctx }

func (s *pipeServerStream) Send(m wire.Message) error {
	select {
	case s.s2c <- wire.Marshal(m):
		return nil
	case <-s.ctx.Done():
		return rpc.Errorf(rpc.Canceled, "%s", s.ctx.Err())
	}
}

func (s *pipeServerStream) Recv(m wire.Message) error {
	select {
	case buf, ok := <-s.c2s:
		if !ok {
			return io.EOF
		}
		return m.UnmarshalWire(buf)
	case <-s.ctx.Done():
		return rpc.Errorf(rpc.Canceled, "%s", s.ctx.Err())
	}
}

func newLoopback(t *testing.T) *loopback {
	t.Helper()
	conn := new(loopback)
	var registrar rpc.ServiceRegistrar = conn
	registrar.RegisterService(&echoServiceDesc, echoService{})
	return conn
}

func TestUnaryInvoke(t *testing.T) {
	t.Parallel()
	conn := newLoopback(t)

	resp := new(textMsg)
	err := conn.Invoke(context.Background(), "/test.Echo/Echo",
		&textMsg{text: "hello"}, resp)
	require.NoError(t, err)
	require.Equal(t, "echo: hello", resp.text)

	err = conn.Invoke(context.Background(), "/test.Echo/Echo",
		new(textMsg), resp)
	require.Equal(t, rpc.InvalidArgument, rpc.ErrorCode(err))
	require.EqualError(t, err, "rpc error: code = InvalidArgument desc = empty text")

	err = conn.Invoke(context.Background(), "/test.Echo/Vanish",
		new(textMsg), resp)
	require.Equal(t, rpc.Unimplemented, rpc.ErrorCode(err))
}

func TestUnaryInvokeCanceled(t *testing.T) {
	t.Parallel()
	conn := newLoopback(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := conn.Invoke(ctx, "/test.Echo/Echo", &textMsg{text: "hi"}, new(textMsg))
	require.Equal(t, rpc.Canceled, rpc.ErrorCode(err))
}

func TestStreamRoundTrip(t *testing.T) {
	t.Parallel()
	conn := newLoopback(t)

	stream, err := conn.NewStream(context.Background(),
		&echoServiceDesc.Streams[0], "/test.Echo/Chat")
	require.NoError(t, err)

	for _, text := range []string{"first", "second"} {
		require.NoError(t, stream.Send(&textMsg{text: text}))

		resp := new(textMsg)
		require.NoError(t, stream.Recv(resp))
		require.Equal(t, strings.ToUpper(text), resp.text)
	}

	require.NoError(t, stream.CloseSend())
	require.Equal(t, io.EOF, stream.Recv(new(textMsg)))
}

func TestStreamCanceled(t *testing.T) {
	t.Parallel()
	conn := newLoopback(t)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := conn.NewStream(ctx, &echoServiceDesc.Streams[0], "/test.Echo/Chat")
	require.NoError(t, err)

	cancel()
	err = stream.Recv(new(textMsg))
	require.Error(t, err)
	require.Equal(t, rpc.Canceled, rpc.ErrorCode(err))
}
