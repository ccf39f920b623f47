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
	"errors"
	"fmt"
)

// Code classifies why a call failed. The set is closed: transports and
// generated code never invent codes outside it.
type Code uint32

const (
	Canceled        Code = 1
	InvalidArgument Code = 3
	NotFound        Code = 5
	Unimplemented   Code = 12
	Internal        Code = 13
	Unavailable     Code = 14
)

func (c Code) String() string {
	switch c {
	case Canceled:
		return "Canceled"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case Unimplemented:
		return "Unimplemented"
	case Internal:
		return "Internal"
	case Unavailable:
		return "Unavailable"
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Error is the coded error type carried across call boundaries.
type Error struct {
	Code    Code
	message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error: code = %s desc = %s", e.Code, e.message)
}

// Message returns the human-readable description of the failure.
func (e *Error) Message() string {
	return e.message
}

// Errorf returns a coded error with an fmt.Sprintf message.
func Errorf(code Code, format string, a ...any) *Error {
	return &Error{Code: code, message: fmt.Sprintf(format, a...)}
}

// ErrorCode extracts the Code from an error chain. Context cancellation and
// deadline expiry report Canceled; any other non-nil error without a coded
// *Error in its chain reports Internal. A nil error reports zero.
func ErrorCode(err error) Code {
	if err == nil {
		return 0
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Canceled
	}
	return Internal
}
