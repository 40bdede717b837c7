// Copyright 2024 The Tink Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"errors"
	"fmt"
)

// Code is the stable error kind every registry failure carries, mirroring
// the boundary codes spec'd for this library: OK, INVALID_ARGUMENT,
// NOT_FOUND, ALREADY_EXISTS, UNIMPLEMENTED, UNKNOWN.
type Code int

const (
	CodeOK Code = iota
	CodeInvalidArgument
	CodeNotFound
	CodeAlreadyExists
	CodeUnimplemented
	CodeUnknown
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeAlreadyExists:
		return "ALREADY_EXISTS"
	case CodeUnimplemented:
		return "UNIMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// Error is the structured result every registry operation returns on
// failure. The registry never retries and never logs; every Error carries
// enough context (normally the offending type URL or primitive name) for
// an operator to diagnose without reading source.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// CodeOf extracts the Code carried by err, or CodeUnknown if err is nil or
// not a *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func notFoundf(format string, a ...any) error {
	return &Error{Code: CodeNotFound, Msg: "registry: " + fmt.Sprintf(format, a...)}
}

func invalidArgumentf(format string, a ...any) error {
	return &Error{Code: CodeInvalidArgument, Msg: "registry: " + fmt.Sprintf(format, a...)}
}

func alreadyExistsf(format string, a ...any) error {
	return &Error{Code: CodeAlreadyExists, Msg: "registry: " + fmt.Sprintf(format, a...)}
}
