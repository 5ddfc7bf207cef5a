// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"errors"

	vk "github.com/devblok/vulkan"
)

// ErrDeviceLost marks a lost device. Once observed the session is over,
// no further GPU operations may be attempted.
var ErrDeviceLost = errors.New("vulkan device lost")

// ErrorKind coarsely classifies driver failures.
type ErrorKind int

// Driver failure kinds.
const (
	// Unsupported means the driver rejected a creation request because
	// a capability or quota was exceeded.
	Unsupported ErrorKind = iota

	// InvalidData covers fence, query and device-lost conditions as
	// well as malformed read-back data.
	InvalidData

	// OutOfMemory means a host or device allocation failed.
	OutOfMemory
)

func (k ErrorKind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case InvalidData:
		return "invalid data"
	case OutOfMemory:
		return "out of memory"
	}
	return "unknown"
}

// Error is a kind-tagged driver failure. Op names the Vulkan call or the
// driver operation that failed.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsDeviceLost reports whether err carries a lost-device condition,
// which is terminal for the whole session.
func IsDeviceLost(err error) bool {
	return errors.Is(err, ErrDeviceLost)
}

// check converts a vulkan result into a kind-tagged error, nil on success.
func check(op string, kind ErrorKind, res vk.Result) error {
	if err := vk.Error(res); err != nil {
		return &Error{Op: op, Kind: kind, Err: err}
	}
	return nil
}
