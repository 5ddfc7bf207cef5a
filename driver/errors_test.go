// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{
		Op:   "vk.CreateBuffer()",
		Kind: OutOfMemory,
		Err:  errors.New("vulkan error: out of device memory"),
	}
	want := "vk.CreateBuffer(): vulkan error: out of device memory"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	bare := &Error{Op: "vk.CreateFence()", Kind: Unsupported}
	if bare.Error() != "vk.CreateFence(): unsupported" {
		t.Errorf("got %q", bare.Error())
	}
}

func TestErrorKindString(t *testing.T) {
	kinds := map[ErrorKind]string{
		Unsupported:   "unsupported",
		InvalidData:   "invalid data",
		OutOfMemory:   "out of memory",
		ErrorKind(42): "unknown",
	}
	for kind, want := range kinds {
		if kind.String() != want {
			t.Errorf("kind %d: got %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestIsDeviceLost(t *testing.T) {
	wrapped := &Error{
		Op:   "vk.GetFenceStatus()",
		Kind: InvalidData,
		Err:  fmt.Errorf("%w", ErrDeviceLost),
	}
	if !IsDeviceLost(wrapped) {
		t.Error("a wrapped device-lost error must be detected")
	}
	if !IsDeviceLost(ErrDeviceLost) {
		t.Error("the sentinel itself must be detected")
	}
	if IsDeviceLost(errors.New("fence not ready")) {
		t.Error("unrelated errors are not device-lost")
	}
	if IsDeviceLost(nil) {
		t.Error("nil is not device-lost")
	}
}
