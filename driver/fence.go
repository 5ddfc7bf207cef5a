// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"math"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// Fence is a GPU-to-host completion signal.
type Fence struct {
	device vk.Device
	fence  vk.Fence
}

// NewFence creates a fence, optionally in the signaled state.
func NewFence(dev *Device, signaled bool) (*Fence, error) {
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fci.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := check("vk.CreateFence()", Unsupported, vk.CreateFence(dev.Handle(), &fci, nil, &fence)); err != nil {
		return nil, err
	}
	return &Fence{device: dev.Handle(), fence: fence}, nil
}

// Handle returns the vulkan fence handle.
func (f *Fence) Handle() vk.Fence {
	return f.fence
}

// Reset returns the fence to the unsignaled state.
func (f *Fence) Reset() error {
	return check("vk.ResetFences()", InvalidData, vk.ResetFences(f.device, 1, []vk.Fence{f.fence}))
}

// Status polls the fence without blocking. A lost device reports an
// InvalidData error wrapping ErrDeviceLost and ends the session.
func (f *Fence) Status() (bool, error) {
	switch res := vk.GetFenceStatus(f.device, f.fence); res {
	case vk.Success:
		return true, nil
	case vk.NotReady:
		return false, nil
	case vk.ErrorDeviceLost:
		log.Error("device lost")
		return false, &Error{Op: "vk.GetFenceStatus()", Kind: InvalidData, Err: ErrDeviceLost}
	default:
		// Success and NotReady handled above, so no idea what happened.
		log.Errorf("unexpected fence status %d", res)
		return false, check("vk.GetFenceStatus()", InvalidData, res)
	}
}

// Wait blocks the calling thread until the fence signals. There is no
// timeout; callers that need cancellation must poll Status instead.
func (f *Fence) Wait() error {
	return check("vk.WaitForFences()", InvalidData,
		vk.WaitForFences(f.device, 1, []vk.Fence{f.fence}, vk.True, math.MaxUint64))
}

// Release destroys the fence.
func (f *Fence) Release() {
	vk.DestroyFence(f.device, f.fence, nil)
}
