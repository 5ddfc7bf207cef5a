// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	vk "github.com/devblok/vulkan"
)

// CommandPool owns one recyclable vulkan command pool bound to a
// queue family.
type CommandPool struct {
	device vk.Device
	pool   vk.CommandPool
	family uint32
}

// NewCommandPool creates a command pool for the given queue family.
// Buffers allocated from it are individually resettable.
func NewCommandPool(dev *Device, family uint32) (*CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}

	var pool vk.CommandPool
	if err := check("vk.CreateCommandPool()", Unsupported, vk.CreateCommandPool(dev.Handle(), &cpci, nil, &pool)); err != nil {
		return nil, err
	}
	return &CommandPool{
		device: dev.Handle(),
		pool:   pool,
		family: family,
	}, nil
}

// Handle returns the vulkan command pool handle.
func (p *CommandPool) Handle() vk.CommandPool {
	return p.pool
}

// Family returns the queue family the pool was created for.
func (p *CommandPool) Family() uint32 {
	return p.family
}

// Reset returns all buffers allocated from the pool to the initial
// state. Recorded commands must not leak across frames.
func (p *CommandPool) Reset() error {
	return check("vk.ResetCommandPool()", InvalidData, vk.ResetCommandPool(p.device, p.pool, 0))
}

// AllocateBuffers allocates count primary command buffers from the pool.
func (p *CommandPool) AllocateBuffers(count uint32) ([]vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}

	buffers := make([]vk.CommandBuffer, count)
	if err := check("vk.AllocateCommandBuffers()", Unsupported, vk.AllocateCommandBuffers(p.device, &cbai, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

// FreeBuffers returns buffers allocated with AllocateBuffers to the pool.
func (p *CommandPool) FreeBuffers(buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(p.device, p.pool, uint32(len(buffers)), buffers)
}

// Release destroys the command pool and every buffer allocated from it.
func (p *CommandPool) Release() {
	vk.DestroyCommandPool(p.device, p.pool, nil)
}
