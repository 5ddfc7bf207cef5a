// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// Buffer implements a generic data buffer with host-visible backing
// memory. Capacity may exceed what a reusing caller asked for.
type Buffer struct {
	device   vk.Device
	buffer   vk.Buffer
	memory   *Memory
	capacity uint64
	usage    vk.BufferUsageFlagBits
}

// NewBuffer creates, allocates and binds a new buffer of the given size.
func NewBuffer(dev *Device, size uint64, usage vk.BufferUsageFlagBits) (*Buffer, error) {
	bci := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if err := check("vk.CreateBuffer()", Unsupported, vk.CreateBuffer(dev.Handle(), &bci, nil, &buffer)); err != nil {
		return nil, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev.Handle(), buffer, &req)
	req.Deref()

	memory, err := dev.Alloc().Malloc(req, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		vk.DestroyBuffer(dev.Handle(), buffer, nil)
		return nil, err
	}

	if err := check("vk.BindBufferMemory()", InvalidData,
		vk.BindBufferMemory(dev.Handle(), buffer, memory.Get(), 0)); err != nil {
		memory.Release()
		vk.DestroyBuffer(dev.Handle(), buffer, nil)
		return nil, err
	}

	return &Buffer{
		device:   dev.Handle(),
		buffer:   buffer,
		memory:   memory,
		capacity: size,
		usage:    usage,
	}, nil
}

// Get returns the vulkan buffer handle.
func (b *Buffer) Get() vk.Buffer {
	return b.buffer
}

// Capacity returns the usable length of the buffer in bytes.
func (b *Buffer) Capacity() uint64 {
	return b.capacity
}

// Usage returns the usage flags the buffer was created with.
func (b *Buffer) Usage() vk.BufferUsageFlagBits {
	return b.usage
}

// Mem returns the Memory that the buffer is based on.
func (b *Buffer) Mem() *Memory {
	return b.memory
}

// Map maps the backing memory and returns a pointer to it.
func (b *Buffer) Map() unsafe.Pointer {
	return b.memory.Map()
}

// Unmap removes the mapping established by Map.
func (b *Buffer) Unmap() {
	b.memory.Unmap()
}

// Release destroys the buffer and the memory associated with it.
func (b *Buffer) Release() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	b.memory.Release()
}
