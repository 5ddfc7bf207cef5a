// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"errors"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// Memory defines a usable device memory region.
type Memory struct {
	mapped    bool
	size      uint64
	typeIndex uint32
	device    vk.Device
	memory    vk.DeviceMemory
}

// Size returns the length of the allocated region in bytes.
func (m *Memory) Size() uint64 {
	return m.size
}

// TypeIndex returns the memory type the region was allocated from.
func (m *Memory) TypeIndex() uint32 {
	return m.typeIndex
}

// Get returns the vulkan memory handle.
func (m *Memory) Get() vk.DeviceMemory {
	return m.memory
}

// Map maps the entire region and returns a pointer to the mapped area.
func (m *Memory) Map() unsafe.Pointer {
	var memMapped unsafe.Pointer
	vk.MapMemory(m.device, m.memory, 0, vk.DeviceSize(m.size), 0, &memMapped)
	m.mapped = true
	return memMapped
}

// Unmap removes the memory mapping if it was mapped.
func (m *Memory) Unmap() {
	if m.mapped {
		vk.UnmapMemory(m.device, m.memory)
		m.mapped = false
	}
}

// Release frees memory after unmapping it if previously mapped.
func (m *Memory) Release() {
	m.Unmap()
	vk.FreeMemory(m.device, m.memory, nil)
}

// NewAllocator creates a new memory allocator. Allocates for the logical
// device, reads memory properties of the physical device to influence
// allocation.
func NewAllocator(device vk.Device, phyDevice vk.PhysicalDevice) *Allocator {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(phyDevice, &memProperties)
	memProperties.Deref()

	return &Allocator{
		device:        device,
		memProperties: memProperties,
	}
}

// Allocator is responsible for returning usable memory
// for any resources that may need it.
type Allocator struct {
	device        vk.Device
	memProperties vk.PhysicalDeviceMemoryProperties
}

// Malloc returns a usable memory chunk satisfying the given requirements,
// ready for use.
func (a *Allocator) Malloc(req vk.MemoryRequirements, prop vk.MemoryPropertyFlagBits) (*Memory, error) {
	memTypeIdx, err := a.FindMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(prop))
	if err != nil {
		return nil, err
	}
	return a.Alloc(memTypeIdx, uint64(req.Size))
}

// Alloc allocates size bytes from the given memory type.
func (a *Allocator) Alloc(typeIndex uint32, size uint64) (*Memory, error) {
	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: typeIndex,
	}

	var memory vk.DeviceMemory
	if err := check("vk.AllocateMemory()", OutOfMemory, vk.AllocateMemory(a.device, &mai, nil, &memory)); err != nil {
		return nil, err
	}
	return &Memory{
		size:      size,
		typeIndex: typeIndex,
		device:    a.device,
		memory:    memory,
	}, nil
}

// FindMemoryType resolves a memory type index from a requirement filter
// and the wanted property flags.
func (a *Allocator) FindMemoryType(filter uint32, prop vk.MemoryPropertyFlags) (uint32, error) {
	for idx := uint32(0); idx < a.memProperties.MemoryTypeCount; idx++ {
		a.memProperties.MemoryTypes[idx].Deref()
		if filter&(1<<idx) != 0 && (a.memProperties.MemoryTypes[idx].PropertyFlags&prop) == prop {
			return idx, nil
		}
	}
	return 0, &Error{
		Op:   "driver.Allocator.FindMemoryType()",
		Kind: Unsupported,
		Err:  errors.New("suitable memory type not found"),
	}
}
