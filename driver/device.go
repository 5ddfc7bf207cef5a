// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package driver wraps the Vulkan objects the pool hands out: command
// pools and buffers, descriptor pools and sets, fences, device memory,
// buffers, textures, shader modules and pipelines. Every wrapper is
// created against exactly one Device and frees itself with Release.
package driver

import (
	"errors"

	vk "github.com/devblok/vulkan"
)

// DeviceConfig configures logical device creation.
type DeviceConfig struct {
	// Extensions lists device extensions to enable. Names must not
	// be null-terminated, termination is handled internally.
	Extensions []string
}

// Device bundles the logical device, its queue and the memory allocator.
type Device struct {
	physical vk.PhysicalDevice
	device   vk.Device
	queue    vk.Queue
	family   uint32
	alloc    *Allocator
}

// NewDevice creates a logical device on the first queue family that
// supports both graphics and compute work.
func NewDevice(physical vk.PhysicalDevice, cfg DeviceConfig) (*Device, error) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &queueFamilyCount, nil)
	if queueFamilyCount == 0 {
		return nil, &Error{
			Op:   "vk.GetPhysicalDeviceQueueFamilyProperties()",
			Kind: Unsupported,
			Err:  errors.New("no queue families on device"),
		}
	}
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &queueFamilyCount, queueFamilies)

	var (
		family      uint32
		familyFound bool
	)
	required := vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit)
	for idx := uint32(0); idx < queueFamilyCount; idx++ {
		queueFamilies[idx].Deref()
		if queueFamilies[idx].QueueFlags&required == required {
			family = idx
			familyFound = true
			break
		}
	}
	if !familyFound {
		return nil, &Error{
			Op:   "driver.NewDevice()",
			Kind: Unsupported,
			Err:  errors.New("no queue family supports graphics and compute"),
		}
	}

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1},
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
	}

	var device vk.Device
	if err := check("vk.CreateDevice()", Unsupported, vk.CreateDevice(physical, &dci, nil, &device)); err != nil {
		return nil, err
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)

	return &Device{
		physical: physical,
		device:   device,
		queue:    queue,
		family:   family,
		alloc:    NewAllocator(device, physical),
	}, nil
}

// Handle returns the logical device handle.
func (d *Device) Handle() vk.Device {
	return d.device
}

// Physical returns the physical device the logical device was created on.
func (d *Device) Physical() vk.PhysicalDevice {
	return d.physical
}

// Queue returns the device queue submissions go to.
func (d *Device) Queue() vk.Queue {
	return d.queue
}

// Family returns the queue family index of Queue.
func (d *Device) Family() uint32 {
	return d.family
}

// Allocator returns the device memory allocator.
func (d *Device) Alloc() *Allocator {
	return d.alloc
}

// WaitIdle blocks until all queues on the device have drained.
func (d *Device) WaitIdle() {
	vk.DeviceWaitIdle(d.device)
}

// Release waits for the device to go idle and destroys it.
func (d *Device) Release() {
	vk.DeviceWaitIdle(d.device)
	vk.DestroyDevice(d.device, nil)
}

func safeString(s string) string {
	return s + "\x00"
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}
