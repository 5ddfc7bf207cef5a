// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"unsafe"

	"github.com/devblok/kage/gfx"
	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// CommandBuffer owns one primary command buffer together with its own
// command pool, a completion fence and a two-slot timestamp query pool.
// Anything pushed with PushFencedDrop stays alive until the fence has
// confirmed that the GPU finished the previous submission.
type CommandBuffer struct {
	device     *Device
	pool       vk.CommandPool
	buffer     vk.CommandBuffer
	fence      *Fence
	queryPool  vk.QueryPool
	family     uint32
	droppables []gfx.Releasable
}

// NewCommandBuffer creates a command buffer for the given queue family.
// The fence starts out signaled: a fresh buffer has no pending work.
func NewCommandBuffer(dev *Device, family uint32) (*CommandBuffer, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType: vk.StructureTypeCommandPoolCreateInfo,
		Flags: vk.CommandPoolCreateFlags(
			vk.CommandPoolCreateTransientBit | vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}
	var pool vk.CommandPool
	if err := check("vk.CreateCommandPool()", Unsupported, vk.CreateCommandPool(dev.Handle(), &cpci, nil, &pool)); err != nil {
		return nil, err
	}

	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if err := check("vk.AllocateCommandBuffers()", Unsupported, vk.AllocateCommandBuffers(dev.Handle(), &cbai, buffers)); err != nil {
		vk.DestroyCommandPool(dev.Handle(), pool, nil)
		return nil, err
	}

	fence, err := NewFence(dev, true)
	if err != nil {
		vk.DestroyCommandPool(dev.Handle(), pool, nil)
		return nil, err
	}

	qpci := vk.QueryPoolCreateInfo{
		SType:      vk.StructureTypeQueryPoolCreateInfo,
		QueryType:  vk.QueryTypeTimestamp,
		QueryCount: 2,
	}
	var queryPool vk.QueryPool
	if err := check("vk.CreateQueryPool()", Unsupported, vk.CreateQueryPool(dev.Handle(), &qpci, nil, &queryPool)); err != nil {
		fence.Release()
		vk.DestroyCommandPool(dev.Handle(), pool, nil)
		return nil, err
	}

	return &CommandBuffer{
		device:    dev,
		pool:      pool,
		buffer:    buffers[0],
		fence:     fence,
		queryPool: queryPool,
		family:    family,
	}, nil
}

// Handle returns the raw recording handle.
func (c *CommandBuffer) Handle() vk.CommandBuffer {
	return c.buffer
}

// Family returns the queue family the buffer submits to.
func (c *CommandBuffer) Family() uint32 {
	return c.family
}

// Begin starts recording and writes the opening timestamp.
func (c *CommandBuffer) Begin() error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := check("vk.BeginCommandBuffer()", InvalidData, vk.BeginCommandBuffer(c.buffer, &cbbi)); err != nil {
		return err
	}
	vk.CmdResetQueryPool(c.buffer, c.queryPool, 0, 2)
	vk.CmdWriteTimestamp(c.buffer, vk.PipelineStageTopOfPipeBit, c.queryPool, 0)
	return nil
}

// End writes the closing timestamp and finishes recording.
func (c *CommandBuffer) End() error {
	vk.CmdWriteTimestamp(c.buffer, vk.PipelineStageBottomOfPipeBit, c.queryPool, 1)
	return check("vk.EndCommandBuffer()", InvalidData, vk.EndCommandBuffer(c.buffer))
}

// Submit hands the recorded buffer to the queue. The fence is reset to
// unsignaled right before submission; it signals when the GPU finishes.
func (c *CommandBuffer) Submit(queue vk.Queue) error {
	if err := c.fence.Reset(); err != nil {
		return err
	}
	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{c.buffer},
	}}
	return check("vk.QueueSubmit()", InvalidData, vk.QueueSubmit(queue, 1, submit, c.fence.Handle()))
}

// HasExecuted returns true after the GPU has executed the previous
// submission to this command buffer. See WaitUntilExecuted to block
// while checking.
func (c *CommandBuffer) HasExecuted() (bool, error) {
	return c.fence.Status()
}

// WaitUntilExecuted stalls by blocking the current thread until the GPU
// has executed the previous submission to this command buffer. See
// HasExecuted to check without blocking.
func (c *CommandBuffer) WaitUntilExecuted() error {
	return c.fence.Wait()
}

// PushFencedDrop registers an item to be released no earlier than the
// next fence-confirmed completion. This is what keeps GPU-visible
// resources alive while a submission may still read them.
func (c *CommandBuffer) PushFencedDrop(item gfx.Releasable) {
	c.droppables = append(c.droppables, item)
}

// DropFenced releases everything collected so far. Callers must have
// confirmed completion through HasExecuted or WaitUntilExecuted first.
func (c *CommandBuffer) DropFenced() {
	if len(c.droppables) > 0 {
		log.Tracef("dropping %d fenced references", len(c.droppables))
	}
	for _, item := range c.droppables {
		item.Release()
	}
	c.droppables = c.droppables[:0]
}

// QueryResults blocks for the two timestamp values that bracket the
// recorded work.
func (c *CommandBuffer) QueryResults() ([2]uint64, error) {
	var results [2]uint64
	res := vk.GetQueryPoolResults(
		c.device.Handle(), c.queryPool, 0, 2,
		uint(unsafe.Sizeof(results)), unsafe.Pointer(&results[0]), 8,
		vk.QueryResultFlags(vk.QueryResult64Bit|vk.QueryResultWaitBit))
	if err := check("vk.GetQueryPoolResults()", InvalidData, res); err != nil {
		return results, err
	}
	return results, nil
}

// Release waits for the last submission one final time and frees the
// command buffer, its pool, the query pool and the fence. A wait failure
// is logged and swallowed, teardown must reclaim regardless.
func (c *CommandBuffer) Release() {
	if err := c.fence.Wait(); err != nil {
		log.Warnf("releasing command buffer: %s", err)
	}
	c.DropFenced()
	dev := c.device.Handle()
	vk.FreeCommandBuffers(dev, c.pool, 1, []vk.CommandBuffer{c.buffer})
	vk.DestroyCommandPool(dev, c.pool, nil)
	vk.DestroyQueryPool(dev, c.queryPool, nil)
	c.fence.Release()
}
