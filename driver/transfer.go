// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"fmt"

	vk "github.com/devblok/vulkan"
)

// TransitionImage records a layout transition barrier for the texture.
// Only the transfer-upload transitions are supported.
func (c *CommandBuffer) TransitionImage(tex *Texture, old, new vk.ImageLayout) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               tex.Get(),
		SubresourceRange: vk.ImageSubresourceRange{
			BaseMipLevel:   0,
			LevelCount:     tex.Info().Mips,
			BaseArrayLayer: 0,
			LayerCount:     tex.Info().Layers,
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	if old == vk.ImageLayoutUndefined && new == vk.ImageLayoutTransferDstOptimal {
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	} else if old == vk.ImageLayoutTransferDstOptimal && new == vk.ImageLayoutShaderReadOnlyOptimal {
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	} else {
		return &Error{
			Op:   "driver.TransitionImage()",
			Kind: Unsupported,
			Err:  fmt.Errorf("unsupported layout transition %d -> %d", old, new),
		}
	}

	vk.CmdPipelineBarrier(c.buffer, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

// CopyBufferToImage records a full-extent copy from src into dst. The
// destination must already be in the transfer destination layout.
func (c *CommandBuffer) CopyBufferToImage(src *Buffer, dst *Texture) {
	bic := vk.BufferImageCopy{
		ImageOffset: vk.Offset3D{},
		ImageExtent: vk.Extent3D{
			Width:  dst.Info().Dims.Width,
			Height: dst.Info().Dims.Height,
			Depth:  1,
		},
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	vk.CmdCopyBufferToImage(c.buffer, src.Get(), dst.Get(), vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{bic})
}

// CopyBuffer records a copy of size bytes between two buffers.
func (c *CommandBuffer) CopyBuffer(src, dst *Buffer, size uint64) {
	bc := vk.BufferCopy{
		Size: vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(c.buffer, src.Get(), dst.Get(), 1, []vk.BufferCopy{bc})
}
