// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

import (
	"github.com/devblok/kage/driver"
	vk "github.com/devblok/vulkan"
)

// RenderPassMode selects one of the memoized render passes. Passes are
// stateless between frames and expensive to build, so the pool keeps
// one per mode for its whole lifetime.
type RenderPassMode int

// Render pass modes.
const (
	// RenderPassColor renders to a single color attachment.
	RenderPassColor RenderPassMode = iota

	// RenderPassDraw renders to a color attachment with depth testing.
	RenderPassDraw
)

// Attachment formats used by the built-in passes.
const (
	ColorFormat = vk.FormatB8g8r8a8Unorm
	DepthFormat = vk.FormatD16Unorm
)

// buildRenderPass constructs the pass for a mode. Only the pool's
// registry calls this; modes form a closed set.
func buildRenderPass(dev *driver.Device, mode RenderPassMode) (vk.RenderPass, error) {
	switch mode {
	case RenderPassColor:
		return colorPass(dev)
	case RenderPassDraw:
		return drawPass(dev)
	}
	panic("gpu: unknown render pass mode")
}

func colorPass(dev *driver.Device) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         ColorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutShaderReadOnlyOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}

	return createRenderPass(dev, attachments, subpass)
}

func drawPass(dev *driver.Device) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         ColorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutShaderReadOnlyOptimal,
	}, {
		Format:         DepthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	return createRenderPass(dev, attachments, subpass)
}

func createRenderPass(dev *driver.Device, attachments []vk.AttachmentDescription, subpass vk.SubpassDescription) (vk.RenderPass, error) {
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(dev.Handle(), &rpci, nil, &renderPass)); err != nil {
		return nil, &driver.Error{Op: "vk.CreateRenderPass()", Kind: driver.Unsupported, Err: err}
	}
	return renderPass, nil
}
