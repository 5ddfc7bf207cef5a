// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"github.com/devblok/kage/gfx"
	vk "github.com/devblok/vulkan"
)

// TextureInfo is the creation parameter set of a 2D texture. Reuse from
// the pool requires every field to match exactly.
type TextureInfo struct {
	Dims    gfx.Extent
	Format  vk.Format
	Layout  vk.ImageLayout
	Usage   vk.ImageUsageFlagBits
	Layers  uint32
	Mips    uint32
	Samples vk.SampleCountFlagBits
}

// Texture implements a 2D image with bound device-local memory and a
// default view over all of it.
type Texture struct {
	device vk.Device
	image  vk.Image
	view   vk.ImageView
	memory *Memory
	info   TextureInfo
}

// NewTexture creates a new image, binds memory to it and creates the
// default view.
func NewTexture(dev *Device, info TextureInfo) (*Texture, error) {
	ici := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    info.Format,
		Extent: vk.Extent3D{
			Width:  info.Dims.Width,
			Height: info.Dims.Height,
			Depth:  1,
		},
		MipLevels:     info.Mips,
		ArrayLayers:   info.Layers,
		Samples:       info.Samples,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	if err := check("vk.CreateImage()", Unsupported, vk.CreateImage(dev.Handle(), &ici, nil, &image)); err != nil {
		return nil, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev.Handle(), image, &req)
	req.Deref()

	memory, err := dev.Alloc().Malloc(req, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(dev.Handle(), image, nil)
		return nil, err
	}

	if err := check("vk.BindImageMemory()", InvalidData,
		vk.BindImageMemory(dev.Handle(), image, memory.Get(), 0)); err != nil {
		memory.Release()
		vk.DestroyImage(dev.Handle(), image, nil)
		return nil, err
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if info.Usage&vk.ImageUsageDepthStencilAttachmentBit != 0 {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   info.Format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: info.Mips,
			LayerCount: info.Layers,
		},
	}
	var view vk.ImageView
	if err := check("vk.CreateImageView()", Unsupported, vk.CreateImageView(dev.Handle(), &ivci, nil, &view)); err != nil {
		memory.Release()
		vk.DestroyImage(dev.Handle(), image, nil)
		return nil, err
	}

	return &Texture{
		device: dev.Handle(),
		image:  image,
		view:   view,
		memory: memory,
		info:   info,
	}, nil
}

// Get returns the vulkan image handle.
func (t *Texture) Get() vk.Image {
	return t.image
}

// View returns the default image view.
func (t *Texture) View() vk.ImageView {
	return t.view
}

// Mem returns the underlying memory of the texture.
func (t *Texture) Mem() *Memory {
	return t.memory
}

// Info returns the creation parameters of the texture.
func (t *Texture) Info() TextureInfo {
	return t.info
}

// Release destroys the view, the image and the memory behind them.
func (t *Texture) Release() {
	vk.DestroyImageView(t.device, t.view, nil)
	vk.DestroyImage(t.device, t.image, nil)
	t.memory.Release()
}
