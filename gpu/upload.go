// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

import (
	"image"
	"image/draw"
	"unsafe"

	"github.com/devblok/kage/driver"
	"github.com/devblok/kage/gfx"
	vk "github.com/devblok/vulkan"
)

// GetPixels transforms a given image into the right arrangement of
// pixels by drawing the decoded image onto a controlled RGBA canvas.
func GetPixels(img image.Image, rowPitch int) []uint8 {
	newImg := image.NewRGBA(img.Bounds())
	if rowPitch > 4*img.Bounds().Dx() {
		// apply the proposed row pitch only if supported,
		// as we're using only optimal textures.
		newImg.Stride = rowPitch
	}
	draw.Draw(newImg, newImg.Bounds(), img, image.Point{}, draw.Src)
	return newImg.Pix
}

// UploadTexture leases a texture matching the image dimensions and
// records its upload into cmd. The staging buffer rides the command
// buffer as a fenced drop, it returns to the pool when the caller
// reclaims the command buffer after execution.
//
// The texture lease is usable once the command buffer's fence has
// signaled.
func (p *Pool) UploadTexture(cmd *driver.CommandBuffer, img image.Image) (*Lease[*driver.Texture], error) {
	bounds := img.Bounds()
	info := driver.TextureInfo{
		Dims: gfx.Extent{
			Width:  uint32(bounds.Dx()),
			Height: uint32(bounds.Dy()),
		},
		Format:  vk.FormatR8g8b8a8Unorm,
		Layout:  vk.ImageLayoutUndefined,
		Usage:   vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit,
		Layers:  1,
		Mips:    1,
		Samples: vk.SampleCount1Bit,
	}

	texture, err := p.Texture(info)
	if err != nil {
		return nil, err
	}

	pixels := GetPixels(img, 0)
	staging, err := p.DataUsage(uint64(len(pixels)), vk.BufferUsageTransferSrcBit)
	if err != nil {
		texture.Release()
		return nil, err
	}

	mapped := unsafe.Slice((*byte)(staging.Item().Map()), len(pixels))
	copy(mapped, pixels)
	staging.Item().Unmap()

	if err := cmd.TransitionImage(texture.Item(), vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		staging.Release()
		texture.Release()
		return nil, err
	}
	cmd.CopyBufferToImage(staging.Item(), texture.Item())
	if err := cmd.TransitionImage(texture.Item(), vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		staging.Release()
		texture.Release()
		return nil, err
	}

	cmd.PushFencedDrop(staging)
	return texture, nil
}
