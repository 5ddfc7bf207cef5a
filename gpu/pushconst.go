// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Push-constant blocks handed to vk.CmdPushConstants. The Slice views
// reinterpret the struct as the uint32 words command recording wants;
// field order is the shader-side layout.

// Mat4PushConst pushes a single 4x4 matrix, usually model-view-projection.
type Mat4PushConst struct {
	Val glm.Mat4
}

// Slice returns the block as uint32 words.
func (c *Mat4PushConst) Slice() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(c)), 16)
}

// U32PushConst pushes a single scalar.
type U32PushConst struct {
	Val uint32
}

// Slice returns the block as uint32 words.
func (c *U32PushConst) Slice() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(c)), 1)
}

// Push-constant ranges of the built-in pipeline modes.
var (
	vertexMat4Range = []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       64,
	}}

	calcVertexAttrsRange = []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		Offset:     0,
		Size:       8,
	}}

	decodeRGBRGBARange = []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		Offset:     0,
		Size:       4,
	}}
)
