// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

import (
	"github.com/devblok/kage/driver"
	"github.com/devblok/kage/model"
	vk "github.com/devblok/vulkan"
)

// GraphicsMode selects one of the built-in graphics pipeline
// configurations. The set is closed; every mode has exactly one
// constructor.
type GraphicsMode int

// Graphics pipeline modes.
const (
	GraphicsDrawMesh GraphicsMode = iota
	GraphicsDrawLine
	GraphicsTexture
	GraphicsGradient
	GraphicsFont
)

// ComputeMode selects one of the built-in compute pipeline
// configurations.
type ComputeMode int

// Compute pipeline modes.
const (
	ComputeCalcVertexAttrs ComputeMode = iota
	ComputeDecodeRGBRGBA
)

// buildGraphics dispatches a mode to its pipeline constructor. The pass
// must already be resolved through the registry.
func (p *Pool) buildGraphics(mode GraphicsMode, pass vk.RenderPass, subpass, maxSets uint32) (*driver.Graphics, error) {
	switch mode {
	case GraphicsDrawMesh:
		return p.newMeshPipeline("mesh", pass, subpass, maxSets, vk.PrimitiveTopologyTriangleList, true)
	case GraphicsDrawLine:
		return p.newMeshPipeline("line", pass, subpass, maxSets, vk.PrimitiveTopologyLineList, true)
	case GraphicsTexture:
		return p.newSampledPipeline("texture", pass, subpass, maxSets)
	case GraphicsGradient:
		return p.newSampledPipeline("gradient", pass, subpass, maxSets)
	case GraphicsFont:
		return p.newSampledPipeline("font", pass, subpass, maxSets)
	}
	panic("gpu: unknown graphics mode")
}

// buildCompute dispatches a mode to its pipeline constructor.
func (p *Pool) buildCompute(mode ComputeMode, maxSets uint32) (*driver.Compute, error) {
	switch mode {
	case ComputeCalcVertexAttrs:
		return p.newComputePipeline("calc_vertex_attrs", maxSets, 3, calcVertexAttrsRange)
	case ComputeDecodeRGBRGBA:
		return p.newComputePipeline("decode_rgb_rgba", maxSets, 2, decodeRGBRGBARange)
	}
	panic("gpu: unknown compute mode")
}

// newMeshPipeline builds the vertex-driven pipelines: a uniform block
// at binding zero and the model vertex layout.
func (p *Pool) newMeshPipeline(name string, pass vk.RenderPass, subpass, maxSets uint32, topology vk.PrimitiveTopology, depth bool) (*driver.Graphics, error) {
	vert, err := p.shaders.Module(name + ".vert")
	if err != nil {
		return nil, err
	}
	frag, err := p.shaders.Module(name + ".frag")
	if err != nil {
		return nil, err
	}
	return driver.NewGraphics(p.dev, driver.GraphicsConfig{
		Vert:       vert,
		Frag:       frag,
		RenderPass: pass,
		Subpass:    subpass,
		MaxSets:    maxSets,
		Bindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}},
		VertexBindings:   model.VertexBindingDescriptions(),
		VertexAttributes: model.VertexAttributeDescriptions(),
		PushRanges:       vertexMat4Range,
		Topology:         topology,
		DepthTest:        depth,
	})
}

// newSampledPipeline builds the textured full-screen pipelines: a
// uniform block and a combined image sampler.
func (p *Pool) newSampledPipeline(name string, pass vk.RenderPass, subpass, maxSets uint32) (*driver.Graphics, error) {
	vert, err := p.shaders.Module(name + ".vert")
	if err != nil {
		return nil, err
	}
	frag, err := p.shaders.Module(name + ".frag")
	if err != nil {
		return nil, err
	}
	return driver.NewGraphics(p.dev, driver.GraphicsConfig{
		Vert:       vert,
		Frag:       frag,
		RenderPass: pass,
		Subpass:    subpass,
		MaxSets:    maxSets,
		Bindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}, {
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}},
		VertexBindings:   model.VertexBindingDescriptions(),
		VertexAttributes: model.VertexAttributeDescriptions(),
		PushRanges:       vertexMat4Range,
	})
}

// newComputePipeline builds a compute pipeline with storageBufs storage
// buffer bindings.
func (p *Pool) newComputePipeline(name string, maxSets, storageBufs uint32, pushRanges []vk.PushConstantRange) (*driver.Compute, error) {
	shader, err := p.shaders.Module(name + ".comp")
	if err != nil {
		return nil, err
	}
	bindings := make([]vk.DescriptorSetLayoutBinding, 0, storageBufs)
	for idx := uint32(0); idx < storageBufs; idx++ {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         idx,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		})
	}
	return driver.NewCompute(p.dev, driver.ComputeConfig{
		Shader:     shader,
		MaxSets:    maxSets,
		Bindings:   bindings,
		PushRanges: pushRanges,
	})
}
