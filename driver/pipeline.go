// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	vk "github.com/devblok/vulkan"
)

// GraphicsConfig describes one graphics pipeline build. The render pass
// must already exist; pipelines never own their pass.
type GraphicsConfig struct {
	Vert       *Shader
	Frag       *Shader
	RenderPass vk.RenderPass
	Subpass    uint32

	// MaxSets caps how many descriptor sets the pipeline's own pool can
	// hand out.
	MaxSets uint32

	Bindings         []vk.DescriptorSetLayoutBinding
	VertexBindings   []vk.VertexInputBindingDescription
	VertexAttributes []vk.VertexInputAttributeDescription
	PushRanges       []vk.PushConstantRange
	Topology         vk.PrimitiveTopology
	DepthTest        bool
}

// Graphics is a graphics pipeline bundled with its layout, descriptor
// set layout and a descriptor pool sized for MaxSets sets.
type Graphics struct {
	device    vk.Device
	pipeline  vk.Pipeline
	layout    vk.PipelineLayout
	setLayout vk.DescriptorSetLayout
	descPool  *DescriptorPool
	maxSets   uint32
}

// NewGraphics builds a graphics pipeline from the given configuration.
func NewGraphics(dev *Device, cfg GraphicsConfig) (*Graphics, error) {
	layout, setLayout, err := newPipelineLayout(dev, cfg.Bindings, cfg.PushRanges)
	if err != nil {
		return nil, err
	}

	descPool, err := newPipelineDescPool(dev, cfg.Bindings, cfg.MaxSets)
	if err != nil {
		vk.DestroyPipelineLayout(dev.Handle(), layout, nil)
		vk.DestroyDescriptorSetLayout(dev.Handle(), setLayout, nil)
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: cfg.Vert.Module(),
		PName:  safeString("main"),
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: cfg.Frag.Module(),
		PName:  safeString("main"),
	}}

	topology := cfg.Topology
	if topology == 0 {
		topology = vk.PrimitiveTopologyTriangleList
	}

	depthTest := vk.Bool32(vk.False)
	if cfg.DepthTest {
		depthTest = vk.True
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(cfg.VertexBindings)),
			PVertexBindingDescriptions:      cfg.VertexBindings,
			VertexAttributeDescriptionCount: uint32(len(cfg.VertexAttributes)),
			PVertexAttributeDescriptions:    cfg.VertexAttributes,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: topology,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  depthTest,
			DepthWriteEnable: depthTest,
			DepthCompareOp:   vk.CompareOpLessOrEqual,
			Back: vk.StencilOpState{
				FailOp:    vk.StencilOpKeep,
				PassOp:    vk.StencilOpKeep,
				CompareOp: vk.CompareOpAlways,
			},
			Front: vk.StencilOpState{
				FailOp:    vk.StencilOpKeep,
				PassOp:    vk.StencilOpKeep,
				CompareOp: vk.CompareOpAlways,
			},
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: 0xF,
				BlendEnable:    vk.False,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     layout,
		RenderPass: cfg.RenderPass,
		Subpass:    cfg.Subpass,
	}}

	pipelines := make([]vk.Pipeline, 1)
	if err := check("vk.CreateGraphicsPipelines()", Unsupported,
		vk.CreateGraphicsPipelines(dev.Handle(), nil, 1, gpci, nil, pipelines)); err != nil {
		descPool.Release()
		vk.DestroyPipelineLayout(dev.Handle(), layout, nil)
		vk.DestroyDescriptorSetLayout(dev.Handle(), setLayout, nil)
		return nil, err
	}

	return &Graphics{
		device:    dev.Handle(),
		pipeline:  pipelines[0],
		layout:    layout,
		setLayout: setLayout,
		descPool:  descPool,
		maxSets:   cfg.MaxSets,
	}, nil
}

// Pipeline returns the vulkan pipeline handle.
func (g *Graphics) Pipeline() vk.Pipeline {
	return g.pipeline
}

// Layout returns the pipeline layout.
func (g *Graphics) Layout() vk.PipelineLayout {
	return g.layout
}

// SetLayout returns the descriptor set layout of set zero.
func (g *Graphics) SetLayout() vk.DescriptorSetLayout {
	return g.setLayout
}

// DescPool returns the pipeline's own descriptor pool.
func (g *Graphics) DescPool() *DescriptorPool {
	return g.descPool
}

// MaxSets returns the descriptor set capacity of the pipeline.
func (g *Graphics) MaxSets() uint32 {
	return g.maxSets
}

// Release destroys the pipeline and everything it owns.
func (g *Graphics) Release() {
	vk.DestroyPipeline(g.device, g.pipeline, nil)
	g.descPool.Release()
	vk.DestroyPipelineLayout(g.device, g.layout, nil)
	vk.DestroyDescriptorSetLayout(g.device, g.setLayout, nil)
}

// ComputeConfig describes one compute pipeline build.
type ComputeConfig struct {
	Shader     *Shader
	MaxSets    uint32
	Bindings   []vk.DescriptorSetLayoutBinding
	PushRanges []vk.PushConstantRange
}

// Compute is a compute pipeline with its layout, descriptor set layout
// and a descriptor pool sized for MaxSets sets.
type Compute struct {
	device    vk.Device
	pipeline  vk.Pipeline
	layout    vk.PipelineLayout
	setLayout vk.DescriptorSetLayout
	descPool  *DescriptorPool
	maxSets   uint32
}

// NewCompute builds a compute pipeline from the given configuration.
func NewCompute(dev *Device, cfg ComputeConfig) (*Compute, error) {
	layout, setLayout, err := newPipelineLayout(dev, cfg.Bindings, cfg.PushRanges)
	if err != nil {
		return nil, err
	}

	descPool, err := newPipelineDescPool(dev, cfg.Bindings, cfg.MaxSets)
	if err != nil {
		vk.DestroyPipelineLayout(dev.Handle(), layout, nil)
		vk.DestroyDescriptorSetLayout(dev.Handle(), setLayout, nil)
		return nil, err
	}

	cpci := []vk.ComputePipelineCreateInfo{{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageComputeBit,
			Module: cfg.Shader.Module(),
			PName:  safeString("main"),
		},
		Layout: layout,
	}}

	pipelines := make([]vk.Pipeline, 1)
	if err := check("vk.CreateComputePipelines()", Unsupported,
		vk.CreateComputePipelines(dev.Handle(), nil, 1, cpci, nil, pipelines)); err != nil {
		descPool.Release()
		vk.DestroyPipelineLayout(dev.Handle(), layout, nil)
		vk.DestroyDescriptorSetLayout(dev.Handle(), setLayout, nil)
		return nil, err
	}

	return &Compute{
		device:    dev.Handle(),
		pipeline:  pipelines[0],
		layout:    layout,
		setLayout: setLayout,
		descPool:  descPool,
		maxSets:   cfg.MaxSets,
	}, nil
}

// Pipeline returns the vulkan pipeline handle.
func (c *Compute) Pipeline() vk.Pipeline {
	return c.pipeline
}

// Layout returns the pipeline layout.
func (c *Compute) Layout() vk.PipelineLayout {
	return c.layout
}

// SetLayout returns the descriptor set layout of set zero.
func (c *Compute) SetLayout() vk.DescriptorSetLayout {
	return c.setLayout
}

// DescPool returns the pipeline's own descriptor pool.
func (c *Compute) DescPool() *DescriptorPool {
	return c.descPool
}

// MaxSets returns the descriptor set capacity of the pipeline.
func (c *Compute) MaxSets() uint32 {
	return c.maxSets
}

// Release destroys the pipeline and everything it owns.
func (c *Compute) Release() {
	vk.DestroyPipeline(c.device, c.pipeline, nil)
	c.descPool.Release()
	vk.DestroyPipelineLayout(c.device, c.layout, nil)
	vk.DestroyDescriptorSetLayout(c.device, c.setLayout, nil)
}

func newPipelineLayout(dev *Device, bindings []vk.DescriptorSetLayoutBinding, pushRanges []vk.PushConstantRange) (vk.PipelineLayout, vk.DescriptorSetLayout, error) {
	dslci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var setLayout vk.DescriptorSetLayout
	if err := check("vk.CreateDescriptorSetLayout()", Unsupported,
		vk.CreateDescriptorSetLayout(dev.Handle(), &dslci, nil, &setLayout)); err != nil {
		return nil, nil, err
	}

	plci := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{setLayout},
		PushConstantRangeCount: uint32(len(pushRanges)),
		PPushConstantRanges:    pushRanges,
	}
	var layout vk.PipelineLayout
	if err := check("vk.CreatePipelineLayout()", Unsupported,
		vk.CreatePipelineLayout(dev.Handle(), &plci, nil, &layout)); err != nil {
		vk.DestroyDescriptorSetLayout(dev.Handle(), setLayout, nil)
		return nil, nil, err
	}
	return layout, setLayout, nil
}

// newPipelineDescPool sizes a descriptor pool from the set layout
// bindings, multiplied out by the wanted set count.
func newPipelineDescPool(dev *Device, bindings []vk.DescriptorSetLayoutBinding, maxSets uint32) (*DescriptorPool, error) {
	sizes := make([]vk.DescriptorPoolSize, 0, len(bindings))
	for _, binding := range bindings {
		sizes = append(sizes, vk.DescriptorPoolSize{
			Type:            binding.DescriptorType,
			DescriptorCount: binding.DescriptorCount * maxSets,
		})
	}
	return NewDescriptorPool(dev, maxSets, sizes)
}
