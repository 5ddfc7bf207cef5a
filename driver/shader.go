// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// ShaderType represents the pipeline stage a shader module is meant for.
type ShaderType int

// Identifies shader objects with their types.
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	ComputeShaderType
	UnknownShaderType
)

// Shader is a compiled SPIR-V shader module.
type Shader struct {
	name   string
	typ    ShaderType
	device vk.Device
	module vk.ShaderModule
}

// NewShader creates a shader module from SPIR-V code.
func NewShader(dev *Device, name string, typ ShaderType, code []byte) (*Shader, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(dev.Handle(), &smci, nil, &module)); err != nil {
		return nil, &Error{
			Op:   "vk.CreateShaderModule()",
			Kind: InvalidData,
			Err:  fmt.Errorf("shader %s: %s", name, err.Error()),
		}
	}
	return &Shader{
		name:   name,
		typ:    typ,
		device: dev.Handle(),
		module: module,
	}, nil
}

// Name returns the name the shader was registered under.
func (s *Shader) Name() string {
	return s.name
}

// Type returns the shader stage of the module.
func (s *Shader) Type() ShaderType {
	return s.typ
}

// Module returns the vulkan shader module handle.
func (s *Shader) Module() vk.ShaderModule {
	return s.module
}

// Release destroys the shader module.
func (s *Shader) Release() {
	vk.DestroyShaderModule(s.device, s.module, nil)
}

// sliceUint32 reslices bytes into uint32 words, the layout vulkan wants
// SPIR-V submitted in.
func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
