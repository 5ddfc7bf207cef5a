// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader keeps named SPIR-V modules for pipeline construction.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devblok/kage/driver"
	"github.com/devblok/kage/kar"
	log "github.com/sirupsen/logrus"
)

const shaderSuffix = ".spv"

// Collection maps shader names to compiled driver modules. Names carry
// the stage extension without the compiled suffix, eg. "mesh.vert".
type Collection struct {
	dev     *driver.Device
	modules map[string]*driver.Shader
}

// NewCollection creates an empty shader collection.
func NewCollection(dev *driver.Device) *Collection {
	return &Collection{
		dev:     dev,
		modules: make(map[string]*driver.Shader),
	}
}

// Add compiles code into a module registered under name. The stage
// comes from the name's extension.
func (c *Collection) Add(name string, code []byte) error {
	if _, ok := c.modules[name]; ok {
		return fmt.Errorf("shader %s already registered", name)
	}
	typ := typeFromName(name)
	if typ == driver.UnknownShaderType {
		return fmt.Errorf("shader %s has no recognised stage extension", name)
	}
	module, err := driver.NewShader(c.dev, name, typ, code)
	if err != nil {
		return err
	}
	c.modules[name] = module
	return nil
}

// Module returns the shader registered under name.
func (c *Collection) Module(name string) (*driver.Shader, error) {
	module, ok := c.modules[name]
	if !ok {
		return nil, fmt.Errorf("shader %s not loaded", name)
	}
	return module, nil
}

// Names returns the registered shader names.
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	return names
}

// LoadDirectory walks dir and registers every compiled shader found.
// File names follow name.stage.spv, anything else is skipped.
func (c *Collection) LoadDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() || !strings.HasSuffix(f.Name(), shaderSuffix) {
			return nil
		}

		name := strings.TrimSuffix(f.Name(), shaderSuffix)
		if typeFromName(name) == driver.UnknownShaderType {
			return nil
		}

		code, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		log.Debugf("loading shader %s", name)
		return c.Add(name, code)
	})
}

// LoadArchive registers every compiled shader found in a kar archive.
func (c *Collection) LoadArchive(archive *kar.Archive) error {
	for _, name := range archive.Names() {
		if !strings.HasSuffix(name, shaderSuffix) {
			continue
		}
		short := strings.TrimSuffix(filepath.Base(name), shaderSuffix)
		if typeFromName(short) == driver.UnknownShaderType {
			continue
		}
		code, err := archive.ReadAll(name)
		if err != nil {
			return err
		}
		log.Debugf("loading shader %s from archive", short)
		if err := c.Add(short, code); err != nil {
			return err
		}
	}
	return nil
}

// Release destroys every registered module.
func (c *Collection) Release() {
	for name, module := range c.modules {
		module.Release()
		delete(c.modules, name)
	}
}

// typeFromName maps a shader name's extension to its stage. Names must
// have exactly one extension node, eg. "mesh.vert".
func typeFromName(name string) driver.ShaderType {
	nodes := strings.Split(name, ".")
	if len(nodes) != 2 {
		return driver.UnknownShaderType
	}
	switch nodes[1] {
	case "vert":
		return driver.VertexShaderType
	case "frag":
		return driver.FragmentShaderType
	case "comp":
		return driver.ComputeShaderType
	}
	return driver.UnknownShaderType
}
