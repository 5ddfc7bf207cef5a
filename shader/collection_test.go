// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"testing"

	"github.com/devblok/kage/driver"
)

func TestTypeFromName(t *testing.T) {
	cases := []struct {
		name string
		want driver.ShaderType
	}{
		{"mesh.vert", driver.VertexShaderType},
		{"mesh.frag", driver.FragmentShaderType},
		{"calc_vertex_attrs.comp", driver.ComputeShaderType},
		{"mesh", driver.UnknownShaderType},
		{"mesh.vert.frag", driver.UnknownShaderType},
		{"mesh.geom", driver.UnknownShaderType},
	}
	for _, c := range cases {
		if got := typeFromName(c.name); got != c.want {
			t.Errorf("typeFromName(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestModuleMissing(t *testing.T) {
	c := NewCollection(nil)
	if _, err := c.Module("absent.vert"); err == nil {
		t.Error("looking up an unloaded shader must fail")
	}
}
